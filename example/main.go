package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/pulsecheck"
)

func main() {
	// in-process targets (see mock_server.go)
	mock := httptest.NewServer(NewMockHandler())
	defer mock.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var endpoints []pulsecheck.Endpoint
	for _, def := range []struct {
		name string
		path string
		opts []pulsecheck.EndpointOption
	}{
		{"always up", "/ok", nil},
		{"flaky", "/flaky?rate=0.3", nil},
		{"too slow", "/slow?delay=800ms", nil},
		{"orders", "/orders", []pulsecheck.EndpointOption{
			pulsecheck.WithMethod("POST"),
			pulsecheck.WithHeaders("Content-Type", "application/json"),
			pulsecheck.WithBody(`{"probe":true}`),
		}},
	} {
		ep, err := pulsecheck.NewEndpoint(def.name, mock.URL+def.path, def.opts...)
		if err != nil {
			logger.Error("invalid endpoint", "name", def.name, "error", err)
			os.Exit(1)
		}
		endpoints = append(endpoints, ep)
	}

	m, err := pulsecheck.New(
		pulsecheck.WithEndpoints(endpoints...),
		pulsecheck.WithRoundInterval(2*time.Second),
		pulsecheck.WithWorkerCount(4),
		pulsecheck.WithStatusAddr(":9090"),
		pulsecheck.WithLogger(logger),
		pulsecheck.WithReporter(pulsecheck.NewConsoleReporter(os.Stdout)),
	)
	if err != nil {
		logger.Error("failed to create monitor", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  pulsecheck demo")
	fmt.Println("  4 endpoints on one mock domain, a round every 2s")
	fmt.Println("  status: http://localhost:9090/api/availability")
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := m.Run(ctx); err != nil {
		if errors.Is(err, pulsecheck.ErrDeadlineExceeded) {
			logger.Error("rounds cannot keep up", "error", err)
			os.Exit(2)
		}
		logger.Error("monitor failed", "error", err)
		os.Exit(1)
	}
}
