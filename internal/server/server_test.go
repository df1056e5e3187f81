package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jpalmerr/pulsecheck/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*httptest.Server, *store.Publisher, *prometheus.Registry) {
	t.Helper()
	pub := store.NewPublisher()
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "t"}))

	ts := httptest.NewServer(NewServer(pub, reg, ":0", testLogger()).Router())
	t.Cleanup(ts.Close)
	return ts, pub, reg
}

func TestServer_Healthz(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("GET /healthz = %d %q, want 200 ok", resp.StatusCode, body)
	}
}

func TestServer_AvailabilityBeforeFirstRound(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/availability")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_AvailabilityReturnsLatest(t *testing.T) {
	ts, pub, _ := newTestServer(t)
	pub.Publish(store.Snapshot{
		Round:            3,
		EndpointsChecked: 4,
		Domains: []store.DomainStats{
			{Domain: "a.test", SuccessCount: 2, TotalCount: 3, Percent: 66.67},
		},
	})

	resp, err := http.Get(ts.URL + "/api/availability")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var got store.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if got.Round != 3 || len(got.Domains) != 1 || got.Domains[0].Percent != 66.67 {
		t.Errorf("snapshot = %+v", got)
	}
}

func TestServer_Metrics(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "test_total") {
		t.Errorf("/metrics missing registered collector: %s", body)
	}
}

func TestServer_MetricsDisabledWithoutGatherer(t *testing.T) {
	ts := httptest.NewServer(NewServer(store.NewPublisher(), nil, ":0", testLogger()).Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_StreamDeliversRounds(t *testing.T) {
	ts, pub, _ := newTestServer(t)
	pub.Publish(store.Snapshot{Round: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/availability/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	events := make(chan store.Snapshot, 2)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var snap store.Snapshot
			if json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &snap) == nil {
				events <- snap
			}
		}
	}()

	if got := <-events; got.Round != 1 {
		t.Errorf("initial event round = %d, want 1", got.Round)
	}

	// the subscription is registered before the initial event is written
	pub.Publish(store.Snapshot{Round: 2})
	select {
	case got := <-events:
		if got.Round != 2 {
			t.Errorf("second event round = %d, want 2", got.Round)
		}
	case <-ctx.Done():
		t.Fatal("no event for published round")
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(store.NewPublisher(), nil, "127.0.0.1:0", testLogger())
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	resp.Body.Close()

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := http.Get("http://" + srv.Addr() + "/healthz"); err != nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("server still serving after context cancellation")
}

func TestServer_StartFailsOnBadAddress(t *testing.T) {
	srv := NewServer(store.NewPublisher(), nil, "256.0.0.1:bad", testLogger())
	if err := srv.Start(context.Background()); err == nil {
		t.Error("Start() error = nil for invalid address")
	}
}
