// Standalone mock target server for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/pulsecheck run example/endpoints.yaml
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
)

func main() {
	addr := flag.String("addr", ":9999", "listen address")
	flag.Parse()

	r := chi.NewRouter()

	// always up
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// up about 70% of the time
	r.Get("/flaky", func(w http.ResponseWriter, r *http.Request) {
		if rand.IntN(10) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// slower than the default probe timeout about half of the time
	r.Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Duration(200+rand.IntN(600)) * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	// redirects are reported, not followed, so this counts as down
	r.Get("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusFound)
	})

	r.Post("/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	fmt.Printf("Mock target server starting on %s\n", *addr)
	fmt.Println("Routes: /ok /flaky /slow /moved POST /orders")
	fmt.Println("Press Ctrl+C to stop")

	srv := &http.Server{Addr: *addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("mock server failed", "error", err)
		os.Exit(1)
	}
}
