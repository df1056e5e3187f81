package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jpalmerr/pulsecheck/internal/store"
)

const (
	// sseWriteTimeout bounds a single SSE write so slow clients cannot pin
	// a handler goroutine past shutdown.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second
)

// Server serves availability snapshots and metrics.
type Server struct {
	publisher  *store.Publisher
	gatherer   prometheus.Gatherer
	addr       string
	httpServer *http.Server
	listener   net.Listener
	logger     *slog.Logger
}

// NewServer creates a [Server] bound to addr (e.g. ":9090") once started.
// gatherer may be nil, in which case /metrics is not served.
func NewServer(pub *store.Publisher, gatherer prometheus.Gatherer, addr string, logger *slog.Logger) *Server {
	return &Server{
		publisher: pub,
		gatherer:  gatherer,
		addr:      addr,
		logger:    logger,
	}
}

// Router returns the HTTP handler of the server.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/api/availability", s.handleAvailability)
	r.Get("/api/availability/stream", s.handleStream)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// Start begins serving in a background goroutine.
//
// Start returns once the listener is bound, so a bad address fails fast.
// The server shuts down gracefully when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", s.addr, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		// request contexts end with ctx so SSE streams stop on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	s.logger.Info("status server listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address after [Server.Start], or the configured
// address before it.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// handleAvailability returns the latest snapshot as JSON.
func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.publisher.Latest()
	if !ok {
		http.Error(w, "no round completed yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.logger.Error("failed to encode availability response", "error", err)
	}
}

// handleStream pushes every published snapshot as a Server-Sent Event,
// starting with the latest one if any.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)
	deadlinesSupported := true

	send := func(snap store.Snapshot) error {
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				deadlinesSupported = false
			}
		}
		if _, err := fmt.Fprintf(w, "event: round\ndata: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.publisher.Subscribe()
	defer s.publisher.Unsubscribe(ch)

	if snap, ok := s.publisher.Latest(); ok {
		if err := send(snap); err != nil {
			return
		}
	} else if err := rc.Flush(); err != nil {
		return
	}

	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			if err := send(snap); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
