package pulsecheck

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// monitorConfig holds mutable state during Monitor construction.
type monitorConfig struct {
	endpoints     []Endpoint
	roundInterval time.Duration
	workerCount   int
	batchSize     int
	probeTimeout  time.Duration
	seed          *uint64
	logger        *slog.Logger
	reporters     []Reporter
	statusAddr    string
	registry      *prometheus.Registry
	httpClient    *http.Client
}

// Option configures a [Monitor] during construction.
//
// Options return an error if validation fails; [New] stops at the first
// failing option.
type Option func(*monitorConfig) error

// WithEndpoint adds a single [Endpoint] to the registry.
func WithEndpoint(e Endpoint) Option {
	return func(cfg *monitorConfig) error {
		cfg.endpoints = append(cfg.endpoints, e)
		return nil
	}
}

// WithEndpoints adds multiple endpoints to the registry.
//
// Example:
//
//	m, err := pulsecheck.New(
//	    pulsecheck.WithEndpoints(ep1, ep2, ep3),
//	)
func WithEndpoints(endpoints ...Endpoint) Option {
	return func(cfg *monitorConfig) error {
		cfg.endpoints = append(cfg.endpoints, endpoints...)
		return nil
	}
}

// WithRoundInterval sets how often a round starts. It is also the round
// deadline: a round that takes longer stops the monitor with a
// [*DeadlineError]. Defaults to 15 seconds.
func WithRoundInterval(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("round interval must be positive")
		}
		cfg.roundInterval = d
		return nil
	}
}

// WithWorkerCount sets the number of long-lived probe workers, i.e. the
// maximum number of requests in flight. Defaults to 200.
func WithWorkerCount(n int) Option {
	return func(cfg *monitorConfig) error {
		if n <= 0 {
			return errors.New("worker count must be positive")
		}
		cfg.workerCount = n
		return nil
	}
}

// WithBatchSize sets the maximum number of endpoints per batch.
// Defaults to the worker count.
func WithBatchSize(n int) Option {
	return func(cfg *monitorConfig) error {
		if n <= 0 {
			return errors.New("batch size must be positive")
		}
		cfg.batchSize = n
		return nil
	}
}

// WithProbeTimeout sets the timeout of a single probe. A probe that does
// not complete in time counts as down. Defaults to 500 milliseconds.
func WithProbeTimeout(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("probe timeout must be positive")
		}
		cfg.probeTimeout = d
		return nil
	}
}

// WithSeed makes the per-round shuffle deterministic.
// Without it every round is shuffled from a fresh entropy source.
func WithSeed(seed uint64) Option {
	return func(cfg *monitorConfig) error {
		cfg.seed = &seed
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *monitorConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithReporter registers a [Reporter] called after every round.
//
// Multiple reporters may be registered; they run in registration order
// from the scheduler goroutine, so they must not block. Panics are
// recovered and logged. Nil reporters are ignored.
//
// Example:
//
//	m, err := pulsecheck.New(
//	    pulsecheck.WithEndpoints(endpoints...),
//	    pulsecheck.WithReporter(pulsecheck.NewConsoleReporter(os.Stdout)),
//	)
func WithReporter(r Reporter) Option {
	return func(cfg *monitorConfig) error {
		if r == nil {
			return nil
		}
		cfg.reporters = append(cfg.reporters, r)
		return nil
	}
}

// WithStatusAddr enables the status HTTP server on addr (e.g. ":9090").
// The server exposes /healthz, /api/availability,
// /api/availability/stream and /metrics.
func WithStatusAddr(addr string) Option {
	return func(cfg *monitorConfig) error {
		if addr == "" {
			return errors.New("status address cannot be empty")
		}
		cfg.statusAddr = addr
		return nil
	}
}

// WithRegistry registers the monitor's Prometheus collectors with reg
// instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(cfg *monitorConfig) error {
		if reg == nil {
			return errors.New("registry cannot be nil")
		}
		cfg.registry = reg
		return nil
	}
}

// WithHTTPClient sets the client used for probes. The probe timeout still
// applies per request. Redirects are followed only if the client's
// CheckRedirect allows it.
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *monitorConfig) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		cfg.httpClient = hc
		return nil
	}
}
