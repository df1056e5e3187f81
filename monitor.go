package pulsecheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jpalmerr/pulsecheck/internal/metrics"
	"github.com/jpalmerr/pulsecheck/internal/poller"
	"github.com/jpalmerr/pulsecheck/internal/server"
	"github.com/jpalmerr/pulsecheck/internal/store"
)

const (
	defaultRoundInterval = 15 * time.Second
	defaultWorkerCount   = 200
	defaultProbeTimeout  = 500 * time.Millisecond
)

// Monitor probes its endpoints in rounds and accumulates per-domain
// availability for the lifetime of the process.
//
// The typical lifecycle is:
//
//	m, err := pulsecheck.New(
//	    pulsecheck.WithEndpoints(endpoints...),
//	    pulsecheck.WithReporter(pulsecheck.NewConsoleReporter(os.Stdout)),
//	)
//	if err != nil {
//	    slog.Error("failed to create monitor", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	if err := m.Run(ctx); err != nil { // blocks until ctx is cancelled
//	    ...
//	}
//
// A round starts every round interval. A round that takes longer than the
// interval ends Run with a [*DeadlineError].
type Monitor struct {
	endpoints     []Endpoint
	targets       []poller.Target
	roundInterval time.Duration
	workerCount   int
	batchSize     int
	probeTimeout  time.Duration
	seed          *uint64
	logger        *slog.Logger
	reporters     []Reporter
	statusAddr    string
	httpClient    *http.Client

	registry     *prometheus.Registry
	metrics      *metrics.Metrics
	availability *store.Accumulator
	publisher    *store.Publisher

	started atomic.Bool

	mu     sync.Mutex
	server *server.Server
}

// New creates a [Monitor] with the given options.
//
// At least one endpoint must be configured. Other options have defaults:
//   - Round interval: 15 seconds
//   - Worker count: 200
//   - Batch size: the worker count
//   - Probe timeout: 500 milliseconds
//
// Returns an error if no endpoints are configured, if any option is invalid
// or if the probe timeout is not shorter than the round interval.
func New(opts ...Option) (*Monitor, error) {
	cfg := &monitorConfig{
		roundInterval: defaultRoundInterval,
		workerCount:   defaultWorkerCount,
		probeTimeout:  defaultProbeTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.endpoints) == 0 {
		return nil, errors.New("at least one endpoint is required")
	}
	for i, ep := range cfg.endpoints {
		if ep.url == "" {
			return nil, fmt.Errorf("endpoint %d was not created with NewEndpoint", i)
		}
	}
	if cfg.probeTimeout >= cfg.roundInterval {
		return nil, fmt.Errorf("probe timeout %s must be shorter than the round interval %s",
			cfg.probeTimeout, cfg.roundInterval)
	}
	if cfg.batchSize == 0 {
		cfg.batchSize = cfg.workerCount
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	reg := cfg.registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return &Monitor{
		endpoints:     cfg.endpoints,
		targets:       toTargets(cfg.endpoints),
		roundInterval: cfg.roundInterval,
		workerCount:   cfg.workerCount,
		batchSize:     cfg.batchSize,
		probeTimeout:  cfg.probeTimeout,
		seed:          cfg.seed,
		logger:        logger,
		reporters:     cfg.reporters,
		statusAddr:    cfg.statusAddr,
		httpClient:    cfg.httpClient,
		registry:      reg,
		metrics:       m,
		availability:  store.NewAccumulator(),
		publisher:     store.NewPublisher(),
	}, nil
}

// Run starts the worker pool and probes rounds until ctx is cancelled.
//
// Run blocks. Cancelling ctx lets the in-flight round finish, reports it
// and returns nil. Run returns a [*DeadlineError] when a round overruns the
// interval, and any other error when the status server cannot start or a
// probe fails unexpectedly. A Monitor runs at most once.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	m.logger.Info("pulsecheck starting",
		"endpoints", len(m.endpoints),
		"round_interval", m.roundInterval.String(),
		"workers", m.workerCount,
		"batch_size", m.batchSize,
		"probe_timeout", m.probeTimeout.String(),
	)

	if ctx.Err() != nil {
		return nil
	}

	client := poller.NewClientWith(m.httpClient)
	defer client.Close()

	pool := poller.NewPool(poller.NewHTTPProber(client, m.probeTimeout), m.workerCount, m.logger)
	defer pool.Close()
	m.metrics.PoolWorkers.Set(float64(pool.Size()))

	if m.statusAddr != "" {
		srvCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		srv := server.NewServer(m.publisher, m.registry, m.statusAddr, m.logger)
		if err := srv.Start(srvCtx); err != nil {
			return fmt.Errorf("failed to start status server: %w", err)
		}
		m.mu.Lock()
		m.server = srv
		m.mu.Unlock()
	}

	runner := poller.NewRunner(poller.RunnerConfig{
		Pool:      pool,
		Shuffler:  m.shuffler(),
		Recorder:  m.availability,
		Observer:  m.metrics,
		BatchSize: m.batchSize,
		Deadline:  m.roundInterval,
		Logger:    m.logger,
	})
	scheduler := poller.NewScheduler(m.targets, runner, m.roundInterval, m.publish, m.logger)

	err := scheduler.Run(ctx)

	var derr *poller.DeadlineError
	if errors.As(err, &derr) {
		return &DeadlineError{
			Round:     derr.Round,
			RoundID:   derr.RoundID,
			Duration:  derr.Duration,
			Interval:  derr.Interval,
			Endpoints: derr.Endpoints,
		}
	}
	if err != nil {
		return err
	}

	m.logger.Info("pulsecheck stopped")
	return nil
}

// Availability returns the lifetime availability of every probed domain,
// sorted by domain.
func (m *Monitor) Availability() []DomainAvailability {
	stats := m.availability.Snapshot()
	out := make([]DomainAvailability, len(stats))
	for i, s := range stats {
		out[i] = fromStoreStats(s)
	}
	return out
}

// Latest returns the report of the most recent round. ok is false before
// the first round completes.
func (m *Monitor) Latest() (r Report, ok bool) {
	snap, ok := m.publisher.Latest()
	if !ok {
		return Report{}, false
	}
	return fromSnapshot(snap), true
}

// Endpoints returns a copy of the configured endpoints.
func (m *Monitor) Endpoints() []Endpoint {
	cp := make([]Endpoint, len(m.endpoints))
	copy(cp, m.endpoints)
	return cp
}

// RoundInterval returns the configured interval between round starts.
func (m *Monitor) RoundInterval() time.Duration {
	return m.roundInterval
}

// WorkerCount returns the number of probe workers.
func (m *Monitor) WorkerCount() int {
	return m.workerCount
}

// BatchSize returns the maximum number of endpoints per batch.
func (m *Monitor) BatchSize() int {
	return m.batchSize
}

// ProbeTimeout returns the per-probe timeout.
func (m *Monitor) ProbeTimeout() time.Duration {
	return m.probeTimeout
}

// StatusAddr returns the bound address of the status server, or the
// configured address if the server has not started. Empty when the status
// server is disabled.
func (m *Monitor) StatusAddr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.server != nil {
		return m.server.Addr()
	}
	return m.statusAddr
}

func (m *Monitor) shuffler() *poller.Shuffler {
	if m.seed != nil {
		return poller.NewSeededShuffler(*m.seed)
	}
	return poller.NewShuffler()
}

// publish turns the accumulator state after a round into a snapshot and
// hands it to the status server, metrics and reporters.
func (m *Monitor) publish(result poller.RoundResult) {
	stats := m.availability.Snapshot()
	m.metrics.SetAvailability(stats)

	snap := store.Snapshot{
		Round:            result.Number,
		RoundID:          result.ID,
		StartedAt:        result.StartedAt,
		DurationMs:       result.Duration.Milliseconds(),
		EndpointsChecked: result.EndpointsChecked,
		DeadlineExceeded: result.DeadlineExceeded,
		Interrupted:      result.Interrupted,
		Domains:          stats,
	}
	m.publisher.Publish(snap)

	if len(m.reporters) == 0 {
		return
	}
	r := fromSnapshot(snap)
	for _, rep := range m.reporters {
		invokeReporterSafe(rep, r, m.logger)
	}
}

// toTargets converts endpoints to the poller's representation.
func toTargets(endpoints []Endpoint) []poller.Target {
	targets := make([]poller.Target, len(endpoints))
	for i, ep := range endpoints {
		targets[i] = poller.Target{
			Name:    ep.name,
			URL:     ep.url,
			Domain:  ep.domain,
			Method:  ep.method,
			Headers: copyMap(ep.headers),
			Body:    ep.body,
		}
	}
	return targets
}

// invokeReporterSafe calls a reporter with panic recovery.
// Panics and errors are logged but do not propagate.
func invokeReporterSafe(rep Reporter, r Report, logger *slog.Logger) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("reporter panicked", "panic", p, "round", r.Round)
		}
	}()
	if err := rep.Report(r); err != nil {
		logger.Warn("reporter failed", "round", r.Round, "error", err)
	}
}
