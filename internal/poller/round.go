package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ErrDeadlineExceeded is matched by every [DeadlineError].
var ErrDeadlineExceeded = errors.New("poller: round deadline exceeded")

// DeadlineError reports a round that took longer than the round interval.
type DeadlineError struct {
	Round     int
	RoundID   string
	Duration  time.Duration
	Interval  time.Duration
	Endpoints int
}

func (e *DeadlineError) Error() string {
	return fmt.Sprintf("round %d took %s, exceeding the %s interval (%d endpoints)",
		e.Round, e.Duration, e.Interval, e.Endpoints)
}

// Is reports whether target is [ErrDeadlineExceeded].
func (e *DeadlineError) Is(target error) bool {
	return target == ErrDeadlineExceeded
}

// Recorder receives every probe outcome exactly once.
// Implementations must be safe for concurrent use.
type Recorder interface {
	Record(domain string, success bool)
}

// Observer is notified about probes and rounds, typically for metrics.
type Observer interface {
	ObserveProbe(o Outcome)
	ObserveRound(r RoundResult)
}

// RoundResult summarises one round.
type RoundResult struct {
	Number    int
	ID        string
	StartedAt time.Time
	Duration  time.Duration

	// Batches is the number of batches the registry was split into.
	Batches int

	// EndpointsChecked counts probes whose outcome was recorded.
	EndpointsChecked int

	// DeadlineExceeded is true when Duration is strictly greater than the
	// round deadline.
	DeadlineExceeded bool

	// Interrupted is true when cancellation cut the round short.
	Interrupted bool
}

// RunnerConfig configures a [Runner].
type RunnerConfig struct {
	Pool      *Pool
	Shuffler  *Shuffler
	Recorder  Recorder
	Observer  Observer // optional
	BatchSize int
	Deadline  time.Duration
	Logger    *slog.Logger
}

// Runner drives individual rounds through a shared [Pool].
//
// Runner is not safe for concurrent use; rounds are sequential by nature.
type Runner struct {
	cfg    RunnerConfig
	rounds int
	now    func() time.Time
}

// NewRunner creates a round [Runner].
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Shuffler == nil {
		cfg.Shuffler = NewShuffler()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{cfg: cfg, now: time.Now}
}

// Run probes every target exactly once.
//
// Each outcome is recorded as soon as it arrives. The round's wall time runs
// from the start of batching until the last outcome has been recorded.
func (r *Runner) Run(ctx context.Context, targets []Target) (RoundResult, error) {
	r.rounds++
	result := RoundResult{
		Number:    r.rounds,
		ID:        uuid.NewString(),
		StartedAt: r.now(),
	}

	batches := r.cfg.Shuffler.Batches(targets, r.cfg.BatchSize)
	result.Batches = len(batches)

	var err error
	if len(batches) > 0 {
		_, err = r.cfg.Pool.Dispatch(ctx, batches, func(o Outcome) {
			r.cfg.Recorder.Record(o.Domain, o.Success)
			result.EndpointsChecked++
			if r.cfg.Observer != nil {
				r.cfg.Observer.ObserveProbe(o)
			}
			r.logOutcome(o)
		})
	}

	result.Duration = r.now().Sub(result.StartedAt)
	result.Interrupted = ctx.Err() != nil && result.EndpointsChecked < len(targets)
	result.DeadlineExceeded = exceeds(result.Duration, r.cfg.Deadline)

	if r.cfg.Observer != nil {
		r.cfg.Observer.ObserveRound(result)
	}

	if err != nil {
		return result, fmt.Errorf("round %d: %w", result.Number, err)
	}
	return result, nil
}

// exceeds reports whether a round of duration d overran deadline.
func exceeds(d, deadline time.Duration) bool {
	return d > deadline
}

func (r *Runner) logOutcome(o Outcome) {
	attrs := []any{
		"domain", o.Domain,
		"url", o.URL,
		"success", o.Success,
		"status_code", o.StatusCode,
		"elapsed_ms", o.ElapsedMillis(),
	}
	if o.Err != nil {
		attrs = append(attrs, "error", o.Err.Error())
	}
	r.cfg.Logger.Debug("probe completed", attrs...)
}
