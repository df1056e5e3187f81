package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrSchedulerStarted is returned when [Scheduler.Run] is called twice.
var ErrSchedulerStarted = errors.New("poller: scheduler already started")

// State is the lifecycle state of a [Scheduler].
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Scheduler repeats rounds at a fixed interval.
//
// Rounds start every interval, measured from the start of the previous
// round. A round that overruns the interval terminates the scheduler with a
// [*DeadlineError]. Cancelling the context moves the scheduler to
// [StateStopping]: the in-flight round drains and no new round starts.
// [StateTerminated] is final.
type Scheduler struct {
	targets  []Target
	runner   *Runner
	interval time.Duration
	onRound  func(RoundResult)
	logger   *slog.Logger

	mu    sync.Mutex
	state State
}

// NewScheduler creates a [Scheduler] in [StateIdle].
//
// onRound, if non-nil, is called after every round, including an
// interrupted or overrunning one, before the scheduler decides what to do
// next.
func NewScheduler(targets []Target, runner *Runner, interval time.Duration, onRound func(RoundResult), logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		targets:  targets,
		runner:   runner,
		interval: interval,
		onRound:  onRound,
		logger:   logger,
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// transition moves from one of the given states to next.
func (s *Scheduler) transition(next State, from ...State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range from {
		if s.state == f {
			s.state = next
			return true
		}
	}
	return false
}

// Run blocks until ctx is cancelled, a round overruns, or a round fails.
//
// Returns nil after a clean shutdown, a [*DeadlineError] on overrun and the
// round's error on an unexpected probe failure.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.transition(StateRunning, StateIdle) {
		return ErrSchedulerStarted
	}
	defer s.transition(StateTerminated, StateRunning, StateStopping)

	stop := context.AfterFunc(ctx, func() {
		if s.transition(StateStopping, StateRunning) {
			s.logger.Info("scheduler stopping", "reason", context.Cause(ctx))
		}
	})
	defer stop()

	if ctx.Err() != nil {
		return nil
	}

	for {
		result, err := s.runner.Run(ctx, s.targets)
		if err != nil {
			s.logger.Error("round failed", "round", result.Number, "error", err)
			return err
		}

		s.logger.Info("round completed",
			"round", result.Number,
			"round_id", result.ID,
			"duration", result.Duration.String(),
			"endpoints", result.EndpointsChecked,
			"batches", result.Batches,
			"interrupted", result.Interrupted,
		)
		if s.onRound != nil {
			s.onRound(result)
		}

		if result.Interrupted || ctx.Err() != nil {
			return nil
		}

		if result.DeadlineExceeded {
			derr := &DeadlineError{
				Round:     result.Number,
				RoundID:   result.ID,
				Duration:  result.Duration,
				Interval:  s.interval,
				Endpoints: len(s.targets),
			}
			s.logger.Error("round deadline exceeded",
				"round", derr.Round,
				"duration", derr.Duration.String(),
				"interval", derr.Interval.String(),
				"endpoints", derr.Endpoints,
			)
			return derr
		}

		timer := time.NewTimer(s.interval - result.Duration)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}
