package pulsecheck

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDeadlineExceeded is matched by every [*DeadlineError].
	ErrDeadlineExceeded = errors.New("pulsecheck: round deadline exceeded")

	// ErrAlreadyStarted is returned by a second call to [Monitor.Run].
	ErrAlreadyStarted = errors.New("pulsecheck: monitor already started")
)

// DeadlineError is returned by [Monitor.Run] when a round takes longer
// than the round interval. The configured worker count, batch size or
// interval cannot sustain the endpoint set.
type DeadlineError struct {
	Round     int
	RoundID   string
	Duration  time.Duration
	Interval  time.Duration
	Endpoints int
}

func (e *DeadlineError) Error() string {
	return fmt.Sprintf("round %d took %s, exceeding the %s round interval with %d endpoints",
		e.Round, e.Duration, e.Interval, e.Endpoints)
}

// Is reports whether target is [ErrDeadlineExceeded].
func (e *DeadlineError) Is(target error) bool {
	return target == ErrDeadlineExceeded
}
