package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

// ErrPoolClosed is returned by [Pool.Dispatch] after [Pool.Close].
var ErrPoolClosed = errors.New("poller: pool closed")

// PanicError reports a probe that panicked inside a worker.
//
// The full stack trace is logged under CorrelationID; the error itself only
// carries the ID so it is safe to surface to operators.
type PanicError struct {
	CorrelationID string
	Value         any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("probe panic: %v (correlation_id: %s)", e.Value, e.CorrelationID)
}

// task is one target of one round, queued for any worker.
type task struct {
	target Target
	round  *roundState
}

// roundState tracks the work of the round currently owning the pool.
type roundState struct {
	ctx      context.Context
	outcomes chan Outcome
	pending  sync.WaitGroup

	errOnce sync.Once
	err     error
}

func (r *roundState) fail(err error) {
	r.errOnce.Do(func() { r.err = err })
}

// Pool is a fixed set of long-lived workers shared by every round.
//
// Workers are started by [NewPool] and live until [Pool.Close]. Only one
// round may use the pool at a time: [Pool.Dispatch] for the next round
// blocks until the current round has fully drained.
//
// A worker whose probe panics or fails unexpectedly recovers and keeps
// serving, so the pool never shrinks; the failure is escalated through the
// round's error instead.
type Pool struct {
	prober Prober
	size   int
	tasks  chan task
	logger *slog.Logger

	roundMu sync.Mutex // held for the whole of a round
	workers sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool starts size workers that run probes with prober.
func NewPool(prober Prober, size int, logger *slog.Logger) *Pool {
	if size <= 0 {
		panic("poller: pool size must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pool{
		prober: prober,
		size:   size,
		tasks:  make(chan task),
		logger: logger,
	}

	p.workers.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Dispatch runs one round over batches and calls fn for every outcome as it
// arrives. fn is always called from the calling goroutine, never
// concurrently.
//
// Dispatch returns once every submitted target has been probed. If ctx is
// cancelled, no further targets are handed to workers; probes already
// started run to completion under their own timeout. The returned count is
// the number of targets submitted.
//
// A non-nil error means at least one probe failed unexpectedly; outcomes of
// the other probes have still been delivered.
func (p *Pool) Dispatch(ctx context.Context, batches []Batch, fn func(Outcome)) (int, error) {
	p.roundMu.Lock()
	defer p.roundMu.Unlock()

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return 0, ErrPoolClosed
	}

	rs := &roundState{
		// probes finish naturally on shutdown, bounded by the probe timeout
		ctx:      context.WithoutCancel(ctx),
		outcomes: make(chan Outcome, p.size),
	}

	var submitted int
	fed := make(chan struct{})
	go func() {
		defer close(fed)
		for _, batch := range batches {
			for _, t := range batch {
				if ctx.Err() != nil {
					return
				}
				rs.pending.Add(1)
				select {
				case p.tasks <- task{target: t, round: rs}:
					submitted++
				case <-ctx.Done():
					rs.pending.Done()
					return
				}
			}
		}
	}()

	go func() {
		<-fed
		rs.pending.Wait()
		close(rs.outcomes)
	}()

	for outcome := range rs.outcomes {
		fn(outcome)
	}

	return submitted, rs.err
}

// Close stops all workers after the in-flight round, if any, has drained.
// Close is idempotent.
func (p *Pool) Close() {
	p.roundMu.Lock()
	defer p.roundMu.Unlock()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.tasks)
	p.workers.Wait()
}

func (p *Pool) worker() {
	defer p.workers.Done()
	for t := range p.tasks {
		p.execute(t)
	}
}

func (p *Pool) execute(t task) {
	defer t.round.pending.Done()

	outcome, err := p.safeProbe(t.round.ctx, t.target)
	if err != nil {
		t.round.fail(fmt.Errorf("probe %s: %w", t.target.URL, err))
		return
	}
	t.round.outcomes <- outcome
}

// safeProbe calls the prober with panic recovery.
// A panic is logged with its stack under a correlation ID and returned as a
// [PanicError].
func (p *Pool) safeProbe(ctx context.Context, t Target) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			p.logger.Error("probe panic",
				"correlation_id", correlationID,
				"url", t.URL,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = &PanicError{CorrelationID: correlationID, Value: r}
		}
	}()
	return p.prober.Probe(ctx, t)
}
