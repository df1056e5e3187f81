package store

import (
	"sync"
	"time"
)

// subscriberBuffer is the channel capacity of each subscription.
const subscriberBuffer = 16

// Snapshot is the availability picture published after a round.
type Snapshot struct {
	Round            int           `json:"round"`
	RoundID          string        `json:"round_id"`
	StartedAt        time.Time     `json:"started_at"`
	DurationMs       int64         `json:"duration_ms"`
	EndpointsChecked int           `json:"endpoints_checked"`
	DeadlineExceeded bool          `json:"deadline_exceeded"`
	Interrupted      bool          `json:"interrupted"`
	Domains          []DomainStats `json:"domains"`
}

// Publisher keeps the latest [Snapshot] and fans it out to subscribers.
//
// Updates are sent non-blocking; if a subscriber's buffer is full, the
// snapshot is dropped for that subscriber.
type Publisher struct {
	mu     sync.RWMutex
	latest *Snapshot

	subMu       sync.RWMutex
	subscribers map[chan Snapshot]struct{}
}

// NewPublisher creates a [Publisher] with no snapshot yet.
func NewPublisher() *Publisher {
	return &Publisher{subscribers: make(map[chan Snapshot]struct{})}
}

// Publish stores snap as the latest snapshot and notifies subscribers.
func (p *Publisher) Publish(snap Snapshot) {
	p.mu.Lock()
	p.latest = &snap
	p.mu.Unlock()

	p.subMu.RLock()
	defer p.subMu.RUnlock()
	for ch := range p.subscribers {
		select {
		case ch <- snap:
		default:
			// subscriber is slow, drop the snapshot
		}
	}
}

// Latest returns the most recent snapshot. ok is false before the first
// [Publisher.Publish].
func (p *Publisher) Latest() (snap Snapshot, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.latest == nil {
		return Snapshot{}, false
	}
	return *p.latest, true
}

// Subscribe returns a channel receiving every future snapshot.
// Caller must call [Publisher.Unsubscribe] when done.
func (p *Publisher) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)
	p.subMu.Lock()
	p.subscribers[ch] = struct{}{}
	p.subMu.Unlock()
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (p *Publisher) Unsubscribe(ch <-chan Snapshot) {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	for subCh := range p.subscribers {
		if subCh == ch {
			delete(p.subscribers, subCh)
			close(subCh)
			return
		}
	}
}
