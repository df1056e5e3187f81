package poller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// makeTargets builds n targets spread round-robin over the given domains.
func makeTargets(n int, domains ...string) []Target {
	if len(domains) == 0 {
		domains = []string{"example.test"}
	}
	targets := make([]Target, n)
	for i := range targets {
		d := domains[i%len(domains)]
		targets[i] = Target{
			Name:   fmt.Sprintf("ep-%d", i),
			URL:    fmt.Sprintf("http://%s/%d", d, i),
			Domain: d,
		}
	}
	return targets
}

// stubProber answers from a fixed table keyed by URL and counts calls.
type stubProber struct {
	mu      sync.Mutex
	calls   map[string]int
	fail    map[string]bool
	delay   time.Duration
	active  int
	maxSeen int
}

func newStubProber() *stubProber {
	return &stubProber{calls: make(map[string]int), fail: make(map[string]bool)}
}

func (s *stubProber) Probe(_ context.Context, t Target) (Outcome, error) {
	s.mu.Lock()
	s.calls[t.URL]++
	s.active++
	if s.active > s.maxSeen {
		s.maxSeen = s.active
	}
	failed := s.fail[t.URL]
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	s.active--
	s.mu.Unlock()

	return Outcome{Domain: t.Domain, URL: t.URL, Success: !failed, Elapsed: s.delay}, nil
}

func (s *stubProber) callCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[url]
}

func (s *stubProber) maxConcurrent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxSeen
}

// countingRecorder is a minimal Recorder for tests in this package.
type countingRecorder struct {
	mu      sync.Mutex
	total   map[string]int
	success map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{total: make(map[string]int), success: make(map[string]int)}
}

func (c *countingRecorder) Record(domain string, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total[domain]++
	if success {
		c.success[domain]++
	}
}

// fixedRand returns a fixed-seed random source for tests that do not care about order.
func fixedRand() *rand.Rand {
	return rand.New(rand.NewPCG(0, 0))
}
