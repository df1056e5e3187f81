package pulsecheck

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustEndpoint(t *testing.T, rawURL string, opts ...EndpointOption) Endpoint {
	t.Helper()
	ep, err := NewEndpoint("", rawURL, opts...)
	if err != nil {
		t.Fatalf("NewEndpoint(%q) error = %v", rawURL, err)
	}
	return ep
}

func TestNew_Defaults(t *testing.T) {
	m, err := New(WithEndpoint(mustEndpoint(t, "https://a.test/health")))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if m.RoundInterval() != 15*time.Second {
		t.Errorf("RoundInterval() = %v, want 15s", m.RoundInterval())
	}
	if m.WorkerCount() != 200 {
		t.Errorf("WorkerCount() = %d, want 200", m.WorkerCount())
	}
	if m.BatchSize() != 200 {
		t.Errorf("BatchSize() = %d, want worker count", m.BatchSize())
	}
	if m.ProbeTimeout() != 500*time.Millisecond {
		t.Errorf("ProbeTimeout() = %v, want 500ms", m.ProbeTimeout())
	}
	if m.StatusAddr() != "" {
		t.Errorf("StatusAddr() = %q, want empty", m.StatusAddr())
	}
}

func TestNew_BatchSizeFollowsWorkerCount(t *testing.T) {
	m, err := New(
		WithEndpoint(mustEndpoint(t, "https://a.test/health")),
		WithWorkerCount(16),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if m.BatchSize() != 16 {
		t.Errorf("BatchSize() = %d, want 16", m.BatchSize())
	}
}

func TestNew_Options(t *testing.T) {
	m, err := New(
		WithEndpoints(mustEndpoint(t, "https://a.test/1"), mustEndpoint(t, "https://b.test/2")),
		WithRoundInterval(2*time.Second),
		WithWorkerCount(8),
		WithBatchSize(3),
		WithProbeTimeout(time.Second),
		WithSeed(42),
		WithLogger(testLogger()),
		WithStatusAddr("127.0.0.1:0"),
		WithRegistry(prometheus.NewRegistry()),
		WithHTTPClient(&http.Client{}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if len(m.Endpoints()) != 2 {
		t.Errorf("Endpoints() len = %d, want 2", len(m.Endpoints()))
	}
	if m.RoundInterval() != 2*time.Second || m.WorkerCount() != 8 ||
		m.BatchSize() != 3 || m.ProbeTimeout() != time.Second {
		t.Errorf("settings not applied: interval=%v workers=%d batch=%d timeout=%v",
			m.RoundInterval(), m.WorkerCount(), m.BatchSize(), m.ProbeTimeout())
	}
	if m.StatusAddr() != "127.0.0.1:0" {
		t.Errorf("StatusAddr() = %q", m.StatusAddr())
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	ep := mustEndpoint(t, "https://a.test/health")

	tests := []struct {
		name string
		opts []Option
	}{
		{"no endpoints", nil},
		{"zero endpoint value", []Option{WithEndpoint(Endpoint{})}},
		{"zero interval", []Option{WithEndpoint(ep), WithRoundInterval(0)}},
		{"negative interval", []Option{WithEndpoint(ep), WithRoundInterval(-time.Second)}},
		{"zero workers", []Option{WithEndpoint(ep), WithWorkerCount(0)}},
		{"negative workers", []Option{WithEndpoint(ep), WithWorkerCount(-1)}},
		{"zero batch size", []Option{WithEndpoint(ep), WithBatchSize(0)}},
		{"zero timeout", []Option{WithEndpoint(ep), WithProbeTimeout(0)}},
		{"timeout equals interval", []Option{WithEndpoint(ep), WithRoundInterval(time.Second), WithProbeTimeout(time.Second)}},
		{"timeout above interval", []Option{WithEndpoint(ep), WithRoundInterval(time.Second), WithProbeTimeout(2 * time.Second)}},
		{"nil logger", []Option{WithEndpoint(ep), WithLogger(nil)}},
		{"empty status addr", []Option{WithEndpoint(ep), WithStatusAddr("")}},
		{"nil registry", []Option{WithEndpoint(ep), WithRegistry(nil)}},
		{"nil http client", []Option{WithEndpoint(ep), WithHTTPClient(nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts...); err == nil {
				t.Error("New() expected error, got nil")
			}
		})
	}
}

func TestWithReporter_NilIsIgnored(t *testing.T) {
	m, err := New(WithEndpoint(mustEndpoint(t, "https://a.test/health")), WithReporter(nil))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(m.reporters) != 0 {
		t.Errorf("reporters = %d, want 0", len(m.reporters))
	}
}

func TestWithRegistry_SharedRegistryConflicts(t *testing.T) {
	reg := prometheus.NewRegistry()
	ep := mustEndpoint(t, "https://a.test/health")

	if _, err := New(WithEndpoint(ep), WithRegistry(reg)); err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	if _, err := New(WithEndpoint(ep), WithRegistry(reg)); err == nil {
		t.Error("second New() on the same registry expected error, got nil")
	}
}

func TestEndpoints_ReturnsCopy(t *testing.T) {
	m, err := New(WithEndpoint(mustEndpoint(t, "https://a.test/health")))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	eps := m.Endpoints()
	eps[0] = Endpoint{}

	if m.Endpoints()[0].URL() != "https://a.test/health" {
		t.Error("Endpoints() returned a reference to internal state")
	}
}
