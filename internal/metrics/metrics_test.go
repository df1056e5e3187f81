package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jpalmerr/pulsecheck/internal/poller"
	"github.com/jpalmerr/pulsecheck/internal/store"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// registering twice on the same registry must fail
	if _, err := New(reg); err == nil {
		t.Error("second New() on same registry error = nil, want duplicate registration error")
	}
}

func TestMetrics_ObserveProbe(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m.ObserveProbe(poller.Outcome{Domain: "a.test", Success: true, Elapsed: 20 * time.Millisecond})
	m.ObserveProbe(poller.Outcome{Domain: "a.test", Success: true})
	m.ObserveProbe(poller.Outcome{Domain: "a.test", Success: false})

	if got := testutil.ToFloat64(m.ProbesTotal.WithLabelValues("a.test", "up")); got != 2 {
		t.Errorf("probes_total{up} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ProbesTotal.WithLabelValues("a.test", "down")); got != 1 {
		t.Errorf("probes_total{down} = %v, want 1", got)
	}
}

func TestMetrics_ObserveRound(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m.ObserveRound(poller.RoundResult{Duration: time.Second})
	m.ObserveRound(poller.RoundResult{Duration: 20 * time.Second, DeadlineExceeded: true})
	m.ObserveRound(poller.RoundResult{Interrupted: true, DeadlineExceeded: true})

	for label, want := range map[string]float64{"ok": 1, "deadline_exceeded": 1, "interrupted": 1} {
		if got := testutil.ToFloat64(m.RoundsTotal.WithLabelValues(label)); got != want {
			t.Errorf("rounds_total{%s} = %v, want %v", label, got, want)
		}
	}
}

func TestMetrics_SetAvailability(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m.SetAvailability([]store.DomainStats{{Domain: "a.test", Percent: 66.67}})

	if got := testutil.ToFloat64(m.Availability.WithLabelValues("a.test")); got != 66.67 {
		t.Errorf("domain_availability_percent = %v, want 66.67", got)
	}
}
