// Package metrics exposes Prometheus instrumentation for probes and rounds.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jpalmerr/pulsecheck/internal/poller"
	"github.com/jpalmerr/pulsecheck/internal/store"
)

const namespace = "pulsecheck"

// Metrics implements [poller.Observer] on top of Prometheus collectors.
type Metrics struct {
	ProbesTotal   *prometheus.CounterVec
	ProbeDuration *prometheus.HistogramVec
	RoundDuration prometheus.Histogram
	RoundsTotal   *prometheus.CounterVec
	Availability  *prometheus.GaugeVec
	PoolWorkers   prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ProbesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "probes_total",
				Help:      "Total number of probes by domain and result.",
			},
			[]string{"domain", "result"}, // result: up, down
		),
		ProbeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "probe_duration_seconds",
				Help:      "Duration of individual probes.",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"domain"},
		),
		RoundDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "round_duration_seconds",
				Help:      "Wall time of probing rounds.",
				Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 15, 30, 60},
			},
		),
		RoundsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rounds_total",
				Help:      "Total number of rounds by result.",
			},
			[]string{"result"}, // result: ok, deadline_exceeded, interrupted
		),
		Availability: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "domain_availability_percent",
				Help:      "Lifetime availability percentage per domain.",
			},
			[]string{"domain"},
		),
		PoolWorkers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pool_workers",
				Help:      "Number of probe workers in the pool.",
			},
		),
	}

	for _, c := range []prometheus.Collector{
		m.ProbesTotal, m.ProbeDuration, m.RoundDuration, m.RoundsTotal, m.Availability, m.PoolWorkers,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveProbe counts a probe outcome.
func (m *Metrics) ObserveProbe(o poller.Outcome) {
	result := "down"
	if o.Success {
		result = "up"
	}
	m.ProbesTotal.WithLabelValues(o.Domain, result).Inc()
	m.ProbeDuration.WithLabelValues(o.Domain).Observe(o.Elapsed.Seconds())
}

// ObserveRound records a finished round.
func (m *Metrics) ObserveRound(r poller.RoundResult) {
	m.RoundDuration.Observe(r.Duration.Seconds())
	m.RoundsTotal.WithLabelValues(RoundLabel(r)).Inc()
}

// SetAvailability mirrors an availability snapshot into the gauge.
func (m *Metrics) SetAvailability(stats []store.DomainStats) {
	for _, s := range stats {
		m.Availability.WithLabelValues(s.Domain).Set(s.Percent)
	}
}

// RoundLabel returns the rounds_total result label for r.
func RoundLabel(r poller.RoundResult) string {
	switch {
	case r.Interrupted:
		return "interrupted"
	case r.DeadlineExceeded:
		return "deadline_exceeded"
	default:
		return "ok"
	}
}
