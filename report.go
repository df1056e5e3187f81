package pulsecheck

import (
	"io"
	"time"

	"github.com/jpalmerr/pulsecheck/internal/report"
	"github.com/jpalmerr/pulsecheck/internal/store"
)

// DomainAvailability is the lifetime availability of one domain.
type DomainAvailability struct {
	Domain       string
	SuccessCount uint64
	TotalCount   uint64

	// Percent is SuccessCount/TotalCount*100, rounded to two decimals.
	Percent float64
}

// Report is the availability snapshot handed to reporters after a round.
type Report struct {
	Round            int
	RoundID          string
	StartedAt        time.Time
	Duration         time.Duration
	EndpointsChecked int
	DeadlineExceeded bool
	Interrupted      bool

	// Domains is sorted by domain. Domains never probed are absent.
	Domains []DomainAvailability
}

// Percentages returns the report as a domain to percentage map.
func (r Report) Percentages() map[string]float64 {
	out := make(map[string]float64, len(r.Domains))
	for _, d := range r.Domains {
		out[d.Domain] = d.Percent
	}
	return out
}

// Reporter receives a [Report] after every round.
type Reporter interface {
	Report(r Report) error
}

// ReporterFunc adapts a function to the [Reporter] interface.
type ReporterFunc func(r Report) error

// Report calls f(r).
func (f ReporterFunc) Report(r Report) error {
	return f(r)
}

// NewConsoleReporter returns a [Reporter] printing one line per domain:
//
//	a.test has 66.67% availability percentage
//
// framed by dashed rules. Output is coloured when w is a terminal.
func NewConsoleReporter(w io.Writer) Reporter {
	console := report.NewConsole(w)
	return ReporterFunc(func(r Report) error {
		return console.Print(toStoreStats(r.Domains))
	})
}

func fromSnapshot(s store.Snapshot) Report {
	domains := make([]DomainAvailability, len(s.Domains))
	for i, d := range s.Domains {
		domains[i] = fromStoreStats(d)
	}
	return Report{
		Round:            s.Round,
		RoundID:          s.RoundID,
		StartedAt:        s.StartedAt,
		Duration:         time.Duration(s.DurationMs) * time.Millisecond,
		EndpointsChecked: s.EndpointsChecked,
		DeadlineExceeded: s.DeadlineExceeded,
		Interrupted:      s.Interrupted,
		Domains:          domains,
	}
}

func fromStoreStats(d store.DomainStats) DomainAvailability {
	return DomainAvailability{
		Domain:       d.Domain,
		SuccessCount: d.SuccessCount,
		TotalCount:   d.TotalCount,
		Percent:      d.Percent,
	}
}

func toStoreStats(domains []DomainAvailability) []store.DomainStats {
	out := make([]store.DomainStats, len(domains))
	for i, d := range domains {
		out[i] = store.DomainStats{
			Domain:       d.Domain,
			SuccessCount: d.SuccessCount,
			TotalCount:   d.TotalCount,
			Percent:      d.Percent,
		}
	}
	return out
}
