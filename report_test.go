package pulsecheck

import (
	"bytes"
	"testing"
)

func TestReport_Percentages(t *testing.T) {
	r := Report{Domains: []DomainAvailability{
		{Domain: "a.test", SuccessCount: 2, TotalCount: 3, Percent: 66.67},
		{Domain: "b.test", SuccessCount: 1, TotalCount: 1, Percent: 100},
	}}

	got := r.Percentages()
	if len(got) != 2 || got["a.test"] != 66.67 || got["b.test"] != 100 {
		t.Errorf("Percentages() = %v", got)
	}
}

func TestNewConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	rep := NewConsoleReporter(&buf)

	err := rep.Report(Report{Domains: []DomainAvailability{
		{Domain: "a.test", Percent: 66.67},
		{Domain: "b.test", Percent: 100},
	}})
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	want := "----------------------------------------\n" +
		"a.test has 66.67% availability percentage\n" +
		"b.test has 100.00% availability percentage\n" +
		"----------------------------------------\n"
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestDeadlineError(t *testing.T) {
	err := &DeadlineError{Round: 4, Duration: 1500000000, Interval: 1000000000, Endpoints: 12}

	if err.Error() != "round 4 took 1.5s, exceeding the 1s round interval with 12 endpoints" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !err.Is(ErrDeadlineExceeded) {
		t.Error("Is(ErrDeadlineExceeded) = false")
	}
}
