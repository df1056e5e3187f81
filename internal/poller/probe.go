package poller

import (
	"context"
	"time"
)

// Target is the poller-internal view of one registry endpoint.
//
// Targets are shared read-only by every probe of every round.
type Target struct {
	Name    string
	URL     string
	Domain  string
	Method  string
	Headers map[string]string
	Body    string
}

// Outcome is the result of probing one [Target] once.
type Outcome struct {
	Domain string
	URL    string

	// Success is true iff a response arrived before the timeout with a
	// status code in [200, 300).
	Success bool

	// StatusCode is zero when no response was received.
	StatusCode int

	Elapsed time.Duration

	// Err carries the transport error, if any. It is informational only.
	Err error
}

// ElapsedMillis returns the probe duration in whole milliseconds.
func (o Outcome) ElapsedMillis() int64 {
	return o.Elapsed.Milliseconds()
}

// Prober performs a single probe.
//
// Ordinary network failures are data and belong in the [Outcome]. A returned
// error means the probe could not be attempted at all and is escalated by
// the [Pool].
type Prober interface {
	Probe(ctx context.Context, t Target) (Outcome, error)
}

// ProberFunc adapts a function to the [Prober] interface.
type ProberFunc func(ctx context.Context, t Target) (Outcome, error)

// Probe calls f(ctx, t).
func (f ProberFunc) Probe(ctx context.Context, t Target) (Outcome, error) {
	return f(ctx, t)
}

// Classify reports whether a status code counts as available.
func Classify(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// HTTPProber probes targets over HTTP with a fixed per-probe timeout.
type HTTPProber struct {
	client  *Client
	timeout time.Duration
}

// NewHTTPProber creates an [HTTPProber] using client for every request.
func NewHTTPProber(client *Client, timeout time.Duration) *HTTPProber {
	return &HTTPProber{client: client, timeout: timeout}
}

// Probe issues exactly one request for t.
func (p *HTTPProber) Probe(ctx context.Context, t Target) (Outcome, error) {
	resp, err := p.client.Fetch(ctx, Request{
		Method:  t.Method,
		URL:     t.URL,
		Headers: t.Headers,
		Body:    t.Body,
	}, p.timeout)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Domain:     t.Domain,
		URL:        t.URL,
		Success:    resp.Error == nil && Classify(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Elapsed:    resp.Latency,
		Err:        resp.Error,
	}, nil
}
