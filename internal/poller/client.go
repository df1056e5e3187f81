package poller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxDrainBytes bounds how much of a response body is read so the
// connection can go back to the idle pool.
const maxDrainBytes = 64 << 10

// connection pooling limits to prevent resource exhaustion when probing many endpoints
const (
	defaultMaxIdleConns        = 256
	defaultMaxIdleConnsPerHost = 16
	defaultMaxConnsPerHost     = 32
	defaultIdleConnTimeout     = 60 * time.Second
)

// Request describes a single HTTP request issued by [Client].
type Request struct {
	// Method is the HTTP method. Empty defaults to GET.
	Method string

	// URL is the target URL.
	URL string

	// Headers are sent with the request as-is. A Host entry overrides
	// the request host.
	Headers map[string]string

	// Body is sent as the request body when non-empty.
	Body string
}

// Response holds the result of an HTTP request made by [Client].
type Response struct {
	// StatusCode is the HTTP status code (e.g., 200, 404, 500).
	// Zero if the request failed before receiving a response.
	StatusCode int

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error contains any transport error, including timeouts.
	// nil indicates a response was received (though its status may be an error).
	Error error
}

// Client is an HTTP client wrapper tuned for repeated probing.
//
// Client uses per-request timeouts via context rather than a global timeout.
// It never retries.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new probing [Client] with pooled connections.
//
// Timeouts are applied per request in [Client.Fetch], not as a global
// client timeout. Redirects are not followed: a 3xx answer is the probe
// result, not a hop towards one.
func NewClient() *Client {
	return NewClientWith(&http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        defaultMaxIdleConns,
			MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
			MaxConnsPerHost:     defaultMaxConnsPerHost,
			IdleConnTimeout:     defaultIdleConnTimeout,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	})
}

// NewClientWith wraps an existing *http.Client. A nil client falls back to
// [NewClient].
func NewClientWith(hc *http.Client) *Client {
	if hc == nil {
		return NewClient()
	}
	return &Client{httpClient: hc}
}

// Fetch performs an HTTP request bounded by timeout.
//
// Transport failures and timeouts are reported in [Response.Error]. The
// returned error is non-nil only when the request itself cannot be built,
// which means the caller handed over a malformed request.
func (c *Client) Fetch(ctx context.Context, r Request, timeout time.Duration) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.Body != "" {
		body = strings.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range r.Headers {
		// net/http sends req.Host and ignores a Host entry in the header map.
		if strings.EqualFold(key, "Host") {
			req.Host = value
			continue
		}
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
		}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	// a body that stalls past the timeout is still a timeout
	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes)); err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}, nil
	}

	return Response{
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}, nil
}

// Close closes all idle connections in the client's connection pool.
// Safe to call multiple times.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	c.httpClient.CloseIdleConnections()
}
