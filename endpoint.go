package pulsecheck

import (
	"errors"
	"net/http"
	"net/url"
)

// Endpoint is one entry of the endpoint registry.
//
// Endpoint is immutable after creation via [NewEndpoint]. Getters return
// copies of mutable data so an endpoint can be shared by every probe.
type Endpoint struct {
	name    string
	url     string
	domain  string
	method  string
	headers map[string]string
	body    string
}

// Name returns the endpoint's display name.
func (e Endpoint) Name() string {
	return e.name
}

// URL returns the endpoint's target URL.
func (e Endpoint) URL() string {
	return e.url
}

// Domain returns the host component of the URL, including any port.
// Availability is aggregated per domain.
func (e Endpoint) Domain() string {
	return e.domain
}

// Method returns the HTTP method used to probe the endpoint. Defaults to GET.
func (e Endpoint) Method() string {
	return e.method
}

// Headers returns a copy of the request headers. Returns nil if none are set.
func (e Endpoint) Headers() map[string]string {
	return copyMap(e.headers)
}

// Body returns the request body sent with every probe.
func (e Endpoint) Body() string {
	return e.body
}

// NewEndpoint creates an [Endpoint] with the given name, URL, and options.
//
// An empty name defaults to the URL. rawURL must be an absolute http or
// https URL with a host.
//
// Example:
//
//	ep, err := pulsecheck.NewEndpoint("orders", "https://api.example.com/orders",
//	    pulsecheck.WithMethod("POST"),
//	    pulsecheck.WithHeaders("Content-Type", "application/json"),
//	    pulsecheck.WithBody(`{"probe":true}`),
//	)
func NewEndpoint(name, rawURL string, opts ...EndpointOption) (Endpoint, error) {
	if rawURL == "" {
		return Endpoint{}, errors.New("endpoint URL cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Endpoint{}, errors.New("invalid URL: " + err.Error())
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return Endpoint{}, errors.New("URL must have an http:// or https:// scheme")
	}
	if parsedURL.Host == "" {
		return Endpoint{}, errors.New("URL must have a host")
	}

	if name == "" {
		name = rawURL
	}

	cfg := &endpointConfig{
		method:  http.MethodGet,
		headers: make(map[string]string),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Endpoint{}, err
		}
	}

	return Endpoint{
		name:    name,
		url:     rawURL,
		domain:  parsedURL.Host,
		method:  cfg.method,
		headers: cfg.headers,
		body:    cfg.body,
	}, nil
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
