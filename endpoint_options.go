package pulsecheck

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// endpointConfig holds mutable state during endpoint construction.
type endpointConfig struct {
	method  string
	headers map[string]string
	body    string
}

// EndpointOption configures an [Endpoint] during construction.
//
// Built-in options: [WithMethod], [WithHeaders], [WithBody].
type EndpointOption func(*endpointConfig) error

// supportedMethods lists the methods an endpoint may be probed with.
var supportedMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// WithMethod sets the HTTP method for probe requests.
//
// The method is case-insensitive and stored upper-cased. GET is used when
// not specified.
//
// Returns an error for methods outside GET, HEAD, POST, PUT, PATCH, DELETE
// and OPTIONS.
func WithMethod(method string) EndpointOption {
	return func(cfg *endpointConfig) error {
		m, err := NormalizeMethod(method)
		if err != nil {
			return err
		}
		cfg.method = m
		return nil
	}
}

// NormalizeMethod upper-cases method and checks it is supported.
// An empty method normalizes to GET.
func NormalizeMethod(method string) (string, error) {
	if method == "" {
		return http.MethodGet, nil
	}
	m := strings.ToUpper(strings.TrimSpace(method))
	for _, s := range supportedMethods {
		if m == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported method %q: must be one of %s", method, strings.Join(supportedMethods, ", "))
}

// WithHeaders adds HTTP headers sent with every probe of this endpoint.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	ep, err := pulsecheck.NewEndpoint("API", url,
//	    pulsecheck.WithHeaders("Authorization", "Bearer token123"),
//	)
func WithHeaders(keyValues ...string) EndpointOption {
	return func(cfg *endpointConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithBody sets the request body sent with every probe of this endpoint.
func WithBody(body string) EndpointOption {
	return func(cfg *endpointConfig) error {
		cfg.body = body
		return nil
	}
}
