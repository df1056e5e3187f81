package config

import (
	"fmt"
	"sort"

	"github.com/jpalmerr/pulsecheck"
)

// BuildEndpoints converts parsed configuration into SDK Endpoint objects,
// preserving file order.
func BuildEndpoints(cfg *Config) ([]pulsecheck.Endpoint, error) {
	endpoints := make([]pulsecheck.Endpoint, 0, len(cfg.Endpoints))
	for i, ec := range cfg.Endpoints {
		ep, err := buildEndpoint(ec)
		if err != nil {
			return nil, fmt.Errorf("endpoints[%d]: %w", i, err)
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, nil
}

// Options returns the SDK options equivalent to the settings.
func (s Settings) Options() []pulsecheck.Option {
	return []pulsecheck.Option{
		pulsecheck.WithRoundInterval(s.RoundInterval.Duration()),
		pulsecheck.WithWorkerCount(s.WorkerCount),
		pulsecheck.WithBatchSize(s.BatchSize),
		pulsecheck.WithProbeTimeout(s.ProbeTimeout.Duration()),
	}
}

// buildEndpoint converts a single EndpointConfig to an SDK Endpoint.
func buildEndpoint(ec EndpointConfig) (pulsecheck.Endpoint, error) {
	var opts []pulsecheck.EndpointOption

	if ec.Method != "" {
		opts = append(opts, pulsecheck.WithMethod(ec.Method))
	}

	if len(ec.Headers) > 0 {
		opts = append(opts, pulsecheck.WithHeaders(mapToKeyValuePairs(ec.Headers)...))
	}

	if ec.Body != "" {
		opts = append(opts, pulsecheck.WithBody(ec.Body))
	}

	return pulsecheck.NewEndpoint(ec.Name, ec.URL, opts...)
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}

// CountDomains returns the number of distinct domains among endpoints.
func CountDomains(endpoints []pulsecheck.Endpoint) int {
	seen := make(map[string]struct{}, len(endpoints))
	for _, ep := range endpoints {
		seen[ep.Domain()] = struct{}{}
	}
	return len(seen)
}
