// Package config loads pulsecheck endpoint files.
//
// This package lets pulsecheck run as a standalone binary driven by a YAML
// file, as an alternative to the programmatic SDK approach. Two layouts are
// accepted. A bare list of endpoints:
//
//	- name: orders
//	  url: https://api.example.com/orders
//	  method: POST
//	  headers:
//	    content-type: application/json
//	  body: '{"foo":"bar"}'
//	- name: index
//	  url: https://example.com/
//
// or a mapping carrying settings next to the endpoints:
//
//	round_interval: 15s
//	worker_count: 200
//	batch_size: 200
//	probe_timeout: 500ms
//	endpoints:
//	  - url: https://example.com/
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/pulsecheck"
)

// Defaults applied by [Parse] to unset settings.
const (
	DefaultRoundInterval = 15 * time.Second
	DefaultWorkerCount   = 200
	DefaultProbeTimeout  = 500 * time.Millisecond
)

// Setting bounds enforced by [Settings.Validate].
const (
	MinRoundInterval = 100 * time.Millisecond
	MaxRoundInterval = 24 * time.Hour
	MinProbeTimeout  = time.Millisecond
	MaxWorkerCount   = 10000
	MaxBatchSize     = 100000
)

// Config is the parsed content of an endpoint file.
type Config struct {
	Settings `yaml:",inline"`

	// Endpoints is the endpoint registry, in file order.
	Endpoints []EndpointConfig `yaml:"endpoints"`

	batchSizeSet bool
}

// BatchSizeSet reports whether the file set batch_size. When it did not,
// the batch size follows the worker count.
func (c *Config) BatchSizeSet() bool {
	return c.batchSizeSet
}

// Settings tune the scheduler. Zero values are replaced by defaults.
type Settings struct {
	// RoundInterval is the time between round starts and the round
	// deadline. Defaults to 15s.
	RoundInterval Duration `yaml:"round_interval" json:"round_interval"`

	// WorkerCount is the size of the probe worker pool. Defaults to 200.
	WorkerCount int `yaml:"worker_count" json:"worker_count"`

	// BatchSize is the maximum number of endpoints per batch.
	// Defaults to WorkerCount.
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// ProbeTimeout bounds a single probe. Defaults to 500ms.
	ProbeTimeout Duration `yaml:"probe_timeout" json:"probe_timeout"`
}

// EndpointConfig defines a single endpoint.
type EndpointConfig struct {
	// Name is the display name. Defaults to the URL.
	Name string `yaml:"name"`

	// URL is the endpoint URL. Its host is the aggregation domain.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Method is the HTTP method. Defaults to GET.
	Method string `yaml:"method"`

	// Headers are sent with each request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`

	// Body is sent as the request body.
	// Supports environment variable substitution.
	Body string `yaml:"body"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
// An unset variable without a default is an error.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		varName := submatches[1]
		hasDefault := submatches[2] != ""

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return submatches[3]
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML endpoint file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML endpoint data in either layout.
//
// Defaults are applied to unset settings, environment variables are
// expanded in URLs, header values and bodies, and everything is validated.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("config is empty")
	}

	var cfg Config
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&cfg.Endpoints); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case yaml.MappingNode:
		if err := root.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, errors.New("config must be a list of endpoints or a mapping with an endpoints key")
	}

	cfg.batchSizeSet = cfg.Settings.BatchSize != 0
	cfg.Settings.ApplyDefaults()

	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills zero settings with their defaults.
func (s *Settings) ApplyDefaults() {
	if s.RoundInterval == 0 {
		s.RoundInterval = Duration(DefaultRoundInterval)
	}
	if s.WorkerCount == 0 {
		s.WorkerCount = DefaultWorkerCount
	}
	if s.BatchSize == 0 {
		s.BatchSize = s.WorkerCount
	}
	if s.ProbeTimeout == 0 {
		s.ProbeTimeout = Duration(DefaultProbeTimeout)
	}
}

// Validate checks the settings against their bounds. The probe timeout
// must be shorter than the round interval.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.RoundInterval,
			validation.Required,
			validation.Min(Duration(MinRoundInterval)),
			validation.Max(Duration(MaxRoundInterval)),
		),
		validation.Field(&s.WorkerCount,
			validation.Required,
			validation.Min(1),
			validation.Max(MaxWorkerCount),
		),
		validation.Field(&s.BatchSize,
			validation.Required,
			validation.Min(1),
			validation.Max(MaxBatchSize),
		),
		validation.Field(&s.ProbeTimeout,
			validation.Required,
			validation.Min(Duration(MinProbeTimeout)),
			validation.By(func(value interface{}) error {
				if value.(Duration) >= s.RoundInterval {
					return validation.NewError("validation_timeout_too_long",
						"must be shorter than round_interval")
				}
				return nil
			}),
		),
	)
}

// expandAndValidate expands environment variables and validates endpoints.
func (c *Config) expandAndValidate() error {
	if len(c.Endpoints) == 0 {
		return errors.New("at least one endpoint must be defined")
	}

	for i := range c.Endpoints {
		ep := &c.Endpoints[i]
		ref := fmt.Sprintf("endpoints[%d]", i)
		if ep.Name != "" {
			ref = fmt.Sprintf("endpoints[%d] (%s)", i, ep.Name)
		}

		if ep.URL == "" {
			return fmt.Errorf("%s: url is required", ref)
		}
		expanded, err := expandEnvVars(ep.URL)
		if err != nil {
			return fmt.Errorf("%s: url: %w", ref, err)
		}
		ep.URL = expanded

		parsedURL, err := url.Parse(ep.URL)
		if err != nil {
			return fmt.Errorf("%s: invalid url: %w", ref, err)
		}
		if parsedURL.Scheme == "" {
			return fmt.Errorf("%s: url must have a scheme (http:// or https://)", ref)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("%s: url scheme must be http or https, got %q", ref, parsedURL.Scheme)
		}
		if parsedURL.Host == "" {
			return fmt.Errorf("%s: url must have a host", ref)
		}

		for k, v := range ep.Headers {
			expanded, err := expandEnvVars(v)
			if err != nil {
				return fmt.Errorf("%s: headers[%s]: %w", ref, k, err)
			}
			ep.Headers[k] = expanded
		}

		body, err := expandEnvVars(ep.Body)
		if err != nil {
			return fmt.Errorf("%s: body: %w", ref, err)
		}
		ep.Body = body

		method, err := pulsecheck.NormalizeMethod(ep.Method)
		if err != nil {
			return fmt.Errorf("%s: %w", ref, err)
		}
		ep.Method = method

		if ep.Name == "" {
			ep.Name = ep.URL
		}
	}

	return nil
}
