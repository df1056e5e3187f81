package main

import (
	"context"
	"strings"
	"testing"
)

func TestRunValidate_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
round_interval: 10s
worker_count: 20
endpoints:
  - name: Index
    url: https://example.com/
  - name: Health
    url: https://example.com/health
  - name: Other
    url: https://other.example.com/
`)

	code, output, stderr := run(context.Background(), "validate", "-c", path)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}

	expectedPhrases := []string{
		"Config is valid!",
		"Round interval: 10s",
		"Workers:        20",
		"Batch size:     20",
		"Probe timeout:  500ms",
		"Endpoints:      3 across 2 domains",
	}
	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\ngot: %s", phrase, output)
		}
	}
}

func TestRunValidate_ListLayout(t *testing.T) {
	path := writeConfig(t, "- url: https://example.com/\n")

	code, output, _ := run(context.Background(), "validate", "-c", path)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(output, "Endpoints:      1 across 1 domains") {
		t.Errorf("output = %s", output)
	}
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing url", "- name: Test\n", "url is required"},
		{"bad scheme", "- url: ftp://example.com\n", "http or https"},
		{"bad method", "- url: https://example.com\n  method: TRACE\n", "unsupported method"},
		{"bad workers", "worker_count: 20000\nendpoints:\n  - url: https://example.com\n", "worker_count"},
		{"invalid yaml", "- url: [unclosed\n", "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			code, _, stderr := run(context.Background(), "validate", "-c", path)
			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantErr)
			}
		})
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	code, _, stderr := run(context.Background(), "validate", "-c", "/nonexistent/endpoints.yaml")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "failed to read config file") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRunValidate_MissingFlag(t *testing.T) {
	code, _, stderr := run(context.Background(), "validate")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "required flag") {
		t.Errorf("stderr = %q", stderr)
	}
}
