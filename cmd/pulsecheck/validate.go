package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/pulsecheck/config"
)

// newValidateCmd validates an endpoint file without probing.
func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an endpoint file",
		Long: `Validate a pulsecheck endpoint file without probing anything.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - File is valid
  1 - File is invalid (error details printed to stderr)

Example:
  pulsecheck validate -c endpoints.yaml`,
		RunE: runValidate,
	}

	cmd.Flags().StringP("config", "c", "", "path to endpoint file (required)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	endpoints, err := config.BuildEndpoints(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Round interval: %s\n", cfg.RoundInterval)
	fmt.Fprintf(out, "  Workers:        %d\n", cfg.WorkerCount)
	fmt.Fprintf(out, "  Batch size:     %d\n", cfg.BatchSize)
	fmt.Fprintf(out, "  Probe timeout:  %s\n", cfg.ProbeTimeout)
	fmt.Fprintf(out, "  Endpoints:      %d across %d domains\n", len(endpoints), config.CountDomains(endpoints))

	return nil
}
