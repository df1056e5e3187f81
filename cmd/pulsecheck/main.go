// Package main is the entry point for the pulsecheck CLI.
//
// pulsecheck can be run either as a library (SDK) or as a standalone binary
// driven by a YAML endpoint file. This CLI provides the standalone binary.
//
// Usage:
//
//	pulsecheck run endpoints.yaml          # Probe until interrupted
//	pulsecheck validate -c endpoints.yaml  # Validate an endpoint file
//	pulsecheck version                     # Show version info
//
// Exit codes: 0 after a clean shutdown, 2 when a round overran its
// interval, 1 for every other error.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/pulsecheck"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	exitOK       = 0
	exitError    = 1
	exitDeadline = 2
)

// newRootCmd builds the command tree. Without a subcommand it shows help.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pulsecheck",
		Short: "Probe HTTP endpoints and report per-domain availability",
		Long: `pulsecheck probes a set of HTTP endpoints every round interval and
prints the lifetime availability of every domain after each round.

A probe is up when a 2xx response arrives within the probe timeout.
A round that takes longer than the round interval stops pulsecheck
with exit code 2: the worker count or interval cannot sustain the
endpoint set.

Quick start:
  1. Create an endpoint file (endpoints.yaml)
  2. Run: pulsecheck run endpoints.yaml

Example endpoint file:
  - name: fetch index page
    url: https://fetch.com/
    method: GET
    headers:
      user-agent: fetch-synthetic-monitor`,
	}

	root.AddCommand(newRunCmd(), newValidateCmd(), newVersionCmd())
	return root
}

// execute runs the CLI with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return exitCode(root.ExecuteContext(ctx))
}

// exitCode maps a command error to a process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, pulsecheck.ErrDeadlineExceeded):
		return exitDeadline
	default:
		return exitError
	}
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// newVersionCmd prints version information.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of this pulsecheck binary.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pulsecheck %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
