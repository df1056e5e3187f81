package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/pulsecheck"
	"github.com/jpalmerr/pulsecheck/config"
	"github.com/jpalmerr/pulsecheck/internal/logging"
)

// runFlags holds the flags of the run command.
type runFlags struct {
	configFile string
	interval   time.Duration
	workers    int
	batchSize  int
	timeout    time.Duration
	seed       uint64
	listen     string
	logLevel   string
	logFormat  string
	logFile    string
}

// newRunCmd probes the configured endpoints until interrupted.
func newRunCmd() *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [endpoints.yaml]",
		Short: "Probe endpoints until interrupted",
		Long: `Probe every endpoint of the file once per round and print the
availability of every domain after each round.

pulsecheck runs until interrupted (Ctrl+C) or it receives SIGTERM; the
in-flight round is finished and reported first. Flags override the
settings of the file.

Exit codes:
  0 - Stopped by a signal
  1 - Invalid configuration or internal error
  2 - A round took longer than the round interval

Example:
  pulsecheck run endpoints.yaml
  pulsecheck run -c endpoints.yaml --interval 30s --workers 100 --listen :9090`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, args, f)
		},
	}

	bindRunFlags(cmd, f)
	return cmd
}

// bindRunFlags registers the run flags of cmd into f.
func bindRunFlags(cmd *cobra.Command, f *runFlags) {
	flags := cmd.Flags()
	flags.StringVarP(&f.configFile, "config", "c", "", "path to endpoint file")
	flags.DurationVar(&f.interval, "interval", config.DefaultRoundInterval, "round interval and round deadline")
	flags.IntVar(&f.workers, "workers", config.DefaultWorkerCount, "number of probe workers")
	flags.IntVar(&f.batchSize, "batch-size", 0, "maximum endpoints per batch (default: workers)")
	flags.DurationVar(&f.timeout, "timeout", config.DefaultProbeTimeout, "per-probe timeout")
	flags.Uint64Var(&f.seed, "seed", 0, "seed for a deterministic shuffle")
	flags.StringVar(&f.listen, "listen", "", "address of the status server, e.g. :9090 (disabled when empty)")
	flags.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&f.logFormat, "log-format", "json", "log format: json or text")
	flags.StringVar(&f.logFile, "log-file", "", "also write logs to this size-rotated file")
}

func runMonitor(cmd *cobra.Command, args []string, f *runFlags) error {
	path := f.configFile
	if len(args) == 1 {
		if path != "" && path != args[0] {
			return errors.New("endpoint file given both as argument and --config")
		}
		path = args[0]
	}
	if path == "" {
		return errors.New("an endpoint file is required")
	}
	cmd.SilenceUsage = true

	logger, closer, err := logging.New(logging.Options{
		Level:  f.logLevel,
		Format: f.logFormat,
		File:   f.logFile,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer closer.Close()

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyOverrides(cmd, f, cfg); err != nil {
		return err
	}

	endpoints, err := config.BuildEndpoints(cfg)
	if err != nil {
		return fmt.Errorf("failed to build endpoints: %w", err)
	}

	logger.Info("config loaded",
		"file", path,
		"endpoints", len(endpoints),
		"domains", config.CountDomains(endpoints),
	)

	opts := append(cfg.Settings.Options(),
		pulsecheck.WithEndpoints(endpoints...),
		pulsecheck.WithLogger(logger),
		pulsecheck.WithReporter(pulsecheck.NewConsoleReporter(cmd.OutOrStdout())),
	)
	if cmd.Flags().Changed("seed") {
		opts = append(opts, pulsecheck.WithSeed(f.seed))
	}
	if f.listen != "" {
		opts = append(opts, pulsecheck.WithStatusAddr(f.listen))
	}

	m, err := pulsecheck.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = m.Run(ctx)

	var derr *pulsecheck.DeadlineError
	if errors.As(err, &derr) {
		fmt.Fprintf(cmd.ErrOrStderr(),
			"round %d took %s, longer than the %s round interval, probing %d endpoints; "+
				"increase --workers or --interval\n",
			derr.Round, derr.Duration.Round(time.Millisecond), derr.Interval, derr.Endpoints)
		return err
	}
	if err != nil {
		return fmt.Errorf("monitor failed: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// applyOverrides copies explicitly set flags over the file settings and
// validates the result. An unset --batch-size keeps following the worker
// count unless the file set it.
func applyOverrides(cmd *cobra.Command, f *runFlags, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	s := &cfg.Settings

	if changed("interval") {
		s.RoundInterval = config.Duration(f.interval)
	}
	if changed("workers") {
		s.WorkerCount = f.workers
		if !cfg.BatchSizeSet() {
			s.BatchSize = f.workers
		}
	}
	if changed("batch-size") {
		s.BatchSize = f.batchSize
	}
	if changed("timeout") {
		s.ProbeTimeout = config.Duration(f.timeout)
	}

	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
