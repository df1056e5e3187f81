// Package pulsecheck probes HTTP endpoints in fixed-interval rounds and
// reports the lifetime availability of every domain.
//
// A [Monitor] owns a long-lived pool of probe workers. Every round the
// endpoint registry is shuffled, split into batches and fed through the
// pool; each probe outcome is recorded into per-domain counters as soon as
// it arrives. After the round a [Report] is handed to the configured
// reporters.
//
// # Quick Start
//
//	ep, _ := pulsecheck.NewEndpoint("API", "https://api.example.com/health")
//	m, _ := pulsecheck.New(
//	    pulsecheck.WithEndpoint(ep),
//	    pulsecheck.WithReporter(pulsecheck.NewConsoleReporter(os.Stdout)),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	if err := m.Run(ctx); errors.Is(err, pulsecheck.ErrDeadlineExceeded) {
//	    // the round could not finish within the interval
//	}
//
// # Configuration
//
// Monitors are configured with functional options:
//
//	m, err := pulsecheck.New(
//	    pulsecheck.WithEndpoints(endpoints...),
//	    pulsecheck.WithRoundInterval(15 * time.Second),
//	    pulsecheck.WithWorkerCount(200),
//	    pulsecheck.WithBatchSize(200),
//	    pulsecheck.WithProbeTimeout(500 * time.Millisecond),
//	    pulsecheck.WithStatusAddr(":9090"),
//	)
//
// Endpoints take request options:
//
//	ep, err := pulsecheck.NewEndpoint("orders", "https://api.example.com/orders",
//	    pulsecheck.WithMethod("POST"),
//	    pulsecheck.WithHeaders("Authorization", "Bearer token"),
//	    pulsecheck.WithBody(`{"ping":true}`),
//	)
//
// # Availability
//
// A probe is up iff a response with a status code in [200, 300) arrives
// within the probe timeout. Redirects are not followed. Transport errors,
// timeouts and every other status count as down. Availability of a domain
// is the share of up probes over the lifetime of the process, regardless
// of which endpoint of the domain was probed.
//
// # Round Deadline
//
// The round interval doubles as the deadline. A round that takes longer
// than the interval stops [Monitor.Run] with a [*DeadlineError] carrying
// the round's duration, the interval and the endpoint count. Raise the
// worker count or lengthen the interval.
//
// # Thread Safety
//
// [Endpoint] values are immutable. [Monitor.Availability] and
// [Monitor.Latest] may be called from any goroutine while Run is active.
package pulsecheck
