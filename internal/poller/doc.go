// Package poller implements the interval-driven probing core of pulsecheck.
//
// This package is internal to pulsecheck. It owns everything between the
// endpoint registry and the availability counters:
//
//   - [BatchTargets] and [Shuffler]: per-round shuffling and batching of targets
//   - [Client] and [HTTPProber]: one HTTP request per target with a fixed timeout
//   - [Pool]: a long-lived, fixed-size worker pool that runs one round at a time
//   - [Runner]: drives a single round and checks it against its deadline
//   - [Scheduler]: repeats rounds at a fixed interval until cancelled or overrun
//
// Users of the pulsecheck library should not need to interact with this
// package directly. Configuration is done through the main pulsecheck package.
package poller
