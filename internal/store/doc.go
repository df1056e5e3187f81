// Package store holds the availability state of pulsecheck.
//
// This package is internal to pulsecheck. It provides:
//
//   - [Accumulator]: lifetime per-domain success/total counters, updated by
//     every probe worker concurrently
//   - [Publisher]: the latest round [Snapshot] plus a publish-subscribe
//     fan-out for live consumers such as the status server
//
// Counters are never reset for the lifetime of an Accumulator. Subscribers
// receive snapshots via channels with non-blocking sends (slow subscribers
// miss snapshots rather than block the scheduler).
package store
