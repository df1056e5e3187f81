// Package server provides the optional status HTTP server for pulsecheck.
//
// This package is internal to pulsecheck. It exposes the latest availability
// snapshot and Prometheus metrics over HTTP:
//
//   - GET /healthz: liveness probe, always "ok"
//   - GET /api/availability: latest round snapshot as JSON
//   - GET /api/availability/stream: Server-Sent Events, one event per round
//   - GET /metrics: Prometheus exposition format
//
// The server is designed for graceful shutdown via context cancellation.
package server
