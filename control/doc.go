// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime telemetry and debug introspection for the benchmark processes.
//
// Provides:
//   - go-metrics initialisation with an in-memory sink (dumped on SIGUSR1)
//     and an optional Prometheus endpoint
//   - named debug probes that components register and that can be logged
//     and exported as gauges on an interval
package control
