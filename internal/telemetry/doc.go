// Package telemetry exposes fetch, refresh and sink counters on a private
// Prometheus registry, encoded with expfmt for /metrics and read back for
// diagnostics. All record methods accept a nil receiver.
package telemetry
