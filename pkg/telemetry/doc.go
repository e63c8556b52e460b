// Package telemetry provides observability for Meridian.
//
// # Components
//
//   - logging: structured slog construction with sensitive-value redaction
//   - metrics: Prometheus metrics collection
//
// Both subpackages are optional at every instrumentation point: a nil
// metrics.Collector records nothing, and components fall back to
// slog.Default when no logger is injected.
package telemetry
