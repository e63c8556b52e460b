// Package metrics exposes Prometheus instrumentation for the gateway:
// policy evaluation outcomes, risk score distributions and raised flags,
// audit chain writes and verification findings, and provider request
// metrics. All metrics live under the "meridian" namespace on a
// collector-owned registry served through the promhttp handler accessor.
package metrics
