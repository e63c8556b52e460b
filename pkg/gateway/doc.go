// Package gateway orchestrates the full request cycle: policy evaluation,
// provider generation, risk analysis, and audit logging.
//
// The engines are stateless and invoked without synchronization; the only
// coordination point is the audit trail. Audit writes are fire-and-forget
// relative to the response path — records are enqueued to a worker goroutine
// owned by the gateway — but never dropped: enqueueing blocks under
// backpressure, and Close drains every queued record before returning.
//
// A cycle that fails at the provider is audited as a clearly tagged failed
// record with the error classification; a half-filled record is never
// written.
package gateway
