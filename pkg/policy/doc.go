// Package policy implements the compliance rule engine that decides which
// provider and model may serve a generation request.
//
// The engine holds an ordered list of rules, each with a priority,
// a set of conditions matched against the request context, and a set of
// actions merged into a running routing state. Evaluation is deterministic
// and side-effect free: set intersection for allowed providers, set union
// for forbidden providers, a monotonic human-review flag, and
// last-match-wins replacement for the model allowlist.
//
// Built-in HIPAA rules ship with the engine; additional rules can be loaded
// from a YAML document and merge additively into the same priority order.
// Rules are immutable once loaded. The engine swaps the whole rule set
// atomically on reload, so concurrent Evaluate calls never observe a
// partially applied document.
package policy
