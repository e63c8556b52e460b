// Meridian is a compliance-aware gateway core for AI generation requests.
//
// It routes generation requests through a policy engine, scores generated
// output for risk, and records every cycle in a tamper-evident hash-chained
// audit trail:
//   - Rule-based provider and model selection (HIPAA-aware)
//   - Deterministic risk scoring of generated output
//   - Hash-chained JSONL audit partitions with integrity verification
//   - Compliance reporting over audit date ranges
//
// Usage:
//
//	# Start the gateway with default configuration
//	meridian run
//
//	# Start with a custom configuration file
//	meridian run --config /path/to/config.yaml
//
//	# Verify the audit chain for a date
//	meridian verify --date 2026-08-25
//
//	# Validate and list a rules file
//	meridian rules --file rules.yaml
//
//	# Benchmark a provider's output samples
//	meridian benchmark --provider anthropic --samples samples.json
//
//	# Show version information
//	meridian version
package main

func main() {
	Execute()
}
