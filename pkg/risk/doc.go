// Package risk scores AI-generated text for compliance, safety, and quality
// hazards. The engine is deterministic and pure: the same text and request
// context always produce the same score, so results are reproducible across
// providers and over time.
//
// Four sub-scores are assessed independently — hallucination, regulatory
// compliance, data leakage, and cultural sensitivity — each clamped to [0,1],
// then combined into a weighted overall score. Scores above fixed thresholds
// raise flags with remediation recommendations; cultural sensitivity
// contributes to the overall score but never raises a flag on its own.
//
// Benchmark aggregates scores across a sample set for one provider, producing
// the comparative numbers used to evaluate providers against each other.
package risk
