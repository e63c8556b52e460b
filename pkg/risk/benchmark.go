package risk

import (
	"errors"
	"math"

	"arclight-hq/meridian/pkg/policy"
	"arclight-hq/meridian/pkg/providers"
)

// ErrNoSamples is returned by Benchmark when the sample list is empty: an
// average over nothing is meaningless, not zero.
var ErrNoSamples = errors.New("risk: benchmark requires at least one sample")

// Sample is one generated output with the context it was generated for.
type Sample struct {
	Output  string                `json:"output"`
	Context policy.RequestContext `json:"context"`
}

// BenchmarkResult aggregates risk scores across a provider's samples.
type BenchmarkResult struct {
	Provider             providers.ID `json:"provider"`
	SamplesAnalyzed      int          `json:"samples_analyzed"`
	AvgHallucinationRisk float64      `json:"avg_hallucination_risk"`
	AvgComplianceRisk    float64      `json:"avg_compliance_risk"`
	AvgOverallRisk       float64      `json:"avg_overall_risk"`

	// HighRiskCount is the number of samples with overall risk above 0.5.
	HighRiskCount int `json:"high_risk_count"`

	// ComplianceScore inverts mean compliance risk into a quality score,
	// floored at zero.
	ComplianceScore float64 `json:"compliance_score"`
}

// Benchmark scores every sample and aggregates the results for one provider.
func (e *Engine) Benchmark(provider providers.ID, samples []Sample) (BenchmarkResult, error) {
	if len(samples) == 0 {
		return BenchmarkResult{}, ErrNoSamples
	}

	var sumHallucination, sumCompliance, sumOverall float64
	highRisk := 0

	for _, sample := range samples {
		score := e.Analyze(sample.Output, sample.Context)
		sumHallucination += score.HallucinationRisk
		sumCompliance += score.ComplianceRisk
		sumOverall += score.OverallRisk
		if score.OverallRisk > 0.5 {
			highRisk++
		}
	}

	n := float64(len(samples))
	meanCompliance := sumCompliance / n

	result := BenchmarkResult{
		Provider:             provider,
		SamplesAnalyzed:      len(samples),
		AvgHallucinationRisk: sumHallucination / n,
		AvgComplianceRisk:    meanCompliance,
		AvgOverallRisk:       sumOverall / n,
		HighRiskCount:        highRisk,
		ComplianceScore:      math.Max(0, 1-meanCompliance),
	}

	e.logger.Info("provider benchmark complete",
		"provider", provider,
		"samples", result.SamplesAnalyzed,
		"avg_overall_risk", result.AvgOverallRisk,
		"high_risk_count", result.HighRiskCount,
	)
	return result, nil
}
