package risk

import (
	"log/slog"
	"math"
	"strings"

	"arclight-hq/meridian/pkg/policy"
)

// Engine scores generated text against fixed pattern tables. It holds no
// mutable state and is safe for unsynchronized concurrent use.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a risk scoring engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger: logger.With("component", "risk.engine"),
	}
}

// Analyze scores text against the request context it was generated for.
// It is deterministic and never fails.
func (e *Engine) Analyze(text string, ctx policy.RequestContext) Score {
	var flags []string
	var recommendations []string

	hallucination := assessHallucination(text)
	if hallucination > hallucinationFlagThreshold {
		flags = append(flags, FlagHighHallucination)
		recommendations = append(recommendations,
			"Add source citations to response",
			"Flag for clinical review",
		)
	}

	compliance := assessCompliance(text, ctx)
	if compliance > complianceFlagThreshold {
		flags = append(flags, FlagComplianceRisk)
		recommendations = append(recommendations, "Review for HIPAA violations")
	}

	leakage := assessLeakage(text, ctx)
	if leakage > leakageFlagThreshold {
		flags = append(flags, FlagPotentialLeakage)
		recommendations = append(recommendations, "Sanitize output before delivery")
	}

	cultural := assessCulturalSensitivity(text)

	overall := hallucination*weightHallucination +
		compliance*weightCompliance +
		leakage*weightLeakage +
		cultural*weightCultural

	score := Score{
		HallucinationRisk:       round3(hallucination),
		ComplianceRisk:          round3(compliance),
		DataLeakageRisk:         round3(leakage),
		CulturalSensitivityRisk: round3(cultural),
		OverallRisk:             round3(overall),
		Flags:                   flags,
		Recommendations:         recommendations,
	}

	if len(flags) > 0 {
		e.logger.Debug("risk flags raised",
			"flags", flags,
			"overall_risk", score.OverallRisk,
		)
	}
	return score
}

// assessHallucination estimates how likely the text contains fabricated or
// unsupported claims: hedging language, uncited clinical terms, and dense
// numeric claims each add risk.
func assessHallucination(text string) float64 {
	risk := 0.0
	lower := strings.ToLower(text)

	hedges := 0
	for _, phrase := range uncertaintyPhrases {
		if strings.Contains(lower, phrase) {
			hedges++
		}
	}
	risk += math.Min(float64(hedges)*0.1, 0.4)

	if containsAny(lower, clinicalTerms) &&
		!strings.Contains(lower, "according to") &&
		!strings.Contains(lower, "study") {
		risk += 0.3
	}

	if len(numericClaimPattern.FindAllString(lower, -1)) > 3 {
		risk += 0.1
	}

	return math.Min(risk, 1.0)
}

// assessCompliance estimates regulatory exposure relative to the request
// context: advice phrasing on regulated data and missing disclaimers on
// clinical content.
func assessCompliance(text string, ctx policy.RequestContext) float64 {
	risk := 0.0
	lower := strings.ToLower(text)

	if ctx.DataClassification == policy.ClassificationPHI ||
		ctx.DataClassification == policy.ClassificationRestricted {
		if containsAny(lower, adviceTerms) {
			risk += 0.5
		}
		if strings.Contains(lower, "you should") || strings.Contains(lower, "your condition") {
			risk += 0.3
		}
	}

	if ctx.Industry == policy.IndustryHealthcare {
		if !strings.Contains(lower, "not medical advice") && !strings.Contains(lower, "consult") {
			if containsAny(lower, clinicalTerms) {
				risk += 0.2
			}
		}
	}

	return math.Min(risk, 1.0)
}

// assessLeakage estimates the chance the text exposes protected identifiers.
// Every detector match adds risk, with a higher baseline when the request
// itself carried PHI.
func assessLeakage(text string, ctx policy.RequestContext) float64 {
	risk := 0.0

	matches := 0
	for _, d := range leakageDetectors {
		matches += len(d.pattern.FindAllString(text, -1))
	}
	if matches > 0 {
		risk += math.Min(float64(matches)*0.15, 0.8)
	}

	if ctx.DataClassification == policy.ClassificationPHI {
		risk += 0.1
	}

	return math.Min(risk, 1.0)
}

// assessCulturalSensitivity estimates biased or dismissive language.
func assessCulturalSensitivity(text string) float64 {
	risk := 0.0
	lower := strings.ToLower(text)

	for _, term := range sensitiveTerms {
		if strings.Contains(lower, term) {
			risk += 0.2
		}
	}

	if generalizationPattern.MatchString(lower) {
		risk += 0.15
	}

	return math.Min(risk, 1.0)
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// round3 rounds to three decimals, the published score precision.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
