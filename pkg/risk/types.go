package risk

// Flags raised by Analyze when a sub-score crosses its threshold. The flag
// order in Score.Flags follows assessment order: hallucination, compliance,
// leakage.
const (
	FlagHighHallucination = "HIGH_HALLUCINATION_RISK"
	FlagComplianceRisk    = "COMPLIANCE_RISK_DETECTED"
	FlagPotentialLeakage  = "POTENTIAL_PHI_LEAKAGE"
)

// Flag thresholds. A flag is raised strictly above its threshold.
const (
	hallucinationFlagThreshold = 0.5
	complianceFlagThreshold    = 0.3
	leakageFlagThreshold       = 0.2
)

// Overall score weights.
const (
	weightHallucination = 0.35
	weightCompliance    = 0.35
	weightLeakage       = 0.20
	weightCultural      = 0.10
)

// Score is a complete risk assessment of one generated output. All scores
// are in [0,1], rounded to three decimals.
type Score struct {
	// HallucinationRisk estimates the likelihood of fabricated or
	// unsupported claims.
	HallucinationRisk float64 `json:"hallucination_risk"`

	// ComplianceRisk estimates regulatory exposure (unlicensed medical
	// advice, missing disclaimers) relative to the request context.
	ComplianceRisk float64 `json:"compliance_risk"`

	// DataLeakageRisk estimates the chance the output exposes protected
	// identifiers.
	DataLeakageRisk float64 `json:"data_leakage_risk"`

	// CulturalSensitivityRisk estimates biased or insensitive language.
	// It contributes to OverallRisk but never raises a flag.
	CulturalSensitivityRisk float64 `json:"cultural_sensitivity_risk"`

	// OverallRisk is the weighted composite of the four sub-scores.
	OverallRisk float64 `json:"overall_risk"`

	// Flags lists the thresholds crossed, in assessment order.
	Flags []string `json:"flags"`

	// Recommendations lists remediation guidance for the raised flags.
	Recommendations []string `json:"recommendations"`
}
