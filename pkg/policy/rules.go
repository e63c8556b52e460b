package policy

import "arclight-hq/meridian/pkg/providers"

// defaultRules builds the built-in HIPAA compliance rule set. These ship with
// every engine; file-loaded rules merge around them by priority.
func defaultRules(config Config) []Rule {
	return []Rule{
		{
			Name:        "phi_requires_hipaa_provider",
			Description: "PHI data must use providers with signed BAA",
			Priority:    100,
			Conditions: map[string]Condition{
				"data_classification": {OneOf: []string{
					string(ClassificationPHI),
					string(ClassificationRestricted),
				}},
			},
			Actions: Actions{
				AllowedProviders:    []providers.ID{config.HIPAAProvider},
				ForbiddenProviders:  []providers.ID{providers.OpenAI},
				RequiresHumanReview: true,
				Metadata: map[string]string{
					"compliance_note": "HIPAA BAA required for PHI",
				},
			},
			Enabled: true,
		},
		{
			Name:        "healthcare_industry_restrictions",
			Description: "Healthcare industry has specific compliance requirements",
			Priority:    90,
			Conditions: map[string]Condition{
				"industry": {Equals: string(IndustryHealthcare)},
			},
			Actions: Actions{
				AllowedModels: config.CompliantModels,
				Metadata: map[string]string{
					"require_audit_logging": "true",
					"encryption_required":   "true",
					"data_retention":        "zero",
				},
			},
			Enabled: true,
		},
		{
			Name:        "financial_services_compliance",
			Description: "Financial services require enhanced audit trails",
			Priority:    85,
			Conditions: map[string]Condition{
				"industry": {Equals: string(IndustryFinance)},
			},
			Actions: Actions{
				AllowedProviders: []providers.ID{providers.Anthropic},
				Metadata: map[string]string{
					"require_audit_logging": "true",
					"retention_days":        "2555", // 7 years for SOX
				},
			},
			Enabled: true,
		},
		{
			Name:        "high_risk_human_review",
			Description: "High-risk content classifications require human review",
			Priority:    80,
			Conditions: map[string]Condition{
				"risk_level": {Range: &NumericRange{Min: floatPtr(0.7)}},
			},
			Actions: Actions{
				RequiresHumanReview: true,
				Metadata: map[string]string{
					"alert_compliance_officer": "true",
				},
			},
			Enabled: true,
		},
		{
			Name:        "public_data_cost_optimization",
			Description: "Public data can use any provider for cost optimization",
			Priority:    10,
			Conditions: map[string]Condition{
				"data_classification": {Equals: string(ClassificationPublic)},
			},
			Actions: Actions{
				AllowedProviders: []providers.ID{providers.OpenAI, providers.Anthropic},
				Metadata: map[string]string{
					"optimize_for": "cost",
				},
			},
			Enabled: true,
		},
	}
}

func floatPtr(v float64) *float64 { return &v }
