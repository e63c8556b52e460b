package providers

import (
	"math"
	"sort"
)

// ModelPricing holds per-1K-token prices in USD.
type ModelPricing struct {
	Input  float64
	Output float64
}

// Pricing tables per 1K tokens. Update as provider price sheets change.
var (
	openAIPricing = map[string]ModelPricing{
		"gpt-4o":        {Input: 0.005, Output: 0.015},
		"gpt-4o-mini":   {Input: 0.00015, Output: 0.0006},
		"gpt-4-turbo":   {Input: 0.01, Output: 0.03},
		"gpt-3.5-turbo": {Input: 0.0005, Output: 0.0015},
	}

	anthropicPricing = map[string]ModelPricing{
		"claude-3-opus-20240229":     {Input: 0.015, Output: 0.075},
		"claude-3-sonnet-20240229":   {Input: 0.003, Output: 0.015},
		"claude-3-haiku-20240307":    {Input: 0.00025, Output: 0.00125},
		"claude-3-5-sonnet-20241022": {Input: 0.003, Output: 0.015},
	}
)

// Default models per provider identity.
const (
	DefaultModelOpenAI    = "gpt-4o"
	DefaultModelAnthropic = "claude-3-opus-20240229"
)

// capabilityCatalog records the compliance posture of each known identity.
// OpenAI does not sign BAAs; Anthropic offers a BAA with zero retention.
var capabilityCatalog = map[ID]Capabilities{
	OpenAI: {
		HIPAACompliant: false,
		BAAAvailable:   false,
		ZeroRetention:  false,
		Notes:          "No BAA offered. Use only for non-PHI tasks.",
	},
	Anthropic: {
		HIPAACompliant: true,
		BAAAvailable:   true,
		ZeroRetention:  true,
		Notes:          "HIPAA-compliant with signed BAA. Zero data retention available.",
	},
}

// CapabilitiesFor returns the static capability descriptor for a provider
// identity. Unknown identities report an all-false descriptor.
func CapabilitiesFor(id ID) Capabilities {
	return capabilityCatalog[id]
}

// DefaultModelFor returns the default model for a provider identity.
func DefaultModelFor(id ID) string {
	if id == Anthropic {
		return DefaultModelAnthropic
	}
	return DefaultModelOpenAI
}

// ModelsFor returns the known models for a provider identity, default first.
func ModelsFor(id ID) []string {
	switch id {
	case OpenAI:
		return orderedModels(openAIPricing, DefaultModelOpenAI)
	case Anthropic:
		return orderedModels(anthropicPricing, DefaultModelAnthropic)
	}
	return nil
}

// EstimateCostFor computes cost in USD for the given token counts against the
// identity's pricing table, falling back to the default model's pricing when
// the model is unknown. Result is rounded to 6 decimal places, matching the
// precision persisted in audit records.
func EstimateCostFor(id ID, tokensInput, tokensOutput int, model string) float64 {
	table := openAIPricing
	fallback := DefaultModelOpenAI
	if id == Anthropic {
		table = anthropicPricing
		fallback = DefaultModelAnthropic
	}

	pricing, ok := table[model]
	if !ok {
		pricing = table[fallback]
	}

	cost := float64(tokensInput)/1000*pricing.Input + float64(tokensOutput)/1000*pricing.Output
	return math.Round(cost*1e6) / 1e6
}

// orderedModels lists map keys with the default model first and the rest in
// lexicographic order, so AvailableModels is deterministic.
func orderedModels(table map[string]ModelPricing, first string) []string {
	models := make([]string, 0, len(table))
	models = append(models, first)

	rest := make([]string, 0, len(table)-1)
	for m := range table {
		if m != first {
			rest = append(rest, m)
		}
	}
	sort.Strings(rest)
	return append(models, rest...)
}
