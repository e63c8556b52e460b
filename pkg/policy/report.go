package policy

import "arclight-hq/meridian/pkg/providers"

// ProviderCompliance summarizes one provider's regulatory posture for
// configuration reporting.
type ProviderCompliance struct {
	HIPAACompliant bool   `json:"hipaa_compliant"`
	BAAAvailable   bool   `json:"baa_available"`
	AllowedForPHI  bool   `json:"allowed_for_phi"`
	ZeroRetention  bool   `json:"zero_retention"`
	Notes          string `json:"notes,omitempty"`
}

// ComplianceReport describes the engine's active compliance configuration:
// how many rules are loaded, which providers may handle regulated data, and
// the models cleared for regulated workloads.
type ComplianceReport struct {
	TotalRules      int                                `json:"total_rules"`
	EnabledRules    int                                `json:"enabled_rules"`
	DefaultProvider providers.ID                       `json:"default_provider"`
	HIPAAProvider   providers.ID                       `json:"hipaa_provider"`
	CompliantModels []string                           `json:"hipaa_compliant_models"`
	ProviderStatus  map[providers.ID]ProviderCompliance `json:"provider_status"`
}

// ComplianceReport returns a snapshot of the engine's compliance
// configuration. Provider status covers every known provider, whether or not
// any active rule references it.
func (e *Engine) ComplianceReport() ComplianceReport {
	e.mu.RLock()
	total := len(e.rules)
	enabled := 0
	for _, r := range e.rules {
		if r.Enabled {
			enabled++
		}
	}
	e.mu.RUnlock()

	status := make(map[providers.ID]ProviderCompliance, len(providers.KnownIDs()))
	for _, id := range providers.KnownIDs() {
		caps := providers.CapabilitiesFor(id)
		status[id] = ProviderCompliance{
			HIPAACompliant: caps.HIPAACompliant,
			BAAAvailable:   caps.BAAAvailable,
			AllowedForPHI:  caps.HIPAACompliant && caps.BAAAvailable,
			ZeroRetention:  caps.ZeroRetention,
			Notes:          caps.Notes,
		}
	}

	models := make([]string, len(e.config.CompliantModels))
	copy(models, e.config.CompliantModels)

	return ComplianceReport{
		TotalRules:      total,
		EnabledRules:    enabled,
		DefaultProvider: e.config.DefaultProvider,
		HIPAAProvider:   e.config.HIPAAProvider,
		CompliantModels: models,
		ProviderStatus:  status,
	}
}
