package providers

// ID identifies a provider. The set of known IDs is fixed at compile time;
// policy rules referencing any other identifier are rejected at load time.
type ID string

const (
	// OpenAI is the cost-optimized provider. It does not sign BAAs and must
	// never receive PHI or restricted data.
	OpenAI ID = "openai"

	// Anthropic is the regulated-data provider. BAA available, zero retention
	// with a signed agreement.
	Anthropic ID = "anthropic"
)

// KnownIDs returns all provider identities in stable order.
func KnownIDs() []ID {
	return []ID{OpenAI, Anthropic}
}

// Valid reports whether id names a known provider.
func (id ID) Valid() bool {
	switch id {
	case OpenAI, Anthropic:
		return true
	}
	return false
}

// Capabilities describes the compliance posture of a provider identity.
// These are compile-time-known facts about the provider's terms of service,
// not runtime health signals.
type Capabilities struct {
	// HIPAACompliant indicates the provider can handle PHI under HIPAA.
	HIPAACompliant bool `json:"hipaa_compliant"`

	// BAAAvailable indicates a Business Associate Agreement can be signed.
	BAAAvailable bool `json:"baa_available"`

	// ZeroRetention indicates the provider retains no request data.
	ZeroRetention bool `json:"zero_retention"`

	// Notes is a human-readable compliance summary for reports.
	Notes string `json:"notes"`
}

// GenerationRequest is the provider-agnostic request shape.
type GenerationRequest struct {
	// Prompt is the user prompt text.
	Prompt string `json:"prompt"`

	// SystemPrompt is an optional system instruction.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Model is the model identifier. Empty selects the provider default.
	Model string `json:"model,omitempty"`

	// Temperature controls sampling randomness. Defaults low for consistency
	// in regulated workloads.
	Temperature float64 `json:"temperature"`

	// MaxTokens caps the completion length.
	MaxTokens int `json:"max_tokens"`

	// Context carries request metadata (industry, classification) that some
	// providers use for routing hints. Never sent verbatim upstream.
	Context map[string]string `json:"context,omitempty"`
}

// GenerationResponse is the normalized provider response.
type GenerationResponse struct {
	// Content is the generated text.
	Content string `json:"content"`

	// Model is the model that actually served the request.
	Model string `json:"model"`

	// Provider is the identity that served the request.
	Provider ID `json:"provider"`

	// TokensInput is the prompt token count reported by the provider.
	TokensInput int `json:"tokens_input"`

	// TokensOutput is the completion token count.
	TokensOutput int `json:"tokens_output"`

	// LatencyMs is the provider round-trip time in milliseconds.
	LatencyMs float64 `json:"latency_ms"`

	// CostUSD is the computed cost of the call in US dollars.
	CostUSD float64 `json:"cost_usd"`

	// Metadata carries provider-specific extras (finish reason, request id).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// TotalTokens returns the combined input and output token count.
func (r *GenerationResponse) TotalTokens() int {
	return r.TokensInput + r.TokensOutput
}
