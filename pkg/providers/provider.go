package providers

import "context"

// Provider is the generation capability the gateway core consumes. Each
// concrete adapter (OpenAI, Anthropic, the test stub) satisfies this
// interface and is selected at runtime by its ID, never by type assertion.
//
// Generate must respect context cancellation and return promptly when the
// context is cancelled. Implementations are safe for concurrent use.
type Provider interface {
	// ID returns the provider identity.
	ID() ID

	// Generate produces a completion for the request, or fails with one of
	// the typed errors in this package (RateLimitError, AuthError,
	// ProviderError).
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResponse, error)

	// EstimateCost returns the USD cost for the given token counts and model.
	// Unknown models fall back to the provider's default model pricing.
	EstimateCost(tokensInput, tokensOutput int, model string) float64

	// AvailableModels returns the models this provider can serve, in stable
	// order with the default model first.
	AvailableModels() []string

	// DefaultModel returns the model used when a request names none.
	DefaultModel() string

	// HIPAACompliant reports whether the provider can handle PHI.
	HIPAACompliant() bool

	// BAAAvailable reports whether a Business Associate Agreement is offered.
	BAAAvailable() bool
}
