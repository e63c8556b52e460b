package providers

import (
	"context"
	"fmt"
	"time"
)

// Stub is a deterministic in-process Provider used by tests and the demo
// binary. It never calls the network: content is either the configured
// canned response or an echo of the prompt, and token counts are derived
// from input lengths so repeated runs produce identical audit chains.
type Stub struct {
	// Identity determines which capability descriptor and pricing table the
	// stub reports.
	Identity ID

	// Response is the canned content to return. Empty echoes the prompt.
	Response string

	// Latency is the simulated provider latency reported in responses. The
	// stub does not actually sleep.
	Latency time.Duration

	// Err, when set, is returned by every Generate call.
	Err error
}

// NewStub creates a stub provider for the given identity.
func NewStub(id ID) *Stub {
	return &Stub{Identity: id, Latency: 10 * time.Millisecond}
}

// ID returns the stub's identity.
func (s *Stub) ID() ID { return s.Identity }

// Generate returns the canned response, or the configured error.
func (s *Stub) Generate(ctx context.Context, req *GenerationRequest) (*GenerationResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewProviderError(s.Identity, "request cancelled", err)
	}
	if s.Err != nil {
		return nil, s.Err
	}

	content := s.Response
	if content == "" {
		content = fmt.Sprintf("stub completion for: %s", req.Prompt)
	}

	model := req.Model
	if model == "" {
		model = s.DefaultModel()
	}

	// Rough 4-chars-per-token heuristic keeps costs plausible and stable.
	tokensIn := len(req.Prompt)/4 + 1
	tokensOut := len(content)/4 + 1

	return &GenerationResponse{
		Content:      content,
		Model:        model,
		Provider:     s.Identity,
		TokensInput:  tokensIn,
		TokensOutput: tokensOut,
		LatencyMs:    float64(s.Latency.Milliseconds()),
		CostUSD:      s.EstimateCost(tokensIn, tokensOut, model),
		Metadata:     map[string]string{"finish_reason": "stop"},
	}, nil
}

// EstimateCost uses the identity's static pricing table.
func (s *Stub) EstimateCost(tokensInput, tokensOutput int, model string) float64 {
	return EstimateCostFor(s.Identity, tokensInput, tokensOutput, model)
}

// AvailableModels returns the identity's model list.
func (s *Stub) AvailableModels() []string { return ModelsFor(s.Identity) }

// DefaultModel returns the identity's default model.
func (s *Stub) DefaultModel() string { return DefaultModelFor(s.Identity) }

// HIPAACompliant reports the identity's catalog flag.
func (s *Stub) HIPAACompliant() bool { return CapabilitiesFor(s.Identity).HIPAACompliant }

// BAAAvailable reports the identity's catalog flag.
func (s *Stub) BAAAvailable() bool { return CapabilitiesFor(s.Identity).BAAAvailable }
