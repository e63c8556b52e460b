package providers

import (
	"context"
	"errors"
	"testing"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(NewStub(Anthropic)); err != nil {
		t.Fatalf("Register(anthropic) failed: %v", err)
	}
	if err := reg.Register(NewStub(OpenAI)); err != nil {
		t.Fatalf("Register(openai) failed: %v", err)
	}

	p, err := reg.Get(Anthropic)
	if err != nil {
		t.Fatalf("Get(anthropic) failed: %v", err)
	}
	if p.ID() != Anthropic {
		t.Errorf("Get(anthropic) returned provider %q", p.ID())
	}

	if _, err := reg.Get(ID("azure")); err == nil {
		t.Error("Get of unregistered identity should fail")
	}
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(NewStub(OpenAI)); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := reg.Register(NewStub(OpenAI)); err == nil {
		t.Error("duplicate Register should fail")
	}
}

func TestRegistry_RejectsUnknownIdentity(t *testing.T) {
	reg := NewRegistry()

	stub := NewStub(ID("mystery"))
	if err := reg.Register(stub); err == nil {
		t.Error("Register should reject unknown identity")
	}
}

func TestRegistry_IDsStableOrder(t *testing.T) {
	reg := NewRegistry()
	// Register in reverse of catalog order; IDs must still come back stable.
	if err := reg.Register(NewStub(Anthropic)); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(NewStub(OpenAI)); err != nil {
		t.Fatal(err)
	}

	ids := reg.IDs()
	want := []ID{OpenAI, Anthropic}
	if len(ids) != len(want) {
		t.Fatalf("IDs() returned %d entries, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestStub_GenerateDeterministic(t *testing.T) {
	stub := NewStub(Anthropic)
	req := &GenerationRequest{Prompt: "summarize the discharge instructions", MaxTokens: 256}

	first, err := stub.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, err := stub.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if first.Content != second.Content || first.TokensInput != second.TokensInput ||
		first.CostUSD != second.CostUSD {
		t.Error("stub responses should be identical across calls")
	}
	if first.Model != DefaultModelAnthropic {
		t.Errorf("default model = %q, want %q", first.Model, DefaultModelAnthropic)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantRetriable bool
		wantType      string
	}{
		{
			name:          "rate limit is retriable",
			err:           &RateLimitError{Provider: OpenAI, Message: "slow down"},
			wantRetriable: true,
			wantType:      "rate_limit",
		},
		{
			name:          "auth is fatal",
			err:           &AuthError{Provider: OpenAI, Message: "bad key"},
			wantRetriable: false,
			wantType:      "auth",
		},
		{
			name:          "generic is caller-decided",
			err:           NewProviderError(Anthropic, "upstream 500", errors.New("boom")),
			wantRetriable: false,
			wantType:      "provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retriable(tt.err); got != tt.wantRetriable {
				t.Errorf("Retriable() = %v, want %v", got, tt.wantRetriable)
			}
			if got := ErrorType(tt.err); got != tt.wantType {
				t.Errorf("ErrorType() = %q, want %q", got, tt.wantType)
			}
		})
	}
}

func TestEstimateCostFor(t *testing.T) {
	tests := []struct {
		name      string
		id        ID
		model     string
		tokensIn  int
		tokensOut int
		want      float64
	}{
		{
			name:     "gpt-4o pricing",
			id:       OpenAI,
			model:    "gpt-4o",
			tokensIn: 1000, tokensOut: 1000,
			want: 0.02,
		},
		{
			name:     "opus pricing",
			id:       Anthropic,
			model:    "claude-3-opus-20240229",
			tokensIn: 2000, tokensOut: 1000,
			want: 0.105,
		},
		{
			name:     "unknown model falls back to default pricing",
			id:       OpenAI,
			model:    "gpt-9000",
			tokensIn: 1000, tokensOut: 1000,
			want: 0.02,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateCostFor(tt.id, tt.tokensIn, tt.tokensOut, tt.model)
			if got != tt.want {
				t.Errorf("EstimateCostFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestModelsFor_DefaultFirst(t *testing.T) {
	for _, id := range KnownIDs() {
		models := ModelsFor(id)
		if len(models) == 0 {
			t.Fatalf("ModelsFor(%q) returned no models", id)
		}
		if models[0] != DefaultModelFor(id) {
			t.Errorf("ModelsFor(%q)[0] = %q, want default %q", id, models[0], DefaultModelFor(id))
		}
	}
}
