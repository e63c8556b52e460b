package policy

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"arclight-hq/meridian/pkg/providers"
)

func TestEvaluate_Defaults(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)

	decision := e.Evaluate(RequestContext{})

	if !decision.Allowed {
		t.Fatalf("expected empty context to be allowed, got rejection: %s", decision.RejectionReason)
	}
	if decision.Provider != providers.Anthropic {
		t.Errorf("expected default provider anthropic, got %s", decision.Provider)
	}
	if decision.Model != "claude-3-opus-20240229" {
		t.Errorf("expected provider default model, got %s", decision.Model)
	}
	if decision.ComplianceStatus != StatusApproved {
		t.Errorf("expected status %s, got %s", StatusApproved, decision.ComplianceStatus)
	}
	if decision.Metadata.Industry != IndustryGeneral {
		t.Errorf("expected industry to normalize to general, got %s", decision.Metadata.Industry)
	}
	if decision.Metadata.DataClassification != ClassificationInternal {
		t.Errorf("expected classification to normalize to internal, got %s", decision.Metadata.DataClassification)
	}
}

func TestEvaluate_RoutingDecisions(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)

	tests := []struct {
		name             string
		ctx              RequestContext
		wantProvider     providers.ID
		wantModel        string
		wantReview       bool
		wantAppliedRules []string
	}{
		{
			name: "phi routes to hipaa provider with review",
			ctx: RequestContext{
				Industry:           IndustryHealthcare,
				DataClassification: ClassificationPHI,
			},
			wantProvider: providers.Anthropic,
			wantModel:    "claude-3-opus-20240229",
			wantReview:   true,
			wantAppliedRules: []string{
				"phi_requires_hipaa_provider",
				"healthcare_industry_restrictions",
			},
		},
		{
			name: "restricted data outside healthcare still requires review",
			ctx: RequestContext{
				Industry:           IndustryLegal,
				DataClassification: ClassificationRestricted,
			},
			wantProvider:     providers.Anthropic,
			wantModel:        "claude-3-opus-20240229",
			wantReview:       true,
			wantAppliedRules: []string{"phi_requires_hipaa_provider"},
		},
		{
			name: "healthcare internal pins the compliant model list",
			ctx: RequestContext{
				Industry:           IndustryHealthcare,
				DataClassification: ClassificationInternal,
			},
			wantProvider:     providers.Anthropic,
			wantModel:        "claude-3-opus-20240229",
			wantReview:       false,
			wantAppliedRules: []string{"healthcare_industry_restrictions"},
		},
		{
			name: "finance restricts to anthropic",
			ctx: RequestContext{
				Industry:           IndustryFinance,
				DataClassification: ClassificationConfidential,
			},
			wantProvider:     providers.Anthropic,
			wantModel:        "claude-3-opus-20240229",
			wantReview:       false,
			wantAppliedRules: []string{"financial_services_compliance"},
		},
		{
			name: "high risk level forces human review",
			ctx: RequestContext{
				Industry:           IndustryGeneral,
				DataClassification: ClassificationInternal,
				RiskLevel:          0.8,
			},
			wantProvider:     providers.Anthropic,
			wantModel:        "claude-3-opus-20240229",
			wantReview:       true,
			wantAppliedRules: []string{"high_risk_human_review"},
		},
		{
			name: "risk level below threshold does not trigger review",
			ctx: RequestContext{
				Industry:           IndustryGeneral,
				DataClassification: ClassificationInternal,
				RiskLevel:          0.69,
			},
			wantProvider:     providers.Anthropic,
			wantModel:        "claude-3-opus-20240229",
			wantReview:       false,
			wantAppliedRules: []string{},
		},
		{
			name: "public data leaves both providers available",
			ctx: RequestContext{
				Industry:           IndustryGeneral,
				DataClassification: ClassificationPublic,
			},
			wantProvider:     providers.Anthropic,
			wantModel:        "claude-3-opus-20240229",
			wantReview:       false,
			wantAppliedRules: []string{"public_data_cost_optimization"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := e.Evaluate(tt.ctx)

			if !decision.Allowed {
				t.Fatalf("expected approval, got rejection: %s", decision.RejectionReason)
			}
			if decision.Provider != tt.wantProvider {
				t.Errorf("provider = %s, want %s", decision.Provider, tt.wantProvider)
			}
			if decision.Model != tt.wantModel {
				t.Errorf("model = %s, want %s", decision.Model, tt.wantModel)
			}
			if decision.RequiresHumanReview != tt.wantReview {
				t.Errorf("requires_human_review = %v, want %v", decision.RequiresHumanReview, tt.wantReview)
			}
			if !reflect.DeepEqual(decision.AppliedRules, tt.wantAppliedRules) {
				t.Errorf("applied_rules = %v, want %v", decision.AppliedRules, tt.wantAppliedRules)
			}
		})
	}
}

func TestEvaluate_PublicDataSurvivingProviders(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)

	decision := e.Evaluate(RequestContext{
		Industry:           IndustryGeneral,
		DataClassification: ClassificationPublic,
	})

	want := []providers.ID{providers.OpenAI, providers.Anthropic}
	if !reflect.DeepEqual(decision.Metadata.AllowedProviders, want) {
		t.Errorf("allowed providers = %v, want %v", decision.Metadata.AllowedProviders, want)
	}
}

func TestEvaluate_PHIForbidsOpenAI(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)

	decision := e.Evaluate(RequestContext{
		Industry:           IndustryHealthcare,
		DataClassification: ClassificationPHI,
	})

	for _, id := range decision.Metadata.AllowedProviders {
		if id == providers.OpenAI {
			t.Fatal("openai must never survive for phi traffic")
		}
	}
}

func TestEvaluate_RejectionWhenNoProviderSurvives(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)
	loadRuleDoc(t, e, `
rules:
  - name: block_anthropic_for_phi
    priority: 95
    conditions:
      data_classification: [phi, restricted]
    actions:
      forbidden_providers: [anthropic]
`)

	decision := e.Evaluate(RequestContext{
		Industry:           IndustryHealthcare,
		DataClassification: ClassificationPHI,
	})

	if decision.Allowed {
		t.Fatal("expected rejection with every provider forbidden")
	}
	if decision.ComplianceStatus != StatusRejected {
		t.Errorf("status = %s, want %s", decision.ComplianceStatus, StatusRejected)
	}
	if decision.RejectionReason != RejectionNoCompliantProvider {
		t.Errorf("rejection reason = %q, want %q", decision.RejectionReason, RejectionNoCompliantProvider)
	}
	if !decision.RequiresHumanReview {
		t.Error("rejections must require human review")
	}
	if decision.Provider != providers.Anthropic || decision.Model == "" {
		t.Errorf("rejection must still carry defaults, got provider=%s model=%q",
			decision.Provider, decision.Model)
	}
	if len(decision.Metadata.AllowedProviders) != 0 {
		t.Errorf("surviving providers = %v, want none", decision.Metadata.AllowedProviders)
	}
}

func TestEvaluate_LastMatchingModelListWins(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)
	loadRuleDoc(t, e, `
rules:
  - name: haiku_for_healthcare
    priority: 5
    conditions:
      industry: healthcare
    actions:
      allowed_models: [claude-3-haiku-20240307]
`)

	decision := e.Evaluate(RequestContext{
		Industry:           IndustryHealthcare,
		DataClassification: ClassificationInternal,
	})

	// Lower priority evaluates later, so its model list replaces the
	// healthcare rule's list.
	if decision.Model != "claude-3-haiku-20240307" {
		t.Errorf("model = %s, want claude-3-haiku-20240307", decision.Model)
	}
}

func TestEvaluate_DisabledRuleSkipped(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)
	loadRuleDoc(t, e, `
rules:
  - name: disabled_blocker
    priority: 200
    conditions:
      data_classification: public
    actions:
      forbidden_providers: [openai, anthropic]
    enabled: false
`)

	decision := e.Evaluate(RequestContext{DataClassification: ClassificationPublic})

	if !decision.Allowed {
		t.Fatal("disabled rule must not affect evaluation")
	}
	for _, name := range decision.AppliedRules {
		if name == "disabled_blocker" {
			t.Error("disabled rule appeared in applied_rules")
		}
	}
}

func TestEvaluate_ConcurrentUse(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	doc := []byte(`
rules:
  - name: concurrent_probe
    conditions:
      industry: legal
    actions:
      note: probe
`)
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		t.Fatalf("failed to write rule doc: %v", err)
	}

	errCh := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			if err := e.ReloadRulesFile(path); err != nil {
				select {
				case errCh <- err:
				default:
				}
				return
			}
		}
	}()

	for i := 0; i < 100; i++ {
		decision := e.Evaluate(RequestContext{DataClassification: ClassificationPHI})
		if decision.Provider != providers.Anthropic {
			t.Errorf("phi decision drifted under concurrent reloads: %s", decision.Provider)
		}
	}
	<-done

	select {
	case err := <-errCh:
		t.Fatalf("reload failed: %v", err)
	default:
	}
}

func TestComplianceReport(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)

	report := e.ComplianceReport()

	if report.TotalRules != 5 {
		t.Errorf("total rules = %d, want 5", report.TotalRules)
	}
	if report.EnabledRules != 5 {
		t.Errorf("enabled rules = %d, want 5", report.EnabledRules)
	}
	if report.HIPAAProvider != providers.Anthropic {
		t.Errorf("hipaa provider = %s, want anthropic", report.HIPAAProvider)
	}

	anthropic, ok := report.ProviderStatus[providers.Anthropic]
	if !ok {
		t.Fatal("report missing anthropic status")
	}
	if !anthropic.AllowedForPHI {
		t.Error("anthropic must be reported as allowed for phi")
	}

	openai, ok := report.ProviderStatus[providers.OpenAI]
	if !ok {
		t.Fatal("report missing openai status")
	}
	if openai.AllowedForPHI {
		t.Error("openai must not be reported as allowed for phi")
	}
}

func TestMatchField(t *testing.T) {
	tests := []struct {
		name  string
		cond  Condition
		field string
		ctx   RequestContext
		want  bool
	}{
		{
			name:  "scalar equality matches",
			cond:  Condition{Equals: "healthcare"},
			field: "industry",
			ctx:   RequestContext{Industry: IndustryHealthcare},
			want:  true,
		},
		{
			name:  "scalar equality mismatch",
			cond:  Condition{Equals: "finance"},
			field: "industry",
			ctx:   RequestContext{Industry: IndustryHealthcare},
			want:  false,
		},
		{
			name:  "membership matches",
			cond:  Condition{OneOf: []string{"phi", "restricted"}},
			field: "data_classification",
			ctx:   RequestContext{DataClassification: ClassificationRestricted},
			want:  true,
		},
		{
			name:  "membership mismatch",
			cond:  Condition{OneOf: []string{"phi", "restricted"}},
			field: "data_classification",
			ctx:   RequestContext{DataClassification: ClassificationPublic},
			want:  false,
		},
		{
			name:  "range min inclusive",
			cond:  Condition{Range: &NumericRange{Min: floatPtr(0.7)}},
			field: "risk_level",
			ctx:   RequestContext{RiskLevel: 0.7},
			want:  true,
		},
		{
			name:  "range min exclusive below",
			cond:  Condition{Range: &NumericRange{Min: floatPtr(0.7)}},
			field: "risk_level",
			ctx:   RequestContext{RiskLevel: 0.699},
			want:  false,
		},
		{
			name:  "range max bound",
			cond:  Condition{Range: &NumericRange{Max: floatPtr(0.3)}},
			field: "risk_level",
			ctx:   RequestContext{RiskLevel: 0.31},
			want:  false,
		},
		{
			name:  "range with no bounds always matches",
			cond:  Condition{Range: &NumericRange{}},
			field: "risk_level",
			ctx:   RequestContext{},
			want:  true,
		},
		{
			name:  "unknown field never matches",
			cond:  Condition{Equals: "anything"},
			field: "user_tier",
			ctx:   RequestContext{},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchField(tt.cond, tt.ctx.normalized(), tt.field); got != tt.want {
				t.Errorf("matchField() = %v, want %v", got, tt.want)
			}
		})
	}
}

// loadRuleDoc writes doc to a temp file and loads it into the engine.
func loadRuleDoc(t *testing.T, e *Engine, doc string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("failed to write rule doc: %v", err)
	}
	if err := e.LoadRulesFile(path); err != nil {
		t.Fatalf("failed to load rule doc: %v", err)
	}
}
