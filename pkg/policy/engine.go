package policy

import (
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"arclight-hq/meridian/pkg/providers"
)

// RejectionNoCompliantProvider is the rejection reason when no provider
// survives rule evaluation.
const RejectionNoCompliantProvider = "No compliant providers available for this request context"

// Config contains configuration for the policy engine.
type Config struct {
	// DefaultProvider serves requests no rule constrains. Default: anthropic
	// (the conservative choice for regulated workloads).
	DefaultProvider providers.ID

	// HIPAAProvider is the designated BAA-capable provider preferred for
	// healthcare and PHI/restricted traffic. Default: anthropic.
	HIPAAProvider providers.ID

	// CompliantModels is the model allowlist the built-in healthcare rule
	// applies. Default: the Anthropic BAA model set.
	CompliantModels []string
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		DefaultProvider: providers.Anthropic,
		HIPAAProvider:   providers.Anthropic,
		CompliantModels: []string{
			"claude-3-opus-20240229",
			"claude-3-sonnet-20240229",
			"claude-3-haiku-20240307",
		},
	}
}

// Engine evaluates request contexts against the active rule set and produces
// routing decisions. Evaluate is safe for unsynchronized concurrent use; the
// rule set is only replaced wholesale, under the write lock, on load.
type Engine struct {
	config Config
	logger *slog.Logger

	mu    sync.RWMutex
	rules []Rule
}

// NewEngine creates a policy engine seeded with the built-in HIPAA rules.
func NewEngine(config Config, logger *slog.Logger) *Engine {
	if config.DefaultProvider == "" {
		config.DefaultProvider = providers.Anthropic
	}
	if config.HIPAAProvider == "" {
		config.HIPAAProvider = providers.Anthropic
	}
	if len(config.CompliantModels) == 0 {
		config.CompliantModels = DefaultConfig().CompliantModels
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		config: config,
		logger: logger.With("component", "policy.engine"),
		rules:  defaultRules(config),
	}
	sortRules(e.rules)
	return e
}

// Evaluate runs the request context through the active rule set and returns
// a fully formed routing decision. It never fails on well-formed input.
func (e *Engine) Evaluate(ctx RequestContext) RoutingDecision {
	ctx = ctx.normalized()

	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	allowed := newProviderSet(providers.KnownIDs())
	forbidden := newProviderSet(nil)
	requiresReview := false
	var allowedModels []string
	appliedRules := []string{}

	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		if !matches(rule.Conditions, ctx) {
			continue
		}

		appliedRules = append(appliedRules, rule.Name)

		if len(rule.Actions.AllowedProviders) > 0 {
			allowed.intersect(rule.Actions.AllowedProviders)
		}
		if len(rule.Actions.ForbiddenProviders) > 0 {
			forbidden.union(rule.Actions.ForbiddenProviders)
		}
		if rule.Actions.RequiresHumanReview {
			requiresReview = true
		}
		if len(rule.Actions.AllowedModels) > 0 {
			allowedModels = rule.Actions.AllowedModels
		}
	}

	allowed.subtract(forbidden)
	surviving := allowed.ordered()

	if len(surviving) == 0 {
		e.logger.Warn("no compliant provider for request context",
			"industry", ctx.Industry,
			"data_classification", ctx.DataClassification,
			"applied_rules", appliedRules,
		)
		return RoutingDecision{
			Provider:            e.config.DefaultProvider,
			Model:               providers.DefaultModelFor(e.config.DefaultProvider),
			Allowed:             false,
			RequiresHumanReview: true,
			ComplianceStatus:    StatusRejected,
			AppliedRules:        appliedRules,
			RejectionReason:     RejectionNoCompliantProvider,
			RiskThreshold:       ctx.RiskLevel,
			Metadata: DecisionMetadata{
				AllowedProviders:   surviving,
				DataClassification: ctx.DataClassification,
				Industry:           ctx.Industry,
			},
		}
	}

	provider := e.selectProvider(allowed, ctx)

	model := providers.DefaultModelFor(provider)
	if len(allowedModels) > 0 {
		model = allowedModels[0]
	}

	e.logger.Debug("routing decision",
		"provider", provider,
		"model", model,
		"applied_rules", appliedRules,
		"requires_human_review", requiresReview,
	)

	return RoutingDecision{
		Provider:            provider,
		Model:               model,
		Allowed:             true,
		RequiresHumanReview: requiresReview,
		ComplianceStatus:    StatusApproved,
		AppliedRules:        appliedRules,
		RiskThreshold:       ctx.RiskLevel,
		Metadata: DecisionMetadata{
			AllowedProviders:   surviving,
			DataClassification: ctx.DataClassification,
			Industry:           ctx.Industry,
		},
	}
}

// selectProvider applies the fixed precedence: the BAA-capable provider for
// healthcare traffic, then for PHI/restricted classifications, then the
// configured default, then the first surviving provider in stable order.
func (e *Engine) selectProvider(allowed *providerSet, ctx RequestContext) providers.ID {
	hipaa := e.config.HIPAAProvider

	if allowed.contains(hipaa) && ctx.Industry == IndustryHealthcare {
		return hipaa
	}
	if allowed.contains(hipaa) &&
		(ctx.DataClassification == ClassificationPHI || ctx.DataClassification == ClassificationRestricted) {
		return hipaa
	}
	if allowed.contains(e.config.DefaultProvider) {
		return e.config.DefaultProvider
	}
	return allowed.ordered()[0]
}

// Rules returns a copy of the active rule set in evaluation order.
func (e *Engine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rules := make([]Rule, len(e.rules))
	copy(rules, e.rules)
	return rules
}

// matches reports whether every condition field matches the context.
// Condition fields absent from the rule impose no constraint.
func matches(conditions map[string]Condition, ctx RequestContext) bool {
	for field, cond := range conditions {
		if !matchField(cond, ctx, field) {
			return false
		}
	}
	return true
}

// matchField applies one condition against one context field.
func matchField(cond Condition, ctx RequestContext, field string) bool {
	actual, numeric, present := contextValue(ctx, field)

	switch {
	case cond.Range != nil:
		// A range with no bounds imposes no constraint: nothing was asked.
		if cond.Range.Min == nil && cond.Range.Max == nil {
			return true
		}
		if !present || !numeric.valid {
			return false
		}
		if cond.Range.Min != nil && numeric.value < *cond.Range.Min {
			return false
		}
		if cond.Range.Max != nil && numeric.value > *cond.Range.Max {
			return false
		}
		return true

	case len(cond.OneOf) > 0:
		if !present {
			return false
		}
		for _, want := range cond.OneOf {
			if actual == want {
				return true
			}
		}
		return false

	default:
		return present && actual == cond.Equals
	}
}

// numericValue carries an optional numeric view of a context field.
type numericValue struct {
	value float64
	valid bool
}

// contextValue resolves a condition field name against the context. The
// matchable fields are industry, data_classification, and risk_level;
// anything else is absent (opaque fields never participate in matching).
func contextValue(ctx RequestContext, field string) (string, numericValue, bool) {
	switch field {
	case "industry":
		return string(ctx.Industry), numericValue{}, true
	case "data_classification":
		return string(ctx.DataClassification), numericValue{}, true
	case "risk_level":
		return strconv.FormatFloat(ctx.RiskLevel, 'f', -1, 64),
			numericValue{value: ctx.RiskLevel, valid: true}, true
	}
	return "", numericValue{}, false
}

// sortRules orders rules by descending priority, preserving insertion order
// for equal priorities.
func sortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
}

// providerSet is an order-preserving provider set. Iteration order is the
// stable KnownIDs order regardless of mutation history, which makes the
// "first surviving provider" fallback deterministic.
type providerSet struct {
	members map[providers.ID]bool
}

func newProviderSet(ids []providers.ID) *providerSet {
	s := &providerSet{members: make(map[providers.ID]bool, len(ids))}
	for _, id := range ids {
		s.members[id] = true
	}
	return s
}

func (s *providerSet) contains(id providers.ID) bool {
	return s.members[id]
}

func (s *providerSet) intersect(ids []providers.ID) {
	keep := make(map[providers.ID]bool, len(ids))
	for _, id := range ids {
		if s.members[id] {
			keep[id] = true
		}
	}
	s.members = keep
}

func (s *providerSet) union(ids []providers.ID) {
	for _, id := range ids {
		s.members[id] = true
	}
}

func (s *providerSet) subtract(other *providerSet) {
	for id := range other.members {
		delete(s.members, id)
	}
}

func (s *providerSet) ordered() []providers.ID {
	out := make([]providers.ID, 0, len(s.members))
	for _, id := range providers.KnownIDs() {
		if s.members[id] {
			out = append(out, id)
		}
	}
	return out
}
