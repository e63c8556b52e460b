package policy

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"arclight-hq/meridian/pkg/providers"
)

// DataClassification is the sensitivity tier of the data in a request.
type DataClassification string

const (
	ClassificationPublic       DataClassification = "public"
	ClassificationInternal     DataClassification = "internal"
	ClassificationConfidential DataClassification = "confidential"
	ClassificationPHI          DataClassification = "phi"
	ClassificationRestricted   DataClassification = "restricted"
)

// Industry is the regulated vertical a request belongs to.
type Industry string

const (
	IndustryHealthcare Industry = "healthcare"
	IndustryFinance    Industry = "finance"
	IndustryLegal      Industry = "legal"
	IndustryGovernment Industry = "government"
	IndustryGeneral    Industry = "general"
)

// RequestContext carries the compliance-relevant attributes of a request.
// UserID and SessionID are opaque to rule matching; they pass through to the
// audit record only.
type RequestContext struct {
	// Industry is the regulated vertical. Defaults to general when empty.
	Industry Industry `json:"industry"`

	// DataClassification is the sensitivity tier. Defaults to internal.
	DataClassification DataClassification `json:"data_classification"`

	// RiskLevel is the caller-supplied a-priori risk estimate in [0,1].
	RiskLevel float64 `json:"risk_level"`

	// UserID is the raw caller identity. Hashed before persistence.
	UserID string `json:"user_id,omitempty"`

	// SessionID groups requests from one session.
	SessionID string `json:"session_id,omitempty"`
}

// normalized returns the context with the documented defaults applied for
// empty enum fields.
func (c RequestContext) normalized() RequestContext {
	if c.Industry == "" {
		c.Industry = IndustryGeneral
	}
	if c.DataClassification == "" {
		c.DataClassification = ClassificationInternal
	}
	return c
}

// NumericRange bounds a numeric context field. A nil bound is unconstrained.
type NumericRange struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

// Condition is the tagged-variant match specification for one context field.
// Exactly one of the three kinds is populated:
//
//   - Equals: scalar equality
//   - OneOf: set membership
//   - Range: numeric bounds (a range with neither bound matches anything,
//     since no constraint was specified)
type Condition struct {
	Equals string
	OneOf  []string
	Range  *NumericRange
}

// UnmarshalYAML decodes the three condition shapes the rule document allows:
// a scalar, a sequence, or a {min, max} mapping.
func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&c.Equals)
	case yaml.SequenceNode:
		return node.Decode(&c.OneOf)
	case yaml.MappingNode:
		var r NumericRange
		if err := node.Decode(&r); err != nil {
			return fmt.Errorf("invalid range condition: %w", err)
		}
		c.Range = &r
		return nil
	default:
		return fmt.Errorf("unsupported condition value at line %d", node.Line)
	}
}

// Actions is the effect payload of a matched rule. All fields are optional;
// unset fields leave the running routing state untouched.
type Actions struct {
	// AllowedProviders intersects into the running allowed-provider set.
	AllowedProviders []providers.ID

	// ForbiddenProviders unions into the running forbidden-provider set.
	ForbiddenProviders []providers.ID

	// AllowedModels replaces the running model allowlist. Because rules are
	// evaluated high-to-low priority, the last matching rule wins.
	AllowedModels []string

	// RequiresHumanReview ORs into the running flag; once true, stays true.
	RequiresHumanReview bool

	// Metadata carries free-form effect notes (compliance notes, retention
	// directives, optimization hints). Recorded for diagnostics only.
	Metadata map[string]string
}

// Rule is a named, prioritized compliance rule. Rules are immutable after
// load; the engine owns the active set exclusively.
type Rule struct {
	// Name identifies the rule in applied-rule lists and audit records.
	// Duplicate names are distinct rule instances, not replacements.
	Name string

	// Description is a human-readable summary.
	Description string

	// Priority orders evaluation; higher values are evaluated first.
	// Equal priorities keep insertion order.
	Priority int

	// Conditions maps context field names to match specifications. A rule
	// matches iff every condition field matches (logical AND). A rule with
	// no conditions matches every context.
	Conditions map[string]Condition

	// Actions is the effect payload merged on match.
	Actions Actions

	// Enabled gates evaluation; disabled rules are skipped.
	Enabled bool
}

// ComplianceStatus values for routing decisions.
const (
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// DecisionMetadata carries the diagnostic view of an evaluation.
type DecisionMetadata struct {
	// AllowedProviders is the surviving allowed set after forbidden
	// subtraction, in stable order.
	AllowedProviders []providers.ID `json:"allowed_providers"`

	// DataClassification echoes the evaluated context.
	DataClassification DataClassification `json:"data_classification"`

	// Industry echoes the evaluated context.
	Industry Industry `json:"industry"`
}

// RoutingDecision is the immutable outcome of a policy evaluation. A
// rejection (Allowed false) is a normal decision, not an error: the decision
// is always fully formed, with provider and model falling back to the
// configured defaults.
type RoutingDecision struct {
	Provider            providers.ID       `json:"provider"`
	Model               string             `json:"model"`
	Allowed             bool               `json:"allowed"`
	RequiresHumanReview bool               `json:"requires_human_review"`
	ComplianceStatus    string             `json:"compliance_status"`
	AppliedRules        []string           `json:"applied_rules"`
	RejectionReason     string             `json:"rejection_reason,omitempty"`
	RiskThreshold       float64            `json:"risk_threshold"`
	Metadata            DecisionMetadata   `json:"metadata"`
}
