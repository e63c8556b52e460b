package policy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"arclight-hq/meridian/pkg/providers"
)

// ruleDocument is the on-disk shape of a rule file.
type ruleDocument struct {
	Rules []ruleSpec `yaml:"rules"`
}

// ruleSpec is one rule entry as written in YAML. Pointer fields distinguish
// "absent" from zero values so documented defaults apply.
type ruleSpec struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	Priority    *int                 `yaml:"priority"`
	Conditions  map[string]Condition `yaml:"conditions"`
	Actions     map[string]yaml.Node `yaml:"actions"`
	Enabled     *bool                `yaml:"enabled"`
}

// ParseRules parses a YAML rule document and validates every rule. The whole
// document is rejected on the first malformed rule or unknown provider
// reference; a partially applied document is worse than no document.
func ParseRules(data []byte, path string) ([]Rule, error) {
	var doc ruleDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewConfigError(path, "", "failed to parse rule document", err)
	}

	rules := make([]Rule, 0, len(doc.Rules))
	for i, spec := range doc.Rules {
		rule, err := buildRule(spec, path, i)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// buildRule converts a parsed spec to a Rule, applying defaults
// (priority 50, enabled true) and validating provider references.
func buildRule(spec ruleSpec, path string, index int) (Rule, error) {
	if spec.Name == "" {
		return Rule{}, NewConfigError(path, "",
			fmt.Sprintf("rule at index %d has no name", index), nil)
	}

	rule := Rule{
		Name:        spec.Name,
		Description: spec.Description,
		Priority:    50,
		Conditions:  spec.Conditions,
		Enabled:     true,
	}
	if spec.Priority != nil {
		rule.Priority = *spec.Priority
	}
	if spec.Enabled != nil {
		rule.Enabled = *spec.Enabled
	}

	actions, err := buildActions(spec.Actions, path, spec.Name)
	if err != nil {
		return Rule{}, err
	}
	rule.Actions = actions

	return rule, nil
}

// buildActions interprets the action mapping: the four structured effects are
// decoded and validated, every other key lands in free-form metadata.
func buildActions(raw map[string]yaml.Node, path, ruleName string) (Actions, error) {
	var actions Actions

	for key, node := range raw {
		switch key {
		case "allowed_providers":
			ids, err := decodeProviderList(&node, path, ruleName, key)
			if err != nil {
				return Actions{}, err
			}
			actions.AllowedProviders = ids

		case "forbidden_providers":
			ids, err := decodeProviderList(&node, path, ruleName, key)
			if err != nil {
				return Actions{}, err
			}
			actions.ForbiddenProviders = ids

		case "allowed_models":
			var models []string
			if err := node.Decode(&models); err != nil {
				return Actions{}, NewConfigError(path, ruleName, "invalid allowed_models", err)
			}
			actions.AllowedModels = models

		case "requires_human_review":
			var flag bool
			if err := node.Decode(&flag); err != nil {
				return Actions{}, NewConfigError(path, ruleName, "invalid requires_human_review", err)
			}
			actions.RequiresHumanReview = flag

		default:
			if actions.Metadata == nil {
				actions.Metadata = make(map[string]string)
			}
			actions.Metadata[key] = stringifyNode(&node)
		}
	}

	return actions, nil
}

// decodeProviderList decodes a provider name list and rejects unknown
// identities. An unknown provider in a rule is a configuration error, not
// something to skip silently.
func decodeProviderList(node *yaml.Node, path, ruleName, key string) ([]providers.ID, error) {
	var names []string
	if err := node.Decode(&names); err != nil {
		return nil, NewConfigError(path, ruleName, "invalid "+key, err)
	}

	ids := make([]providers.ID, 0, len(names))
	for _, name := range names {
		id := providers.ID(name)
		if !id.Valid() {
			return nil, NewConfigError(path, ruleName,
				fmt.Sprintf("unknown provider %q in %s", name, key), nil)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// stringifyNode renders a free-form metadata value as a string. Scalars keep
// their literal form; anything structured is re-encoded as YAML.
func stringifyNode(node *yaml.Node) string {
	if node.Kind == yaml.ScalarNode {
		return node.Value
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// LoadRulesFile loads additional rules from a YAML document and merges them
// additively into the active rule set, re-sorted by priority. Duplicate rule
// names are distinct rule instances. On error nothing is applied.
func (e *Engine) LoadRulesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewConfigError(path, "", "failed to read rule document", err)
	}

	loaded, err := ParseRules(data, path)
	if err != nil {
		return err
	}

	e.mu.Lock()
	merged := make([]Rule, 0, len(e.rules)+len(loaded))
	merged = append(merged, e.rules...)
	merged = append(merged, loaded...)
	sortRules(merged)
	e.rules = merged
	e.mu.Unlock()

	e.logger.Info("loaded policy rules",
		"path", path,
		"loaded", len(loaded),
		"active", len(merged),
	)
	return nil
}

// ReloadRulesFile rebuilds the active rule set from the built-in defaults
// plus the document at path, replacing it atomically. Used by the watcher so
// repeated reloads of the same file do not accumulate duplicates.
func (e *Engine) ReloadRulesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewConfigError(path, "", "failed to read rule document", err)
	}

	loaded, err := ParseRules(data, path)
	if err != nil {
		return err
	}

	rebuilt := defaultRules(e.config)
	rebuilt = append(rebuilt, loaded...)
	sortRules(rebuilt)

	e.mu.Lock()
	e.rules = rebuilt
	e.mu.Unlock()

	e.logger.Info("reloaded policy rules",
		"path", path,
		"loaded", len(loaded),
		"active", len(rebuilt),
	)
	return nil
}
