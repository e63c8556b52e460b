package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"arclight-hq/meridian/pkg/policy"
	"arclight-hq/meridian/pkg/providers"
)

var rulesFlags struct {
	file   string
	format string
	report bool
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Validate and list policy rules",
	Long: `Validate a YAML rules document and list the effective rule set.

The command parses the rules file with the same loader the gateway uses, so
a document that lints clean here loads clean at runtime. Without --file it
lists the built-in rules.

Examples:
  # Validate and list a rules file
  meridian rules --file rules.yaml

  # Show the effective compliance configuration
  meridian rules --file rules.yaml --report

  # JSON output for CI/CD
  meridian rules --file rules.yaml --format json`,
	RunE: listRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringVarP(&rulesFlags.file, "file", "f", "", "rules file to validate")
	rulesCmd.Flags().StringVar(&rulesFlags.format, "format", "text", "output format: text, json")
	rulesCmd.Flags().BoolVar(&rulesFlags.report, "report", false, "print the compliance configuration report")
}

// ruleSummary is the JSON projection of one effective rule.
type ruleSummary struct {
	Name        string `json:"name"`
	Priority    int    `json:"priority"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
	Actions     string `json:"actions"`
}

func listRules(cmd *cobra.Command, args []string) error {
	engine := policy.NewEngine(policy.DefaultConfig(), discardLogger())

	if rulesFlags.file != "" {
		if err := engine.LoadRulesFile(rulesFlags.file); err != nil {
			return fmt.Errorf("rules validation failed: %w", err)
		}
	}

	if rulesFlags.report {
		return printComplianceReport(engine)
	}

	rules := engine.Rules()
	summaries := make([]ruleSummary, 0, len(rules))
	for _, r := range rules {
		summaries = append(summaries, ruleSummary{
			Name:        r.Name,
			Priority:    r.Priority,
			Enabled:     r.Enabled,
			Description: r.Description,
			Actions:     summarizeActions(r.Actions),
		})
	}

	if rulesFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summaries)
	}

	if rulesFlags.file != "" {
		fmt.Printf("✓ %s is valid\n\n", rulesFlags.file)
	}
	fmt.Printf("%-40s %8s %-8s %s\n", "NAME", "PRIORITY", "ENABLED", "ACTIONS")
	for _, s := range summaries {
		fmt.Printf("%-40s %8d %-8t %s\n", s.Name, s.Priority, s.Enabled, s.Actions)
	}
	return nil
}

// summarizeActions renders a rule's effect payload as a compact one-liner.
func summarizeActions(a policy.Actions) string {
	var parts []string
	if len(a.AllowedProviders) > 0 {
		parts = append(parts, fmt.Sprintf("allow=%v", a.AllowedProviders))
	}
	if len(a.ForbiddenProviders) > 0 {
		parts = append(parts, fmt.Sprintf("forbid=%v", a.ForbiddenProviders))
	}
	if len(a.AllowedModels) > 0 {
		parts = append(parts, fmt.Sprintf("models=%d", len(a.AllowedModels)))
	}
	if a.RequiresHumanReview {
		parts = append(parts, "review")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func printComplianceReport(engine *policy.Engine) error {
	report := engine.ComplianceReport()

	if rulesFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	fmt.Printf("Rules:            %d total, %d enabled\n", report.TotalRules, report.EnabledRules)
	fmt.Printf("Default provider: %s\n", report.DefaultProvider)
	fmt.Printf("HIPAA provider:   %s\n", report.HIPAAProvider)
	fmt.Printf("Compliant models: %s\n", strings.Join(report.CompliantModels, ", "))
	fmt.Println("Provider status:")

	ids := make([]string, 0, len(report.ProviderStatus))
	for id := range report.ProviderStatus {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	for _, id := range ids {
		status := report.ProviderStatus[providers.ID(id)]
		fmt.Printf("  %-12s hipaa=%t baa=%t phi=%t zero_retention=%t\n",
			id, status.HIPAACompliant, status.BAAAvailable, status.AllowedForPHI, status.ZeroRetention)
	}
	return nil
}
