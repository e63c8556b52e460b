package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"arclight-hq/meridian/pkg/audit"
)

var reportFlags struct {
	from   string
	to     string
	dir    string
	format string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a compliance report over a date range",
	Long: `Aggregate audit partitions over a date range into a compliance report:
request volumes, PHI traffic, rejections, flagged cycles, per-provider
breakdown, average risk scores, and total cost.

Dates are UTC and inclusive. Days with no traffic are skipped.

Examples:
  # Report over a week
  meridian report --from 2026-08-18 --to 2026-08-25

  # Single day, JSON output
  meridian report --from 2026-08-25 --to 2026-08-25 --format json`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportFlags.from, "from", "", "period start (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportFlags.to, "to", "", "period end (YYYY-MM-DD, default today UTC)")
	reportCmd.Flags().StringVar(&reportFlags.dir, "dir", "", "override audit partition directory")
	reportCmd.Flags().StringVar(&reportFlags.format, "format", "text", "output format: text, json")

	reportCmd.MarkFlagRequired("from")
}

func runReport(cmd *cobra.Command, args []string) error {
	start, err := time.Parse("2006-01-02", reportFlags.from)
	if err != nil {
		return fmt.Errorf("invalid --from %q: expected YYYY-MM-DD", reportFlags.from)
	}
	end, err := parsePartitionDate(reportFlags.to)
	if err != nil {
		return fmt.Errorf("invalid --to %q: expected YYYY-MM-DD", reportFlags.to)
	}

	dir, err := auditDirFromConfig(reportFlags.dir)
	if err != nil {
		return err
	}

	auditLogger, err := audit.NewLogger(dir, discardLogger())
	if err != nil {
		return err
	}

	report, err := auditLogger.ComplianceReport(start, end)
	if err != nil {
		return err
	}

	if reportFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	fmt.Printf("Compliance report %s .. %s\n\n", report.PeriodStart, report.PeriodEnd)
	fmt.Printf("Partitions read:   %d\n", report.PartitionsRead)
	fmt.Printf("Total requests:    %d\n", report.TotalRequests)
	fmt.Printf("PHI requests:      %d\n", report.PHIRequests)
	fmt.Printf("Rejected:          %d\n", report.RejectedRequests)
	fmt.Printf("Flagged:           %d\n", report.FlaggedRequests)
	fmt.Printf("Total cost (USD):  %.4f\n", report.TotalCostUSD)
	fmt.Printf("Avg risk:          overall=%.3f hallucination=%.3f compliance=%.3f leakage=%.3f cultural=%.3f\n",
		report.AverageRiskScores.Overall,
		report.AverageRiskScores.Hallucination,
		report.AverageRiskScores.Compliance,
		report.AverageRiskScores.DataLeakage,
		report.AverageRiskScores.CulturalSensitivity)

	if len(report.ProviderBreakdown) > 0 {
		fmt.Println("Providers:")
		names := make([]string, 0, len(report.ProviderBreakdown))
		for name := range report.ProviderBreakdown {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-12s %d\n", name, report.ProviderBreakdown[name])
		}
	}
	return nil
}
