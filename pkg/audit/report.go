package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// RiskAverages holds the arithmetic means of the recorded risk scores.
type RiskAverages struct {
	Overall             float64 `json:"overall"`
	Hallucination       float64 `json:"hallucination"`
	Compliance          float64 `json:"compliance"`
	DataLeakage         float64 `json:"data_leakage"`
	CulturalSensitivity float64 `json:"cultural_sensitivity"`
}

// ComplianceReport aggregates the audit trail over a date range for
// external auditors.
type ComplianceReport struct {
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`

	// PartitionsRead counts partition files found in the range; dates with
	// no traffic have no partition and are skipped.
	PartitionsRead int `json:"partitions_read"`

	TotalRequests int `json:"total_requests"`

	// PHIRequests counts cycles whose context carried phi or restricted
	// data.
	PHIRequests int `json:"phi_requests"`

	// RejectedRequests counts cycles the policy engine rejected.
	RejectedRequests int `json:"rejected_requests"`

	// FlaggedRequests counts cycles where risk analysis raised at least one
	// flag.
	FlaggedRequests int `json:"flagged_requests"`

	// ProviderBreakdown counts requests per routed provider.
	ProviderBreakdown map[string]int `json:"provider_breakdown"`

	AverageRiskScores RiskAverages `json:"average_risk_scores"`

	TotalCostUSD float64 `json:"total_cost_usd"`
}

// ComplianceReport aggregates every partition between start and end
// (inclusive, UTC dates). Missing partitions within the range are skipped;
// they mean no traffic that day, not an error.
func (l *Logger) ComplianceReport(start, end time.Time) (ComplianceReport, error) {
	startDay := start.UTC().Truncate(24 * time.Hour)
	endDay := end.UTC().Truncate(24 * time.Hour)
	if endDay.Before(startDay) {
		return ComplianceReport{}, fmt.Errorf("invalid report period: %s after %s",
			startDay.Format(partitionDateFormat), endDay.Format(partitionDateFormat))
	}

	report := ComplianceReport{
		PeriodStart:       startDay.Format(partitionDateFormat),
		PeriodEnd:         endDay.Format(partitionDateFormat),
		ProviderBreakdown: make(map[string]int),
	}
	var sums RiskAverages

	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		path := l.partitionPath(day.Format(partitionDateFormat))
		records, err := readPartition(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return ComplianceReport{}, err
		}
		report.PartitionsRead++

		for _, record := range records {
			report.TotalRequests++

			switch record.Context.DataClassification {
			case "phi", "restricted":
				report.PHIRequests++
			}
			if record.Routing.ComplianceStatus == "rejected" {
				report.RejectedRequests++
			}
			if len(record.Risk.Flags) > 0 {
				report.FlaggedRequests++
			}
			if record.Routing.Provider != "" {
				report.ProviderBreakdown[record.Routing.Provider]++
			}

			sums.Overall += record.Risk.OverallRisk
			sums.Hallucination += record.Risk.HallucinationRisk
			sums.Compliance += record.Risk.ComplianceRisk
			sums.DataLeakage += record.Risk.DataLeakageRisk
			sums.CulturalSensitivity += record.Risk.CulturalSensitivityRisk
			report.TotalCostUSD += record.Response.CostUSD
		}
	}

	if report.TotalRequests > 0 {
		n := float64(report.TotalRequests)
		report.AverageRiskScores = RiskAverages{
			Overall:             sums.Overall / n,
			Hallucination:       sums.Hallucination / n,
			Compliance:          sums.Compliance / n,
			DataLeakage:         sums.DataLeakage / n,
			CulturalSensitivity: sums.CulturalSensitivity / n,
		}
	}

	l.logger.Info("compliance report generated",
		"period_start", report.PeriodStart,
		"period_end", report.PeriodEnd,
		"total_requests", report.TotalRequests,
		"phi_requests", report.PHIRequests,
	)
	return report, nil
}

// readPartition parses every record line in a partition file. Unparseable
// lines are skipped; reporting is an aggregate view, integrity checking
// belongs to VerifyIntegrity.
func readPartition(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read partition %q: %w", path, err)
	}
	return records, nil
}
