package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arclight-hq/meridian/pkg/providers"
	"arclight-hq/meridian/pkg/risk"
)

var benchmarkFlags struct {
	provider string
	samples  string
	format   string
}

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Score a provider's output samples",
	Long: `Run the risk engine over a file of output samples and aggregate the
results into a provider compliance score.

The samples file is a JSON array of objects with an "output" string and an
optional "context" object carrying industry and data_classification:

  [
    {"output": "Consult your physician.", "context": {"industry": "healthcare"}},
    {"output": "Studies show that..."}
  ]

Examples:
  # Benchmark recorded anthropic outputs
  meridian benchmark --provider anthropic --samples samples.json

  # JSON output for dashboards
  meridian benchmark --provider openai --samples samples.json --format json`,
	RunE: runBenchmark,
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)

	benchmarkCmd.Flags().StringVarP(&benchmarkFlags.provider, "provider", "p", "", "provider the samples came from")
	benchmarkCmd.Flags().StringVarP(&benchmarkFlags.samples, "samples", "s", "", "JSON file of output samples")
	benchmarkCmd.Flags().StringVar(&benchmarkFlags.format, "format", "text", "output format: text, json")

	benchmarkCmd.MarkFlagRequired("provider")
	benchmarkCmd.MarkFlagRequired("samples")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	id := providers.ID(benchmarkFlags.provider)
	if !id.Valid() {
		return fmt.Errorf("unknown provider %q", benchmarkFlags.provider)
	}

	samples, err := loadSamples(benchmarkFlags.samples)
	if err != nil {
		return err
	}

	engine := risk.NewEngine(discardLogger())
	result, err := engine.Benchmark(id, samples)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	if benchmarkFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	fmt.Printf("Provider:           %s\n", result.Provider)
	fmt.Printf("Samples analyzed:   %d\n", result.SamplesAnalyzed)
	fmt.Printf("Avg hallucination:  %.3f\n", result.AvgHallucinationRisk)
	fmt.Printf("Avg compliance:     %.3f\n", result.AvgComplianceRisk)
	fmt.Printf("Avg overall:        %.3f\n", result.AvgOverallRisk)
	fmt.Printf("High-risk samples:  %d\n", result.HighRiskCount)
	fmt.Printf("Compliance score:   %.3f\n", result.ComplianceScore)
	return nil
}

// loadSamples reads and decodes a JSON samples file.
func loadSamples(path string) ([]risk.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read samples file %q: %w", path, err)
	}

	var samples []risk.Sample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("failed to parse samples file %q: %w", path, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("samples file %q contains no samples", path)
	}
	return samples, nil
}
