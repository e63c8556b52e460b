package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "Meridian - compliance-aware AI generation gateway",
	Long: `Meridian is a compliance-aware gateway core for AI generation requests.

It routes generation requests through a policy engine, scores generated
output for risk, and records every cycle in a tamper-evident audit trail:
  - Rule-based provider and model selection (HIPAA-aware)
  - Deterministic risk scoring of generated output
  - Hash-chained JSONL audit partitions with integrity verification
  - Compliance reporting over audit date ranges`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
