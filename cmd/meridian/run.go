package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"arclight-hq/meridian/pkg/audit"
	"arclight-hq/meridian/pkg/config"
	"arclight-hq/meridian/pkg/gateway"
	"arclight-hq/meridian/pkg/policy"
	"arclight-hq/meridian/pkg/providers"
	"arclight-hq/meridian/pkg/risk"
	"arclight-hq/meridian/pkg/telemetry/logging"
	"arclight-hq/meridian/pkg/telemetry/metrics"
)

var runFlags struct {
	rulesPath      string
	auditDir       string
	logLevel       string
	industry       string
	classification string
	userID         string
	dryRun         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Meridian gateway",
	Long: `Start the Meridian gateway with the specified configuration.

The gateway reads prompts from standard input, one per line, routes each
through the policy engine and the configured provider, scores the generated
output, and appends a record to the audit trail. Provider calls are served
by deterministic local stubs; wire real provider adapters behind the
providers.Provider interface for production use.

Examples:
  # Start with default config, healthcare PHI context
  meridian run --industry healthcare --classification phi

  # Start with custom config
  meridian run --config /etc/meridian/config.yaml

  # Validate config without starting
  meridian run --dry-run`,
	RunE: runGateway,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.rulesPath, "rules", "", "override rules file path")
	runCmd.Flags().StringVar(&runFlags.auditDir, "audit-dir", "", "override audit partition directory")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&runFlags.industry, "industry", "general", "request industry context")
	runCmd.Flags().StringVar(&runFlags.classification, "classification", "internal", "request data classification")
	runCmd.Flags().StringVar(&runFlags.userID, "user", "cli", "user identity for the audit trail")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting")
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.rulesPath != "" {
		cfg.Rules.Path = runFlags.rulesPath
	}
	if runFlags.auditDir != "" {
		cfg.Audit.Dir = runFlags.auditDir
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(logging.Config{
		Level:           cfg.Telemetry.Logging.Level,
		Format:          cfg.Telemetry.Logging.Format,
		AddSource:       cfg.Telemetry.Logging.AddSource,
		RedactSensitive: *cfg.Telemetry.Logging.RedactSensitive,
		Writer:          os.Stderr,
	})
	if err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics endpoint
	var collector *metrics.Collector
	if *cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(metrics.Config{
			Namespace:              cfg.Telemetry.Metrics.Namespace,
			RequestDurationBuckets: cfg.Telemetry.Metrics.RequestDurationBuckets,
		})

		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
		metricsSrv := &http.Server{Addr: cfg.Telemetry.Metrics.ListenAddress, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metricsSrv.Shutdown(shutdownCtx)
		}()
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Telemetry.Metrics.ListenAddress, cfg.Telemetry.Metrics.Path)
	}

	// Policy engine
	engineCfg := policy.DefaultConfig()
	engineCfg.DefaultProvider = providers.ID(cfg.Policy.DefaultProvider)
	engineCfg.HIPAAProvider = providers.ID(cfg.Policy.HIPAAProvider)
	if len(cfg.Policy.CompliantModels) > 0 {
		engineCfg.CompliantModels = cfg.Policy.CompliantModels
	}
	policyEngine := policy.NewEngine(engineCfg, logger)

	if _, err := os.Stat(cfg.Rules.Path); err == nil {
		if err := policyEngine.LoadRulesFile(cfg.Rules.Path); err != nil {
			return fmt.Errorf("failed to load rules from %q: %w", cfg.Rules.Path, err)
		}
		fmt.Printf("✓ Rules loaded (%d rules)\n", len(policyEngine.Rules()))
	} else {
		logger.Info("rules file not found, running on built-in rules", "path", cfg.Rules.Path)
		fmt.Printf("✓ Built-in rules active (%d rules)\n", len(policyEngine.Rules()))
	}

	if cfg.Rules.Watch {
		watcher, err := policy.NewWatcher(policyEngine, cfg.Rules.Path, cfg.Rules.WatchDebounce, logger)
		if err != nil {
			return fmt.Errorf("failed to create rules watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				logger.Error("rules watcher exited", "error", err)
			}
		}()
		defer watcher.Stop()
		fmt.Printf("✓ Watching %s for changes\n", cfg.Rules.Path)
	}

	// Audit trail
	auditLogger, err := audit.NewLogger(cfg.Audit.Dir, logger)
	if err != nil {
		return fmt.Errorf("failed to open audit trail: %w", err)
	}
	fmt.Printf("✓ Audit trail at %s\n", cfg.Audit.Dir)

	scheduler := audit.NewScheduler(auditLogger, audit.SchedulerConfig{
		Schedule:      cfg.Audit.Scheduler.Schedule,
		RetentionDays: cfg.Audit.Scheduler.RetentionDays,
	}, collector, logger)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start audit scheduler: %w", err)
	}
	defer scheduler.Stop()

	// Providers. Local stubs stand in for real adapters.
	registry := providers.NewRegistry()
	for _, id := range providers.KnownIDs() {
		if err := registry.Register(providers.NewStub(id)); err != nil {
			return err
		}
	}
	fmt.Printf("✓ Providers initialized (%d providers)\n", registry.Len())

	gw, err := gateway.New(policyEngine, risk.NewEngine(logger), auditLogger, registry, collector, logger, gateway.Config{
		AuditQueueSize: cfg.Audit.QueueSize,
	})
	if err != nil {
		return err
	}
	defer gw.Close()

	fmt.Println("\nEnter prompts, one per line. Ctrl+D or Ctrl+C to stop.")
	return promptLoop(ctx, gw, cfg.Gateway.RequestTimeout)
}

// promptLoop reads prompts from stdin until EOF or context cancellation and
// prints one JSON result per cycle.
func promptLoop(ctx context.Context, gw *gateway.Gateway, timeout time.Duration) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nShutting down")
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("stdin read failed: %w", err)
				}
				return nil
			}
			if line == "" {
				continue
			}

			reqCtx, cancel := context.WithTimeout(ctx, timeout)
			result, err := gw.Handle(reqCtx, gateway.Request{
				Prompt: line,
				Context: policy.RequestContext{
					Industry:           policy.Industry(runFlags.industry),
					DataClassification: policy.DataClassification(runFlags.classification),
					UserID:             runFlags.userID,
				},
			})
			cancel()
			if err != nil {
				fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
				continue
			}
			if err := encoder.Encode(result); err != nil {
				return err
			}
		}
	}
}
