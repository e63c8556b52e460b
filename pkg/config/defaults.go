package config

import "time"

// Default values for configuration fields.
const (
	// Rules defaults
	DefaultRulesPath     = "./rules.yaml"
	DefaultWatchDebounce = 500 * time.Millisecond

	// Policy defaults
	DefaultPolicyProvider = "anthropic"
	DefaultHIPAAProvider  = "anthropic"

	// Audit defaults
	DefaultAuditDir       = "data/audit"
	DefaultAuditQueueSize = 256
	DefaultSchedule       = "0 3 * * *"
	DefaultRetentionDays  = 2555 // 7 years

	// Gateway defaults
	DefaultRequestTimeout = 60 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel    = "info"
	DefaultLoggingFormat   = "json"
	DefaultRedactSensitive = true
	DefaultMetricsEnabled  = true
	DefaultMetricsAddress  = "127.0.0.1:9090"
	DefaultMetricsPath     = "/metrics"
	DefaultNamespace       = "meridian"
)

// DefaultDurationBuckets are the histogram buckets for provider request
// duration, in seconds.
var DefaultDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

// ApplyDefaults applies default values to a Config struct. It sets defaults
// for any fields that have zero values. This function is idempotent and safe
// to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Rules defaults
	if cfg.Rules.Path == "" {
		cfg.Rules.Path = DefaultRulesPath
	}
	if cfg.Rules.WatchDebounce == 0 {
		cfg.Rules.WatchDebounce = DefaultWatchDebounce
	}

	// Policy defaults
	if cfg.Policy.DefaultProvider == "" {
		cfg.Policy.DefaultProvider = DefaultPolicyProvider
	}
	if cfg.Policy.HIPAAProvider == "" {
		cfg.Policy.HIPAAProvider = DefaultHIPAAProvider
	}

	// Audit defaults
	if cfg.Audit.Dir == "" {
		cfg.Audit.Dir = DefaultAuditDir
	}
	if cfg.Audit.QueueSize == 0 {
		cfg.Audit.QueueSize = DefaultAuditQueueSize
	}
	if cfg.Audit.Scheduler.Schedule == "" {
		cfg.Audit.Scheduler.Schedule = DefaultSchedule
	}
	if cfg.Audit.Scheduler.RetentionDays == 0 {
		cfg.Audit.Scheduler.RetentionDays = DefaultRetentionDays
	}

	// Gateway defaults
	if cfg.Gateway.RequestTimeout == 0 {
		cfg.Gateway.RequestTimeout = DefaultRequestTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Logging.RedactSensitive == nil {
		cfg.Telemetry.Logging.RedactSensitive = boolPtr(DefaultRedactSensitive)
	}
	if cfg.Telemetry.Metrics.Enabled == nil {
		cfg.Telemetry.Metrics.Enabled = boolPtr(DefaultMetricsEnabled)
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultNamespace
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
}

func boolPtr(b bool) *bool { return &b }
