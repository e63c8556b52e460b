package config

import "time"

// Config is the root configuration structure for Meridian. It contains all
// configuration sections for the policy engine, risk scoring, the audit
// trail, the gateway, and telemetry.
type Config struct {
	// Rules contains configuration for the policy rule source including the
	// rules file location and hot-reload settings.
	Rules RulesConfig `yaml:"rules"`

	// Policy contains configuration for the policy engine's built-in rule
	// set: the default and HIPAA-designated providers and the compliant
	// model allowlist.
	Policy PolicyConfig `yaml:"policy"`

	// Audit contains configuration for the hash-chained audit trail
	// including the partition directory and maintenance scheduling.
	Audit AuditConfig `yaml:"audit"`

	// Gateway contains configuration for the request orchestrator.
	Gateway GatewayConfig `yaml:"gateway"`

	// Telemetry contains configuration for observability including logging
	// and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RulesConfig contains configuration for the policy rule source.
type RulesConfig struct {
	// Path is the path to the YAML rules document. The file is optional:
	// when it does not exist the engine runs on its built-in rules alone.
	// Default: "./rules.yaml"
	Path string `yaml:"path"`

	// Watch enables automatic reloading when the rules file changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce is how long to coalesce filesystem events before
	// reloading, absorbing editor write-rename bursts.
	// Default: 500ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// PolicyConfig contains configuration for the policy engine's built-in rules.
type PolicyConfig struct {
	// DefaultProvider serves requests no rule constrains.
	// Default: "anthropic"
	DefaultProvider string `yaml:"default_provider"`

	// HIPAAProvider is the BAA-capable provider preferred for healthcare
	// and PHI traffic.
	// Default: "anthropic"
	HIPAAProvider string `yaml:"hipaa_provider"`

	// CompliantModels is the model allowlist applied to healthcare traffic.
	// Empty means the engine's built-in allowlist.
	CompliantModels []string `yaml:"compliant_models"`
}

// AuditConfig contains configuration for the audit trail.
type AuditConfig struct {
	// Dir is the directory holding the JSONL audit partitions.
	// Default: "data/audit"
	Dir string `yaml:"dir"`

	// QueueSize is the gateway's audit worker queue depth. Enqueueing
	// blocks when the queue is full; records are never dropped.
	// Default: 256
	QueueSize int `yaml:"queue_size"`

	// Scheduler contains maintenance scheduling configuration.
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// SchedulerConfig contains audit maintenance scheduling configuration.
type SchedulerConfig struct {
	// Schedule is a cron expression for the maintenance run.
	// Empty disables scheduled maintenance.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`

	// RetentionDays is the partition retention window. Partitions strictly
	// older than this are deleted whole.
	// Default: 2555 (7 years, HIPAA record retention)
	RetentionDays int `yaml:"retention_days"`
}

// GatewayConfig contains configuration for the request orchestrator.
type GatewayConfig struct {
	// RequestTimeout is the maximum duration for one generation cycle,
	// applied as a context deadline around provider dispatch.
	// Default: 60s
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSensitive enables automatic redaction of prompts, credentials,
	// and PHI-shaped values in log attributes.
	// Default: true
	RedactSensitive *bool `yaml:"redact_sensitive"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// ListenAddress is the address for the Prometheus endpoint listener.
	// Format: "host:port".
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "meridian"
	Namespace string `yaml:"namespace"`

	// RequestDurationBuckets defines histogram buckets for provider request
	// duration in seconds.
	// Default: [0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}
