package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config controls metric registration.
type Config struct {
	// Namespace prefixes every metric name. Default "meridian".
	Namespace string

	// RequestDurationBuckets override the provider latency histogram
	// buckets. Defaults are tuned for LLM latencies (100ms - 30s).
	RequestDurationBuckets []float64
}

// Collector owns the Prometheus registry and every gateway metric.
// All record methods are safe for concurrent use and nil-receiver safe, so
// instrumentation points never need to guard against a disabled collector.
type Collector struct {
	registry *prometheus.Registry

	// Policy
	evaluationsTotal   *prometheus.CounterVec
	rulesAppliedTotal  *prometheus.CounterVec
	evaluationDuration prometheus.Histogram

	// Risk
	riskScore      *prometheus.HistogramVec
	riskFlagsTotal *prometheus.CounterVec

	// Audit
	auditWritesTotal        *prometheus.CounterVec
	verificationsTotal      *prometheus.CounterVec
	integrityViolationTotal *prometheus.CounterVec

	// Provider
	providerRequestsTotal   *prometheus.CounterVec
	providerRequestDuration *prometheus.HistogramVec
	providerTokensTotal     *prometheus.CounterVec
	providerCostTotal       *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry.
func NewCollector(cfg Config) *Collector {
	if cfg.Namespace == "" {
		cfg.Namespace = "meridian"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0}
	}

	registry := prometheus.NewRegistry()
	c := &Collector{
		registry: registry,

		evaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "policy_evaluations_total",
			Help:      "Total policy evaluations by decision status.",
		}, []string{"status"}),

		rulesAppliedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "policy_rules_applied_total",
			Help:      "Total rule matches by rule name.",
		}, []string{"rule"}),

		evaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "policy_evaluation_duration_seconds",
			Help:      "Policy evaluation duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 2, 15),
		}),

		riskScore: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "risk_score",
			Help:      "Distribution of risk scores by dimension.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}, []string{"dimension"}),

		riskFlagsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "risk_flags_total",
			Help:      "Total risk flags raised by flag name.",
		}, []string{"flag"}),

		auditWritesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "audit_writes_total",
			Help:      "Total audit record writes by outcome.",
		}, []string{"outcome"}),

		verificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "audit_verifications_total",
			Help:      "Total chain verifications by result.",
		}, []string{"result"}),

		integrityViolationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "audit_integrity_violations_total",
			Help:      "Total integrity violations found, by violation type.",
		}, []string{"type"}),

		providerRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "provider_requests_total",
			Help:      "Total provider generation requests by provider, model, and status.",
		}, []string{"provider", "model", "status"}),

		providerRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Provider generation latency in seconds.",
			Buckets:   cfg.RequestDurationBuckets,
		}, []string{"provider"}),

		providerTokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "provider_tokens_total",
			Help:      "Total tokens processed by provider and direction.",
		}, []string{"provider", "direction"}),

		providerCostTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "provider_cost_usd_total",
			Help:      "Accumulated estimated provider cost in USD.",
		}, []string{"provider"}),
	}

	registry.MustRegister(
		c.evaluationsTotal,
		c.rulesAppliedTotal,
		c.evaluationDuration,
		c.riskScore,
		c.riskFlagsTotal,
		c.auditWritesTotal,
		c.verificationsTotal,
		c.integrityViolationTotal,
		c.providerRequestsTotal,
		c.providerRequestDuration,
		c.providerTokensTotal,
		c.providerCostTotal,
	)
	return c
}

// Registry returns the collector's registry for handler wiring.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordEvaluation records one policy evaluation outcome.
func (c *Collector) RecordEvaluation(status string, appliedRules []string, duration time.Duration) {
	if c == nil {
		return
	}
	c.evaluationsTotal.WithLabelValues(status).Inc()
	c.evaluationDuration.Observe(duration.Seconds())
	for _, rule := range appliedRules {
		c.rulesAppliedTotal.WithLabelValues(rule).Inc()
	}
}

// RecordRiskAnalysis records the score distribution and raised flags of one
// analysis.
func (c *Collector) RecordRiskAnalysis(overall, hallucination, compliance, leakage, cultural float64, flags []string) {
	if c == nil {
		return
	}
	c.riskScore.WithLabelValues("overall").Observe(overall)
	c.riskScore.WithLabelValues("hallucination").Observe(hallucination)
	c.riskScore.WithLabelValues("compliance").Observe(compliance)
	c.riskScore.WithLabelValues("data_leakage").Observe(leakage)
	c.riskScore.WithLabelValues("cultural_sensitivity").Observe(cultural)
	for _, flag := range flags {
		c.riskFlagsTotal.WithLabelValues(flag).Inc()
	}
}

// RecordAuditWrite records one audit append attempt.
func (c *Collector) RecordAuditWrite(err error) {
	if c == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.auditWritesTotal.WithLabelValues(outcome).Inc()
}

// RecordVerification records one chain verification and its findings.
func (c *Collector) RecordVerification(verified bool, violationsByType map[string]int) {
	if c == nil {
		return
	}
	result := "verified"
	if !verified {
		result = "violations_found"
	}
	c.verificationsTotal.WithLabelValues(result).Inc()
	for vtype, n := range violationsByType {
		c.integrityViolationTotal.WithLabelValues(vtype).Add(float64(n))
	}
}

// RecordProviderRequest records one generation attempt.
func (c *Collector) RecordProviderRequest(provider, model, status string, duration time.Duration, tokensIn, tokensOut int, costUSD float64) {
	if c == nil {
		return
	}
	c.providerRequestsTotal.WithLabelValues(provider, model, status).Inc()
	c.providerRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if tokensIn > 0 {
		c.providerTokensTotal.WithLabelValues(provider, "input").Add(float64(tokensIn))
	}
	if tokensOut > 0 {
		c.providerTokensTotal.WithLabelValues(provider, "output").Add(float64(tokensOut))
	}
	if costUSD > 0 {
		c.providerCostTotal.WithLabelValues(provider).Add(costUSD)
	}
}
