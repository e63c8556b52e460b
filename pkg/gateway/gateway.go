package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"arclight-hq/meridian/pkg/audit"
	"arclight-hq/meridian/pkg/policy"
	"arclight-hq/meridian/pkg/providers"
	"arclight-hq/meridian/pkg/risk"
	"arclight-hq/meridian/pkg/telemetry/metrics"
)

// StatusFailed tags audit records for cycles that passed policy but failed
// at the provider. Distinct from a policy rejection.
const StatusFailed = "failed"

// Config contains gateway configuration.
type Config struct {
	// AuditQueueSize is the audit worker queue depth. Enqueueing blocks
	// when the queue is full; records are never dropped. Default 256.
	AuditQueueSize int
}

// Request is one generation request entering the gateway.
type Request struct {
	Prompt       string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int

	// IPAddress is recorded in the audit trail.
	IPAddress string

	// Context carries the compliance attributes; its UserID and SessionID
	// pass through to the audit record (hashed and verbatim respectively).
	Context policy.RequestContext
}

// Result is the outcome of one admitted cycle. A policy rejection is a
// normal result with Decision.Allowed false and no response or risk score.
type Result struct {
	RequestID string
	Decision  policy.RoutingDecision
	Response  *providers.GenerationResponse
	Risk      risk.Score
}

// auditJob carries everything the worker needs to persist one record.
type auditJob struct {
	requestID string
	ipAddress string
	prompt    string
	ctx       policy.RequestContext
	decision  policy.RoutingDecision
	resp      *providers.GenerationResponse
	score     risk.Score
}

// Gateway runs the evaluate → generate → analyze → audit cycle. Handle is
// safe for concurrent use; the audit trail is ordered by the logger's
// critical section, fed from a single worker goroutine the gateway owns.
type Gateway struct {
	policy   *policy.Engine
	risk     *risk.Engine
	audit    *audit.Logger
	registry *providers.Registry
	metrics  *metrics.Collector
	logger   *slog.Logger

	queue chan auditJob
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New creates a gateway and starts its audit worker. The metrics collector
// may be nil to disable instrumentation.
func New(
	policyEngine *policy.Engine,
	riskEngine *risk.Engine,
	auditLogger *audit.Logger,
	registry *providers.Registry,
	collector *metrics.Collector,
	logger *slog.Logger,
	cfg Config,
) (*Gateway, error) {
	if policyEngine == nil || riskEngine == nil || auditLogger == nil || registry == nil {
		return nil, fmt.Errorf("gateway requires policy, risk, audit, and registry dependencies")
	}
	if cfg.AuditQueueSize <= 0 {
		cfg.AuditQueueSize = 256
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gateway{
		policy:   policyEngine,
		risk:     riskEngine,
		audit:    auditLogger,
		registry: registry,
		metrics:  collector,
		logger:   logger.With("component", "gateway"),
		queue:    make(chan auditJob, cfg.AuditQueueSize),
	}

	g.wg.Add(1)
	go g.auditWorker()

	return g, nil
}

// Handle runs one full request cycle. It returns a Result with a rejected
// decision when policy disallows the request, and an error when the provider
// fails; both paths still produce an audit record.
func (g *Gateway) Handle(ctx context.Context, req Request) (*Result, error) {
	g.mu.RLock()
	closed := g.closed
	g.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	requestID := newRequestID()

	evalStart := time.Now()
	decision := g.policy.Evaluate(req.Context)
	g.metrics.RecordEvaluation(decision.ComplianceStatus, decision.AppliedRules, time.Since(evalStart))

	if !decision.Allowed {
		g.logger.Warn("request rejected by policy",
			"request_id", requestID,
			"reason", decision.RejectionReason,
			"applied_rules", decision.AppliedRules,
		)
		g.enqueue(auditJob{
			requestID: requestID,
			ipAddress: req.IPAddress,
			prompt:    req.Prompt,
			ctx:       req.Context,
			decision:  decision,
		})
		return &Result{RequestID: requestID, Decision: decision}, nil
	}

	provider, err := g.registry.Get(decision.Provider)
	if err != nil {
		return nil, fmt.Errorf("routing decision names unregistered provider %q: %w", decision.Provider, err)
	}

	genStart := time.Now()
	resp, err := provider.Generate(ctx, &providers.GenerationRequest{
		Prompt:       req.Prompt,
		SystemPrompt: req.SystemPrompt,
		Model:        decision.Model,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
		Context: map[string]string{
			"industry":            string(req.Context.Industry),
			"data_classification": string(req.Context.DataClassification),
		},
	})
	genDuration := time.Since(genStart)

	if err != nil {
		errType := providers.ErrorType(err)
		g.metrics.RecordProviderRequest(string(decision.Provider), decision.Model, errType, genDuration, 0, 0, 0)

		// Audit the failed cycle with a clear tag, never fabricated
		// response data.
		failed := decision
		failed.Allowed = false
		failed.ComplianceStatus = StatusFailed
		failed.RejectionReason = "provider error: " + errType
		g.enqueue(auditJob{
			requestID: requestID,
			ipAddress: req.IPAddress,
			prompt:    req.Prompt,
			ctx:       req.Context,
			decision:  failed,
		})

		g.logger.Error("provider generation failed",
			"request_id", requestID,
			"provider", decision.Provider,
			"error_type", errType,
			"error", err,
		)
		return nil, fmt.Errorf("generation via %s failed: %w", decision.Provider, err)
	}

	g.metrics.RecordProviderRequest(string(decision.Provider), resp.Model, "success",
		genDuration, resp.TokensInput, resp.TokensOutput, resp.CostUSD)

	score := g.risk.Analyze(resp.Content, req.Context)
	g.metrics.RecordRiskAnalysis(
		score.OverallRisk,
		score.HallucinationRisk,
		score.ComplianceRisk,
		score.DataLeakageRisk,
		score.CulturalSensitivityRisk,
		score.Flags,
	)

	g.enqueue(auditJob{
		requestID: requestID,
		ipAddress: req.IPAddress,
		prompt:    req.Prompt,
		ctx:       req.Context,
		decision:  decision,
		resp:      resp,
		score:     score,
	})

	g.logger.Info("request cycle complete",
		"request_id", requestID,
		"provider", decision.Provider,
		"model", resp.Model,
		"overall_risk", score.OverallRisk,
		"requires_human_review", decision.RequiresHumanReview,
	)

	return &Result{
		RequestID: requestID,
		Decision:  decision,
		Response:  resp,
		Risk:      score,
	}, nil
}

// enqueue hands a record to the audit worker. It blocks under backpressure
// rather than dropping; if the gateway is closing, the record is written
// inline so nothing admitted is ever lost.
func (g *Gateway) enqueue(job auditJob) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.closed {
		g.writeRecord(job)
		return
	}
	g.queue <- job
}

// auditWorker drains the queue until Close closes it.
func (g *Gateway) auditWorker() {
	defer g.wg.Done()
	for job := range g.queue {
		g.writeRecord(job)
	}
}

func (g *Gateway) writeRecord(job auditJob) {
	_, err := g.audit.LogRequest(
		job.requestID,
		job.ctx.UserID,
		job.ctx.SessionID,
		job.ipAddress,
		job.prompt,
		job.ctx,
		job.decision,
		job.resp,
		job.score,
	)
	g.metrics.RecordAuditWrite(err)
	if err != nil {
		g.logger.Error("audit write failed",
			"request_id", job.requestID,
			"error", err,
		)
	}
}

// Close stops admitting requests and drains every queued audit record
// before returning.
func (g *Gateway) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	close(g.queue)
	g.mu.Unlock()

	g.wg.Wait()
	g.logger.Info("gateway closed, audit queue drained")
	return nil
}

// newRequestID generates a short unique request identifier.
func newRequestID() string {
	u := uuid.New()
	return fmt.Sprintf("req_%x", u[:6])
}
