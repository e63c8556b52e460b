package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"arclight-hq/meridian/pkg/policy"
	"arclight-hq/meridian/pkg/providers"
	"arclight-hq/meridian/pkg/risk"
)

// partitionDateFormat names partition files by UTC calendar date.
const partitionDateFormat = "2006-01-02"

// Logger writes hash-chained audit records to date-partitioned JSONL files.
// The chain pointer is the only mutable state; LogRequest calls are
// linearized by the mutex, and the lock order becomes the chain order.
// Appends are write-through: LogRequest returns only after the record is
// flushed to the partition file.
type Logger struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time

	mu          sync.Mutex
	lastHash    string
	currentDate string
}

// NewLogger creates an audit logger writing under dir, creating it if
// needed. If today's partition already has records, the chain resumes from
// its last stored hash rather than restarting at genesis.
func NewLogger(dir string, logger *slog.Logger) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create audit directory %q: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	l := &Logger{
		dir:    dir,
		logger: logger.With("component", "audit.logger"),
		now:    time.Now,
	}

	date := l.now().UTC().Format(partitionDateFormat)
	l.currentDate = date
	l.lastHash = l.recoverTip(date)

	return l, nil
}

// LogRequest builds, chains, and persists the audit record for one completed
// request cycle, returning the stored record. Raw prompt and user identifier
// are reduced to truncated hashes before the record exists; resp may be nil
// for cycles that never reached a provider response.
func (l *Logger) LogRequest(
	requestID, userID, sessionID, ipAddress, prompt string,
	ctx policy.RequestContext,
	decision policy.RoutingDecision,
	resp *providers.GenerationResponse,
	score risk.Score,
) (Record, error) {
	now := l.now().UTC()

	record := Record{
		Timestamp:  now.Format(time.RFC3339Nano),
		RequestID:  requestID,
		UserID:     hashIdentifier(userID),
		SessionID:  sessionID,
		IPAddress:  ipAddress,
		PromptHash: hashIdentifier(prompt),
		Context: ContextBlock{
			Industry:           string(ctx.Industry),
			DataClassification: string(ctx.DataClassification),
			RiskLevel:          ctx.RiskLevel,
		},
		Routing: RoutingBlock{
			Provider:         string(decision.Provider),
			Model:            decision.Model,
			Allowed:          decision.Allowed,
			ComplianceStatus: decision.ComplianceStatus,
			AppliedRules:     decision.AppliedRules,
		},
		Risk: RiskBlock{
			OverallRisk:             score.OverallRisk,
			HallucinationRisk:       score.HallucinationRisk,
			ComplianceRisk:          score.ComplianceRisk,
			DataLeakageRisk:         score.DataLeakageRisk,
			CulturalSensitivityRisk: score.CulturalSensitivityRisk,
			Flags:                   score.Flags,
		},
	}
	if resp != nil {
		record.Response = ResponseBlock{
			Model:        resp.Model,
			TokensInput:  resp.TokensInput,
			TokensOutput: resp.TokensOutput,
			LatencyMs:    resp.LatencyMs,
			CostUSD:      resp.CostUSD,
		}
	}

	// Canonicalization happens outside the critical section; only the
	// read-compute-update of the chain pointer and the file append are
	// exclusive.
	raw, err := json.Marshal(record)
	if err != nil {
		return Record{}, fmt.Errorf("failed to serialize audit record: %w", err)
	}
	canonical, err := canonicalize(raw)
	if err != nil {
		return Record{}, err
	}

	date := now.Format(partitionDateFormat)
	path := l.partitionPath(date)

	l.mu.Lock()
	defer l.mu.Unlock()

	if date != l.currentDate {
		// New UTC day: each partition owns an independent chain.
		l.currentDate = date
		l.lastHash = l.recoverTip(date)
	}

	record.PreviousHash = l.lastHash
	record.AuditHash = chainHash(canonical, l.lastHash)

	if err := l.appendRecord(path, record); err != nil {
		return Record{}, err
	}
	l.lastHash = record.AuditHash

	l.logger.Debug("audit record written",
		"request_id", record.RequestID,
		"partition", date,
		"audit_hash", record.AuditHash,
	)
	return record, nil
}

// appendRecord appends one JSON line and flushes it to disk. The chain
// pointer is only advanced by the caller after this succeeds.
func (l *Logger) appendRecord(path string, record Record) error {
	line, err := json.Marshal(record)
	if err != nil {
		return NewWriteError(path, "failed to serialize record", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return NewWriteError(path, "failed to open partition", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return NewWriteError(path, "failed to append record", err)
	}
	if err := f.Sync(); err != nil {
		return NewWriteError(path, "failed to flush record", err)
	}
	return nil
}

// recoverTip returns the audit hash of the last record in the date's
// partition, or the genesis hash for a fresh or unreadable partition.
func (l *Logger) recoverTip(date string) string {
	f, err := os.Open(l.partitionPath(date))
	if err != nil {
		return GenesisHash
	}
	defer f.Close()

	tip := GenesisHash
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
		if record.AuditHash != "" {
			tip = record.AuditHash
		}
	}
	if err := scanner.Err(); err != nil {
		l.logger.Warn("failed to recover chain tip, restarting at genesis",
			"partition", date,
			"error", err,
		)
		return GenesisHash
	}
	return tip
}

// Dir returns the partition directory.
func (l *Logger) Dir() string {
	return l.dir
}

func (l *Logger) partitionPath(date string) string {
	return filepath.Join(l.dir, "audit_"+date+".jsonl")
}
