package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"arclight-hq/meridian/pkg/telemetry/metrics"
)

// SchedulerConfig controls the scheduled audit maintenance jobs.
type SchedulerConfig struct {
	// Schedule is a cron expression for the maintenance run, e.g.
	// "0 3 * * *" for daily at 3 AM. Empty disables the scheduler.
	Schedule string

	// RetentionDays is the partition retention window. Partitions strictly
	// older than this are deleted whole; records inside a live partition
	// are never touched. Default 2555 (7 years).
	RetentionDays int
}

// DefaultSchedulerConfig returns the default maintenance configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Schedule:      "0 3 * * *",
		RetentionDays: 2555,
	}
}

// Scheduler runs periodic audit maintenance: integrity verification of the
// previous day's partition and retention pruning of expired partitions.
type Scheduler struct {
	auditLogger *Logger
	config      SchedulerConfig
	cron        *cron.Cron
	metrics     *metrics.Collector
	logger      *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates an audit maintenance scheduler. The collector may be
// nil, in which case verification outcomes are not recorded.
func NewScheduler(auditLogger *Logger, config SchedulerConfig, collector *metrics.Collector, logger *slog.Logger) *Scheduler {
	if config.RetentionDays <= 0 {
		config.RetentionDays = DefaultSchedulerConfig().RetentionDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		auditLogger: auditLogger,
		config:      config,
		cron:        cron.New(),
		metrics:     collector,
		logger:      logger.With("component", "audit.scheduler"),
	}
}

// Start begins scheduled maintenance. An empty schedule disables it.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" {
		s.logger.Info("maintenance schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, s.runMaintenance); err != nil {
		return fmt.Errorf("failed to schedule audit maintenance: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("audit maintenance scheduler started",
		"schedule", s.config.Schedule,
		"retention_days", s.config.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runMaintenance executes one maintenance cycle.
func (s *Scheduler) runMaintenance() {
	s.verifyYesterday()

	deleted, err := s.PruneExpired()
	if err != nil {
		s.logger.Error("retention pruning failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("retention pruning completed", "deleted_partitions", deleted)
	} else {
		s.logger.Debug("retention pruning completed, nothing expired")
	}
}

// verifyYesterday checks the previous UTC day's partition. A missing
// partition means no traffic and is not a finding.
func (s *Scheduler) verifyYesterday() {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)

	result, err := s.auditLogger.VerifyIntegrity(yesterday)
	if err != nil {
		if errors.Is(err, ErrPartitionNotFound) {
			s.logger.Debug("no partition to verify",
				"partition", yesterday.Format(partitionDateFormat))
			return
		}
		s.logger.Error("scheduled verification failed", "error", err)
		return
	}

	byType := make(map[string]int, len(result.Violations))
	for _, v := range result.Violations {
		byType[v.Type]++
	}
	s.metrics.RecordVerification(result.Verified, byType)

	if !result.Verified {
		s.logger.Error("scheduled verification found violations",
			"partition", yesterday.Format(partitionDateFormat),
			"violations", len(result.Violations),
			"records_checked", result.RecordsChecked,
		)
	}
}

// PruneExpired deletes partition files strictly older than the retention
// window and returns the number removed. Files not matching the partition
// naming scheme are left alone.
func (s *Scheduler) PruneExpired() (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.config.RetentionDays)

	entries, err := os.ReadDir(s.auditLogger.Dir())
	if err != nil {
		return 0, fmt.Errorf("failed to list audit directory: %w", err)
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		date, ok := partitionDate(entry.Name())
		if !ok {
			continue
		}
		if !date.Before(cutoff) {
			continue
		}

		path := filepath.Join(s.auditLogger.Dir(), entry.Name())
		if err := os.Remove(path); err != nil {
			return deleted, fmt.Errorf("failed to remove expired partition %q: %w", path, err)
		}
		deleted++
		s.logger.Info("expired partition removed",
			"partition", entry.Name(),
			"date", date.Format(partitionDateFormat),
		)
	}
	return deleted, nil
}

// Stop stops the scheduler and waits for any running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("audit maintenance scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// partitionDate extracts the UTC date from a partition file name of the
// form audit_YYYY-MM-DD.jsonl.
func partitionDate(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, "audit_") || !strings.HasSuffix(name, ".jsonl") {
		return time.Time{}, false
	}
	datePart := strings.TrimSuffix(strings.TrimPrefix(name, "audit_"), ".jsonl")
	date, err := time.Parse(partitionDateFormat, datePart)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
