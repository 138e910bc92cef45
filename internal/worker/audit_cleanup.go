package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/travel-console/pkg/metrics"
)

// Cleaner deletes audit entries created before a cutoff.
type Cleaner interface {
	Cleanup(ctx context.Context, before time.Time) (int64, error)
}

type AuditCleanupWorker struct {
	cleaner         Cleaner
	retentionDays   int
	cleanupInterval time.Duration
	logger          zerolog.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewAuditCleanupWorker(cleaner Cleaner, retentionDays int, cleanupInterval time.Duration, logger zerolog.Logger, m *metrics.Metrics) *AuditCleanupWorker {
	if cleanupInterval <= 0 {
		cleanupInterval = 24 * time.Hour
	}
	return &AuditCleanupWorker{
		cleaner:         cleaner,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		logger:          logger.With().Str("worker", "audit_cleanup").Logger(),
		metrics:         m,
		now:             time.Now,
	}
}

// Start runs a cleanup every interval until ctx is done. A zero retention
// keeps entries forever.
func (w *AuditCleanupWorker) Start(ctx context.Context) {
	if w.retentionDays <= 0 {
		w.logger.Info().Msg("Audit retention disabled")
		return
	}

	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error().Err(err).Msg("Audit cleanup failed")
			}
		}
	}
}

// RunOnce deletes entries older than the retention window.
func (w *AuditCleanupWorker) RunOnce(ctx context.Context) (int64, error) {
	cutoff := w.now().AddDate(0, 0, -w.retentionDays)

	rows, err := w.cleaner.Cleanup(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}

	if w.metrics != nil {
		w.metrics.AuditLogsCleaned.Add(float64(rows))
	}
	w.logger.Info().Int64("rows", rows).Time("cutoff", cutoff).Msg("Cleaned up audit logs")
	return rows, nil
}
