package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Recorder is what the domain services depend on to leave an audit trail.
type Recorder interface {
	Record(ctx context.Context, operatorID uuid.UUID, action, entityType, entityID string, opts *LogOptions)
}

// AuditLogger writes entries off the request path. Failures are logged,
// never returned.
type AuditLogger struct {
	service *Service
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

func NewAuditLogger(service *Service, logger zerolog.Logger) *AuditLogger {
	return &AuditLogger{
		service: service,
		logger:  logger.With().Str("component", "audit").Logger(),
	}
}

func (l *AuditLogger) Record(ctx context.Context, operatorID uuid.UUID, action, entityType, entityID string, opts *LogOptions) {
	// Detach from the request so the write survives the response.
	ctx = context.WithoutCancel(ctx)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.service.Log(ctx, operatorID, action, entityType, entityID, opts); err != nil {
			l.logger.Error().
				Err(err).
				Str("action", action).
				Str("entity_type", entityType).
				Str("entity_id", entityID).
				Msg("Failed to write audit log")
		}
	}()
}

// LogSync writes the entry on the caller's goroutine.
func (l *AuditLogger) LogSync(ctx context.Context, operatorID uuid.UUID, action, entityType, entityID string, opts *LogOptions) error {
	return l.service.Log(ctx, operatorID, action, entityType, entityID, opts)
}

// Wait blocks until pending asynchronous writes finish.
func (l *AuditLogger) Wait() {
	l.wg.Wait()
}
