package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/repository"
)

type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

type LogOptions struct {
	Changes   interface{}
	Metadata  interface{}
	IPAddress string
	UserAgent string
}

type requestInfoKey struct{}

type requestInfo struct {
	ip        string
	userAgent string
}

// WithRequestInfo attaches the caller's address and user agent to ctx so
// entries logged further down the call chain can record them.
func WithRequestInfo(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, requestInfo{ip: ip, userAgent: userAgent})
}

// Log creates an audit log entry
func (s *Service) Log(ctx context.Context, operatorID uuid.UUID, action, entityType, entityID string, opts *LogOptions) error {
	if opts == nil {
		opts = &LogOptions{}
	}

	var changes, metadata json.RawMessage
	var err error

	if opts.Changes != nil {
		changes, err = json.Marshal(opts.Changes)
		if err != nil {
			return fmt.Errorf("failed to marshal changes: %w", err)
		}
	}
	if opts.Metadata != nil {
		metadata, err = json.Marshal(opts.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	// Fall back to the request info carried by ctx
	ipAddress := opts.IPAddress
	userAgent := opts.UserAgent
	if info, ok := ctx.Value(requestInfoKey{}).(requestInfo); ok && ipAddress == "" {
		ipAddress = info.ip
		userAgent = info.userAgent
	}

	log := &model.AuditLog{
		ID:         uuid.New(),
		OperatorID: operatorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    changes,
		Metadata:   metadata,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		CreatedAt:  time.Now(),
	}

	return s.repo.Create(ctx, log)
}

func (s *Service) ListWithPagination(ctx context.Context, filter model.AuditFilter) ([]*model.AuditLog, int64, error) {
	return s.repo.ListWithPagination(ctx, filter)
}

func (s *Service) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.Cleanup(ctx, before)
}
