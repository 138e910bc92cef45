package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/repository"
)

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(base BaseRepository) repository.AuditRepository {
	return &auditRepository{base}
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id, operator_id, action, entity_type, entity_id,
			changes, metadata, ip_address, user_agent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			log.ID,
			log.OperatorID,
			log.Action,
			log.EntityType,
			log.EntityID,
			log.Changes,
			log.Metadata,
			log.IPAddress,
			log.UserAgent,
			log.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create audit log: %w", err)
		}
		return nil
	})
}

func (r *auditRepository) ListWithPagination(ctx context.Context, filter model.AuditFilter) ([]*model.AuditLog, int64, error) {
	var conditions []string
	var args []interface{}

	if filter.OperatorID != uuid.Nil {
		args = append(args, filter.OperatorID)
		conditions = append(conditions, fmt.Sprintf("operator_id = $%d", len(args)))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	baseQuery := "FROM audit_logs"
	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = model.DefaultPageSize
	}
	pageArgs := append(append([]interface{}{}, args...), limit, filter.Offset)
	query := fmt.Sprintf(`SELECT id, operator_id, action, entity_type, entity_id,
		changes, metadata, ip_address, user_agent, created_at `+baseQuery+
		" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	var logs []*model.AuditLog
	if err := r.db.SelectContext(ctx, &logs, query, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return logs, total, nil
}

func (r *auditRepository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM audit_logs WHERE created_at < $1`

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}

	return result.RowsAffected()
}
