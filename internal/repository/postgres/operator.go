package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/repository"
)

const operatorColumns = `
	id, email, name, password_hash, status, login_attempts,
	last_login_attempt, last_login_at, created_at, updated_at, deleted_at`

type operatorRepository struct {
	BaseRepository
}

func NewOperatorRepository(base BaseRepository) repository.OperatorRepository {
	return &operatorRepository{base}
}

func (r *operatorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Operator, error) {
	query := `SELECT` + operatorColumns + `
		FROM operators
		WHERE id = $1 AND deleted_at IS NULL`

	var op model.Operator
	if err := r.db.GetContext(ctx, &op, query, id); err != nil {
		return nil, notFound(err, "operator")
	}
	return &op, nil
}

func (r *operatorRepository) GetByEmail(ctx context.Context, email string) (*model.Operator, error) {
	query := `SELECT` + operatorColumns + `
		FROM operators
		WHERE lower(email) = lower($1) AND deleted_at IS NULL`

	var op model.Operator
	if err := r.db.GetContext(ctx, &op, query, email); err != nil {
		return nil, notFound(err, "operator")
	}
	return &op, nil
}

func (r *operatorRepository) UpdateLoginState(ctx context.Context, op *model.Operator) error {
	query := `
		UPDATE operators SET
			status = $1,
			login_attempts = $2,
			last_login_attempt = $3,
			last_login_at = $4,
			updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL`

	op.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		op.Status,
		op.LoginAttempts,
		op.LastLoginAttempt,
		op.LastLoginAt,
		op.UpdatedAt,
		op.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update operator: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("operator %s: %w", op.ID, repository.ErrNotFound)
	}
	return nil
}
