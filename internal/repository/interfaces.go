package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/travel-console/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// All repository interfaces in one file
type (
	// OperatorRepository handles console operator accounts
	OperatorRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Operator, error)
		GetByEmail(ctx context.Context, email string) (*model.Operator, error)
		UpdateLoginState(ctx context.Context, operator *model.Operator) error
	}

	RBACRepository interface {
		ListRoles(ctx context.Context) ([]*model.Role, error)
		GetOperatorRoles(ctx context.Context, operatorID uuid.UUID) ([]*model.Role, error)
		GetOperatorPermissions(ctx context.Context, operatorID uuid.UUID) ([]string, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		ListWithPagination(ctx context.Context, filter model.AuditFilter) ([]*model.AuditLog, int64, error)
		Cleanup(ctx context.Context, before time.Time) (int64, error)
	}
)
