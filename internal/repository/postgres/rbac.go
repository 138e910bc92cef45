package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/repository"
)

type rbacRepository struct {
	BaseRepository
}

func NewRBACRepository(base BaseRepository) repository.RBACRepository {
	return &rbacRepository{base}
}

func (r *rbacRepository) ListRoles(ctx context.Context) ([]*model.Role, error) {
	query := `
		SELECT id, name, description, is_system_role, created_at, updated_at
		FROM roles
		ORDER BY name`

	var roles []*model.Role
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (r *rbacRepository) GetOperatorRoles(ctx context.Context, operatorID uuid.UUID) ([]*model.Role, error) {
	query := `
		SELECT r.id, r.name, r.description, r.is_system_role, r.created_at, r.updated_at
		FROM roles r
		JOIN operator_roles orl ON orl.role_id = r.id
		WHERE orl.operator_id = $1
		ORDER BY r.name`

	var roles []*model.Role
	if err := r.db.SelectContext(ctx, &roles, query, operatorID); err != nil {
		return nil, fmt.Errorf("failed to get operator roles: %w", err)
	}
	return roles, nil
}

func (r *rbacRepository) GetOperatorPermissions(ctx context.Context, operatorID uuid.UUID) ([]string, error) {
	query := `
		SELECT DISTINCT p.name
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN operator_roles orl ON orl.role_id = rp.role_id
		WHERE orl.operator_id = $1
		ORDER BY p.name`

	var names []string
	if err := r.db.SelectContext(ctx, &names, query, operatorID); err != nil {
		return nil, fmt.Errorf("failed to get operator permissions: %w", err)
	}
	return names, nil
}
