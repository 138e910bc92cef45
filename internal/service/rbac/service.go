package rbac

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/repository"
)

const defaultAccessTTL = time.Minute

// Access is what an operator may see and do.
type Access struct {
	Roles       []string
	Permissions []string
}

type Service struct {
	repo  repository.RBACRepository
	cache *gocache.Cache
}

// NewService caches each operator's access for ttl; zero means one minute.
func NewService(repo repository.RBACRepository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultAccessTTL
	}
	return &Service{
		repo:  repo,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (s *Service) OperatorAccess(ctx context.Context, operatorID uuid.UUID) (*Access, error) {
	if v, ok := s.cache.Get(operatorID.String()); ok {
		return v.(*Access), nil
	}

	roles, err := s.repo.GetOperatorRoles(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get operator roles: %w", err)
	}
	perms, err := s.repo.GetOperatorPermissions(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get operator permissions: %w", err)
	}

	access := &Access{
		Roles:       make([]string, 0, len(roles)),
		Permissions: perms,
	}
	for _, r := range roles {
		access.Roles = append(access.Roles, r.Name)
	}
	if access.Permissions == nil {
		access.Permissions = []string{}
	}

	s.cache.SetDefault(operatorID.String(), access)
	return access, nil
}

// Apply fills op's roles and permissions.
func (s *Service) Apply(ctx context.Context, op *model.Operator) error {
	access, err := s.OperatorAccess(ctx, op.ID)
	if err != nil {
		return err
	}
	op.Roles = access.Roles
	op.Permissions = access.Permissions
	return nil
}

func (s *Service) HasPermission(ctx context.Context, operatorID uuid.UUID, permission string) (bool, error) {
	access, err := s.OperatorAccess(ctx, operatorID)
	if err != nil {
		return false, err
	}
	for _, p := range access.Permissions {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) ListRoles(ctx context.Context) ([]*model.Role, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// Forget drops the cached access of operatorID.
func (s *Service) Forget(operatorID uuid.UUID) {
	s.cache.Delete(operatorID.String())
}
