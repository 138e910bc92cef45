package audit

import (
	"context"

	"github.com/jwalitptl/travel-console/internal/model"
	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
)

// Source pages the audit trail for the console's audit table, newest first.
// The status filter narrows by action and the search term by entity type.
type Source struct {
	service *Service
}

func NewSource(service *Service) *Source {
	return &Source{service: service}
}

func (s *Source) Fetch(ctx context.Context, params model.ListParams) (*model.ListResponse[model.AuditLog], error) {
	params = params.Normalize()
	logs, total, err := s.service.ListWithPagination(ctx, model.AuditFilter{
		Action:     params.Status,
		EntityType: params.SearchTerm,
		Limit:      params.PageSize,
		Offset:     (params.Page - 1) * params.PageSize,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	items := make([]model.AuditLog, 0, len(logs))
	for _, l := range logs {
		items = append(items, *l)
	}
	return &model.ListResponse[model.AuditLog]{
		Items: items,
		Total: int(total),
		Page:  params.Page,
	}, nil
}

func (s *Source) GetByID(context.Context, string) (*model.AuditLog, error) {
	return nil, apperrors.NewNotFound("audit log", nil)
}

// Clear is a no-op; the audit trail is read straight from the database.
func (s *Source) Clear() {}
