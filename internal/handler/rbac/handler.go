package rbac

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/travel-console/internal/handler"
	"github.com/jwalitptl/travel-console/internal/model"
	rbacService "github.com/jwalitptl/travel-console/internal/service/rbac"
	"github.com/jwalitptl/travel-console/pkg/httputil"
)

type Service interface {
	ListRoles(ctx context.Context) ([]*model.Role, error)
	OperatorAccess(ctx context.Context, operatorID uuid.UUID) (*rbacService.Access, error)
	Forget(operatorID uuid.UUID)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	rbac := r.Group("/rbac")
	{
		rbac.GET("/roles", h.ListRoles)
		rbac.GET("/me", h.MyAccess)
	}
}

func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, roles)
}

// MyAccess reloads and returns the caller's roles and permissions, picking
// up grants made since the access cache was filled.
func (h *Handler) MyAccess(c *gin.Context) {
	op, err := handler.Operator(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.service.Forget(op.ID)
	access, err := h.service.OperatorAccess(c.Request.Context(), op.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"roles":       access.Roles,
		"permissions": access.Permissions,
	})
}
