package approval

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/travel-console/internal/handler"
	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/service/resource"
	"github.com/jwalitptl/travel-console/pkg/httputil"
	"github.com/jwalitptl/travel-console/pkg/validator"
)

type Service interface {
	List(ctx context.Context, op *model.Operator, params model.ListParams, intent *resource.Intent) (*resource.Result, error)
	Skeleton(params model.ListParams) *resource.Result
	Get(ctx context.Context, id int64) (*model.ApprovalRequest, error)
	CanAct(op *model.Operator, req model.ApprovalRequest) bool
	Approve(ctx context.Context, op *model.Operator, id int64, notes string) (*model.ApprovalRequest, error)
	Reject(ctx context.Context, op *model.Operator, id int64, notes string) (*model.ApprovalRequest, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	approvals := r.Group("/approvals")
	{
		approvals.GET("", h.List)
		approvals.GET("/:id", h.Get)
		approvals.PUT("/:id/approve", h.Approve)
		approvals.PUT("/:id/reject", h.Reject)
	}
}

func (h *Handler) List(c *gin.Context) {
	op, err := handler.Operator(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	q, err := handler.BindListQuery(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if q.Loading {
		httputil.RespondWithSuccess(c, h.svc.Skeleton(q.ListParams))
		return
	}

	var intent *resource.Intent
	if q.HasIntent() {
		intent = &q.Intent
	}
	result, err := h.svc.List(c.Request.Context(), op, q.ListParams, intent)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

type approvalDetail struct {
	*model.ApprovalRequest
	CanAct bool `json:"can_act"`
}

func (h *Handler) Get(c *gin.Context) {
	op, err := handler.Operator(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	id, err := handler.ParseID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	req, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, approvalDetail{ApprovalRequest: req, CanAct: h.svc.CanAct(op, *req)})
}

func (h *Handler) Approve(c *gin.Context) {
	h.decide(c, h.svc.Approve)
}

func (h *Handler) Reject(c *gin.Context) {
	h.decide(c, h.svc.Reject)
}

func (h *Handler) decide(c *gin.Context, fn func(context.Context, *model.Operator, int64, string) (*model.ApprovalRequest, error)) {
	op, err := handler.Operator(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	id, err := handler.ParseID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	// Notes are optional; an empty body is a decision without notes.
	var decision model.ApprovalDecision
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&decision); err != nil {
			httputil.RespondWithError(c, validator.BindError(err))
			return
		}
	}

	req, err := fn(c.Request.Context(), op, id, decision.Notes)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, req)
}
