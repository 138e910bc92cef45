package audit

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/travel-console/internal/handler"
	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/service/resource"
	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
	"github.com/jwalitptl/travel-console/pkg/export"
	"github.com/jwalitptl/travel-console/pkg/httputil"
)

// Handler serves the read-only audit trail table. status filters by action
// and search by entity type.
type Handler struct {
	logs *resource.Service[model.AuditLog]
	now  func() time.Time
}

func NewHandler(logs *resource.Service[model.AuditLog]) *Handler {
	return &Handler{logs: logs, now: time.Now}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	audit := r.Group("/audit")
	{
		audit.GET("/logs", h.ListLogs)
		audit.GET("/export", h.ExportLogs)
	}
}

func (h *Handler) ListLogs(c *gin.Context) {
	q, err := handler.BindListQuery(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if q.Loading {
		httputil.RespondWithSuccess(c, h.logs.Skeleton(q.ListParams))
		return
	}

	var intent *resource.Intent
	if q.HasIntent() {
		intent = &q.Intent
	}
	result, err := h.logs.View(c.Request.Context(), q.ListParams, intent, nil)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) ExportLogs(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("unsupported format", err))
		return
	}
	q, err := handler.BindListQuery(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	view, err := h.logs.ExportView(c.Request.Context(), q.ListParams)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, "Audit logs", view); err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}

	filename := format.Filename("audit_logs", h.now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
