package resource

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/travel-console/internal/handler"
	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/service/resource"
	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
	"github.com/jwalitptl/travel-console/pkg/export"
	"github.com/jwalitptl/travel-console/pkg/httputil"
)

// Handler serves the table page of one upstream resource.
type Handler[T model.Resource] struct {
	svc   *resource.Service[T]
	title string
	// Export and cache routes get these wrappers, e.g. audit logging.
	exportMiddleware []gin.HandlerFunc
	clearMiddleware  []gin.HandlerFunc
	now              func() time.Time
}

func NewHandler[T model.Resource](svc *resource.Service[T], title string) *Handler[T] {
	return &Handler[T]{svc: svc, title: title, now: time.Now}
}

// Name is the resource path segment, e.g. "contracts".
func (h *Handler[T]) Name() string { return h.svc.Name() }

// WithExportMiddleware runs mw before the export handler.
func (h *Handler[T]) WithExportMiddleware(mw ...gin.HandlerFunc) *Handler[T] {
	h.exportMiddleware = append(h.exportMiddleware, mw...)
	return h
}

// WithClearMiddleware runs mw before the cache clear handler.
func (h *Handler[T]) WithClearMiddleware(mw ...gin.HandlerFunc) *Handler[T] {
	h.clearMiddleware = append(h.clearMiddleware, mw...)
	return h
}

func (h *Handler[T]) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/" + h.svc.Name())
	{
		g.GET("", h.List)
		g.GET("/export", append(h.exportMiddleware, h.Export)...)
		g.DELETE("/cache", append(h.clearMiddleware, h.ClearCache)...)
		g.GET("/:id", h.Get)
	}
}

// List renders the table. loading=true returns the skeleton without
// fetching; action/value replay one table interaction on the given params.
func (h *Handler[T]) List(c *gin.Context) {
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
	result, err := h.svc.View(c.Request.Context(), q.ListParams, intent, nil)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler[T]) Get(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	item, err := h.svc.Get(c.Request.Context(), strconv.FormatInt(id, 10))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, item)
}

func (h *Handler[T]) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("unsupported format", err))
		return
	}
	q, err := handler.BindListQuery(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	view, err := h.svc.ExportView(c.Request.Context(), q.ListParams)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	// Render fully before writing so a failure still yields a JSON error.
	var buf bytes.Buffer
	if err := export.Write(&buf, format, h.title, view); err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}

	filename := format.Filename(h.svc.Name(), h.now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (h *Handler[T]) ClearCache(c *gin.Context) {
	h.svc.Invalidate()
	httputil.RespondWithSuccess(c, gin.H{"resource": h.svc.Name(), "cleared": true})
}
