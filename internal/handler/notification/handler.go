package notification

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/travel-console/internal/handler"
	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/service/notification"
	"github.com/jwalitptl/travel-console/pkg/httputil"
	"github.com/jwalitptl/travel-console/pkg/validator"
)

type Service interface {
	Feed(ctx context.Context, operatorID uuid.UUID, tab model.NotificationTab, refresh bool) (*notification.Feed, error)
	MarkRead(ctx context.Context, operatorID uuid.UUID, id int64) (model.NotificationCounts, error)
	MarkUnread(ctx context.Context, operatorID uuid.UUID, id int64) (model.NotificationCounts, error)
	Delete(ctx context.Context, operatorID uuid.UUID, id int64) (model.NotificationCounts, error)
	MarkAllRead(ctx context.Context, operatorID uuid.UUID) (model.NotificationCounts, error)
}

// Streams opens per-operator event streams, see notification.Hub.
type Streams interface {
	Subscribe(operatorID uuid.UUID) (<-chan model.NotificationEvent, func())
}

type Handler struct {
	svc       Service
	streams   Streams
	keepAlive time.Duration
}

func NewHandler(svc Service, streams Streams) *Handler {
	return &Handler{svc: svc, streams: streams, keepAlive: 25 * time.Second}
}

type feedQuery struct {
	Tab     string `form:"tab" binding:"omitempty,oneof=all unread read"`
	Refresh bool   `form:"refresh"`
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	n := r.Group("/notifications")
	{
		n.GET("", h.Feed)
		n.PUT("/read-all", h.MarkAllRead)
		n.PUT("/:id/read", h.MarkRead)
		n.PUT("/:id/unread", h.MarkUnread)
		n.DELETE("/:id", h.Delete)
		if h.streams != nil {
			n.GET("/events", h.Events)
		}
	}
}

func (h *Handler) Feed(c *gin.Context) {
	op, err := handler.Operator(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	var q feedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.RespondWithError(c, validator.BindError(err))
		return
	}

	feed, err := h.svc.Feed(c.Request.Context(), op.ID, model.NotificationTab(q.Tab), q.Refresh)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, feed)
}

func (h *Handler) MarkRead(c *gin.Context) {
	h.mutate(c, h.svc.MarkRead)
}

func (h *Handler) MarkUnread(c *gin.Context) {
	h.mutate(c, h.svc.MarkUnread)
}

func (h *Handler) Delete(c *gin.Context) {
	h.mutate(c, h.svc.Delete)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	op, err := handler.Operator(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	counts, err := h.svc.MarkAllRead(c.Request.Context(), op.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"counts": counts})
}

func (h *Handler) mutate(c *gin.Context, fn func(context.Context, uuid.UUID, int64) (model.NotificationCounts, error)) {
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

	counts, err := fn(c.Request.Context(), op.ID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"id": id, "counts": counts})
}

// Events streams the operator's notification events as server-sent events,
// starting with the current counts.
func (h *Handler) Events(c *gin.Context) {
	op, err := handler.Operator(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	feed, err := h.svc.Feed(c.Request.Context(), op.ID, model.NotificationTabAll, false)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	events, unsubscribe := h.streams.Subscribe(op.ID)
	defer unsubscribe()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("counts", feed.Counts)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
