package auth

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/travel-console/internal/handler"
	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/pkg/httputil"
	"github.com/jwalitptl/travel-console/pkg/validator"
)

type LoginService interface {
	Login(ctx context.Context, email, password string) (*model.TokenResponse, error)
}

type Handler struct {
	svc LoginService
}

func NewHandler(svc LoginService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the public auth routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
	}
}

// RegisterProtectedRoutes mounts routes that need a token.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/auth/me", h.Me)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, validator.BindError(err))
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, tokens)
}

func (h *Handler) Me(c *gin.Context) {
	op, err := handler.Operator(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, op)
}
