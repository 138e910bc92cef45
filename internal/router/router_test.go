package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/travel-console/internal/middleware"
	"github.com/jwalitptl/travel-console/internal/model"
	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubHandler struct {
	path string
}

func (h stubHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET(h.path, func(c *gin.Context) { c.String(http.StatusOK, h.path) })
}

type stubAuth struct {
	stubHandler
}

func (h stubAuth) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/auth/me", func(c *gin.Context) { c.String(http.StatusOK, "me") })
}

type tokenAuth map[string]*model.Operator

func (a tokenAuth) Authenticate(_ context.Context, token string) (*model.Operator, error) {
	op, ok := a[token]
	if !ok {
		return nil, apperrors.Unauthorized(errors.New("unknown token"))
	}
	return op, nil
}

func newTestRouter() *Router {
	auth := middleware.NewAuthMiddleware(tokenAuth{
		"auditor": {Base: model.Base{ID: uuid.New()}, Permissions: []string{model.PermissionAuditRead}},
		"agent":   {Base: model.Base{ID: uuid.New()}},
	})
	r := NewRouter(auth, Handlers{
		Health:        stubHandler{path: "/health/live"},
		Auth:          stubAuth{stubHandler{path: "/auth/login"}},
		Notifications: stubHandler{path: "/notifications"},
		Approvals:     stubHandler{path: "/approvals"},
		Resources:     []Handler{stubHandler{path: "/contracts"}, stubHandler{path: "/budgets"}},
		Audit:         stubHandler{path: "/audit/logs"},
		RBAC:          stubHandler{path: "/rbac/roles"},
	}, nil, Config{})
	r.Setup()
	return r
}

func TestRouter_Routes(t *testing.T) {
	r := newTestRouter()

	cases := []struct {
		path  string
		token string
		want  int
	}{
		{"/api/v1/health/live", "", http.StatusOK},
		{"/api/v1/auth/login", "", http.StatusOK},
		{"/api/v1/auth/me", "", http.StatusUnauthorized},
		{"/api/v1/auth/me", "agent", http.StatusOK},
		{"/api/v1/notifications", "", http.StatusUnauthorized},
		{"/api/v1/notifications", "agent", http.StatusOK},
		{"/api/v1/approvals", "agent", http.StatusOK},
		{"/api/v1/contracts", "agent", http.StatusOK},
		{"/api/v1/budgets", "agent", http.StatusOK},
		{"/api/v1/rbac/roles", "agent", http.StatusOK},
		{"/api/v1/audit/logs", "agent", http.StatusForbidden},
		{"/api/v1/audit/logs", "auditor", http.StatusOK},
		{"/api/v1/unknown", "agent", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.path+"/"+tc.token, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			w := httptest.NewRecorder()
			r.Engine().ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
			assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))
		})
	}
}

func TestRouter_SkipsNilHandlers(t *testing.T) {
	auth := middleware.NewAuthMiddleware(tokenAuth{})
	r := NewRouter(auth, Handlers{Health: stubHandler{path: "/health/live"}}, nil, Config{})
	r.Setup()

	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
