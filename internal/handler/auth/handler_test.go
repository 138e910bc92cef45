package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/travel-console/internal/middleware"
	"github.com/jwalitptl/travel-console/internal/model"
	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
	"github.com/jwalitptl/travel-console/pkg/validator"
)

type fakeLogin struct{}

func (fakeLogin) Login(_ context.Context, email, password string) (*model.TokenResponse, error) {
	if password != "correct-horse" {
		return nil, apperrors.Unauthorized(nil)
	}
	return &model.TokenResponse{AccessToken: "token-for-" + email, TokenType: "Bearer", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func setup(op *model.Operator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.Register()
	r := gin.New()
	h := NewHandler(fakeLogin{})
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(func(c *gin.Context) {
		if op != nil {
			c.Set(middleware.ContextOperator, op)
		}
		c.Next()
	})
	h.RegisterProtectedRoutes(protected)
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	r := setup(nil)

	w := post(r, `{"email":"ops@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"token-for-ops@example.com"`)

	w = post(r, `{"email":"ops@example.com","password":"wrong-horse"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_Validation(t *testing.T) {
	r := setup(nil)

	w := post(r, `{"email":"not-an-email","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email must be a valid email")

	w = post(r, `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe(t *testing.T) {
	op := &model.Operator{Base: model.Base{ID: uuid.New()}, Email: "ops@example.com", PasswordHash: "secret"}
	r := setup(op)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), op.ID.String())
	assert.NotContains(t, w.Body.String(), "secret")

	r = setup(nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
