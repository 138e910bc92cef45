package approval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/travel-console/internal/middleware"
	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/service/approval"
	"github.com/jwalitptl/travel-console/internal/service/resource"
	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
	"github.com/jwalitptl/travel-console/pkg/validator"
)

type upstream struct {
	requests map[int64]model.ApprovalRequest
	notes    []string
}

func (u *upstream) Approval(_ context.Context, id int64) (*model.ApprovalRequest, error) {
	req, ok := u.requests[id]
	if !ok {
		return nil, apperrors.NewNotFound("approval request", nil)
	}
	return &req, nil
}

func (u *upstream) Approve(_ context.Context, _ int64, d model.ApprovalDecision) error {
	u.notes = append(u.notes, d.Notes)
	return nil
}

func (u *upstream) Reject(_ context.Context, _ int64, d model.ApprovalDecision) error {
	u.notes = append(u.notes, d.Notes)
	return nil
}

type pages struct{ items []model.ApprovalRequest }

func (p *pages) Fetch(context.Context, model.ListParams) (*model.ListResponse[model.ApprovalRequest], error) {
	return &model.ListResponse[model.ApprovalRequest]{Items: p.items, Total: len(p.items), Pages: 1}, nil
}

func (p *pages) GetByID(context.Context, string) (*model.ApprovalRequest, error) {
	return nil, apperrors.NewNotFound("approval request", nil)
}

func (p *pages) Clear() {}

func request(id int64, role string, status model.ApprovalStatus) model.ApprovalRequest {
	return model.ApprovalRequest{
		RequestID:    id,
		RequestType:  "refund",
		Status:       status,
		RequiredRole: role,
		StepName:     "finance review",
		CreatedAt:    time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
	}
}

func setup(t *testing.T) (*gin.Engine, *upstream) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Register()

	up := &upstream{requests: map[int64]model.ApprovalRequest{
		1: request(1, "finance", model.ApprovalStatusPending),
		2: request(2, "ops", model.ApprovalStatusPending),
		3: request(3, "finance", model.ApprovalStatusApproved),
	}}
	src := &pages{items: []model.ApprovalRequest{up.requests[1], up.requests[2], up.requests[3]}}
	svc := approval.NewService(up, resource.NewService[model.ApprovalRequest]("approvals", src, resource.ApprovalColumns()), nil, nil, zerolog.Nop())

	op := &model.Operator{Base: model.Base{ID: uuid.New()}, Roles: []string{"finance"}}
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.ContextOperator, op)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(api)
	return r, up
}

func send(r *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestList_ActionsFollowPolicy(t *testing.T) {
	r, _ := setup(t)

	w := send(r, http.MethodGet, "/api/v1/approvals", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data resource.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	rows := body.Data.View.Rows
	require.Len(t, rows, 3)
	assert.Equal(t, approval.ActionApprove, rows[0].Actions[0].Label)
	assert.Equal(t, approval.ActionView, rows[1].Actions[0].Label)
	assert.Equal(t, approval.ActionView, rows[2].Actions[0].Label)
}

func TestList_Loading(t *testing.T) {
	r, _ := setup(t)

	w := send(r, http.MethodGet, "/api/v1/approvals?loading=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"skeleton":true`)
}

func TestGet_ReportsCanAct(t *testing.T) {
	r, _ := setup(t)

	w := send(r, http.MethodGet, "/api/v1/approvals/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"can_act":true`)

	w = send(r, http.MethodGet, "/api/v1/approvals/2", "")
	assert.Contains(t, w.Body.String(), `"can_act":false`)
}

func TestApprove(t *testing.T) {
	r, up := setup(t)

	w := send(r, http.MethodPut, "/api/v1/approvals/1/approve", `{"notes":"within budget"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Approved"`)
	assert.Equal(t, []string{"within budget"}, up.notes)
}

func TestReject_WithoutBody(t *testing.T) {
	r, up := setup(t)

	w := send(r, http.MethodPut, "/api/v1/approvals/1/reject", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{""}, up.notes)
}

func TestDecision_Errors(t *testing.T) {
	r, up := setup(t)

	assert.Equal(t, http.StatusForbidden, send(r, http.MethodPut, "/api/v1/approvals/2/approve", "").Code)
	assert.Equal(t, http.StatusForbidden, send(r, http.MethodPut, "/api/v1/approvals/3/reject", "").Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPut, "/api/v1/approvals/404/approve", "").Code)
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPut, "/api/v1/approvals/x/approve", "").Code)

	long := `{"notes":"` + strings.Repeat("n", 1001) + `"}`
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPut, "/api/v1/approvals/1/approve", long).Code)
	assert.Empty(t, up.notes)
}
