package audit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/travel-console/internal/model"
)

type memoryRepo struct {
	mu   sync.Mutex
	logs   []*model.AuditLog
	err    error
	filter model.AuditFilter
}

func (r *memoryRepo) Create(_ context.Context, log *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.logs = append(r.logs, log)
	return nil
}

func (r *memoryRepo) ListWithPagination(_ context.Context, filter model.AuditFilter) ([]*model.AuditLog, int64, error) {
	r.filter = filter
	return r.logs, int64(len(r.logs)), r.err
}

func (r *memoryRepo) Cleanup(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func TestService_LogUsesRequestInfo(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	operatorID := uuid.New()

	ctx := WithRequestInfo(context.Background(), "10.0.0.1", "console/1.0")
	err := svc.Log(ctx, operatorID, model.AuditActionApprove, model.AuditEntityApproval, "42", &LogOptions{
		Changes: map[string]string{"status": "Approved"},
	})
	require.NoError(t, err)

	require.Len(t, repo.logs, 1)
	entry := repo.logs[0]
	assert.Equal(t, operatorID, entry.OperatorID)
	assert.Equal(t, "42", entry.EntityID)
	assert.Equal(t, "10.0.0.1", entry.IPAddress)
	assert.Equal(t, "console/1.0", entry.UserAgent)
	assert.JSONEq(t, `{"status":"Approved"}`, string(entry.Changes))
	assert.Nil(t, entry.Metadata)
}

func TestService_LogRejectsUnmarshalableChanges(t *testing.T) {
	svc := NewService(&memoryRepo{})
	err := svc.Log(context.Background(), uuid.New(), "x", "y", "z", &LogOptions{Changes: make(chan int)})
	var typeErr *json.UnsupportedTypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestAuditLogger_RecordIsAsyncAndSurvivesCancel(t *testing.T) {
	repo := &memoryRepo{}
	l := NewAuditLogger(NewService(repo), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	l.Record(ctx, uuid.New(), model.AuditActionDelete, model.AuditEntityNotification, "7", nil)
	cancel()
	l.Wait()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.logs, 1)
	assert.Equal(t, model.AuditActionDelete, repo.logs[0].Action)
}

func TestAuditLogger_RecordSwallowsErrors(t *testing.T) {
	repo := &memoryRepo{err: errors.New("db down")}
	l := NewAuditLogger(NewService(repo), zerolog.Nop())

	l.Record(context.Background(), uuid.New(), "x", "y", "z", nil)
	l.Wait()
	assert.Error(t, l.LogSync(context.Background(), uuid.New(), "x", "y", "z", nil))
}

func TestSource_MapsListParams(t *testing.T) {
	repo := &memoryRepo{logs: []*model.AuditLog{{Action: model.AuditActionApprove}, {Action: model.AuditActionApprove}}}
	src := NewSource(NewService(repo))

	page, err := src.Fetch(context.Background(), model.ListParams{
		Pagination: model.Pagination{Page: 3, PageSize: 20},
		SearchTerm: " approval ",
		Status:     model.AuditActionApprove,
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, model.AuditFilter{
		Action:     model.AuditActionApprove,
		EntityType: "approval",
		Limit:      20,
		Offset:     40,
	}, repo.filter)
}

func TestSource_Errors(t *testing.T) {
	src := NewSource(NewService(&memoryRepo{err: errors.New("db down")}))

	_, err := src.Fetch(context.Background(), model.ListParams{})
	assert.Error(t, err)

	_, err = src.GetByID(context.Background(), "x")
	assert.Error(t, err)
}
