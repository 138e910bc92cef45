package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/repository"
	"github.com/jwalitptl/travel-console/internal/service/audit"
	"github.com/jwalitptl/travel-console/pkg/auth"
	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
)

type memoryOperators struct {
	byID    map[uuid.UUID]*model.Operator
	updates int
}

func (r *memoryOperators) Get(_ context.Context, id uuid.UUID) (*model.Operator, error) {
	op, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *op
	return &cp, nil
}

func (r *memoryOperators) GetByEmail(_ context.Context, email string) (*model.Operator, error) {
	for _, op := range r.byID {
		if op.Email == email {
			cp := *op
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryOperators) UpdateLoginState(_ context.Context, op *model.Operator) error {
	r.updates++
	cp := *op
	r.byID[op.ID] = &cp
	return nil
}

type staticAccess struct{ roles []string }

func (a staticAccess) Apply(_ context.Context, op *model.Operator) error {
	op.Roles = a.roles
	op.Permissions = []string{}
	return nil
}

type recorder struct {
	mu      sync.Mutex
	actions []string
}

func (r *recorder) Record(_ context.Context, _ uuid.UUID, action, _, _ string, _ *audit.LogOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

const password = "correct-horse"

func setup(t *testing.T) (*Service, *memoryOperators, *model.Operator, *recorder) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	op := &model.Operator{
		Base:         model.Base{ID: uuid.New()},
		Email:        "ops@example.com",
		Name:         "Ops",
		PasswordHash: string(hash),
		Status:       model.OperatorStatusActive,
	}
	repo := &memoryOperators{byID: map[uuid.UUID]*model.Operator{op.ID: op}}
	jwtSvc, err := auth.NewJWTService("secret", time.Hour)
	require.NoError(t, err)
	rec := &recorder{}

	svc := NewService(repo, staticAccess{roles: []string{"finance"}}, jwtSvc, rec, zerolog.Nop())
	return svc, repo, op, rec
}

func TestLogin_Success(t *testing.T) {
	svc, repo, op, rec := setup(t)

	tokens, err := svc.Login(context.Background(), " ops@example.com ", password)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotNil(t, repo.byID[op.ID].LastLoginAt)
	assert.Equal(t, []string{model.AuditActionLogin}, rec.actions)

	authed, err := svc.Authenticate(context.Background(), tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, op.ID, authed.ID)
	assert.Equal(t, []string{"finance"}, authed.Roles)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", password)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	svc, repo, op, rec := setup(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	for i := 0; i < maxLoginAttempts; i++ {
		_, err := svc.Login(context.Background(), op.Email, "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	assert.Equal(t, model.OperatorStatusLocked, repo.byID[op.ID].Status)

	_, err := svc.Login(context.Background(), op.Email, password)
	assert.ErrorIs(t, err, ErrAccountLocked)

	now = now.Add(lockoutDuration + time.Second)
	_, err = svc.Login(context.Background(), op.Email, password)
	require.NoError(t, err)
	assert.Equal(t, model.OperatorStatusActive, repo.byID[op.ID].Status)
	assert.Zero(t, repo.byID[op.ID].LoginAttempts)
	assert.Equal(t, []string{model.AuditActionLogin}, rec.actions)
}

func TestLogin_Inactive(t *testing.T) {
	svc, repo, op, _ := setup(t)
	repo.byID[op.ID].Status = model.OperatorStatusInactive

	_, err := svc.Login(context.Background(), op.Email, password)
	assert.ErrorIs(t, err, ErrAccountInactive)
	assert.Zero(t, repo.updates)
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	svc, repo, op, _ := setup(t)

	_, err := svc.Authenticate(context.Background(), "garbage")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))

	tokens, err := svc.Login(context.Background(), op.Email, password)
	require.NoError(t, err)
	delete(repo.byID, op.ID)

	_, err = svc.Authenticate(context.Background(), tokens.AccessToken)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pass")))
}
