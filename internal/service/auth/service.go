package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/repository"
	"github.com/jwalitptl/travel-console/internal/service/audit"
	"github.com/jwalitptl/travel-console/pkg/auth"
	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked, please try again later")
	ErrAccountInactive    = errors.New("account is inactive")
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
	bcryptCost       = 12
)

// AccessLoader fills an operator's roles and permissions.
type AccessLoader interface {
	Apply(ctx context.Context, op *model.Operator) error
}

type Service struct {
	operators repository.OperatorRepository
	access    AccessLoader
	jwtSvc    auth.JWTService
	auditor   audit.Recorder
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(operators repository.OperatorRepository, access AccessLoader, jwtSvc auth.JWTService, auditor audit.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		operators: operators,
		access:    access,
		jwtSvc:    jwtSvc,
		auditor:   auditor,
		logger:    logger.With().Str("component", "auth").Logger(),
		now:       time.Now,
	}
}

// HashPassword is used when seeding operators.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	op, err := s.operators.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}

	now := s.now()
	switch op.Status {
	case model.OperatorStatusInactive:
		return nil, apperrors.Unauthorized(ErrAccountInactive)
	case model.OperatorStatusLocked:
		if op.LastLoginAttempt != nil && now.Sub(*op.LastLoginAttempt) < lockoutDuration {
			return nil, apperrors.Unauthorized(ErrAccountLocked)
		}
		op.Status = model.OperatorStatusActive
		op.LoginAttempts = 0
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		op.LoginAttempts++
		op.LastLoginAttempt = &now
		if op.LoginAttempts >= maxLoginAttempts {
			op.Status = model.OperatorStatusLocked
			s.logger.Warn().Str("operator_id", op.ID.String()).Msg("Operator locked after repeated failed logins")
		}
		if err := s.operators.UpdateLoginState(ctx, op); err != nil {
			return nil, fmt.Errorf("failed to update login attempts: %w", err)
		}
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}

	// Reset login attempts on successful login
	op.LoginAttempts = 0
	op.LastLoginAttempt = nil
	op.LastLoginAt = &now
	if err := s.operators.UpdateLoginState(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to update login timestamp: %w", err)
	}

	token, expiresAt, err := s.jwtSvc.GenerateAccessToken(op.ID, op.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, op.ID, model.AuditActionLogin, model.AuditEntityOperator, op.ID.String(), &audit.LogOptions{
			Metadata: map[string]interface{}{
				"email": op.Email,
			},
		})
	}

	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// Authenticate resolves a bearer token to an active operator with roles and
// permissions loaded.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Operator, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	id, err := uuid.Parse(claims.OperatorID)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	op, err := s.operators.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(err)
		}
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}
	if op.Status != model.OperatorStatusActive {
		return nil, apperrors.Unauthorized(ErrAccountInactive)
	}

	if err := s.access.Apply(ctx, op); err != nil {
		return nil, err
	}
	return op, nil
}
