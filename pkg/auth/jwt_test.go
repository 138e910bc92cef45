package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTService_RequiresSecret(t *testing.T) {
	_, err := NewJWTService("", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestGenerateAndValidate(t *testing.T) {
	svc, err := NewJWTService("secret", time.Hour)
	require.NoError(t, err)

	id := uuid.New()
	token, expiresAt, err := svc.GenerateAccessToken(id, "ops@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.OperatorID)
	assert.Equal(t, "ops@example.com", claims.Email)
}

func TestValidate_Expired(t *testing.T) {
	svc, err := NewJWTService("secret", time.Hour)
	require.NoError(t, err)
	js := svc.(*jwtService)
	js.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.GenerateAccessToken(uuid.New(), "ops@example.com")
	require.NoError(t, err)

	js.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_WrongSecret(t *testing.T) {
	a, _ := NewJWTService("secret-a", time.Hour)
	b, _ := NewJWTService("secret-b", time.Hour)

	token, _, err := a.GenerateAccessToken(uuid.New(), "ops@example.com")
	require.NoError(t, err)

	_, err = b.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	svc, _ := NewJWTService("secret", time.Hour)
	claims := Claims{
		OperatorID:       uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Garbage(t *testing.T) {
	svc, _ := NewJWTService("secret", time.Hour)
	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
