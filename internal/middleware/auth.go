package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/service/audit"
	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
	"github.com/jwalitptl/travel-console/pkg/httputil"
)

const ContextOperator = "operator"

// Authenticator resolves a bearer token to an operator.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Operator, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Authenticate verifies the JWT and stores the operator in the context.
// Event streams may pass the token as ?access_token= since EventSource cannot
// set headers.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			return
		}

		op, err := m.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		c.Set(ContextOperator, op)
		ctx := audit.WithRequestInfo(c.Request.Context(), c.ClientIP(), c.Request.UserAgent())
		logger := zerolog.Ctx(ctx).With().Str("operator_id", op.ID.String()).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(ctx))
		c.Next()
	}
}

// RequirePermission rejects operators lacking permission.
func (m *AuthMiddleware) RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		op, ok := OperatorFrom(c)
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			return
		}
		if !op.HasPermission(permission) {
			httputil.RespondWithError(c, apperrors.Forbidden("permission denied"))
			return
		}
		c.Next()
	}
}

// OperatorFrom returns the authenticated operator, if any.
func OperatorFrom(c *gin.Context) (*model.Operator, bool) {
	v, ok := c.Get(ContextOperator)
	if !ok {
		return nil, false
	}
	op, ok := v.(*model.Operator)
	return op, ok && op != nil
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if t := c.Query("access_token"); t != "" {
			return t, nil
		}
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("invalid authorization format")
	}
	return strings.TrimSpace(parts[1]), nil
}
