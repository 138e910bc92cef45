package model

import (
	"strings"
	"time"
)

// Operator status constants
const (
	OperatorStatusActive   = "active"
	OperatorStatusInactive = "inactive"
	OperatorStatusLocked   = "locked"
)

// PermissionApprovalsOverride lets an operator decide any approval step
// regardless of its required role.
const PermissionApprovalsOverride = "approvals:override"

// PermissionAuditRead grants access to the audit trail.
const PermissionAuditRead = "audit:read"

// Operator is a back-office user of the console.
type Operator struct {
	Base
	Email            string     `json:"email" db:"email"`
	Name             string     `json:"name" db:"name"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	Status           string     `json:"status" db:"status"`
	LoginAttempts    int        `json:"-" db:"login_attempts"`
	LastLoginAttempt *time.Time `json:"-" db:"last_login_attempt"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`

	Roles       []string `json:"roles" db:"-"`
	Permissions []string `json:"permissions" db:"-"`
}

// HasRole matches role names case-insensitively.
func (o *Operator) HasRole(role string) bool {
	for _, r := range o.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

func (o *Operator) HasPermission(permission string) bool {
	for _, p := range o.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
