package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog records a console action taken by an operator.
type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	OperatorID uuid.UUID       `json:"operator_id" db:"operator_id"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   string          `json:"entity_id" db:"entity_id"`
	Changes    json.RawMessage `json:"changes,omitempty" db:"changes"`
	Metadata   json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	IPAddress  string          `json:"ip_address" db:"ip_address"`
	UserAgent  string          `json:"user_agent" db:"user_agent"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

func (l AuditLog) ResourceID() string { return l.ID.String() }

const (
	// Action types
	AuditActionLogin       = "login"
	AuditActionApprove     = "approve"
	AuditActionReject      = "reject"
	AuditActionMarkRead    = "mark_read"
	AuditActionMarkUnread  = "mark_unread"
	AuditActionMarkAllRead = "mark_all_read"
	AuditActionDelete      = "delete"
	AuditActionExport      = "export"
	AuditActionClearCache  = "clear_cache"

	// Entity types
	AuditEntityOperator     = "operator"
	AuditEntityApproval     = "approval"
	AuditEntityNotification = "notification"
	AuditEntityResource     = "resource"
)

// AuditFilter narrows an audit log listing.
type AuditFilter struct {
	OperatorID uuid.UUID
	Action     string
	EntityType string
	Since      time.Time
	Limit      int
	Offset     int
}
