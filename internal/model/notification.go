package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one entry of an operator's notification feed. The travel API
// owns it; the console holds a working copy.
type Notification struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	NotificationType string    `json:"notification_type"`
	IsRead           bool      `json:"is_read"`
	CreatedAt        time.Time `json:"created_at"`
}

// NotificationCounts backs the unread badge and the tab labels.
type NotificationCounts struct {
	Read   int `json:"read"`
	Unread int `json:"unread"`
}

// Total returns read + unread.
func (c NotificationCounts) Total() int {
	return c.Read + c.Unread
}

// NotificationBucket is one read-state partition of the feed.
type NotificationBucket struct {
	Total int            `json:"total"`
	Items []Notification `json:"items"`
}

// NotificationFeed is the upstream response of the notification list.
type NotificationFeed struct {
	Unread NotificationBucket `json:"unread"`
	Read   NotificationBucket `json:"read"`
}

// NotificationTab selects a projection of the working set.
type NotificationTab string

const (
	NotificationTabAll    NotificationTab = "all"
	NotificationTabUnread NotificationTab = "unread"
	NotificationTabRead   NotificationTab = "read"
)

// NotificationEvent is published after a state change was applied.
type NotificationEvent struct {
	ID             uuid.UUID          `json:"id"`
	OperatorID     uuid.UUID          `json:"operator_id"`
	NotificationID int64              `json:"notification_id,omitempty"`
	Type           string             `json:"type"`
	Counts         NotificationCounts `json:"counts"`
	CreatedAt      time.Time          `json:"created_at"`
}
