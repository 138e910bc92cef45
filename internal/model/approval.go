package model

import (
	"strconv"
	"time"
)

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "Pending"
	ApprovalStatusApproved ApprovalStatus = "Approved"
	ApprovalStatusRejected ApprovalStatus = "Rejected"
	ApprovalStatusSkipped  ApprovalStatus = "Skipped"
)

// ApprovalRequest is one step of an approval workflow awaiting a decision.
type ApprovalRequest struct {
	RequestID    int64          `json:"request_id"`
	RequestType  string         `json:"request_type"`
	Status       ApprovalStatus `json:"status"`
	RequiredRole string         `json:"required_role"`
	StepName     string         `json:"step_name"`
	CreatorName  string         `json:"creator_name"`
	RequestNotes string         `json:"request_notes"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (a ApprovalRequest) ResourceID() string {
	return strconv.FormatInt(a.RequestID, 10)
}

// ApprovalDecision is the body sent upstream on approve/reject.
type ApprovalDecision struct {
	Notes string `json:"notes" binding:"max=1000"`
}
