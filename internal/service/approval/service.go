package approval

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/service/audit"
	"github.com/jwalitptl/travel-console/internal/service/resource"
	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
	"github.com/jwalitptl/travel-console/pkg/table"
)

// Action labels offered on approval rows.
const (
	ActionApprove = "Approve"
	ActionReject  = "Reject"
	ActionView    = "View"
)

// ActionPolicy decides whether op may approve or reject req.
type ActionPolicy func(op *model.Operator, req model.ApprovalRequest) bool

// DefaultPolicy allows a decision on pending steps when the operator holds
// the required role, or the override permission.
func DefaultPolicy(op *model.Operator, req model.ApprovalRequest) bool {
	if op == nil || req.Status != model.ApprovalStatusPending {
		return false
	}
	if op.HasPermission(model.PermissionApprovalsOverride) {
		return true
	}
	role := strings.TrimSpace(req.RequiredRole)
	return role != "" && op.HasRole(role)
}

// Upstream is the slice of the travel API the approval flow needs.
type Upstream interface {
	Approval(ctx context.Context, id int64) (*model.ApprovalRequest, error)
	Approve(ctx context.Context, id int64, decision model.ApprovalDecision) error
	Reject(ctx context.Context, id int64, decision model.ApprovalDecision) error
}

type Service struct {
	upstream Upstream
	pages    *resource.Service[model.ApprovalRequest]
	policy   ActionPolicy
	auditor  audit.Recorder
	logger   zerolog.Logger
}

func NewService(upstream Upstream, pages *resource.Service[model.ApprovalRequest], policy ActionPolicy, auditor audit.Recorder, logger zerolog.Logger) *Service {
	if policy == nil {
		policy = DefaultPolicy
	}
	return &Service{
		upstream: upstream,
		pages:    pages,
		policy:   policy,
		auditor:  auditor,
		logger:   logger.With().Str("component", "approvals").Logger(),
	}
}

// CanAct evaluates the policy for one row.
func (s *Service) CanAct(op *model.Operator, req model.ApprovalRequest) bool {
	return s.policy(op, req)
}

// ActionsFor builds the per-row action menu for op.
func (s *Service) ActionsFor(op *model.Operator) table.ActionsFunc[model.ApprovalRequest] {
	return func(req model.ApprovalRequest) []table.Action[model.ApprovalRequest] {
		if !s.policy(op, req) {
			return []table.Action[model.ApprovalRequest]{
				{Label: ActionView, Icon: "eye", Variant: "secondary"},
			}
		}
		return []table.Action[model.ApprovalRequest]{
			{Label: ActionApprove, Icon: "check", Variant: "primary"},
			{Label: ActionReject, Icon: "x", Variant: "danger"},
		}
	}
}

// List renders the approvals table with op's actions.
func (s *Service) List(ctx context.Context, op *model.Operator, params model.ListParams, intent *resource.Intent) (*resource.Result, error) {
	return s.pages.View(ctx, params, intent, s.ActionsFor(op))
}

// Skeleton renders the loading state of the approvals table.
func (s *Service) Skeleton(params model.ListParams) *resource.Result {
	return s.pages.Skeleton(params)
}

func (s *Service) Get(ctx context.Context, id int64) (*model.ApprovalRequest, error) {
	return s.upstream.Approval(ctx, id)
}

func (s *Service) Approve(ctx context.Context, op *model.Operator, id int64, notes string) (*model.ApprovalRequest, error) {
	return s.decide(ctx, op, id, notes, model.ApprovalStatusApproved)
}

func (s *Service) Reject(ctx context.Context, op *model.Operator, id int64, notes string) (*model.ApprovalRequest, error) {
	return s.decide(ctx, op, id, notes, model.ApprovalStatusRejected)
}

func (s *Service) decide(ctx context.Context, op *model.Operator, id int64, notes string, outcome model.ApprovalStatus) (*model.ApprovalRequest, error) {
	// The row the operator clicked may be stale; check the current record.
	req, err := s.upstream.Approval(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get approval request: %w", err)
	}
	if !s.policy(op, *req) {
		return nil, apperrors.Forbidden(fmt.Sprintf("you cannot decide approval request %d", id))
	}

	decision := model.ApprovalDecision{Notes: strings.TrimSpace(notes)}
	action := model.AuditActionApprove
	if outcome == model.ApprovalStatusApproved {
		err = s.upstream.Approve(ctx, id, decision)
	} else {
		action = model.AuditActionReject
		err = s.upstream.Reject(ctx, id, decision)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s approval request: %w", action, err)
	}

	s.pages.Invalidate()

	if s.auditor != nil {
		s.auditor.Record(ctx, op.ID, action, model.AuditEntityApproval, strconv.FormatInt(id, 10), &audit.LogOptions{
			Changes: map[string]interface{}{
				"from":  req.Status,
				"to":    outcome,
				"notes": decision.Notes,
			},
			Metadata: map[string]interface{}{
				"step_name":     req.StepName,
				"required_role": req.RequiredRole,
			},
		})
	}

	s.logger.Info().
		Int64("request_id", id).
		Str("operator_id", op.ID.String()).
		Str("outcome", string(outcome)).
		Msg("Approval request decided")

	decided := *req
	decided.Status = outcome
	return &decided, nil
}
