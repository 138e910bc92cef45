package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jwalitptl/travel-console/internal/model"
)

const approvalsResource = "approvals"

func (c *Client) Approvals(ctx context.Context, params model.ListParams) (*model.ListResponse[model.ApprovalRequest], error) {
	return List[model.ApprovalRequest](ctx, c, approvalsResource, params)
}

func (c *Client) Approval(ctx context.Context, id int64) (*model.ApprovalRequest, error) {
	return Get[model.ApprovalRequest](ctx, c, approvalsResource, strconv.FormatInt(id, 10))
}

func (c *Client) Approve(ctx context.Context, id int64, decision model.ApprovalDecision) error {
	return c.decide(ctx, id, "approve", decision)
}

func (c *Client) Reject(ctx context.Context, id int64, decision model.ApprovalDecision) error {
	return c.decide(ctx, id, "reject", decision)
}

func (c *Client) decide(ctx context.Context, id int64, verb string, decision model.ApprovalDecision) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   "/" + approvalsResource + "/" + strconv.FormatInt(id, 10) + "/" + verb,
		body:   decision,
	})
}
