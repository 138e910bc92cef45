package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jwalitptl/travel-console/internal/model"
)

func (c *Client) Notifications(ctx context.Context, operator string) (*model.NotificationFeed, error) {
	var feed model.NotificationFeed
	err := c.do(ctx, request{
		method:     http.MethodGet,
		path:       "/notifications",
		onBehalfOf: operator,
		out:        &feed,
	})
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, operator string, id int64) error {
	return c.do(ctx, request{
		method:     http.MethodPut,
		path:       "/notifications/mark-read/" + strconv.FormatInt(id, 10),
		onBehalfOf: operator,
	})
}

func (c *Client) MarkNotificationUnread(ctx context.Context, operator string, id int64) error {
	return c.do(ctx, request{
		method:     http.MethodPut,
		path:       "/notifications/mark-unread/" + strconv.FormatInt(id, 10),
		onBehalfOf: operator,
	})
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context, operator string) error {
	return c.do(ctx, request{
		method:     http.MethodPut,
		path:       "/notifications/mark-all-read",
		onBehalfOf: operator,
	})
}

func (c *Client) DeleteNotification(ctx context.Context, operator string, id int64) error {
	return c.do(ctx, request{
		method:     http.MethodDelete,
		path:       "/notifications/" + strconv.FormatInt(id, 10),
		onBehalfOf: operator,
	})
}

// NotificationStore binds the notification endpoints to one operator.
type NotificationStore struct {
	client   *Client
	operator string
}

func (c *Client) NotificationStore(operator string) *NotificationStore {
	return &NotificationStore{client: c, operator: operator}
}

func (s *NotificationStore) Fetch(ctx context.Context) (*model.NotificationFeed, error) {
	return s.client.Notifications(ctx, s.operator)
}

func (s *NotificationStore) MarkRead(ctx context.Context, id int64) error {
	return s.client.MarkNotificationRead(ctx, s.operator, id)
}

func (s *NotificationStore) MarkUnread(ctx context.Context, id int64) error {
	return s.client.MarkNotificationUnread(ctx, s.operator, id)
}

func (s *NotificationStore) MarkAllRead(ctx context.Context) error {
	return s.client.MarkAllNotificationsRead(ctx, s.operator)
}

func (s *NotificationStore) Delete(ctx context.Context, id int64) error {
	return s.client.DeleteNotification(ctx, s.operator, id)
}
