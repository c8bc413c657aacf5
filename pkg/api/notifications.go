package api

import (
	"context"
	"net/url"

	"github.com/go-resty/resty/v2"
)

// Notifications fetches one page of notifications
func (c *Client) Notifications(ctx context.Context, q PageQuery) ([]byte, error) {
	return c.get(ctx, "notifications", "/notifications", q.params())
}

// MarkNotificationRead marks one notification as read
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) ([]byte, error) {
	return c.send(ctx, resty.MethodPut, "notification_read",
		"/notifications/"+url.PathEscape(notificationID)+"/read", nil)
}

// MarkAllNotificationsRead marks every notification as read
func (c *Client) MarkAllNotificationsRead(ctx context.Context) ([]byte, error) {
	return c.send(ctx, resty.MethodPut, "notifications_read_all", "/notifications/read-all", nil)
}
