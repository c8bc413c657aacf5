package service

import (
	"context"

	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	clierrors "github.com/kazem-mohamed/socialhub-app/pkg/errors"
	"github.com/kazem-mohamed/socialhub-app/pkg/logger"
	"github.com/kazem-mohamed/socialhub-app/pkg/metrics"
)

// NotificationService lists notifications and marks them read
type NotificationService struct {
	env *Env
}

// NewNotificationService creates a notification service
func NewNotificationService(env *Env) *NotificationService {
	return &NotificationService{env: env}
}

// Signature returns the cache key for the notification list
func (s *NotificationService) Signature() cache.Signature {
	return s.env.sig(EntityNotifications, "", "")
}

func (s *NotificationService) source() listSource {
	return listSource{sig: s.Signature(), key: "notifications", fetch: s.env.API.Notifications}
}

// List refetches the first page of notifications
func (s *NotificationService) List(ctx context.Context) ([]cache.Record, error) {
	return s.env.refresh(ctx, s.source())
}

// LoadMore appends the next page of notifications
func (s *NotificationService) LoadMore(ctx context.Context) ([]cache.Record, error) {
	return s.env.loadMore(ctx, s.source())
}

// HasMore reports whether notifications likely have another page
func (s *NotificationService) HasMore() bool {
	return s.env.Cache.HasNextPage(s.Signature())
}

// MarkRead marks one notification read. A notification the server no longer
// knows about counts as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	if err := requireID("notification", id); err != nil {
		return err
	}

	sigs := s.env.signaturesOf(id, EntityNotifications)
	tx := s.env.Cache.Begin(sigs...).Apply(func(c *cache.Cache) {
		markRead(c, sigs, id)
	})

	_, err := s.env.API.MarkNotificationRead(ctx, id)
	if err != nil && clierrors.IsBenign(err) {
		logger.Debug("Notification already gone, treating as read", "id", id)
		tx.Commit()
		s.env.Metrics.Mutation("notification_read", metrics.OutcomeBenign)
		return nil
	}
	return s.env.settle(tx, "notification_read", err, "Failed to mark notification as read")
}

// MarkAllRead marks every cached notification read
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	sig := s.Signature()
	tx := s.env.Cache.Begin(sig).Apply(func(c *cache.Cache) {
		for _, rec := range c.Items(sig) {
			markRead(c, []cache.Signature{sig}, rec.ID)
		}
	})

	_, err := s.env.API.MarkAllNotificationsRead(ctx)
	return s.env.settle(tx, "notification_read_all", err, "Failed to mark notifications as read")
}

// UnreadCount counts unread notifications in the cache
func (s *NotificationService) UnreadCount() int {
	n := 0
	for _, rec := range s.env.Cache.Items(s.Signature()) {
		if !rec.Bool(readKeys...) {
			n++
		}
	}
	return n
}

func markRead(c *cache.Cache, sigs []cache.Signature, id string) {
	for _, sig := range sigs {
		if rec, ok := c.Get(sig, id); ok {
			c.Patch(sig, id, map[string]any{rec.FirstKey(readKeys...): true})
		}
	}
}
