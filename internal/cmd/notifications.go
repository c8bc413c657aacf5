package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/kazem-mohamed/socialhub-app/pkg/formatter"
	"github.com/kazem-mohamed/socialhub-app/pkg/output"
	"github.com/kazem-mohamed/socialhub-app/pkg/session"
	"github.com/spf13/cobra"
)

var (
	notifPages      int
	notifUnreadOnly bool
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notifs"},
	Short:   "View and manage notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, _ []string) error {
		if _, err := s.Notifications.List(ctx); err != nil {
			return err
		}
		if err := loadPages(ctx, notifPages-1, s.Notifications.LoadMore); err != nil {
			return err
		}

		items := s.Cache.Items(s.Notifications.Signature())
		if notifUnreadOnly {
			unread := items[:0:0]
			for _, rec := range items {
				if !rec.Bool("is_read", "isRead", "read") {
					unread = append(unread, rec)
				}
			}
			items = unread
		}
		title := fmt.Sprintf("Notifications (%d unread)", s.Notifications.UnreadCount())
		return p.Records(title, items, formatter.NotificationColumns(time.Now()))
	}),
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <notification-id>...",
	Short: "Mark notifications as read",
	Args:  cobra.MinimumNArgs(1),
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, args []string) error {
		for _, id := range args {
			if err := s.Notifications.MarkRead(ctx, id); err != nil {
				return err
			}
		}
		p.Success("Marked %d notification(s) as read", len(args))
		return nil
	}),
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, _ []string) error {
		if err := s.Notifications.MarkAllRead(ctx); err != nil {
			return err
		}
		p.Success("All notifications marked as read")
		return nil
	}),
}

func init() {
	notificationsListCmd.Flags().IntVar(&notifPages, "pages", 1, "Number of pages to load")
	notificationsListCmd.Flags().BoolVar(&notifUnreadOnly, "unread", false, "Only show unread notifications")

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsReadAllCmd)
}
