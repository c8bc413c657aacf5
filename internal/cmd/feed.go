package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/kazem-mohamed/socialhub-app/pkg/api"
	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/kazem-mohamed/socialhub-app/pkg/formatter"
	"github.com/kazem-mohamed/socialhub-app/pkg/output"
	"github.com/kazem-mohamed/socialhub-app/pkg/service"
	"github.com/kazem-mohamed/socialhub-app/pkg/session"
	"github.com/spf13/cobra"
)

var (
	feedMode      string
	feedPages     int
	feedUser      string
	feedBookmarks bool
	browseLive    bool
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "View a feed",
	Long: `View the home feed (latest, following or popular), a user's posts or
your bookmarks. --pages loads that many pages in order.`,
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, _ []string) error {
		var first, more func(context.Context) ([]cache.Record, error)
		var items func() []cache.Record
		title := "Feed (" + feedMode + ")"

		switch {
		case feedBookmarks:
			title = "Bookmarks"
			first, more = s.Feed.LoadBookmarks, s.Feed.LoadMoreBookmarks
			items = func() []cache.Record { return s.Cache.Items(s.Feed.BookmarksSignature()) }
		case feedUser != "":
			title = "Posts by " + feedUser
			first = func(ctx context.Context) ([]cache.Record, error) { return s.Feed.LoadUserPosts(ctx, feedUser) }
			more = func(ctx context.Context) ([]cache.Record, error) { return s.Feed.LoadMoreUserPosts(ctx, feedUser) }
			items = func() []cache.Record { return s.Cache.Items(s.Feed.UserSignature(feedUser)) }
		default:
			first = func(ctx context.Context) ([]cache.Record, error) { return s.Feed.Load(ctx, feedMode) }
			more = func(ctx context.Context) ([]cache.Record, error) { return s.Feed.LoadMore(ctx, feedMode) }
			items = func() []cache.Record { return s.Feed.Items(feedMode) }
		}

		if _, err := first(ctx); err != nil {
			return err
		}
		if err := loadPages(ctx, feedPages-1, more); err != nil {
			return err
		}
		return p.Records(title, items(), formatter.PostColumns(time.Now()))
	}),
}

// loadPages appends up to n further pages, stopping quietly at the end
func loadPages(ctx context.Context, n int, more func(context.Context) ([]cache.Record, error)) error {
	for range n {
		if _, err := more(ctx); err != nil {
			if errors.Is(err, service.ErrNoMorePages) {
				return nil
			}
			return err
		}
	}
	return nil
}

var feedBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse a feed interactively",
	Long: `Open a feed and act on it without leaving the session. Likes,
bookmarks, shares and comments show up immediately and are undone if the
server rejects them. With --live, counts update as others interact.`,
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, _ []string) error {
		if browseLive {
			if _, err := s.Watch(ctx); err != nil {
				p.Warning("Live updates unavailable: %v", err)
			}
		}
		return newBrowser(s, p, feedMode).run(ctx)
	}),
}

func init() {
	feedCmd.PersistentFlags().StringVarP(&feedMode, "mode", "m", api.FeedLatest, "Feed mode: latest, following, popular")
	feedCmd.Flags().IntVar(&feedPages, "pages", 1, "Number of pages to load")
	feedCmd.Flags().StringVar(&feedUser, "user", "", "Show posts by this user id")
	feedCmd.Flags().BoolVar(&feedBookmarks, "bookmarks", false, "Show your bookmarks")
	feedCmd.MarkFlagsMutuallyExclusive("user", "bookmarks")

	feedBrowseCmd.Flags().BoolVar(&browseLive, "live", true, "Apply live count updates while browsing")
	feedCmd.AddCommand(feedBrowseCmd)
}
