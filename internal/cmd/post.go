package cmd

import (
	"context"

	"github.com/kazem-mohamed/socialhub-app/pkg/formatter"
	"github.com/kazem-mohamed/socialhub-app/pkg/output"
	"github.com/kazem-mohamed/socialhub-app/pkg/reconcile"
	"github.com/kazem-mohamed/socialhub-app/pkg/session"
	"github.com/spf13/cobra"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "View and react to posts",
}

var postShowCmd = &cobra.Command{
	Use:   "show <post-id>",
	Short: "Show one post",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, args []string) error {
		rec, err := s.Posts.Load(ctx, args[0])
		if err != nil {
			return err
		}
		return p.Record("Post "+rec.ID, rec)
	}),
}

// postToggle builds a like/bookmark/share command. The post is loaded first
// so the toggle starts from the server's current state.
func postToggle(use, short string, act func(*session.Session) func(context.Context, string) (reconcile.State, error), describe func(reconcile.State) string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <post-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, args []string) error {
			if _, err := s.Posts.Load(ctx, args[0]); err != nil {
				return err
			}
			st, err := act(s)(ctx, args[0])
			if err != nil {
				return err
			}
			if p.Format == output.FormatJSON {
				return p.Value("", map[string]any{"id": args[0], "active": st.Active, "count": st.Count})
			}
			p.Success("%s", describe(st))
			return nil
		}),
	}
}

func init() {
	postCmd.AddCommand(postShowCmd)
	postCmd.AddCommand(postToggle("like", "Like or unlike a post",
		func(s *session.Session) func(context.Context, string) (reconcile.State, error) { return s.Posts.ToggleLike },
		func(st reconcile.State) string { return formatter.ToggleResult("Liked", "Unliked", "like", st) }))
	postCmd.AddCommand(postToggle("bookmark", "Bookmark or unbookmark a post",
		func(s *session.Session) func(context.Context, string) (reconcile.State, error) { return s.Posts.ToggleBookmark },
		func(st reconcile.State) string {
			if st.Active {
				return "Saved to bookmarks"
			}
			return "Removed from bookmarks"
		}))
	postCmd.AddCommand(postToggle("share", "Share a post with your followers",
		func(s *session.Session) func(context.Context, string) (reconcile.State, error) { return s.Posts.Share },
		func(st reconcile.State) string { return formatter.ToggleResult("Shared", "Unshared", "share", st) }))
}
