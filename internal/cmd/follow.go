package cmd

import (
	"context"

	"github.com/kazem-mohamed/socialhub-app/pkg/formatter"
	"github.com/kazem-mohamed/socialhub-app/pkg/output"
	"github.com/kazem-mohamed/socialhub-app/pkg/session"
	"github.com/spf13/cobra"
)

var followCmd = &cobra.Command{
	Use:   "follow <user-id>",
	Short: "Follow or unfollow a user",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, args []string) error {
		st, err := s.Follows.ToggleFollow(ctx, args[0])
		if err != nil {
			return err
		}
		if p.Format == output.FormatJSON {
			return p.Value("", map[string]any{"user_id": args[0], "following": st.Active, "followers": st.Count})
		}
		p.Success("%s", formatter.ToggleResult("Following", "Unfollowed", "follower", st))
		return nil
	}),
}
