package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/kazem-mohamed/socialhub-app/pkg/formatter"
	"github.com/kazem-mohamed/socialhub-app/pkg/output"
	"github.com/kazem-mohamed/socialhub-app/pkg/prompter"
	"github.com/kazem-mohamed/socialhub-app/pkg/session"
	"github.com/spf13/cobra"
)

var (
	commentSort    string
	commentPages   int
	commentReplies bool
	commentPost    string
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Manage comments on posts",
	Long:  "List, create, reply to, edit, delete and like comments",
}

// commentText joins args or asks for the text when none were given
func commentText(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return prompter.Stdio().Multiline("Comment", 50)
}

var commentListCmd = &cobra.Command{
	Use:   "list <post-id|comment-id>",
	Short: "List comments on a post, or replies with --replies",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, args []string) error {
		id := args[0]
		if commentReplies {
			if _, err := s.Comments.Replies(ctx, id); err != nil {
				return err
			}
			err := loadPages(ctx, commentPages-1, func(ctx context.Context) ([]cache.Record, error) {
				return s.Comments.LoadMoreReplies(ctx, id)
			})
			if err != nil {
				return err
			}
			return p.Records("Replies to "+id, s.Cache.Items(s.Comments.RepliesSignature(id)), formatter.CommentColumns(time.Now()))
		}

		if _, err := s.Comments.List(ctx, id, commentSort); err != nil {
			return err
		}
		err := loadPages(ctx, commentPages-1, func(ctx context.Context) ([]cache.Record, error) {
			return s.Comments.LoadMore(ctx, id, commentSort)
		})
		if err != nil {
			return err
		}
		return p.Records("Comments on "+id, s.Cache.Items(s.Comments.Signature(id, commentSort)), formatter.CommentColumns(time.Now()))
	}),
}

var commentCreateCmd = &cobra.Command{
	Use:   "create <post-id> [text...]",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(1),
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, args []string) error {
		text, err := commentText(args[1:])
		if err != nil {
			return err
		}
		rec, err := s.Comments.Create(ctx, args[0], text)
		if err != nil {
			return err
		}
		p.Success("Comment posted (%s)", rec.ID)
		return nil
	}),
}

var commentReplyCmd = &cobra.Command{
	Use:   "reply <comment-id> [text...]",
	Short: "Reply to a comment",
	Args:  cobra.MinimumNArgs(1),
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, args []string) error {
		text, err := commentText(args[1:])
		if err != nil {
			return err
		}
		rec, err := s.Comments.Reply(ctx, args[0], text)
		if err != nil {
			return err
		}
		p.Success("Reply posted (%s)", rec.ID)
		return nil
	}),
}

var commentEditCmd = &cobra.Command{
	Use:   "edit <comment-id> [text...]",
	Short: "Edit one of your comments",
	Args:  cobra.MinimumNArgs(1),
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, args []string) error {
		text, err := commentText(args[1:])
		if err != nil {
			return err
		}
		if _, err := s.Comments.Edit(ctx, args[0], text); err != nil {
			return err
		}
		p.Success("Comment updated")
		return nil
	}),
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete <comment-id>",
	Short: "Delete one of your comments",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, args []string) error {
		ok, err := prompter.Stdio().Confirm("Delete comment " + args[0] + "?")
		if err != nil {
			return err
		}
		if !ok {
			p.Info("Cancelled")
			return nil
		}
		if err := s.Comments.Delete(ctx, commentPost, args[0]); err != nil {
			return err
		}
		p.Success("Comment deleted")
		return nil
	}),
}

var commentLikeCmd = &cobra.Command{
	Use:   "like <comment-id>",
	Short: "Like or unlike a comment",
	Long:  "Like or unlike a comment. Pass --post so the current like state is known before toggling.",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, args []string) error {
		if commentPost != "" {
			if _, err := s.Comments.List(ctx, commentPost, commentSort); err != nil {
				return err
			}
		}
		st, err := s.Comments.ToggleLike(ctx, args[0])
		if err != nil {
			return err
		}
		p.Success("%s", formatter.ToggleResult("Liked", "Unliked", "like", st))
		return nil
	}),
}

func init() {
	commentCmd.PersistentFlags().StringVar(&commentSort, "sort", "", "Comment order passed to the server (e.g. newest, top)")
	commentListCmd.Flags().IntVar(&commentPages, "pages", 1, "Number of pages to load")
	commentListCmd.Flags().BoolVar(&commentReplies, "replies", false, "List replies to a comment instead")
	commentDeleteCmd.Flags().StringVar(&commentPost, "post", "", "Post the comment belongs to")
	commentLikeCmd.Flags().StringVar(&commentPost, "post", "", "Post the comment belongs to")

	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentCreateCmd)
	commentCmd.AddCommand(commentReplyCmd)
	commentCmd.AddCommand(commentEditCmd)
	commentCmd.AddCommand(commentDeleteCmd)
	commentCmd.AddCommand(commentLikeCmd)
}
