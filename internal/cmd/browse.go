package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kazem-mohamed/socialhub-app/pkg/formatter"
	"github.com/kazem-mohamed/socialhub-app/pkg/output"
	"github.com/kazem-mohamed/socialhub-app/pkg/prompter"
	"github.com/kazem-mohamed/socialhub-app/pkg/service"
	"github.com/kazem-mohamed/socialhub-app/pkg/session"
)

const browseHelp = `Commands:
  more                 load the next page
  refresh              reload the first page
  like <post>          like or unlike
  save <post>          bookmark or unbookmark
  share <post>         share
  open <post>          show comments
  comment <post> text  add a comment
  inbox                show notifications
  stats                show cache and counters
  help                 this text
  quit                 leave`

// browser is the interactive feed loop
type browser struct {
	s    *session.Session
	p    *output.Printer
	in   *prompter.Prompter
	mode string
	cmds map[string]func(ctx context.Context, args []string) error
}

func newBrowser(s *session.Session, p *output.Printer, mode string) *browser {
	b := &browser{s: s, p: p, in: prompter.Stdio(), mode: mode}
	b.cmds = map[string]func(context.Context, []string) error{
		"more":    b.more,
		"refresh": b.refresh,
		"like":    b.like,
		"save":    b.save,
		"share":   b.share,
		"open":    b.open,
		"comment": b.comment,
		"inbox":   b.inbox,
		"stats":   func(context.Context, []string) error { return printStats(b.s, b.p) },
	}
	return b
}

func (b *browser) run(ctx context.Context) error {
	if err := b.refresh(ctx, nil); err != nil {
		return err
	}
	b.p.Info("Type help for commands.")

	for ctx.Err() == nil {
		line, err := b.in.String("> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		name, args := fields[0], fields[1:]
		switch name {
		case "quit", "q", "exit":
			return nil
		case "help", "?":
			fmt.Fprintln(b.p.Out, browseHelp)
			continue
		}

		fn, ok := b.cmds[name]
		if !ok {
			b.p.Warning("Unknown command %q", name)
			continue
		}
		if err := fn(ctx, args); err != nil {
			b.p.Error("%v", err)
		}
	}
	return nil
}

func (b *browser) render() error {
	title := fmt.Sprintf("Feed (%s)", b.mode)
	if !b.s.Feed.HasMore(b.mode) {
		title += " - end"
	}
	return b.p.Records(title, b.s.Feed.Items(b.mode), formatter.PostColumns(time.Now()))
}

func (b *browser) refresh(ctx context.Context, _ []string) error {
	if _, err := b.s.Feed.Load(ctx, b.mode); err != nil {
		return err
	}
	return b.render()
}

func (b *browser) more(ctx context.Context, _ []string) error {
	if _, err := b.s.Feed.LoadMore(ctx, b.mode); err != nil {
		if errors.Is(err, service.ErrNoMorePages) {
			b.p.Info("No more posts.")
			return nil
		}
		return err
	}
	return b.render()
}

func postArg(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("which post? give its id")
	}
	return args[0], nil
}

func (b *browser) like(ctx context.Context, args []string) error {
	id, err := postArg(args)
	if err != nil {
		return err
	}
	st, err := b.s.Posts.ToggleLike(ctx, id)
	if err != nil {
		return err
	}
	b.p.Success("%s", formatter.ToggleResult("Liked", "Unliked", "like", st))
	return nil
}

func (b *browser) save(ctx context.Context, args []string) error {
	id, err := postArg(args)
	if err != nil {
		return err
	}
	st, err := b.s.Posts.ToggleBookmark(ctx, id)
	if err != nil {
		return err
	}
	if st.Active {
		b.p.Success("Saved to bookmarks")
	} else {
		b.p.Success("Removed from bookmarks")
	}
	return nil
}

func (b *browser) share(ctx context.Context, args []string) error {
	id, err := postArg(args)
	if err != nil {
		return err
	}
	st, err := b.s.Posts.Share(ctx, id)
	if err != nil {
		return err
	}
	b.p.Success("%s", formatter.ToggleResult("Shared", "Unshared", "share", st))
	return nil
}

func (b *browser) open(ctx context.Context, args []string) error {
	id, err := postArg(args)
	if err != nil {
		return err
	}
	items, err := b.s.Comments.List(ctx, id, "")
	if err != nil {
		return err
	}
	return b.p.Records("Comments on "+id, items, formatter.CommentColumns(time.Now()))
}

func (b *browser) comment(ctx context.Context, args []string) error {
	id, err := postArg(args)
	if err != nil {
		return err
	}
	rec, err := b.s.Comments.Create(ctx, id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	b.p.Success("Comment posted (%s)", rec.ID)
	return nil
}

func (b *browser) inbox(ctx context.Context, _ []string) error {
	items, err := b.s.Notifications.List(ctx)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Notifications (%d unread)", b.s.Notifications.UnreadCount())
	return b.p.Records(title, items, formatter.NotificationColumns(time.Now()))
}
