// Package formatter turns posts, comments, notifications and profiles into
// display strings and output columns.
package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/kazem-mohamed/socialhub-app/pkg/output"
	"github.com/kazem-mohamed/socialhub-app/pkg/reconcile"
)

var (
	Bold    = color.New(color.Bold)
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Warning = color.New(color.FgYellow)
	Faint   = color.New(color.Faint)
)

// ContentWidth is how many runes of a body fit in a column
const ContentWidth = 60

var (
	authorKeys    = []string{"username", "userName", "handle"}
	authorParents = []string{"user", "author", "owner", "actor"}
	contentKeys   = []string{"content", "body", "text", "caption", "message"}
	createdKeys   = []string{"created_at", "createdAt", "timestamp"}
	likedKeys     = []string{"is_liked", "isLiked", "liked"}
	likeCountKeys = []string{"like_count", "likes_count", "likesCount", "likeCount", "likes"}
	savedKeys     = []string{"is_bookmarked", "isBookmarked", "is_saved", "isSaved", "bookmarked", "saved"}
	shareKeys     = []string{"share_count", "shares_count", "sharesCount", "shareCount", "shares"}
	commentKeys   = []string{"comment_count", "comments_count", "commentsCount", "commentCount"}
	replyKeys     = []string{"reply_count", "replies_count", "replyCount", "repliesCount"}
	readKeys      = []string{"is_read", "isRead", "read"}
	typeKeys      = []string{"type", "kind", "verb"}
)

// ProfileFields is the display order of profile fields
var ProfileFields = []string{
	"username", "display_name", "displayName", "bio", "location", "website",
	"followers_count", "followersCount", "following_count", "followingCount",
	"is_following", "isFollowing", "created_at", "createdAt",
}

// Count abbreviates large counters: 999, 1.2k, 3.4M
func Count(n int) string {
	switch {
	case n >= 1_000_000:
		return trimZero(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return trimZero(float64(n)/1_000) + "k"
	}
	return strconv.Itoa(n)
}

func trimZero(f float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(f, 'f', 1, 64), ".0")
}

// Truncate shortens s to n runes on one line
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:max(n-1, 0)]) + "…"
}

// RelativeTime renders an RFC 3339 timestamp relative to now
func RelativeTime(ts string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
	return t.Format("2006-01-02")
}

// Author returns "@username" from the record or its nested user object
func Author(rec cache.Record) string {
	if name := rec.String(authorKeys...); name != "" {
		return "@" + name
	}
	for _, parent := range authorParents {
		if m, ok := rec.Fields[parent].(map[string]any); ok {
			if name := cache.NewRecord(m).String(authorKeys...); name != "" {
				return "@" + name
			}
		}
	}
	return ""
}

// Content returns the truncated body, marked while it awaits the server
func Content(rec cache.Record) string {
	body := Truncate(rec.String(contentKeys...), ContentWidth)
	if rec.Optimistic {
		return body + " (sending…)"
	}
	return body
}

func counter(rec cache.Record, keys []string, active bool) string {
	s := Count(rec.Int(keys...))
	if active {
		return s + "*"
	}
	return s
}

// PostColumns renders posts in a list
func PostColumns(now time.Time) []output.Column {
	return []output.Column{
		{Header: "ID", Value: func(r cache.Record) string { return r.ID }},
		{Header: "Author", Value: Author},
		{Header: "Content", Value: Content},
		{Header: "Likes", Value: func(r cache.Record) string { return counter(r, likeCountKeys, r.Bool(likedKeys...)) }},
		{Header: "Comments", Value: func(r cache.Record) string { return Count(r.Int(commentKeys...)) }},
		{Header: "Shares", Value: func(r cache.Record) string { return Count(r.Int(shareKeys...)) }},
		{Header: "Saved", Value: func(r cache.Record) string { return mark(r.Bool(savedKeys...)) }},
		{Header: "Age", Value: func(r cache.Record) string { return RelativeTime(r.String(createdKeys...), now) }},
	}
}

// CommentColumns renders comments and replies
func CommentColumns(now time.Time) []output.Column {
	return []output.Column{
		{Header: "ID", Value: func(r cache.Record) string { return r.ID }},
		{Header: "Author", Value: Author},
		{Header: "Comment", Value: Content},
		{Header: "Likes", Value: func(r cache.Record) string { return counter(r, likeCountKeys, r.Bool(likedKeys...)) }},
		{Header: "Replies", Value: func(r cache.Record) string { return Count(r.Int(replyKeys...)) }},
		{Header: "Age", Value: func(r cache.Record) string { return RelativeTime(r.String(createdKeys...), now) }},
	}
}

// NotificationColumns renders notifications, unread ones marked
func NotificationColumns(now time.Time) []output.Column {
	return []output.Column{
		{Header: "", Value: func(r cache.Record) string { return mark(!r.Bool(readKeys...)) }},
		{Header: "ID", Value: func(r cache.Record) string { return r.ID }},
		{Header: "Type", Value: func(r cache.Record) string { return r.String(typeKeys...) }},
		{Header: "From", Value: Author},
		{Header: "Message", Value: Content},
		{Header: "Age", Value: func(r cache.Record) string { return RelativeTime(r.String(createdKeys...), now) }},
	}
}

func mark(b bool) string {
	if b {
		return "•"
	}
	return ""
}

// ToggleResult describes a resolved toggle, e.g. "Liked (6 likes)"
func ToggleResult(on, off, unit string, st reconcile.State) string {
	verb := off
	if st.Active {
		verb = on
	}
	if st.Count != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%s (%s %s)", verb, Count(st.Count), unit)
}
