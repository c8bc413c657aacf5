// Package reconcile resolves the server's answer to a like, bookmark, share or
// follow toggle into the new local state.
//
// Servers answer toggles inconsistently: some return a boolean, some a count,
// some only a sentence such as "Post unliked". Resolution order is explicit
// flag, then message keywords, then a plain flip of the previous state.
package reconcile

import (
	"strings"

	"github.com/kazem-mohamed/socialhub-app/pkg/ingest"
)

// State is the toggled flag and its counter
type State struct {
	Active bool
	Count  int
}

// Source names what decided the direction of a toggle
type Source string

const (
	SourceFlag    Source = "flag"
	SourceMessage Source = "message"
	SourceFlip    Source = "flip"
)

// Outcome is a resolved toggle plus how it was resolved
type Outcome struct {
	State
	Source      Source
	ServerCount bool
}

// Rule describes where one kind of toggle reports its result
type Rule struct {
	Name          string
	FlagFields    []string
	// TopFlagFields are only trusted directly under the response wrappers.
	// Nested in a user object the same names usually hold counts.
	TopFlagFields []string
	CountFields   []string
	Negative      []string
	Positive      []string
}

// MessageFields are the free-text fields scanned for keywords
var MessageFields = []string{"message", "msg", "detail"}

// Containers are the wrappers a toggle result may sit in
var Containers = []string{
	"data.data", "data", "",
	"data.post", "data.comment", "data.user", "data.profile",
}

var (
	Like = Rule{
		Name:        "like",
		FlagFields:  []string{"isLiked", "is_liked", "liked", "hasLiked", "has_liked"},
		CountFields: []string{"likesCount", "likes_count", "likeCount", "like_count", "likes"},
		Negative:    []string{"unlike", "un-like", "removed"},
		Positive:    []string{"like"},
	}
	Bookmark = Rule{
		Name:        "bookmark",
		FlagFields:  []string{"isBookmarked", "is_bookmarked", "bookmarked", "isSaved", "is_saved", "saved", "status"},
		CountFields: []string{"bookmarksCount", "bookmarks_count", "bookmarkCount", "bookmark_count", "savesCount", "saves_count", "saveCount", "save_count"},
		Negative:    []string{"unsave", "unbookmark", "removed", "remove"},
		Positive:    []string{"bookmark", "saved", "save"},
	}
	Share = Rule{
		Name:        "share",
		FlagFields:  []string{"isShared", "is_shared", "shared"},
		CountFields: []string{"sharesCount", "shares_count", "shareCount", "share_count", "shares"},
		Negative:    []string{"unshare", "removed"},
		Positive:    []string{"share"},
	}
	Follow = Rule{
		Name:          "follow",
		FlagFields:    []string{"isFollowing", "is_following"},
		TopFlagFields: []string{"following", "followed"},
		CountFields:   []string{"followersCount", "followers_count", "followerCount", "follower_count", "followers"},
		Negative:      []string{"unfollow", "not following", "removed"},
		Positive:      []string{"follow"},
	}
)

// Toggle resolves body against prev and returns the new state
func Toggle(prev State, body []byte, rule Rule) State {
	return Resolve(prev, body, rule).State
}

// Resolve is Toggle with the resolution source reported
func Resolve(prev State, body []byte, rule Rule) Outcome {
	out := Outcome{State: State{Active: !prev.Active}, Source: SourceFlip}

	if v, ok := ingest.Flag(body, rule.flagStrategies()); ok {
		out.Active = v
		out.Source = SourceFlag
	} else if msg, ok := ingest.String(body, ingest.Fields(ingest.ShapeString, Containers, MessageFields...)); ok {
		if v, ok := rule.FromMessage(msg); ok {
			out.Active = v
			out.Source = SourceMessage
		}
	}

	if n, ok := ingest.Int(body, ingest.Fields(ingest.ShapeNumber, Containers, rule.CountFields...)); ok {
		out.Count = max(n, 0)
		out.ServerCount = true
		return out
	}

	out.Count = prev.Count
	if out.Active != prev.Active {
		if out.Active {
			out.Count++
		} else {
			out.Count--
		}
	}
	out.Count = max(out.Count, 0)
	return out
}

func (r Rule) flagStrategies() []ingest.Strategy {
	out := ingest.Fields(ingest.ShapeFlag, Containers, r.FlagFields...)
	return append(out, ingest.Fields(ingest.ShapeFlag, ingest.ResponseContainers, r.TopFlagFields...)...)
}

// FromMessage infers direction from free text. Negative keywords are checked
// first since "unlike" contains "like".
func (r Rule) FromMessage(msg string) (bool, bool) {
	lower := strings.ToLower(msg)
	for _, k := range r.Negative {
		if strings.Contains(lower, k) {
			return false, true
		}
	}
	for _, k := range r.Positive {
		if strings.Contains(lower, k) {
			return true, true
		}
	}
	return false, false
}
