package api

import (
	"context"
	"fmt"
	"net/url"
)

// Feed modes
const (
	FeedLatest    = "latest"
	FeedFollowing = "following"
	FeedPopular   = "popular"
)

// FeedModes lists every supported feed mode
var FeedModes = []string{FeedLatest, FeedFollowing, FeedPopular}

// ValidFeedMode reports whether mode is supported
func ValidFeedMode(mode string) bool {
	for _, m := range FeedModes {
		if m == mode {
			return true
		}
	}
	return false
}

// Feed fetches one page of the home feed
func (c *Client) Feed(ctx context.Context, mode string, q PageQuery) ([]byte, error) {
	if mode == "" {
		mode = FeedLatest
	}
	if !ValidFeedMode(mode) {
		return nil, fmt.Errorf("unknown feed mode %q", mode)
	}

	params := q.params()
	if mode == FeedFollowing {
		return c.get(ctx, "feed", "/feed/following", params)
	}
	params["sort"] = mode
	return c.get(ctx, "feed", "/posts", params)
}

// UserPosts fetches one page of a user's posts
func (c *Client) UserPosts(ctx context.Context, userID string, q PageQuery) ([]byte, error) {
	return c.get(ctx, "user_posts", "/users/"+url.PathEscape(userID)+"/posts", q.params())
}

// Bookmarks fetches one page of the current user's bookmarks
func (c *Client) Bookmarks(ctx context.Context, q PageQuery) ([]byte, error) {
	return c.get(ctx, "bookmarks", "/bookmarks", q.params())
}

// Post fetches a single post
func (c *Client) Post(ctx context.Context, postID string) ([]byte, error) {
	return c.get(ctx, "post", "/posts/"+url.PathEscape(postID), nil)
}
