package api

import (
	"context"
	"net/url"

	"github.com/go-resty/resty/v2"
)

// TogglePostLike likes or unlikes a post
func (c *Client) TogglePostLike(ctx context.Context, postID string) ([]byte, error) {
	return c.send(ctx, resty.MethodPost, "post_like", "/posts/"+url.PathEscape(postID)+"/like", nil)
}

// ToggleBookmark bookmarks or unbookmarks a post
func (c *Client) ToggleBookmark(ctx context.Context, postID string) ([]byte, error) {
	return c.send(ctx, resty.MethodPost, "post_bookmark", "/posts/"+url.PathEscape(postID)+"/bookmark", nil)
}

// SharePost shares a post to the current user's followers
func (c *Client) SharePost(ctx context.Context, postID string) ([]byte, error) {
	return c.send(ctx, resty.MethodPost, "post_share", "/posts/"+url.PathEscape(postID)+"/share", nil)
}
