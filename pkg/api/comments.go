package api

import (
	"context"
	"net/url"

	"github.com/go-resty/resty/v2"
)

// Comment sort orders
const (
	CommentsLatest = "latest"
	CommentsTop    = "top"
)

// CommentRequest is the body for creating or editing a comment or reply
type CommentRequest struct {
	Content string `json:"content"`
}

// Comments fetches one page of a post's top-level comments
func (c *Client) Comments(ctx context.Context, postID, sort string, q PageQuery) ([]byte, error) {
	params := q.params()
	if sort != "" {
		params["sort"] = sort
	}
	return c.get(ctx, "comments", "/posts/"+url.PathEscape(postID)+"/comments", params)
}

// Replies fetches one page of replies to a comment
func (c *Client) Replies(ctx context.Context, commentID string, q PageQuery) ([]byte, error) {
	return c.get(ctx, "replies", "/comments/"+url.PathEscape(commentID)+"/replies", q.params())
}

// CreateComment adds a comment to a post
func (c *Client) CreateComment(ctx context.Context, postID, content string) ([]byte, error) {
	return c.send(ctx, resty.MethodPost, "create_comment",
		"/posts/"+url.PathEscape(postID)+"/comments", CommentRequest{Content: content})
}

// CreateReply adds a reply to a comment
func (c *Client) CreateReply(ctx context.Context, commentID, content string) ([]byte, error) {
	return c.send(ctx, resty.MethodPost, "create_reply",
		"/comments/"+url.PathEscape(commentID)+"/replies", CommentRequest{Content: content})
}

// UpdateComment edits a comment or reply body
func (c *Client) UpdateComment(ctx context.Context, commentID, content string) ([]byte, error) {
	return c.send(ctx, resty.MethodPut, "update_comment",
		"/comments/"+url.PathEscape(commentID), CommentRequest{Content: content})
}

// DeleteComment deletes a comment or reply
func (c *Client) DeleteComment(ctx context.Context, commentID string) ([]byte, error) {
	return c.send(ctx, resty.MethodDelete, "delete_comment", "/comments/"+url.PathEscape(commentID), nil)
}

// ToggleCommentLike likes or unlikes a comment
func (c *Client) ToggleCommentLike(ctx context.Context, commentID string) ([]byte, error) {
	return c.send(ctx, resty.MethodPost, "comment_like", "/comments/"+url.PathEscape(commentID)+"/like", nil)
}
