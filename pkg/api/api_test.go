package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kazem-mohamed/socialhub-app/pkg/client"
	clierrors "github.com/kazem-mohamed/socialhub-app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seen struct {
	method string
	path   string
	query  string
	body   string
	auth   string
}

func newTestClient(t *testing.T, status int, reply string, got *seen) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if got != nil {
			*got = seen{r.Method, r.URL.Path, r.URL.RawQuery, string(b), r.Header.Get("Authorization")}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	rc := client.New(client.Options{BaseURL: srv.URL, Timeout: 5 * time.Second, Token: "tok"})
	return New(rc)
}

func TestEndpoints(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		call   func(c *Client) ([]byte, error)
		method string
		path   string
		query  string
		body   string
	}{
		{"latest feed", func(c *Client) ([]byte, error) { return c.Feed(ctx, "", PageQuery{Page: 2, Limit: 10}) },
			"GET", "/api/v1/posts", "limit=10&page=2&sort=latest", ""},
		{"following feed", func(c *Client) ([]byte, error) { return c.Feed(ctx, FeedFollowing, PageQuery{Page: 1}) },
			"GET", "/api/v1/feed/following", "page=1", ""},
		{"comments", func(c *Client) ([]byte, error) { return c.Comments(ctx, "p1", CommentsTop, PageQuery{Page: 1, Limit: 10}) },
			"GET", "/api/v1/posts/p1/comments", "limit=10&page=1&sort=top", ""},
		{"replies", func(c *Client) ([]byte, error) { return c.Replies(ctx, "c1", PageQuery{}) },
			"GET", "/api/v1/comments/c1/replies", "", ""},
		{"create comment", func(c *Client) ([]byte, error) { return c.CreateComment(ctx, "p1", "hello") },
			"POST", "/api/v1/posts/p1/comments", "", `{"content":"hello"}`},
		{"create reply", func(c *Client) ([]byte, error) { return c.CreateReply(ctx, "c1", "hi") },
			"POST", "/api/v1/comments/c1/replies", "", `{"content":"hi"}`},
		{"edit comment", func(c *Client) ([]byte, error) { return c.UpdateComment(ctx, "c1", "edited") },
			"PUT", "/api/v1/comments/c1", "", `{"content":"edited"}`},
		{"delete comment", func(c *Client) ([]byte, error) { return c.DeleteComment(ctx, "c1") },
			"DELETE", "/api/v1/comments/c1", "", ""},
		{"like post", func(c *Client) ([]byte, error) { return c.TogglePostLike(ctx, "p1") },
			"POST", "/api/v1/posts/p1/like", "", ""},
		{"bookmark", func(c *Client) ([]byte, error) { return c.ToggleBookmark(ctx, "p1") },
			"POST", "/api/v1/posts/p1/bookmark", "", ""},
		{"share", func(c *Client) ([]byte, error) { return c.SharePost(ctx, "p1") },
			"POST", "/api/v1/posts/p1/share", "", ""},
		{"follow", func(c *Client) ([]byte, error) { return c.ToggleFollow(ctx, "u2") },
			"POST", "/api/v1/users/u2/follow", "", ""},
		{"mark read", func(c *Client) ([]byte, error) { return c.MarkNotificationRead(ctx, "n1") },
			"PUT", "/api/v1/notifications/n1/read", "", ""},
		{"read all", func(c *Client) ([]byte, error) { return c.MarkAllNotificationsRead(ctx) },
			"PUT", "/api/v1/notifications/read-all", "", ""},
		{"update profile", func(c *Client) ([]byte, error) { return c.UpdateProfile(ctx, ProfileUpdate{Bio: "new"}) },
			"PUT", "/api/v1/users/me", "", `{"bio":"new"}`},
		{"login", func(c *Client) ([]byte, error) { return c.Login(ctx, "a@b.c", "pw") },
			"POST", "/api/v1/auth/login", "", `{"email":"a@b.c","password":"pw"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got seen
			c := newTestClient(t, http.StatusOK, `{"ok":true}`, &got)

			body, err := tt.call(c)
			require.NoError(t, err)
			assert.JSONEq(t, `{"ok":true}`, string(body))
			assert.Equal(t, tt.method, got.method)
			assert.Equal(t, tt.path, got.path)
			assert.Equal(t, tt.query, got.query)
			assert.Equal(t, "Bearer tok", got.auth)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, got.body)
			}
		})
	}
}

func TestFeedRejectsUnknownMode(t *testing.T) {
	c := newTestClient(t, http.StatusOK, `{}`, nil)
	_, err := c.Feed(context.Background(), "trending", PageQuery{})
	assert.Error(t, err)
}

func TestErrorBodies(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		describe string
		fields   []string
	}{
		{"message wins", 400, `{"message":"Content is required","error":"bad_request","errors":["x"]}`, "Content is required", []string{"x"}},
		{"error field", 403, `{"error":"You cannot edit this comment"}`, "You cannot edit this comment", nil},
		{"validation array of objects", 422, `{"errors":[{"field":"content","message":"too long"},{"field":"x","msg":"bad"}]}`, "too long", []string{"too long", "bad"}},
		{"validation map", 422, `{"data":{"errors":{"content":["must not be empty"],"bio":"too long"}}}`, "too long", []string{"too long", "must not be empty"}},
		{"nothing structured", 500, `<html>oops</html>`, "failed: 500 Internal Server Error", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.status, tt.body, nil)

			_, err := c.CreateComment(context.Background(), "p1", "x")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.HTTPStatus())
			assert.Equal(t, tt.fields, apiErr.FieldErrors())
			assert.Contains(t, clierrors.Describe(err, "Failed to add comment"), tt.describe)
		})
	}
}

func TestNotFoundIsRecognised(t *testing.T) {
	c := newTestClient(t, http.StatusNotFound, `{"message":"Notification not found"}`, nil)

	_, err := c.MarkNotificationRead(context.Background(), "gone")
	assert.True(t, clierrors.IsNotFound(err))
	assert.True(t, clierrors.IsBenign(err))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	var observed []int
	c := New(client.New(client.Options{BaseURL: url, Timeout: time.Second}),
		WithCallObserver(func(endpoint string, status int, _ time.Duration) {
			assert.Equal(t, "post_like", endpoint)
			observed = append(observed, status)
		}))

	_, err := c.TogglePostLike(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, []int{0}, observed)

	cliErr := clierrors.CategorizeError(err)
	assert.Equal(t, clierrors.ErrorTypeNetwork, cliErr.Type)
	assert.NotEmpty(t, clierrors.Describe(err, "fallback"))
}

func TestProfileUpdateFields(t *testing.T) {
	assert.Equal(t, map[string]any{"bio": "b", "location": "here"}, ProfileUpdate{Bio: "b", Location: "here"}.Fields())
	assert.Empty(t, ProfileUpdate{}.Fields())
}
