package service

import (
	"context"
	"testing"

	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveLikeCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.on("GET /api/v1/posts", 200, feedWithP1)
	f.api.on("GET /api/v1/bookmarks", 200, `{"data":{"bookmarks":[{"id":"p1","likesCount":5}]}}`)
	_, err := f.feed.Load(ctx, "latest")
	require.NoError(t, err)
	_, err = f.feed.LoadBookmarks(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, f.live.LikeCount("p1", 9, nil))

	feed, _ := f.env.Cache.Get(f.feed.Signature("latest"), "p1")
	assert.Equal(t, 9, feed.Fields["like_count"])
	assert.Equal(t, true, feed.Fields["is_liked"], "flag untouched when not reported")
	saved, _ := f.env.Cache.Get(f.feed.BookmarksSignature(), "p1")
	assert.Equal(t, 9, saved.Fields["likesCount"])

	liked := false
	f.live.LikeCount("p1", 3, &liked)
	f.live.LikeCount("p1", 4, nil)
	feed, _ = f.env.Cache.Get(f.feed.Signature("latest"), "p1")
	assert.Equal(t, 4, feed.Fields["like_count"], "latest update wins")
	assert.Equal(t, false, feed.Fields["is_liked"])

	assert.Zero(t, f.live.LikeCount("missing", 1, nil))
}

func TestLiveCommentAndFollowerCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loadFeedWithPost(t, f)
	f.api.on("GET /api/v1/users/u2", 200, `{"id":"u2","followersCount":10}`)
	_, err := f.profiles.Get(ctx, "u2")
	require.NoError(t, err)

	assert.Equal(t, 1, f.live.CommentCount("p1", 7))
	post, _ := f.posts.Get("p1")
	assert.Equal(t, 7, post.Int(commentCntKeys...))

	assert.Equal(t, 1, f.live.FollowerCount("u2", -3))
	profile, _ := f.profiles.Cached("u2")
	assert.Equal(t, 0, profile.Fields["followersCount"])
}

func TestLiveNotification(t *testing.T) {
	f := newFixture(t)
	n := cache.Record{ID: "n9", Fields: map[string]any{"id": "n9", "type": "like", "is_read": false}}

	assert.False(t, f.live.Notification(n), "list not loaded")

	loadNotifications(t, f)
	assert.True(t, f.live.Notification(n))
	assert.False(t, f.live.Notification(n), "duplicate")
	assert.Equal(t, []string{"n9", "n1", "n2", "n3"}, ids(f.env.Cache.Items(f.notifs.Signature())))
	assert.Equal(t, 3, f.notifs.UnreadCount())
}
