package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/kazem-mohamed/socialhub-app/pkg/api"
	"github.com/kazem-mohamed/socialhub-app/pkg/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowFailureRestoresExactly(t *testing.T) {
	f := newFixture(t)
	f.api.on("GET /api/v1/users/u2", 200, `{"data":{"user":{"id":"u2","username":"sam","isFollowing":false,"followersCount":10}}}`)

	inFlight := make(chan reconcile.State, 1)
	f.api.handle("POST /api/v1/users/u2/follow", func(*http.Request, string) reply {
		st, _ := f.follows.State("u2")
		inFlight <- st
		return reply{500, `{"message":"Could not follow user"}`}
	})

	st, err := f.follows.ToggleFollow(context.Background(), "u2")
	require.Error(t, err)
	assert.Equal(t, "Could not follow user", err.Error())

	assert.Equal(t, reconcile.State{Active: true, Count: 11}, <-inFlight)
	assert.Equal(t, reconcile.State{Active: false, Count: 10}, st)

	restored, ok := f.follows.State("u2")
	require.True(t, ok)
	assert.Equal(t, reconcile.State{Active: false, Count: 10}, restored)

	rec, _ := f.profiles.Cached("u2")
	assert.Equal(t, false, rec.Fields["isFollowing"])
	assert.Equal(t, float64(10), rec.Fields["followersCount"])
}

func TestFollowSuccess(t *testing.T) {
	f := newFixture(t)
	f.api.on("GET /api/v1/users/u2", 200, `{"id":"u2","is_following":false,"followers_count":10}`)
	f.api.on("POST /api/v1/users/u2/follow", 200, `{"message":"User followed successfully"}`)

	st, err := f.follows.ToggleFollow(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, reconcile.State{Active: true, Count: 11}, st)
	assert.Equal(t, 1, f.api.count("GET /api/v1/users/u2"))

	f.api.on("POST /api/v1/users/u2/follow", 200, `{"data":{"is_following":false,"followers_count":10}}`)
	st, err = f.follows.ToggleFollow(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, reconcile.State{Active: false, Count: 10}, st)
	assert.Equal(t, 1, f.api.count("GET /api/v1/users/u2"), "cached profile is reused")
}

func TestProfileUpdate(t *testing.T) {
	f := newFixture(t)
	f.api.on("GET /api/v1/users/u1", 200, `{"data":{"id":"u1","bio":"old","display_name":"Me"}}`)
	_, err := f.profiles.Get(context.Background(), "u1")
	require.NoError(t, err)

	f.api.handle("PUT /api/v1/users/me", func(_ *http.Request, body string) reply {
		rec, _ := f.profiles.Cached("u1")
		assert.Equal(t, "new bio", rec.String("bio"))
		assert.JSONEq(t, `{"bio":"new bio"}`, body)
		return reply{200, `{"data":{"user":{"id":"u1","bio":"new bio","display_name":"Me","updated_at":"now"}}}`}
	})

	rec, err := f.profiles.Update(context.Background(), api.ProfileUpdate{Bio: "new bio"})
	require.NoError(t, err)
	assert.Equal(t, "now", rec.String("updated_at"))

	cached, _ := f.profiles.Cached("u1")
	assert.Equal(t, "now", cached.String("updated_at"))
}

func TestProfileUpdateFailure(t *testing.T) {
	f := newFixture(t)
	f.api.on("GET /api/v1/users/u1", 200, `{"data":{"id":"u1","bio":"old"}}`)
	_, err := f.profiles.Get(context.Background(), "u1")
	require.NoError(t, err)
	f.api.on("PUT /api/v1/users/me", 400, `{"errors":{"bio":["Bio is too long"]}}`)

	_, err = f.profiles.Update(context.Background(), api.ProfileUpdate{Bio: "x"})
	require.Error(t, err)
	assert.Equal(t, "Bio is too long", err.Error())

	cached, _ := f.profiles.Cached("u1")
	assert.Equal(t, "old", cached.String("bio"))

	_, err = f.profiles.Update(context.Background(), api.ProfileUpdate{})
	assert.Error(t, err)
}

func TestProfileUpdateKeepsServerFieldsWithoutID(t *testing.T) {
	f := newFixture(t)
	f.api.on("GET /api/v1/users/u1", 200, `{"data":{"id":"u1","bio":"old"}}`)
	_, err := f.profiles.Get(context.Background(), "u1")
	require.NoError(t, err)
	f.api.on("PUT /api/v1/users/me", 200, `{"data":{"user":{"bio":"new bio","updated_at":"now"}}}`)

	rec, err := f.profiles.Update(context.Background(), api.ProfileUpdate{Bio: "new bio"})
	require.NoError(t, err)
	assert.Equal(t, "u1", rec.ID)

	cached, _ := f.profiles.Cached("u1")
	assert.Equal(t, "now", cached.String("updated_at"))
}
