package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleLike(t *testing.T) {
	tests := []struct {
		name   string
		prev   State
		body   string
		want   State
		source Source
	}{
		{"message unliked", State{true, 5}, `{"message":"Post unliked"}`, State{false, 4}, SourceMessage},
		{"message liked", State{false, 5}, `{"data":{"message":"Post liked successfully"}}`, State{true, 6}, SourceMessage},
		{"explicit flag wins over message", State{false, 2}, `{"message":"Post unliked","data":{"isLiked":true}}`, State{true, 3}, SourceFlag},
		{"flag as 0/1", State{true, 2}, `{"data":{"liked":0}}`, State{false, 1}, SourceFlag},
		{"flag as token", State{false, 0}, `{"data":{"data":{"is_liked":"liked"}}}`, State{true, 1}, SourceFlag},
		{"server count wins", State{false, 5}, `{"data":{"isLiked":true,"likesCount":42}}`, State{true, 42}, SourceFlag},
		{"count nested under post", State{false, 5}, `{"data":{"post":{"likes_count":7}}}`, State{true, 7}, SourceFlip},
		{"no signal flips", State{false, 3}, `{"success":true}`, State{true, 4}, SourceFlip},
		{"empty body flips", State{true, 1}, ``, State{false, 0}, SourceFlip},
		{"unknown message flips", State{true, 1}, `{"message":"ok"}`, State{false, 0}, SourceFlip},
		{"floor at zero", State{true, 0}, `{"message":"unliked"}`, State{false, 0}, SourceMessage},
		{"negative server count floored", State{true, 1}, `{"likes":-3}`, State{false, 0}, SourceFlip},
		{"same direction keeps count", State{true, 9}, `{"isLiked":true}`, State{true, 9}, SourceFlag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.prev, []byte(tt.body), Like)
			assert.Equal(t, tt.want, got.State)
			assert.Equal(t, tt.source, got.Source)
		})
	}
}

func TestToggleBookmark(t *testing.T) {
	tests := []struct {
		name string
		prev bool
		body string
		want bool
	}{
		{"status saved", false, `{"status":"saved"}`, true},
		{"status removed", true, `{"data":{"status":"removed"}}`, false},
		{"status success falls through to message", false, `{"status":"success","message":"Bookmark removed"}`, false},
		{"bookmarked token", false, `{"data":{"bookmarked":"yes"}}`, true},
		{"message added", false, `{"message":"Post saved to bookmarks"}`, true},
		{"unsaved message", true, `{"message":"Post unsaved"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Toggle(State{Active: tt.prev}, []byte(tt.body), Bookmark)
			assert.Equal(t, tt.want, got.Active)
		})
	}
}

func TestToggleFollow(t *testing.T) {
	got := Toggle(State{false, 10}, []byte(`{"message":"User followed"}`), Follow)
	assert.Equal(t, State{true, 11}, got)

	got = Toggle(State{true, 11}, []byte(`{"message":"Unfollowed user"}`), Follow)
	assert.Equal(t, State{false, 10}, got)

	got = Toggle(State{false, 10}, []byte(`{"data":{"isFollowing":true,"followersCount":12}}`), Follow)
	assert.Equal(t, State{true, 12}, got)

	got = Toggle(State{false, 10}, []byte(`{"data":{"following":true}}`), Follow)
	assert.Equal(t, State{true, 11}, got)
}

func TestFollowIgnoresNestedFollowingCount(t *testing.T) {
	body := `{"message":"User unfollowed","data":{"user":{"followers_count":10,"following":1}}}`

	got := Resolve(State{true, 11}, []byte(body), Follow)
	assert.Equal(t, State{false, 10}, got.State)
	assert.Equal(t, SourceMessage, got.Source)
}

func TestBookmarkCountFieldNames(t *testing.T) {
	for _, body := range []string{
		`{"data":{"bookmarked":true,"bookmark_count":9}}`,
		`{"data":{"bookmarked":true,"save_count":9}}`,
	} {
		got := Toggle(State{false, 3}, []byte(body), Bookmark)
		assert.Equal(t, State{true, 9}, got, body)
	}
}

func TestToggleShare(t *testing.T) {
	got := Toggle(State{false, 2}, []byte(`{"message":"Post shared","data":{"sharesCount":3}}`), Share)
	assert.Equal(t, State{true, 3}, got)
}

func TestFromMessageChecksNegativeFirst(t *testing.T) {
	v, ok := Like.FromMessage("You UNLIKED this post")
	assert.True(t, ok)
	assert.False(t, v)

	_, ok = Like.FromMessage("done")
	assert.False(t, ok)
}
