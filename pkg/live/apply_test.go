package live

import (
	"testing"

	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/kazem-mohamed/socialhub-app/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type call struct {
	kind  string
	id    string
	count int
	liked *bool
}

type fakeSink struct {
	calls []call
	notes []cache.Record
}

func (f *fakeSink) LikeCount(id string, count int, liked *bool) int {
	f.calls = append(f.calls, call{"like", id, count, liked})
	return 1
}

func (f *fakeSink) CommentCount(postID string, count int) int {
	f.calls = append(f.calls, call{"comment", postID, count, nil})
	return 1
}

func (f *fakeSink) FollowerCount(userID string, count int) int {
	f.calls = append(f.calls, call{"follower", userID, count, nil})
	return 0
}

func (f *fakeSink) Notification(rec cache.Record) bool {
	f.notes = append(f.notes, rec)
	return true
}

func msg(t MessageType, payload string) Message {
	return Message{Type: t, Payload: []byte(payload)}
}

func TestApplierHandle(t *testing.T) {
	yes := true

	tests := []struct {
		name    string
		msg     Message
		changed bool
		want    []call
	}{
		{"post like", msg(MessageTypeLikeCountUpdate, `{"post_id":"p1","like_count":7}`), true, []call{{"like", "p1", 7, nil}}},
		{"comment like with flag", msg(MessageTypeLikeCountUpdate, `{"commentId":"c1","likesCount":"2","isLiked":true}`), true, []call{{"like", "c1", 2, &yes}}},
		{"like without count", msg(MessageTypeLikeCountUpdate, `{"post_id":"p1"}`), false, nil},
		{"comment count", msg(MessageTypeCommentCountUpdate, `{"postId":"p1","comments_count":4}`), true, []call{{"comment", "p1", 4, nil}}},
		{"follower count unchanged", msg(MessageTypeFollowerCountUpdate, `{"user_id":"u2","followers_count":12}`), false, []call{{"follower", "u2", 12, nil}}},
		{"unknown type", msg("presence_update", `{"user_id":"u2"}`), false, nil},
		{"malformed payload", msg(MessageTypeCommentCountUpdate, `not json`), false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &fakeSink{}
			a := NewApplier(sink, nil)
			assert.Equal(t, tt.changed, a.Handle(tt.msg))
			assert.Equal(t, tt.want, sink.calls)
		})
	}
}

func TestApplierNotification(t *testing.T) {
	sink := &fakeSink{}
	a := NewApplier(sink, nil)

	assert.True(t, a.Handle(msg(MessageTypeNotification, `{"notification":{"id":"n7","type":"follow"}}`)))
	assert.True(t, a.Handle(msg(MessageTypeNotification, `{"id":"n8","type":"like"}`)))

	if assert.Len(t, sink.notes, 2) {
		assert.Equal(t, "n7", sink.notes[0].ID)
		assert.Equal(t, "like", sink.notes[1].String("type"))
	}
}

func TestApplierBindCountsMessages(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	sink := &fakeSink{}
	c := NewClient(DefaultConfig())

	off := NewApplier(sink, m).Bind(c)
	c.dispatch(msg(MessageTypeCommentCountUpdate, `{"post_id":"p1","comment_count":1}`))
	c.dispatch(msg(MessageTypeHeartbeat, `{}`))
	off()
	c.dispatch(msg(MessageTypeCommentCountUpdate, `{"post_id":"p1","comment_count":2}`))

	assert.Equal(t, []call{{"comment", "p1", 1, nil}}, sink.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveMessagesTotal.WithLabelValues("comment_count_update")))
}
