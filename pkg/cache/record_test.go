package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordTakesID(t *testing.T) {
	assert.Equal(t, "p1", NewRecord(map[string]any{"id": "p1"}).ID)
	assert.Equal(t, "42", NewRecord(map[string]any{"_id": float64(42)}).ID)
	assert.Empty(t, NewRecord(map[string]any{"content": "x"}).ID)
}

func TestRecordAccessors(t *testing.T) {
	r := Record{ID: "p1", Fields: map[string]any{
		"likesCount": float64(7),
		"shares":     "3",
		"isLiked":    "liked",
		"content":    "",
		"body":       "hello",
	}}

	assert.Equal(t, 7, r.Int("like_count", "likesCount"))
	assert.Equal(t, 3, r.Int("shares"))
	assert.True(t, r.Bool("is_liked", "isLiked"))
	assert.Equal(t, "hello", r.String("content", "body"))
	assert.Equal(t, "likesCount", r.FirstKey("like_count", "likesCount"))
	assert.Equal(t, "is_saved", r.FirstKey("is_saved", "isSaved"))
	assert.True(t, r.Has("missing", "body"))
}

func TestWithDoesNotMutateOriginal(t *testing.T) {
	r := Record{ID: "p1", Fields: map[string]any{"a": 1}}

	next := r.With(map[string]any{"a": 2, "b": 3})

	assert.Equal(t, 1, r.Fields["a"])
	assert.Equal(t, 2, next.Fields["a"])
	assert.Equal(t, 3, next.Fields["b"])
}

func TestDecode(t *testing.T) {
	r := Record{Fields: map[string]any{"id": "c1", "content": "hi", "like_count": float64(2)}}

	var out struct {
		ID        string `json:"id"`
		Content   string `json:"content"`
		LikeCount int    `json:"like_count"`
	}
	require.NoError(t, r.Decode(&out))
	assert.Equal(t, "c1", out.ID)
	assert.Equal(t, 2, out.LikeCount)
}
