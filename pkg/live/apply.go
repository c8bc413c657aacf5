package live

import (
	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/kazem-mohamed/socialhub-app/pkg/ingest"
	"github.com/kazem-mohamed/socialhub-app/pkg/logger"
	"github.com/kazem-mohamed/socialhub-app/pkg/metrics"
)

// Sink receives decoded updates
type Sink interface {
	LikeCount(id string, count int, liked *bool) int
	CommentCount(postID string, count int) int
	FollowerCount(userID string, count int) int
	Notification(rec cache.Record) bool
}

var (
	payloadRoot    = []string{""}
	targetIDs      = ingest.Fields(ingest.ShapeString, payloadRoot, "post_id", "postId", "comment_id", "commentId", "id")
	postIDs        = ingest.Fields(ingest.ShapeString, payloadRoot, "post_id", "postId", "id")
	userIDs        = ingest.Fields(ingest.ShapeString, payloadRoot, "user_id", "userId", "id")
	likeCounts     = ingest.Fields(ingest.ShapeNumber, payloadRoot, "like_count", "likes_count", "likeCount", "likesCount", "count")
	likedFlags     = ingest.Fields(ingest.ShapeFlag, payloadRoot, "is_liked", "isLiked", "liked")
	commentCounts  = ingest.Fields(ingest.ShapeNumber, payloadRoot, "comment_count", "comments_count", "commentCount", "commentsCount", "count")
	followerCounts = ingest.Fields(ingest.ShapeNumber, payloadRoot, "follower_count", "followers_count", "followerCount", "followersCount", "count")
)

// Applier routes live messages into a Sink
type Applier struct {
	sink    Sink
	metrics *metrics.Metrics
}

// NewApplier creates an applier. metrics may be nil.
func NewApplier(sink Sink, m *metrics.Metrics) *Applier {
	return &Applier{sink: sink, metrics: m}
}

// Bind subscribes the applier to c and returns a func that unsubscribes it
func (a *Applier) Bind(c *Client) func() {
	h := func(msg Message) { a.Handle(msg) }
	offs := []func(){
		c.On(MessageTypeLikeCountUpdate, h),
		c.On(MessageTypeCommentCountUpdate, h),
		c.On(MessageTypeFollowerCountUpdate, h),
		c.On(MessageTypeNotification, h),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

// Handle applies one message and reports whether the cache changed
func (a *Applier) Handle(msg Message) bool {
	a.metrics.LiveMessage(string(msg.Type))
	body := []byte(msg.Payload)

	switch msg.Type {
	case MessageTypeLikeCountUpdate:
		id, ok := ingest.String(body, targetIDs)
		count, hasCount := ingest.Int(body, likeCounts)
		if !ok || !hasCount {
			break
		}
		var liked *bool
		if v, ok := ingest.Flag(body, likedFlags); ok {
			liked = &v
		}
		return a.sink.LikeCount(id, count, liked) > 0

	case MessageTypeCommentCountUpdate:
		id, ok := ingest.String(body, postIDs)
		count, hasCount := ingest.Int(body, commentCounts)
		if !ok || !hasCount {
			break
		}
		return a.sink.CommentCount(id, count) > 0

	case MessageTypeFollowerCountUpdate:
		id, ok := ingest.String(body, userIDs)
		count, hasCount := ingest.Int(body, followerCounts)
		if !ok || !hasCount {
			break
		}
		return a.sink.FollowerCount(id, count) > 0

	case MessageTypeNotification:
		fields, _, err := ingest.Object(body, "notification")
		if err != nil || fields == nil {
			break
		}
		return a.sink.Notification(cache.NewRecord(fields))

	default:
		return false
	}

	logger.Debug("Ignoring incomplete live message", "type", msg.Type)
	return false
}
