package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kazem-mohamed/socialhub-app/pkg/api"
	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/kazem-mohamed/socialhub-app/pkg/logger"
	"github.com/kazem-mohamed/socialhub-app/pkg/reconcile"
)

// CommentService handles comments and replies on posts
type CommentService struct {
	env *Env
}

// NewCommentService creates a comment service
func NewCommentService(env *Env) *CommentService {
	return &CommentService{env: env}
}

// Signature returns the cache key for a post's comments in one sort order
func (s *CommentService) Signature(postID, sort string) cache.Signature {
	if sort == "" {
		sort = api.CommentsLatest
	}
	return s.env.sig(EntityComments, postID, sort)
}

// RepliesSignature returns the cache key for a comment's replies
func (s *CommentService) RepliesSignature(commentID string) cache.Signature {
	return s.env.sig(EntityReplies, commentID, "")
}

func (s *CommentService) comments(postID, sort string) listSource {
	return listSource{
		sig: s.Signature(postID, sort),
		key: "comments",
		fetch: func(ctx context.Context, q api.PageQuery) ([]byte, error) {
			return s.env.API.Comments(ctx, postID, sort, q)
		},
	}
}

func (s *CommentService) replies(commentID string) listSource {
	return listSource{
		sig: s.RepliesSignature(commentID),
		key: "replies",
		fetch: func(ctx context.Context, q api.PageQuery) ([]byte, error) {
			return s.env.API.Replies(ctx, commentID, q)
		},
	}
}

// List refetches the first page of a post's comments
func (s *CommentService) List(ctx context.Context, postID, sort string) ([]cache.Record, error) {
	if err := requireID("post", postID); err != nil {
		return nil, err
	}
	return s.env.refresh(ctx, s.comments(postID, sort))
}

// LoadMore appends the next page of a post's comments
func (s *CommentService) LoadMore(ctx context.Context, postID, sort string) ([]cache.Record, error) {
	return s.env.loadMore(ctx, s.comments(postID, sort))
}

// HasMore reports whether a post's comments likely have another page
func (s *CommentService) HasMore(postID, sort string) bool {
	return s.env.Cache.HasNextPage(s.Signature(postID, sort))
}

// Replies refetches the first page of a comment's replies
func (s *CommentService) Replies(ctx context.Context, commentID string) ([]cache.Record, error) {
	if err := requireID("comment", commentID); err != nil {
		return nil, err
	}
	return s.env.refresh(ctx, s.replies(commentID))
}

// LoadMoreReplies appends the next page of a comment's replies
func (s *CommentService) LoadMoreReplies(ctx context.Context, commentID string) ([]cache.Record, error) {
	return s.env.loadMore(ctx, s.replies(commentID))
}

// commentLists returns the loaded comment lists of postID for this
// principal. A list that was never fetched is left alone so the first load
// still goes to the server.
func (s *CommentService) commentLists(postID string) []cache.Signature {
	me := s.env.principal()
	var out []cache.Signature
	for _, sig := range s.env.Cache.Signatures(EntityComments) {
		if sig.ParentID == postID && sig.Principal == me {
			out = append(out, sig)
		}
	}
	return out
}

func (s *CommentService) placeholder(content string) cache.Record {
	id := cache.OptimisticPrefix + uuid.NewString()
	return cache.Record{
		ID:         id,
		Optimistic: true,
		Fields: map[string]any{
			"id":          id,
			"content":     content,
			"like_count":  0,
			"reply_count": 0,
			"is_liked":    false,
			"user_id":     s.env.principal(),
			"created_at":  time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// confirm swaps the placeholder for the server's record in every list. The
// placeholder id is kept when the server record has none.
func (s *CommentService) confirm(sigs []cache.Signature, placeholder cache.Record, body []byte, key string) cache.Record {
	confirmed, ok := serverRecord(body, key)
	if !ok {
		// nothing usable came back, keep what the user typed
		confirmed = placeholder.Clone()
	}
	if confirmed.ID == "" {
		confirmed.ID = placeholder.ID
	}
	confirmed.Optimistic = false
	for _, sig := range sigs {
		s.env.Cache.Replace(sig, placeholder.ID, confirmed)
	}
	return confirmed
}

// Create adds a comment to a post. The comment shows up immediately at the
// head of every cached comment list of the post and the post's comment count
// goes up; both are undone if the server rejects it.
func (s *CommentService) Create(ctx context.Context, postID, content string) (cache.Record, error) {
	if err := requireID("post", postID); err != nil {
		return cache.Record{}, err
	}
	if err := validateContent(content); err != nil {
		return cache.Record{}, err
	}
	content = strings.TrimSpace(content)

	lists := s.commentLists(postID)
	posts := s.env.signaturesOf(postID, EntityPosts, EntityBookmarks)
	ph := s.placeholder(content)
	ph.Fields["post_id"] = postID

	tx := s.env.Cache.Begin(append(lists, posts...)...).Apply(func(c *cache.Cache) {
		for _, sig := range lists {
			c.Prepend(sig, ph)
		}
		adjustCount(c, posts, postID, commentCntKeys, 1)
	})

	body, err := s.env.API.CreateComment(ctx, postID, content)
	if err := s.env.settle(tx, "comment_create", err, "Failed to add comment"); err != nil {
		return cache.Record{}, err
	}

	rec := s.confirm(lists, ph, body, "comment")
	logger.Debug("Comment created", "post_id", postID, "id", rec.ID)
	return rec, nil
}

// Reply adds a reply to a comment. The parent's reply count moves with it.
func (s *CommentService) Reply(ctx context.Context, commentID, content string) (cache.Record, error) {
	if err := requireID("comment", commentID); err != nil {
		return cache.Record{}, err
	}
	if err := validateContent(content); err != nil {
		return cache.Record{}, err
	}
	content = strings.TrimSpace(content)

	var lists []cache.Signature
	if sig := s.RepliesSignature(commentID); s.env.Cache.Has(sig) {
		lists = append(lists, sig)
	}
	parents := s.env.signaturesOf(commentID, EntityComments, EntityReplies)
	ph := s.placeholder(content)
	ph.Fields["parent_id"] = commentID

	tx := s.env.Cache.Begin(append(lists, parents...)...).Apply(func(c *cache.Cache) {
		for _, sig := range lists {
			c.Prepend(sig, ph)
		}
		adjustCount(c, parents, commentID, replyCountKeys, 1)
	})

	body, err := s.env.API.CreateReply(ctx, commentID, content)
	if err := s.env.settle(tx, "reply_create", err, "Failed to add reply"); err != nil {
		return cache.Record{}, err
	}

	rec := s.confirm(lists, ph, body, "reply")
	logger.Debug("Reply created", "parent_id", commentID, "id", rec.ID)
	return rec, nil
}

// Edit changes a comment or reply body in place
func (s *CommentService) Edit(ctx context.Context, commentID, content string) (cache.Record, error) {
	if err := requireID("comment", commentID); err != nil {
		return cache.Record{}, err
	}
	if err := validateContent(content); err != nil {
		return cache.Record{}, err
	}
	content = strings.TrimSpace(content)

	sigs := s.env.signaturesOf(commentID, EntityComments, EntityReplies)
	tx := s.env.Cache.Begin(sigs...).Apply(func(c *cache.Cache) {
		for _, sig := range sigs {
			if rec, ok := c.Get(sig, commentID); ok {
				c.Patch(sig, commentID, map[string]any{
					rec.FirstKey(contentKeys...): content,
					"is_edited":                  true,
				})
			}
		}
	})

	body, err := s.env.API.UpdateComment(ctx, commentID, content)
	if err := s.env.settle(tx, "comment_edit", err, "Failed to edit comment"); err != nil {
		return cache.Record{}, err
	}

	server, ok := serverRecord(body, "comment")
	if ok && (server.ID == "" || server.ID == commentID) {
		server.ID = commentID
		for _, sig := range sigs {
			s.env.Cache.Replace(sig, commentID, server)
		}
		return server, nil
	}
	if rec, ok := s.env.find(commentID, sigs); ok {
		return rec, nil
	}
	return cache.Record{ID: commentID, Fields: map[string]any{"id": commentID, "content": content, "is_edited": true}}, nil
}

// Delete removes a comment or reply. Deleting a reply lowers its parent's
// reply count; deleting a top-level comment lowers the post's comment count.
func (s *CommentService) Delete(ctx context.Context, postID, commentID string) error {
	if err := requireID("comment", commentID); err != nil {
		return err
	}

	lists := s.env.signaturesOf(commentID, EntityComments, EntityReplies)

	var parents []string
	for _, sig := range lists {
		if sig.Entity == EntityReplies {
			parents = append(parents, sig.ParentID)
		}
	}
	if postID == "" {
		if rec, ok := s.env.find(commentID, lists); ok {
			postID = rec.String("post_id", "postId")
		}
	}

	affected := append([]cache.Signature{}, lists...)
	parentSigs := map[string][]cache.Signature{}
	for _, p := range parents {
		parentSigs[p] = s.env.signaturesOf(p, EntityComments, EntityReplies)
		affected = append(affected, parentSigs[p]...)
	}
	var posts []cache.Signature
	if len(parents) == 0 && postID != "" {
		posts = s.env.signaturesOf(postID, EntityPosts, EntityBookmarks)
		affected = append(affected, posts...)
	}

	tx := s.env.Cache.Begin(affected...).Apply(func(c *cache.Cache) {
		for _, sig := range lists {
			c.Remove(sig, commentID)
		}
		for p, sigs := range parentSigs {
			adjustCount(c, sigs, p, replyCountKeys, -1)
		}
		adjustCount(c, posts, postID, commentCntKeys, -1)
	})

	_, err := s.env.API.DeleteComment(ctx, commentID)
	if err := s.env.settle(tx, "comment_delete", err, "Failed to delete comment"); err != nil {
		return err
	}
	s.env.Cache.Invalidate(s.RepliesSignature(commentID))
	return nil
}

// ToggleLike likes or unlikes a comment or reply
func (s *CommentService) ToggleLike(ctx context.Context, commentID string) (reconcile.State, error) {
	if err := requireID("comment", commentID); err != nil {
		return reconcile.State{}, err
	}
	return s.env.toggle(ctx, toggle{
		kind:      "comment_like",
		id:        commentID,
		entities:  []string{EntityComments, EntityReplies},
		rule:      reconcile.Like,
		flagKeys:  likedKeys,
		countKeys: likeCountKeys,
		remote: func(ctx context.Context) ([]byte, error) {
			return s.env.API.ToggleCommentLike(ctx, commentID)
		},
		fallback: "Failed to update like",
	})
}
