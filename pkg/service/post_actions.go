package service

import (
	"context"

	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/kazem-mohamed/socialhub-app/pkg/reconcile"
)

// PostActionService likes, bookmarks and shares posts. A post can sit in
// several lists at once (feeds, a profile, bookmarks); every cached copy is
// kept in step.
type PostActionService struct {
	env  *Env
	feed *FeedService
}

// NewPostActionService creates a post action service
func NewPostActionService(env *Env, feed *FeedService) *PostActionService {
	return &PostActionService{env: env, feed: feed}
}

// DetailSignature returns the cache key for a single post view
func (s *PostActionService) DetailSignature(postID string) cache.Signature {
	return s.env.sig(EntityPosts, postID, "detail")
}

// Load fetches one post so actions on it have a prior state
func (s *PostActionService) Load(ctx context.Context, postID string) (cache.Record, error) {
	if err := requireID("post", postID); err != nil {
		return cache.Record{}, err
	}
	body, err := s.env.API.Post(ctx, postID)
	if err != nil {
		return cache.Record{}, err
	}
	rec, ok := recordFrom(body, "post")
	if !ok {
		rec = cache.Record{ID: postID, Fields: map[string]any{"id": postID}}
	}
	if rec.ID == "" {
		rec.ID = postID
	}
	s.env.Cache.Put(s.DetailSignature(postID), rec)
	return rec, nil
}

// Get returns the first cached copy of a post
func (s *PostActionService) Get(postID string) (cache.Record, bool) {
	return s.env.find(postID, s.env.signaturesOf(postID, EntityPosts, EntityBookmarks))
}

// ToggleLike likes or unlikes a post everywhere it is cached
func (s *PostActionService) ToggleLike(ctx context.Context, postID string) (reconcile.State, error) {
	if err := requireID("post", postID); err != nil {
		return reconcile.State{}, err
	}
	return s.env.toggle(ctx, toggle{
		kind:      "post_like",
		id:        postID,
		entities:  []string{EntityPosts, EntityBookmarks},
		rule:      reconcile.Like,
		flagKeys:  likedKeys,
		countKeys: likeCountKeys,
		remote: func(ctx context.Context) ([]byte, error) {
			return s.env.API.TogglePostLike(ctx, postID)
		},
		fallback: "Failed to update like",
	})
}

// ToggleBookmark bookmarks or unbookmarks a post. A loaded bookmarks list
// gains or loses the post to match.
func (s *PostActionService) ToggleBookmark(ctx context.Context, postID string) (reconcile.State, error) {
	if err := requireID("post", postID); err != nil {
		return reconcile.State{}, err
	}
	bookmarks := s.feed.BookmarksSignature()

	return s.env.toggle(ctx, toggle{
		kind:      "post_bookmark",
		id:        postID,
		entities:  []string{EntityPosts, EntityBookmarks},
		extraSigs: []cache.Signature{bookmarks},
		rule:      reconcile.Bookmark,
		flagKeys:  savedKeys,
		countKeys: saveCountKeys,
		remote: func(ctx context.Context) ([]byte, error) {
			return s.env.API.ToggleBookmark(ctx, postID)
		},
		fallback: "Failed to update bookmark",
		after: func(c *cache.Cache, st reconcile.State) {
			if !c.Has(bookmarks) {
				return
			}
			_, present := c.Get(bookmarks, postID)
			switch {
			case st.Active && !present:
				if rec, ok := s.env.find(postID, s.env.signaturesOf(postID, EntityPosts)); ok {
					c.Prepend(bookmarks, rec)
				}
			case !st.Active && present:
				c.Remove(bookmarks, postID)
			}
		},
	})
}

// Share shares a post to the user's followers
func (s *PostActionService) Share(ctx context.Context, postID string) (reconcile.State, error) {
	if err := requireID("post", postID); err != nil {
		return reconcile.State{}, err
	}
	return s.env.toggle(ctx, toggle{
		kind:      "post_share",
		id:        postID,
		entities:  []string{EntityPosts, EntityBookmarks},
		rule:      reconcile.Share,
		flagKeys:  sharedKeys,
		countKeys: shareCountKeys,
		remote: func(ctx context.Context) ([]byte, error) {
			return s.env.API.SharePost(ctx, postID)
		},
		fallback: "Failed to share post",
	})
}
