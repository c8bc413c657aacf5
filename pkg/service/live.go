package service

import (
	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/kazem-mohamed/socialhub-app/pkg/logger"
)

// LiveService applies server-pushed updates to the cache. Updates overwrite
// whatever is cached, so the latest one to arrive wins.
type LiveService struct {
	env    *Env
	notifs *NotificationService
}

// NewLiveService creates a live update sink
func NewLiveService(env *Env, notifs *NotificationService) *LiveService {
	return &LiveService{env: env, notifs: notifs}
}

// LikeCount sets the like counter of a post or comment wherever it is cached.
// liked is applied too when the server reported it.
func (s *LiveService) LikeCount(id string, count int, liked *bool) int {
	sigs := s.env.signaturesOf(id, EntityPosts, EntityBookmarks, EntityComments, EntityReplies)
	return s.set(sigs, id, likeCountKeys, count, likedKeys, liked)
}

// CommentCount sets a post's comment counter wherever it is cached
func (s *LiveService) CommentCount(postID string, count int) int {
	sigs := s.env.signaturesOf(postID, EntityPosts, EntityBookmarks)
	return s.set(sigs, postID, commentCntKeys, count, nil, nil)
}

// FollowerCount sets a user's follower counter on a cached profile
func (s *LiveService) FollowerCount(userID string, count int) int {
	sigs := s.env.signaturesOf(userID, EntityProfile)
	return s.set(sigs, userID, followerKeys, count, nil, nil)
}

// Notification prepends a pushed notification to the cached list. Nothing
// happens when the list was never loaded or already holds the id.
func (s *LiveService) Notification(rec cache.Record) bool {
	sig := s.notifs.Signature()
	if rec.ID == "" || !s.env.Cache.Has(sig) {
		return false
	}
	if _, ok := s.env.Cache.Get(sig, rec.ID); ok {
		return false
	}
	s.env.Cache.Prepend(sig, rec)
	return true
}

func (s *LiveService) set(sigs []cache.Signature, id string, countKeys []string, count int, flagKeys []string, flag *bool) int {
	n := 0
	for _, sig := range sigs {
		rec, ok := s.env.Cache.Get(sig, id)
		if !ok {
			continue
		}
		fields := map[string]any{rec.FirstKey(countKeys...): max(count, 0)}
		if flag != nil {
			fields[rec.FirstKey(flagKeys...)] = *flag
		}
		if s.env.Cache.Patch(sig, id, fields) {
			n++
		}
	}
	logger.Debug("Applied live update", "id", id, "lists", n)
	return n
}
