package service

import (
	"context"

	"github.com/kazem-mohamed/socialhub-app/pkg/reconcile"
)

// FollowService follows and unfollows users
type FollowService struct {
	env      *Env
	profiles *ProfileService
}

// NewFollowService creates a follow service
func NewFollowService(env *Env, profiles *ProfileService) *FollowService {
	return &FollowService{env: env, profiles: profiles}
}

// ToggleFollow follows or unfollows userID. The profile is loaded first when
// it is not cached so the follower count has a starting point.
func (s *FollowService) ToggleFollow(ctx context.Context, userID string) (reconcile.State, error) {
	if err := requireID("user", userID); err != nil {
		return reconcile.State{}, err
	}
	if !s.env.Cache.Has(s.profiles.Signature(userID)) {
		if _, err := s.profiles.Get(ctx, userID); err != nil {
			return reconcile.State{}, err
		}
	}

	return s.env.toggle(ctx, toggle{
		kind:      "follow",
		id:        userID,
		entities:  []string{EntityProfile},
		rule:      reconcile.Follow,
		flagKeys:  followingKeys,
		countKeys: followerKeys,
		remote: func(ctx context.Context) ([]byte, error) {
			return s.env.API.ToggleFollow(ctx, userID)
		},
		fallback: "Failed to update follow",
	})
}

// State returns the cached follow state for userID
func (s *FollowService) State(userID string) (reconcile.State, bool) {
	rec, ok := s.env.Cache.First(s.profiles.Signature(userID))
	if !ok {
		return reconcile.State{}, false
	}
	return stateOf(rec, followingKeys, followerKeys), true
}
