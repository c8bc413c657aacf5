package service

import (
	"context"

	"github.com/kazem-mohamed/socialhub-app/pkg/api"
	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
)

// ProfileService reads and edits user profiles
type ProfileService struct {
	env *Env
}

// NewProfileService creates a profile service
func NewProfileService(env *Env) *ProfileService {
	return &ProfileService{env: env}
}

// Signature returns the cache key for a user's profile
func (s *ProfileService) Signature(userID string) cache.Signature {
	return s.env.sig(EntityProfile, userID, "")
}

// Get fetches and caches a profile
func (s *ProfileService) Get(ctx context.Context, userID string) (cache.Record, error) {
	if err := requireID("user", userID); err != nil {
		return cache.Record{}, err
	}
	body, err := s.env.API.Profile(ctx, userID)
	if err != nil {
		return cache.Record{}, err
	}
	rec, ok := recordFrom(body, "user", "profile")
	if !ok {
		rec = cache.Record{Fields: map[string]any{}}
	}
	// cached under the id that was asked for, so lookups by username work
	rec.ID = userID
	s.env.Cache.Put(s.Signature(userID), rec)
	return rec, nil
}

// Cached returns a profile without fetching it
func (s *ProfileService) Cached(userID string) (cache.Record, bool) {
	return s.env.Cache.First(s.Signature(userID))
}

// Update edits the current user's profile. The cached profile shows the new
// values at once and is replaced by the server's version on success.
func (s *ProfileService) Update(ctx context.Context, update api.ProfileUpdate) (cache.Record, error) {
	fields := update.Fields()
	if len(fields) == 0 {
		return cache.Record{}, errNothingToUpdate
	}

	me := s.env.principal()
	sig := s.Signature(me)
	tx := s.env.Cache.Begin(sig).Apply(func(c *cache.Cache) {
		c.Patch(sig, me, fields)
	})

	body, err := s.env.API.UpdateProfile(ctx, update)
	if err := s.env.settle(tx, "profile_update", err, "Failed to update profile"); err != nil {
		return cache.Record{}, err
	}

	if server, ok := serverRecord(body, "user", "profile"); ok {
		server.ID = me
		if !s.env.Cache.Replace(sig, me, server) {
			s.env.Cache.Put(sig, server)
		}
		return server, nil
	}
	if rec, ok := s.env.Cache.Get(sig, me); ok {
		return rec, nil
	}
	return cache.Record{ID: me, Fields: fields}, nil
}
