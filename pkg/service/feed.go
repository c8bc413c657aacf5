package service

import (
	"context"

	"github.com/kazem-mohamed/socialhub-app/pkg/api"
	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
)

// FeedService loads the feed, a user's posts and bookmarks
type FeedService struct {
	env *Env
}

// NewFeedService creates a feed service
func NewFeedService(env *Env) *FeedService {
	return &FeedService{env: env}
}

// Signature returns the cache key for a feed mode
func (s *FeedService) Signature(mode string) cache.Signature {
	if mode == "" {
		mode = api.FeedLatest
	}
	return s.env.sig(EntityPosts, "", mode)
}

// UserSignature returns the cache key for one user's posts
func (s *FeedService) UserSignature(userID string) cache.Signature {
	return s.env.sig(EntityPosts, userID, "user")
}

// BookmarksSignature returns the cache key for the bookmarks list
func (s *FeedService) BookmarksSignature() cache.Signature {
	return s.env.sig(EntityBookmarks, "", "")
}

func (s *FeedService) feed(mode string) listSource {
	return listSource{
		sig: s.Signature(mode),
		key: "posts",
		fetch: func(ctx context.Context, q api.PageQuery) ([]byte, error) {
			return s.env.API.Feed(ctx, mode, q)
		},
	}
}

func (s *FeedService) user(userID string) listSource {
	return listSource{
		sig: s.UserSignature(userID),
		key: "posts",
		fetch: func(ctx context.Context, q api.PageQuery) ([]byte, error) {
			return s.env.API.UserPosts(ctx, userID, q)
		},
	}
}

func (s *FeedService) bookmarks() listSource {
	return listSource{
		sig: s.BookmarksSignature(),
		key: "bookmarks",
		fetch: s.env.API.Bookmarks,
	}
}

// Load refetches the first page of a feed
func (s *FeedService) Load(ctx context.Context, mode string) ([]cache.Record, error) {
	if mode != "" && !api.ValidFeedMode(mode) {
		return nil, invalidMode(mode)
	}
	return s.env.refresh(ctx, s.feed(mode))
}

// LoadMore appends the next page of a feed
func (s *FeedService) LoadMore(ctx context.Context, mode string) ([]cache.Record, error) {
	if mode != "" && !api.ValidFeedMode(mode) {
		return nil, invalidMode(mode)
	}
	return s.env.loadMore(ctx, s.feed(mode))
}

// HasMore reports whether a feed likely has another page
func (s *FeedService) HasMore(mode string) bool {
	return s.env.Cache.HasNextPage(s.Signature(mode))
}

// Items returns the cached posts of a feed
func (s *FeedService) Items(mode string) []cache.Record {
	return s.env.Cache.Items(s.Signature(mode))
}

// LoadUserPosts refetches the first page of a user's posts
func (s *FeedService) LoadUserPosts(ctx context.Context, userID string) ([]cache.Record, error) {
	return s.env.refresh(ctx, s.user(userID))
}

// LoadMoreUserPosts appends the next page of a user's posts
func (s *FeedService) LoadMoreUserPosts(ctx context.Context, userID string) ([]cache.Record, error) {
	return s.env.loadMore(ctx, s.user(userID))
}

// LoadBookmarks refetches the first page of bookmarks
func (s *FeedService) LoadBookmarks(ctx context.Context) ([]cache.Record, error) {
	return s.env.refresh(ctx, s.bookmarks())
}

// LoadMoreBookmarks appends the next page of bookmarks
func (s *FeedService) LoadMoreBookmarks(ctx context.Context) ([]cache.Record, error) {
	return s.env.loadMore(ctx, s.bookmarks())
}
