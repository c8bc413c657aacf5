// Package service runs every read and optimistic mutation against the
// session cache. A mutation snapshots the lists it touches, applies the
// expected result locally, calls the API, then commits and reconciles with
// the server's answer or rolls back and reports a readable message.
package service

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/kazem-mohamed/socialhub-app/pkg/api"
	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	clierrors "github.com/kazem-mohamed/socialhub-app/pkg/errors"
	"github.com/kazem-mohamed/socialhub-app/pkg/ingest"
	"github.com/kazem-mohamed/socialhub-app/pkg/logger"
	"github.com/kazem-mohamed/socialhub-app/pkg/metrics"
	"github.com/kazem-mohamed/socialhub-app/pkg/reconcile"
	"golang.org/x/sync/singleflight"
)

// Entities used in cache signatures
const (
	EntityPosts         = "posts"
	EntityBookmarks     = "bookmarks"
	EntityComments      = "comments"
	EntityReplies       = "replies"
	EntityNotifications = "notifications"
	EntityProfile       = "profile"
)

// ErrNoMorePages is returned by LoadMore when the list is exhausted
var ErrNoMorePages = stderrors.New("no more pages")

// Field name candidates. The backend is not consistent about casing.
var (
	likedKeys      = []string{"is_liked", "isLiked", "liked"}
	likeCountKeys  = []string{"like_count", "likes_count", "likesCount", "likeCount", "likes"}
	savedKeys      = []string{"is_bookmarked", "isBookmarked", "is_saved", "isSaved", "bookmarked", "saved"}
	saveCountKeys  = []string{"bookmark_count", "bookmarks_count", "bookmarksCount", "save_count", "saves_count"}
	sharedKeys     = []string{"is_shared", "isShared", "shared"}
	shareCountKeys = []string{"share_count", "shares_count", "sharesCount", "shareCount", "shares"}
	followingKeys  = []string{"is_following", "isFollowing", "following"}
	followerKeys   = []string{"followers_count", "followersCount", "follower_count", "followerCount"}
	commentCntKeys = []string{"comment_count", "comments_count", "commentsCount", "commentCount"}
	replyCountKeys = []string{"reply_count", "replies_count", "replyCount", "repliesCount"}
	contentKeys    = []string{"content", "body", "text"}
	readKeys       = []string{"is_read", "isRead", "read"}
)

// Env is what every service needs: the API, the session cache and the
// current principal.
type Env struct {
	API       *api.Client
	Cache     *cache.Cache
	Metrics   *metrics.Metrics
	Principal func() string
	PageSize  int

	loads singleflight.Group
}

func (e *Env) principal() string {
	if e.Principal == nil {
		return ""
	}
	return e.Principal()
}

func (e *Env) pageSize() int {
	if e.PageSize > 0 {
		return e.PageSize
	}
	return cache.DefaultPageSize
}

func (e *Env) sig(entity, parentID, mode string) cache.Signature {
	return cache.Signature{Entity: entity, ParentID: parentID, Mode: mode, Principal: e.principal()}
}

// listSource describes how to fetch one paginated list
type listSource struct {
	sig   cache.Signature
	key   string
	fetch func(ctx context.Context, q api.PageQuery) ([]byte, error)
}

// refresh refetches page 1 and replaces the list. Concurrent refreshes of
// one signature share a single request.
func (e *Env) refresh(ctx context.Context, src listSource) ([]cache.Record, error) {
	_, err, shared := e.loads.Do(src.sig.String()+"#refresh", func() (any, error) {
		body, err := src.fetch(ctx, api.PageQuery{Page: 1, Limit: e.pageSize()})
		if err != nil {
			return nil, err
		}
		page, err := pageFrom(body, src.key, 1)
		if err != nil {
			return nil, err
		}
		e.Cache.SetFirstPage(src.sig, page)
		return nil, nil
	})
	if shared {
		logger.Debug("Shared in-flight load", "list", src.sig.String())
	}
	if err != nil {
		return nil, err
	}
	return e.Cache.Items(src.sig), nil
}

// loadMore fetches and appends the next page. It returns only the new items.
// A list that only holds local inserts is fetched from the start.
func (e *Env) loadMore(ctx context.Context, src listSource) ([]cache.Record, error) {
	if !e.Cache.Has(src.sig) || e.Cache.FetchedAt(src.sig).IsZero() {
		return e.refresh(ctx, src)
	}
	if !e.Cache.HasNextPage(src.sig) {
		return nil, ErrNoMorePages
	}

	next := e.Cache.NextPageNumber(src.sig)
	v, err, _ := e.loads.Do(src.sig.String()+"#"+strconv.Itoa(next), func() (any, error) {
		body, err := src.fetch(ctx, api.PageQuery{Page: next, Limit: e.pageSize()})
		if err != nil {
			return nil, err
		}
		page, err := pageFrom(body, src.key, next)
		if err != nil {
			return nil, err
		}
		e.Cache.AppendPage(src.sig, page)
		return page.Items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]cache.Record), nil
}

// pageFrom ingests one list response
func pageFrom(body []byte, key string, pageNumber int) (cache.Page, error) {
	items, m, err := ingest.List(body, key)
	if err != nil {
		return cache.Page{}, err
	}
	if !m.Found() {
		logger.Debug("No list found in response", "key", key)
	} else {
		logger.Debug("Ingested list", "key", key, "strategy", m.Strategy.Name, "count", len(items))
	}

	meta := ingest.ExtractMeta(body)
	page := cache.Page{
		Items:      make([]cache.Record, 0, len(items)),
		PageNumber: pageNumber,
		TotalPages: meta.TotalPages,
		TotalCount: meta.TotalCount,
	}
	for _, fields := range items {
		page.Items = append(page.Items, cache.NewRecord(fields))
	}
	return page, nil
}

// recordFrom ingests a single record, trying keys in order
func recordFrom(body []byte, keys ...string) (cache.Record, bool) {
	for _, key := range keys {
		obj, m, err := ingest.Object(body, key)
		if err != nil || !m.Found() {
			continue
		}
		rec := cache.NewRecord(obj)
		if rec.ID == "" && len(obj) == 0 {
			continue
		}
		logger.Debug("Ingested record", "key", key, "strategy", m.Strategy.Name, "id", rec.ID)
		return rec, true
	}
	return cache.Record{}, false
}

// serverRecord extracts the record a mutation answered with. A record without
// an id is only trusted when it sits under one of keys; the generic wrappers
// would otherwise turn a bare {"message": ...} into a record.
func serverRecord(body []byte, keys ...string) (cache.Record, bool) {
	for _, key := range keys {
		obj, m, err := ingest.Object(body, key)
		if err != nil || !m.Found() {
			continue
		}
		rec := cache.NewRecord(obj)
		named := m.Strategy.Name == key || strings.HasSuffix(m.Strategy.Name, "."+key)
		if rec.ID == "" && (!named || len(obj) == 0) {
			continue
		}
		return rec, true
	}
	return cache.Record{}, false
}

// settle finishes a mutation: commit on success, rollback on failure. The
// returned error carries the message the user should see.
func (e *Env) settle(tx *cache.Tx, kind string, err error, fallback string) error {
	if err == nil {
		tx.Commit()
		e.Metrics.Mutation(kind, metrics.OutcomeCommitted)
		return nil
	}

	tx.Rollback()
	e.Metrics.Mutation(kind, metrics.OutcomeRolledBack)
	msg := clierrors.Describe(err, fallback)
	logger.Warn("Mutation rolled back", "kind", kind, "error", msg)

	out := clierrors.CategorizeError(err)
	return &clierrors.CLIError{
		Type:       out.Type,
		Message:    msg,
		Cause:      err,
		Suggestion: out.Suggestion,
		StatusCode: out.StatusCode,
		RetryAfter: out.RetryAfter,
	}
}

// signaturesOf lists every cached signature of entities holding id
func (e *Env) signaturesOf(id string, entities ...string) []cache.Signature {
	var out []cache.Signature
	for _, entity := range entities {
		out = append(out, e.Cache.SignaturesContaining(entity, id)...)
	}
	return out
}

// find returns the first cached copy of id among sigs
func (e *Env) find(id string, sigs []cache.Signature) (cache.Record, bool) {
	for _, sig := range sigs {
		if rec, ok := e.Cache.Get(sig, id); ok {
			return rec, true
		}
	}
	return cache.Record{}, false
}

// stateOf reads a toggle's flag and counter from rec
func stateOf(rec cache.Record, flagKeys, countKeys []string) reconcile.State {
	return reconcile.State{Active: rec.Bool(flagKeys...), Count: rec.Int(countKeys...)}
}

// writeState patches st into every copy of id, keeping each record's own
// field names.
func writeState(c *cache.Cache, sigs []cache.Signature, id string, flagKeys, countKeys []string, st reconcile.State) {
	for _, sig := range sigs {
		rec, ok := c.Get(sig, id)
		if !ok {
			continue
		}
		c.Patch(sig, id, map[string]any{
			rec.FirstKey(flagKeys...):  st.Active,
			rec.FirstKey(countKeys...): st.Count,
		})
	}
}

// adjustCount adds delta to a counter on every copy of id, floored at zero
func adjustCount(c *cache.Cache, sigs []cache.Signature, id string, keys []string, delta int) {
	for _, sig := range sigs {
		rec, ok := c.Get(sig, id)
		if !ok {
			continue
		}
		c.Patch(sig, id, map[string]any{rec.FirstKey(keys...): max(rec.Int(keys...)+delta, 0)})
	}
}

func optimisticFlip(prev reconcile.State) reconcile.State {
	next := reconcile.State{Active: !prev.Active, Count: prev.Count}
	if next.Active {
		next.Count++
	} else {
		next.Count = max(next.Count-1, 0)
	}
	return next
}

// toggle is the shared like/bookmark/share/follow flow
type toggle struct {
	kind      string
	id        string
	entities  []string
	extraSigs []cache.Signature
	rule      reconcile.Rule
	flagKeys  []string
	countKeys []string
	remote    func(ctx context.Context) ([]byte, error)
	fallback  string
	// after runs inside the transaction with the optimistic state and again
	// after reconciliation with the server state
	after func(c *cache.Cache, st reconcile.State)
}

func (e *Env) toggle(ctx context.Context, t toggle) (reconcile.State, error) {
	sigs := e.signaturesOf(t.id, t.entities...)
	var prev reconcile.State
	if rec, ok := e.find(t.id, sigs); ok {
		prev = stateOf(rec, t.flagKeys, t.countKeys)
	}
	optimistic := optimisticFlip(prev)

	tx := e.Cache.Begin(append(sigs, t.extraSigs...)...).Apply(func(c *cache.Cache) {
		writeState(c, sigs, t.id, t.flagKeys, t.countKeys, optimistic)
		if t.after != nil {
			t.after(c, optimistic)
		}
	})

	body, err := t.remote(ctx)
	if err := e.settle(tx, t.kind, err, t.fallback); err != nil {
		return prev, err
	}

	out := reconcile.Resolve(prev, body, t.rule)
	e.Metrics.Reconciled(t.rule.Name, string(out.Source))
	logger.Debug("Toggle reconciled", "kind", t.kind, "id", t.id, "active", out.Active, "count", out.Count, "source", out.Source)

	// lists may have been refetched while the call was in flight
	sigs = e.signaturesOf(t.id, t.entities...)
	writeState(e.Cache, sigs, t.id, t.flagKeys, t.countKeys, out.State)
	if t.after != nil {
		t.after(e.Cache, out.State)
	}
	return out.State, nil
}
