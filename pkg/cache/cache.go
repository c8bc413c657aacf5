// Package cache holds paginated lists of remote records and keeps them
// consistent while optimistic mutations are in flight.
//
// Every list is keyed by a Signature. All changes go through Prepend, Patch,
// Replace and Remove (or a page merge), and callers only ever see copies.
// Concurrent writers to the same record are last-write-wins.
package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Signature identifies one independently paginated list
type Signature struct {
	Entity    string
	ParentID  string
	Mode      string
	Principal string
}

func (s Signature) String() string {
	out := s.Entity
	if s.ParentID != "" {
		out += "/" + s.ParentID
	}
	if s.Mode != "" {
		out += "?" + s.Mode
	}
	if s.Principal != "" {
		out += "@" + s.Principal
	}
	return out
}

// Page is one fetched batch plus the pagination metadata that came with it.
// A nil TotalPages or TotalCount means the server did not report it.
type Page struct {
	Items      []Record
	PageNumber int
	TotalPages *int
	TotalCount *int
}

func (p Page) clone() Page {
	items := make([]Record, len(p.Items))
	for i, r := range p.Items {
		items[i] = r.Clone()
	}
	p.Items = items
	return p
}

type list struct {
	pages     []Page
	fetchedAt time.Time
}

func (l *list) clone() *list {
	pages := make([]Page, len(l.pages))
	for i, p := range l.pages {
		pages[i] = p.clone()
	}
	return &list{pages: pages, fetchedAt: l.fetchedAt}
}

// Observer is told about every cache operation
type Observer interface {
	CacheOperation(op string, sig Signature, changed bool)
}

// Option configures a Cache
type Option func(*Cache)

// WithPageSize sets the page size used by the HasNextPage heuristic
func WithPageSize(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithObserver registers an observer for cache operations
func WithObserver(o Observer) Option {
	return func(c *Cache) {
		c.observer = o
	}
}

// Cache is the optimistic paginated cache. The zero value is not usable, use New.
type Cache struct {
	mu       sync.RWMutex
	lists    map[Signature]*list
	pageSize int
	observer Observer
	now      func() time.Time
}

// DefaultPageSize is used when no page size is configured
const DefaultPageSize = 10

// New creates an empty cache
func New(opts ...Option) *Cache {
	c := &Cache{
		lists:    make(map[Signature]*list),
		pageSize: DefaultPageSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageSize returns the configured page size
func (c *Cache) PageSize() int {
	return c.pageSize
}

func (c *Cache) observe(op string, sig Signature, changed bool) {
	if c.observer != nil {
		c.observer.CacheOperation(op, sig, changed)
	}
}

// Prepend inserts rec at the head of the first page and increments every
// known total count. An empty list gets a first page.
func (c *Cache) Prepend(sig Signature, rec Record) {
	c.mu.Lock()
	l := c.lists[sig]
	if l == nil {
		l = &list{}
		c.lists[sig] = l
	}
	if len(l.pages) == 0 {
		l.pages = []Page{{PageNumber: 1}}
	}

	first := &l.pages[0]
	items := make([]Record, 0, len(first.Items)+1)
	items = append(items, rec.Clone())
	first.Items = append(items, first.Items...)
	adjustTotals(l, 1)
	c.mu.Unlock()

	c.observe("prepend", sig, true)
}

// Patch shallow-merges fields into the first record with id. It returns false
// and leaves the list untouched when id is not cached.
func (c *Cache) Patch(sig Signature, id string, fields map[string]any) bool {
	c.mu.Lock()
	changed := false
	if l := c.lists[sig]; l != nil {
		if pi, ii, ok := l.find(id); ok {
			l.pages[pi].Items[ii] = l.pages[pi].Items[ii].With(fields)
			changed = true
		}
	}
	c.mu.Unlock()

	c.observe("patch", sig, changed)
	return changed
}

// Replace swaps the record with id for next. When next carries no id the old
// one is kept so callers holding it stay valid.
func (c *Cache) Replace(sig Signature, id string, next Record) bool {
	c.mu.Lock()
	changed := false
	if l := c.lists[sig]; l != nil {
		if pi, ii, ok := l.find(id); ok {
			rec := next.Clone()
			if rec.ID == "" {
				rec.ID = id
			}
			l.pages[pi].Items[ii] = rec
			changed = true
		}
	}
	c.mu.Unlock()

	c.observe("replace", sig, changed)
	return changed
}

// Remove deletes the first record with id and decrements known totals by the
// number of records removed, never below zero.
func (c *Cache) Remove(sig Signature, id string) int {
	c.mu.Lock()
	removed := 0
	if l := c.lists[sig]; l != nil {
		if pi, ii, ok := l.find(id); ok {
			page := &l.pages[pi]
			items := make([]Record, 0, len(page.Items)-1)
			items = append(items, page.Items[:ii]...)
			page.Items = append(items, page.Items[ii+1:]...)
			removed = 1
			adjustTotals(l, -1)
		}
	}
	c.mu.Unlock()

	c.observe("remove", sig, removed > 0)
	return removed
}

// Put stores a single record as a one-page list, for profiles and other
// detail views that are not paginated.
func (c *Cache) Put(sig Signature, rec Record) {
	one := 1
	c.SetFirstPage(sig, Page{Items: []Record{rec}, PageNumber: 1, TotalPages: &one})
}

// SetFirstPage replaces the whole page sequence, as a full refetch does
func (c *Cache) SetFirstPage(sig Signature, page Page) {
	if page.PageNumber == 0 {
		page.PageNumber = 1
	}
	c.mu.Lock()
	c.lists[sig] = &list{pages: []Page{page.clone()}, fetchedAt: c.now()}
	c.mu.Unlock()

	c.observe("refetch", sig, true)
}

// AppendPage adds a fetched page after the existing ones. It is only used for
// an explicit "load next" request.
func (c *Cache) AppendPage(sig Signature, page Page) {
	c.mu.Lock()
	l := c.lists[sig]
	if l == nil {
		l = &list{}
		c.lists[sig] = l
	}
	if page.PageNumber == 0 {
		page.PageNumber = len(l.pages) + 1
	}
	l.pages = append(l.pages, page.clone())
	l.fetchedAt = c.now()
	c.mu.Unlock()

	c.observe("append", sig, true)
}

// HasNextPage reports whether another page is likely available. With a
// server-reported page count it compares page numbers; otherwise it assumes
// more pages when the last page came back full. A list whose size is an exact
// multiple of the page size therefore reports one extra, empty page.
func (c *Cache) HasNextPage(sig Signature) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l := c.lists[sig]
	if l == nil || len(l.pages) == 0 {
		return false
	}
	last := l.pages[len(l.pages)-1]
	if last.TotalPages != nil {
		return last.PageNumber < *last.TotalPages
	}
	return len(last.Items) >= c.pageSize
}

// NextPageNumber returns the page number a "load next" should request
func (c *Cache) NextPageNumber(sig Signature) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l := c.lists[sig]
	if l == nil || len(l.pages) == 0 {
		return 1
	}
	return l.pages[len(l.pages)-1].PageNumber + 1
}

// Has reports whether sig has been loaded
func (c *Cache) Has(sig Signature) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.lists[sig]
	return ok
}

// Pages returns a copy of the page sequence for sig
func (c *Cache) Pages(sig Signature) []Page {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l := c.lists[sig]
	if l == nil {
		return nil
	}
	return l.clone().pages
}

// Items returns the concatenation of all pages' items in page order
func (c *Cache) Items(sig Signature) []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l := c.lists[sig]
	if l == nil {
		return nil
	}
	var out []Record
	for _, p := range l.pages {
		for _, r := range p.Items {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Get returns a copy of the first record with id
func (c *Cache) Get(sig Signature, id string) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l := c.lists[sig]
	if l == nil {
		return Record{}, false
	}
	pi, ii, ok := l.find(id)
	if !ok {
		return Record{}, false
	}
	return l.pages[pi].Items[ii].Clone(), true
}

// First returns the first record of sig, used with Put
func (c *Cache) First(sig Signature) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l := c.lists[sig]
	if l == nil {
		return Record{}, false
	}
	for _, p := range l.pages {
		if len(p.Items) > 0 {
			return p.Items[0].Clone(), true
		}
	}
	return Record{}, false
}

// TotalCount returns the total from the first page that reported one
func (c *Cache) TotalCount(sig Signature) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l := c.lists[sig]
	if l == nil {
		return 0, false
	}
	for _, p := range l.pages {
		if p.TotalCount != nil {
			return *p.TotalCount, true
		}
	}
	return 0, false
}

// FetchedAt returns when sig was last refetched or extended
func (c *Cache) FetchedAt(sig Signature) time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if l := c.lists[sig]; l != nil {
		return l.fetchedAt
	}
	return time.Time{}
}

// SignaturesContaining lists every cached signature of entity holding id.
// An empty entity matches all entities.
func (c *Cache) SignaturesContaining(entity, id string) []Signature {
	c.mu.RLock()
	var out []Signature
	for sig, l := range c.lists {
		if entity != "" && sig.Entity != entity {
			continue
		}
		if _, _, ok := l.find(id); ok {
			out = append(out, sig)
		}
	}
	c.mu.RUnlock()

	sortSignatures(out)
	return out
}

// Signatures lists cached signatures of entity (all when entity is empty)
func (c *Cache) Signatures(entity string) []Signature {
	c.mu.RLock()
	var out []Signature
	for sig := range c.lists {
		if entity == "" || sig.Entity == entity {
			out = append(out, sig)
		}
	}
	c.mu.RUnlock()

	sortSignatures(out)
	return out
}

// PatchEverywhere patches id in every list of entity that holds it and
// returns how many lists changed.
func (c *Cache) PatchEverywhere(entity, id string, fields map[string]any) int {
	n := 0
	for _, sig := range c.SignaturesContaining(entity, id) {
		if c.Patch(sig, id, fields) {
			n++
		}
	}
	return n
}

// Invalidate drops sig so the next read refetches it
func (c *Cache) Invalidate(sig Signature) {
	c.mu.Lock()
	delete(c.lists, sig)
	c.mu.Unlock()

	c.observe("invalidate", sig, true)
}

// Clear drops every list, used at logout
func (c *Cache) Clear() {
	c.mu.Lock()
	c.lists = make(map[Signature]*list)
	c.mu.Unlock()

	c.observe("clear", Signature{}, true)
}

// Len returns the number of cached lists
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lists)
}

func (l *list) find(id string) (int, int, bool) {
	if id == "" {
		return 0, 0, false
	}
	for pi, p := range l.pages {
		for ii, r := range p.Items {
			if r.ID == id {
				return pi, ii, true
			}
		}
	}
	return 0, 0, false
}

// adjustTotals applies delta to every known total. Counts are replaced, not
// mutated, because snapshots share the old pointers.
func adjustTotals(l *list, delta int) {
	for i := range l.pages {
		tc := l.pages[i].TotalCount
		if tc == nil {
			continue
		}
		v := *tc + delta
		if v < 0 {
			v = 0
		}
		l.pages[i].TotalCount = &v
	}
}

func sortSignatures(sigs []Signature) {
	sort.Slice(sigs, func(i, j int) bool {
		return sigs[i].String() < sigs[j].String()
	})
}

// Describe is a short human summary of a list, used by debug logging
func (c *Cache) Describe(sig Signature) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l := c.lists[sig]
	if l == nil {
		return sig.String() + ": not loaded"
	}
	n := 0
	for _, p := range l.pages {
		n += len(p.Items)
	}
	return fmt.Sprintf("%s: %d pages, %d items", sig, len(l.pages), n)
}
