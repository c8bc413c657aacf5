package cache

import "slices"

// Snapshot is the captured state of some signatures. A signature that was not
// loaded at capture time is recorded as absent, so restoring removes any list
// a mutation created in the meantime.
type Snapshot struct {
	entries map[Signature]*list
}

// Signatures returns the captured signatures
func (s Snapshot) Signatures() []Signature {
	out := make([]Signature, 0, len(s.entries))
	for sig := range s.entries {
		out = append(out, sig)
	}
	sortSignatures(out)
	return out
}

// Snapshot captures the current state of sigs
func (c *Cache) Snapshot(sigs ...Signature) Snapshot {
	c.mu.RLock()
	snap := Snapshot{entries: make(map[Signature]*list, len(sigs))}
	for _, sig := range sigs {
		if l := c.lists[sig]; l != nil {
			snap.entries[sig] = l.clone()
		} else {
			snap.entries[sig] = nil
		}
	}
	c.mu.RUnlock()

	for _, sig := range sigs {
		c.observe("snapshot", sig, false)
	}
	return snap
}

// Restore puts back every captured signature verbatim
func (c *Cache) Restore(snap Snapshot) {
	c.mu.Lock()
	for sig, l := range snap.entries {
		if l == nil {
			delete(c.lists, sig)
			continue
		}
		c.lists[sig] = l.clone()
	}
	c.mu.Unlock()

	for sig := range snap.entries {
		c.observe("restore", sig, true)
	}
}

type txState int

const (
	txOpen txState = iota
	txCommitted
	txRolledBack
)

// Tx is one optimistic mutation: snapshot at Begin, Apply the local change,
// then either Commit (drop the snapshot) or Rollback (restore it). Commit and
// Rollback are idempotent and exclude each other.
type Tx struct {
	cache *Cache
	snap  Snapshot
	state txState
}

// Begin snapshots every signature the mutation may touch
func (c *Cache) Begin(sigs ...Signature) *Tx {
	return &Tx{cache: c, snap: c.Snapshot(dedupe(sigs)...)}
}

// Apply runs fn against the cache while the transaction is open
func (tx *Tx) Apply(fn func(c *Cache)) *Tx {
	if tx.state == txOpen {
		fn(tx.cache)
	}
	return tx
}

// Commit discards the snapshot. It reports whether this call committed.
func (tx *Tx) Commit() bool {
	if tx.state != txOpen {
		return false
	}
	tx.state = txCommitted
	tx.snap = Snapshot{}
	return true
}

// Rollback restores the snapshot. It reports whether this call rolled back.
func (tx *Tx) Rollback() bool {
	if tx.state != txOpen {
		return false
	}
	tx.cache.Restore(tx.snap)
	tx.state = txRolledBack
	tx.snap = Snapshot{}
	return true
}

// Open reports whether neither Commit nor Rollback has run
func (tx *Tx) Open() bool {
	return tx.state == txOpen
}

// Signatures returns what the transaction captured
func (tx *Tx) Signatures() []Signature {
	return tx.snap.Signatures()
}

func dedupe(sigs []Signature) []Signature {
	out := make([]Signature, 0, len(sigs))
	for _, s := range sigs {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
