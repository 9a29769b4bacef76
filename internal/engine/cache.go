package engine

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gqlmerge/internal/diag"
	"gqlmerge/internal/source"
	"gqlmerge/internal/trace"
)

// Key identifies an ordered fragment list for a given engine.
type Key [32]byte

// KeyOf hashes the engine namespace plus the ordered (id, content hash) pairs.
// Reordering fragments yields a different key: merges may be order dependent.
func KeyOf(namespace string, frags []source.Fragment) Key {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00", namespace, len(frags))
	for i := range frags {
		h.Write([]byte(frags[i].ID))
		h.Write([]byte{0})
		h.Write(frags[i].Hash[:])
	}
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// Cached memoizes failed merge outcomes in memory and, optionally, on disk.
// Successful outcomes are passed through: they carry the built schema.
type Cached struct {
	next      Engine
	namespace string
	disk      *DiskCache

	mu  sync.RWMutex
	mem map[Key][]diag.Diagnostic

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCached wraps next. disk may be nil.
func NewCached(next Engine, namespace string, disk *DiskCache) *Cached {
	return &Cached{
		next:      next,
		namespace: namespace,
		disk:      disk,
		mem:       make(map[Key][]diag.Diagnostic),
	}
}

func (c *Cached) Merge(ctx context.Context, frags []source.Fragment) (Outcome, error) {
	key := KeyOf(c.namespace, frags)
	if diags, ok := c.lookup(ctx, key); ok {
		c.hits.Add(1)
		return Failure(diags...), nil
	}
	c.misses.Add(1)

	out, err := c.next.Merge(ctx, frags)
	if err != nil || out.OK() {
		return out, err
	}
	c.store(ctx, key, frags, out.Diagnostics)
	return out, nil
}

func (c *Cached) lookup(ctx context.Context, key Key) ([]diag.Diagnostic, bool) {
	c.mu.RLock()
	diags, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		return append([]diag.Diagnostic(nil), diags...), true
	}
	if c.disk == nil {
		return nil, false
	}
	var payload DiskPayload
	found, err := c.disk.Get(key, &payload)
	if err != nil {
		trace.Point(trace.FromContext(ctx), trace.ScopeProbe, "cache:read-error", err.Error())
		return nil, false
	}
	if !found || payload.Engine != c.namespace {
		return nil, false
	}
	c.mu.Lock()
	c.mem[key] = payload.Diagnostics
	c.mu.Unlock()
	return append([]diag.Diagnostic(nil), payload.Diagnostics...), true
}

func (c *Cached) store(ctx context.Context, key Key, frags []source.Fragment, diags []diag.Diagnostic) {
	kept := append([]diag.Diagnostic(nil), diags...)
	c.mu.Lock()
	c.mem[key] = kept
	c.mu.Unlock()
	if c.disk == nil {
		return
	}
	ids := make([]string, len(frags))
	for i := range frags {
		ids[i] = frags[i].ID
	}
	payload := &DiskPayload{
		Engine:      c.namespace,
		FragmentIDs: ids,
		Diagnostics: kept,
		StoredAt:    time.Now().Unix(),
	}
	if err := c.disk.Put(key, payload); err != nil {
		trace.Point(trace.FromContext(ctx), trace.ScopeProbe, "cache:write-error", err.Error())
	}
}

// Stats returns cache hits and misses.
func (c *Cached) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
