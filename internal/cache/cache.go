// Package cache provides the content-addressed extraction cache: results of
// prior successful extractions keyed by the SHA-256 of the uploaded bytes,
// bounded by capacity with LRU eviction and a lazily-checked TTL.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/jamaahin/docpipe/internal/entity"
)

// ComputeHash returns the cache key for a unit's raw bytes.
func ComputeHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	hash     string
	records  []*entity.Record
	storedAt time.Time
}

// ResultCache memoizes extraction results per content hash. Only useful
// results are stored (callers enforce this), so a previously unreadable file
// is retried on re-upload rather than permanently blacklisted.
//
// All bookkeeping (recency order, TTL expiry, hit/miss counters) happens
// under one mutex so concurrent batch workers observe consistent stats.
type ResultCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	order   *list.List // front = least recently used
	entries map[string]*list.Element
	hits    int64
	misses  int64
}

// New creates a ResultCache. Non-positive maxSize or ttl fall back to the
// defaults (100 entries, 1 hour).
func New(maxSize int, ttl time.Duration) *ResultCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultCache{
		maxSize: maxSize,
		ttl:     ttl,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

// Get returns the cached records for hash, or nil,false on a miss. An entry
// older than the TTL is removed and counted as a miss. A hit re-orders the
// entry as most recently used.
func (c *ResultCache) Get(hash string) ([]*entity.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[hash]
	if !ok {
		c.misses++
		return nil, false
	}
	ent := el.Value.(*cacheEntry)
	if time.Since(ent.storedAt) > c.ttl {
		c.order.Remove(el)
		delete(c.entries, hash)
		c.misses++
		return nil, false
	}
	c.order.MoveToBack(el)
	c.hits++
	return cloneRecords(ent.records), true
}

// Put stores records under hash, replacing any existing entry, and evicts
// from the LRU end while over capacity.
func (c *ResultCache) Put(hash string, records []*entity.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := cloneRecords(records)
	if el, ok := c.entries[hash]; ok {
		ent := el.Value.(*cacheEntry)
		ent.records = stored
		ent.storedAt = time.Now()
		c.order.MoveToBack(el)
		return
	}
	el := c.order.PushBack(&cacheEntry{hash: hash, records: stored, storedAt: time.Now()})
	c.entries[hash] = el
	for c.order.Len() > c.maxSize {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).hash)
	}
}

// Stats returns a snapshot of size and cumulative hit/miss counters.
func (c *ResultCache) Stats() entity.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	rate := "0.0%"
	if total := c.hits + c.misses; total > 0 {
		rate = fmt.Sprintf("%.1f%%", float64(c.hits)/float64(total)*100)
	}
	return entity.CacheStats{
		Size:    c.order.Len(),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
		HitRate: rate,
	}
}

// Records are mutated in place downstream (sanitize fills fields, merge
// consolidates), so the cache hands out copies to keep entries pristine.
func cloneRecords(records []*entity.Record) []*entity.Record {
	out := make([]*entity.Record, len(records))
	for i, r := range records {
		cp := *r
		out[i] = &cp
	}
	return out
}
