package unifi

import (
	"sync"
	"time"

	"github.com/ekobres/unifi-dns-audit/internal/domain"
)

type cacheEntry struct {
	snap    domain.Snapshot
	expires time.Time
}

// snapshotCache keeps one fetched snapshot per site until it expires, so
// repeated audit runs against the same controller reuse the last fetch.
type snapshotCache struct {
	mu   sync.RWMutex
	ttl  time.Duration
	data map[string]cacheEntry
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &snapshotCache{
		ttl:  ttl,
		data: make(map[string]cacheEntry),
	}
}

func (c *snapshotCache) get(key string) (domain.Snapshot, bool) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return domain.Snapshot{}, false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return domain.Snapshot{}, false
	}
	return entry.snap, true
}

func (c *snapshotCache) set(key string, snap domain.Snapshot) {
	c.mu.Lock()
	c.data[key] = cacheEntry{
		snap:    snap,
		expires: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}
