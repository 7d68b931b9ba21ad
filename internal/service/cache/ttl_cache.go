// Package cache provides the small in-process TTL cache used to absorb
// repeated signal-provider lookups inside one snapshot run.
package cache

import (
	"sync"
	"time"
)

// BytesCache stores raw response payloads with a TTL.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}

type record struct {
	data    []byte
	expires time.Time
}

// TTLCache is a mutex-guarded map with lazy expiry: stale entries are
// evicted on read, not by a background sweeper.
type TTLCache struct {
	mu      sync.RWMutex
	records map[string]record
}

// NewTTLCache creates an empty cache.
func NewTTLCache() *TTLCache {
	return &TTLCache{records: make(map[string]record)}
}

func (c *TTLCache) GetBytes(key string) ([]byte, bool, error) {
	c.mu.RLock()
	r, ok := c.records[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !r.expires.IsZero() && time.Now().After(r.expires) {
		c.mu.Lock()
		delete(c.records, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return r.data, true, nil
}

func (c *TTLCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.records[key] = record{data: value, expires: expires}
	c.mu.Unlock()
	return nil
}

var _ BytesCache = (*TTLCache)(nil)
