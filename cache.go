package churchsite

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache keys of the public listings.
const (
	cacheSermons  = "sermons"
	cachePrograms = "programs"
)

// ListCache keeps recently fetched public listings for a short TTL so that
// busy public pages do not hit the API on every view. Admin mutations
// invalidate the affected keys.
type ListCache struct {
	lru *expirable.LRU[string, any]
}

// NewListCache creates a ListCache of size entries expiring after ttl.
func NewListCache(size int, ttl time.Duration) *ListCache {
	return &ListCache{lru: expirable.NewLRU[string, any](size, nil, ttl)}
}

// Invalidate drops keys, or everything when none are given.
func (c *ListCache) Invalidate(keys ...string) {
	if len(keys) == 0 {
		c.lru.Purge()
		return
	}
	for _, k := range keys {
		c.lru.Remove(k)
	}
}

// cachedList returns the listing under key, loading and storing it on a
// miss. Failed loads are not cached.
func cachedList[T any](ctx context.Context, c *ListCache, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if v, ok := c.lru.Get(key); ok {
		if items, ok := v.([]T); ok {
			return items, nil
		}
	}
	items, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, items)
	return items, nil
}
