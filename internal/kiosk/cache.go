package kiosk

import (
	"context"
	"sync"
	"time"
)

// Cache serves kiosk settings with a bounded staleness window. All cache
// state lives on the struct; constructing two caches gives two independent
// staleness windows.
type Cache struct {
	store Store
	ttl   time.Duration
	clock func() time.Time

	mu        sync.Mutex
	value     Settings
	fetchedAt time.Time
}

// NewCache wraps a settings store with a TTL. A non-positive ttl disables
// caching and every Get hits the store.
func NewCache(store Store, ttl time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl, clock: time.Now}
}

// Get returns cached settings, refreshing from the store when the cached
// value is older than the TTL. A failed refresh propagates; stale values are
// never served past the window.
func (c *Cache) Get(ctx context.Context) (Settings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fetchedAt.IsZero() && c.clock().Sub(c.fetchedAt) < c.ttl {
		return c.value, nil
	}
	return c.refreshLocked(ctx)
}

// Refresh bypasses the TTL and reloads from the store, for operator tooling
// that needs changes visible immediately.
func (c *Cache) Refresh(ctx context.Context) (Settings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *Cache) refreshLocked(ctx context.Context) (Settings, error) {
	settings, err := c.store.Load(ctx)
	if err != nil {
		return Settings{}, err
	}
	c.value = settings
	c.fetchedAt = c.clock()
	return settings, nil
}
