package kiosk

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/occupancy/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// countingStore wraps InMemoryStore and counts Load calls.
type countingStore struct {
	*InMemoryStore
	mu    sync.Mutex
	loads int
	fail  error
}

func (s *countingStore) Load(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	s.loads++
	fail := s.fail
	s.mu.Unlock()
	if fail != nil {
		return Settings{}, fail
	}
	return s.InMemoryStore.Load(ctx)
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	settings := Settings{
		ActiveEventID: id.EventID(uuid.New()),
		DefaultMode:   models.ModeAuto,
		DefaultZone:   "main-hall",
	}

	newFixture := func(t *testing.T, ttl time.Duration) (*countingStore, *Cache, *time.Time) {
		t.Helper()
		store := &countingStore{InMemoryStore: NewInMemoryStore()}
		require.NoError(t, store.Save(ctx, settings))

		now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
		cache := NewCache(store, ttl)
		cache.clock = func() time.Time { return now }
		return store, cache, &now
	}

	t.Run("serves cached value inside the TTL", func(t *testing.T) {
		store, cache, now := newFixture(t, time.Minute)

		got, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, settings, got)

		*now = now.Add(30 * time.Second)
		_, err = cache.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, store.loads)
	})

	t.Run("refreshes after the TTL elapses", func(t *testing.T) {
		store, cache, now := newFixture(t, time.Minute)

		_, err := cache.Get(ctx)
		require.NoError(t, err)

		*now = now.Add(2 * time.Minute)
		_, err = cache.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, store.loads)
	})

	t.Run("Refresh bypasses the TTL", func(t *testing.T) {
		store, cache, _ := newFixture(t, time.Hour)

		_, err := cache.Get(ctx)
		require.NoError(t, err)

		updated := settings
		updated.DefaultZone = "expo-floor"
		require.NoError(t, store.Save(ctx, updated))

		got, err := cache.Refresh(ctx)
		require.NoError(t, err)
		assert.Equal(t, "expo-floor", got.DefaultZone)
	})

	t.Run("propagates refresh failures instead of serving stale", func(t *testing.T) {
		store, cache, now := newFixture(t, time.Minute)

		_, err := cache.Get(ctx)
		require.NoError(t, err)

		*now = now.Add(2 * time.Minute)
		store.fail = errors.New("redis down")
		_, err = cache.Get(ctx)
		assert.Error(t, err)
	})

	t.Run("unsaved settings surface as not found", func(t *testing.T) {
		cache := NewCache(NewInMemoryStore(), time.Minute)
		_, err := cache.Get(ctx)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("zero TTL always loads", func(t *testing.T) {
		store, cache, _ := newFixture(t, 0)

		_, err := cache.Get(ctx)
		require.NoError(t, err)
		_, err = cache.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, store.loads)
	})
}
