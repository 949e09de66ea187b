package kiosk

import (
	"context"
	"sync"

	"gatepass/pkg/platform/sentinel"
)

// InMemoryStore holds kiosk settings in process memory.
type InMemoryStore struct {
	mu       sync.RWMutex
	settings Settings
	saved    bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Load(_ context.Context) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return Settings{}, sentinel.ErrNotFound
	}
	return s.settings, nil
}

func (s *InMemoryStore) Save(_ context.Context, settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.saved = true
	return nil
}
