package store

import (
	"context"
	"sync"
	"time"

	"gatepass/internal/credential/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// InMemoryStore keeps credentials in process memory. The single mutex makes
// Replace's expire-then-insert sequence atomic, matching the per-document
// atomicity the production store provides.
type InMemoryStore struct {
	mu      sync.RWMutex
	byToken map[string]models.Credential
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byToken: make(map[string]models.Credential)}
}

func (s *InMemoryStore) Replace(_ context.Context, cred models.Credential) (models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, existing := range s.byToken {
		if existing.AttendeeID == cred.AttendeeID && existing.Status == models.StatusActive {
			existing.Status = models.StatusExpired
			s.byToken[token] = existing
		}
	}

	cred.Status = models.StatusActive
	s.byToken[cred.Token] = cred
	return cred, nil
}

func (s *InMemoryStore) FindByToken(_ context.Context, token string) (models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cred, ok := s.byToken[token]; ok {
		return cred, nil
	}
	return models.Credential{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindCurrent(_ context.Context, attendeeID id.AttendeeID) (models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest models.Credential
	found := false
	for _, cred := range s.byToken {
		if cred.AttendeeID != attendeeID || !cred.Current() {
			continue
		}
		if !found || cred.CreatedAt.After(newest.CreatedAt) {
			newest = cred
			found = true
		}
	}
	if !found {
		return models.Credential{}, sentinel.ErrNotFound
	}
	return newest, nil
}

func (s *InMemoryStore) MarkIssued(_ context.Context, attendeeID id.AttendeeID, badgeType string, at time.Time) (models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newest models.Credential
	found := false
	for _, cred := range s.byToken {
		if cred.AttendeeID != attendeeID || !cred.Current() {
			continue
		}
		if !found || cred.CreatedAt.After(newest.CreatedAt) {
			newest = cred
			found = true
		}
	}
	if !found {
		return models.Credential{}, sentinel.ErrNotFound
	}

	newest.Status = models.StatusIssued
	newest.BadgeType = badgeType
	issuedAt := at
	newest.IssuedAt = &issuedAt
	s.byToken[newest.Token] = newest
	return newest, nil
}

func (s *InMemoryStore) MarkExpired(_ context.Context, token string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.byToken[token]
	if !ok {
		return sentinel.ErrNotFound
	}
	cred.Status = models.StatusExpired
	s.byToken[token] = cred
	return nil
}

// ActiveCount reports how many ACTIVE credentials the attendee holds.
// Test helper for the one-active invariant.
func (s *InMemoryStore) ActiveCount(attendeeID id.AttendeeID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, cred := range s.byToken {
		if cred.AttendeeID == attendeeID && cred.Status == models.StatusActive {
			n++
		}
	}
	return n
}
