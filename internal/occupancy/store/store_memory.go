package store

import (
	"context"
	"sync"

	"gatepass/internal/occupancy/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

type occupancyKey struct {
	attendeeID id.AttendeeID
	eventID    id.EventID
}

// InMemoryStore keeps occupancy state in process memory. One mutex covers
// both the record map and the log so Apply is atomic, matching the
// per-document conditional update of the production store.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[occupancyKey]models.Record
	log     []models.LogEntry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[occupancyKey]models.Record)}
}

func (s *InMemoryStore) Get(_ context.Context, attendeeID id.AttendeeID, eventID id.EventID) (models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[occupancyKey{attendeeID, eventID}]; ok {
		return rec, nil
	}
	return models.Record{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Apply(_ context.Context, expected *models.Record, next models.Record, entries []models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := occupancyKey{next.AttendeeID, next.EventID}
	stored, exists := s.records[key]

	if expected == nil {
		if exists {
			return sentinel.ErrConflict
		}
	} else {
		if !exists || !sameRecord(stored, *expected) {
			return sentinel.ErrConflict
		}
	}

	s.records[key] = next
	s.log = append(s.log, entries...)
	return nil
}

func (s *InMemoryStore) ListLog(_ context.Context, attendeeID id.AttendeeID) ([]models.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.LogEntry
	for _, e := range s.log {
		if e.AttendeeID == attendeeID {
			out = append(out, e)
		}
	}
	return out, nil
}

// LogLen reports the total number of log entries. Test helper.
func (s *InMemoryStore) LogLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.log)
}

func sameRecord(a, b models.Record) bool {
	return a.Status == b.Status &&
		a.CurrentZone == b.CurrentZone &&
		a.LastCheckIn.Equal(b.LastCheckIn) &&
		a.TotalMinutes == b.TotalMinutes
}
