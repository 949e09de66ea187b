package registration

import (
	"context"
	"sync"

	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// InMemoryStore keeps registrations and events in process memory. Used in
// tests and development mode.
type InMemoryStore struct {
	mu        sync.RWMutex
	attendees map[AttendeeKind]map[id.AttendeeID]Attendee
	events    map[id.EventID]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		attendees: map[AttendeeKind]map[id.AttendeeID]Attendee{
			KindStandard: {},
			KindExternal: {},
		},
		events: make(map[id.EventID]Event),
	}
}

func (s *InMemoryStore) FindAttendee(_ context.Context, kind AttendeeKind, attendeeID id.AttendeeID) (Attendee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.attendees[kind][attendeeID]; ok {
		return a, nil
	}
	return Attendee{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindEvent(_ context.Context, eventID id.EventID) (Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.events[eventID]; ok {
		return e, nil
	}
	return Event{}, sentinel.ErrNotFound
}

// PutAttendee seeds a registration. Test and dev-mode helper.
func (s *InMemoryStore) PutAttendee(a Attendee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendees[a.Kind][a.ID] = a
}

// PutEvent seeds an event. Test and dev-mode helper.
func (s *InMemoryStore) PutEvent(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
}
