package audit

import (
	"context"

	id "gatepass/pkg/domain"
)

// Store persists audit events. The stream is append-only; implementations
// must never mutate or delete written entries.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByAttendee(ctx context.Context, attendeeID id.AttendeeID) ([]Event, error)
}
