package registration

import (
	"context"

	id "gatepass/pkg/domain"
)

// Store reads registration data. Writes happen in the surrounding SaaS; this
// service only consumes. Implementations return sentinel.ErrNotFound when the
// attendee does not exist in the requested collection.
type Store interface {
	FindAttendee(ctx context.Context, kind AttendeeKind, attendeeID id.AttendeeID) (Attendee, error)
}

// EventStore reads event metadata, notably the end date used for credential
// expiry.
type EventStore interface {
	FindEvent(ctx context.Context, eventID id.EventID) (Event, error)
}
