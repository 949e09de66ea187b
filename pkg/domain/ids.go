// Package domain holds typed identifiers shared across services.
//
// IDs are distinct types over uuid.UUID so the compiler rejects an
// AttendeeID where an EventID is expected. Parse functions enforce the
// invariant that IDs are valid, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "gatepass/pkg/domain-errors"
)

type (
	// AttendeeID identifies a registered attendee.
	AttendeeID uuid.UUID

	// EventID identifies a conference event.
	EventID uuid.UUID
)

// ParseAttendeeID validates and returns an AttendeeID.
func ParseAttendeeID(s string) (AttendeeID, error) {
	u, err := parseUUID(s, "attendee id")
	return AttendeeID(u), err
}

// ParseEventID validates and returns an EventID.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event id")
	return EventID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must not be the nil UUID")
	}
	return u, nil
}

func (id AttendeeID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string    { return uuid.UUID(id).String() }

// MarshalText renders the canonical UUID string so JSON and log encoders
// never see the raw byte array.
func (id AttendeeID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// MarshalText renders the canonical UUID string.
func (id EventID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText parses a canonical UUID string.
func (id *AttendeeID) UnmarshalText(b []byte) error {
	parsed, err := ParseAttendeeID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// UnmarshalText parses a canonical UUID string.
func (id *EventID) UnmarshalText(b []byte) error {
	parsed, err := ParseEventID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IsNil reports whether the ID is the zero value.
func (id AttendeeID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// IsNil reports whether the ID is the zero value.
func (id EventID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
