// Package registration models the read-only registration collaborator: who
// is registered for which event, whether they paid, and how a scanned badge
// code maps back to them.
package registration

import (
	"time"

	id "gatepass/pkg/domain"
)

// AttendeeKind tags which backing collection an attendee came from. The
// registration datastore keeps self-service signups and externally imported
// guest lists in separate collections; callers never care which one matched.
type AttendeeKind string

const (
	KindStandard AttendeeKind = "standard"
	KindExternal AttendeeKind = "external"
)

// PaymentStatus mirrors the payment collaborator's view of a registration.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Attendee is the resolved registration snapshot consumed by the credential
// and occupancy services.
type Attendee struct {
	ID           id.AttendeeID
	EventID      id.EventID
	Kind         AttendeeKind
	DisplayName  string
	Organization string
	Contact      string
	BadgeType    string
	Payment      PaymentStatus
}

// Paid reports whether the registration is currently paid.
func (a Attendee) Paid() bool {
	return a.Payment == PaymentConfirmed
}

// Event is the conference event a registration belongs to.
type Event struct {
	ID     id.EventID
	Name   string
	EndsAt *time.Time // nil when the organizer has not set an end date
}
