// Package store persists occupancy records and the transition log. Apply is
// a conditional update: the mutation commits only if the stored record still
// matches what the engine read, so concurrent scans for the same attendee
// cannot both win.
package store

import (
	"context"

	"gatepass/internal/occupancy/models"
	id "gatepass/pkg/domain"
)

type Store interface {
	// Get returns the attendee's occupancy record for the event.
	// Returns sentinel.ErrNotFound when the attendee has never scanned.
	Get(ctx context.Context, attendeeID id.AttendeeID, eventID id.EventID) (models.Record, error)

	// Apply commits one logical transition: it writes next and appends
	// entries in a single atomic step, conditional on the stored record
	// still equaling expected. A nil expected asserts that no record
	// exists yet. Returns sentinel.ErrConflict when another writer got
	// there first; nothing is written in that case.
	Apply(ctx context.Context, expected *models.Record, next models.Record, entries []models.LogEntry) error

	// ListLog returns the attendee's transition log in append order.
	// The engine itself never reads this; it serves audit and dwell-time
	// reconciliation.
	ListLog(ctx context.Context, attendeeID id.AttendeeID) ([]models.LogEntry, error)
}
