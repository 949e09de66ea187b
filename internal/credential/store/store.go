// Package store persists credentials. Implementations must keep the
// one-active-per-attendee invariant: Replace expires and inserts as a single
// atomic step, so no reader ever observes two ACTIVE credentials.
package store

import (
	"context"
	"time"

	"gatepass/internal/credential/models"
	id "gatepass/pkg/domain"
)

type Store interface {
	// Replace atomically expires any ACTIVE credential the attendee holds
	// and persists cred as the new ACTIVE one.
	Replace(ctx context.Context, cred models.Credential) (models.Credential, error)

	// FindByToken looks a credential up by its opaque token.
	// Returns sentinel.ErrNotFound when absent.
	FindByToken(ctx context.Context, token string) (models.Credential, error)

	// FindCurrent returns the attendee's newest ACTIVE or ISSUED
	// credential. Returns sentinel.ErrNotFound when the attendee holds
	// only expired credentials or none at all.
	FindCurrent(ctx context.Context, attendeeID id.AttendeeID) (models.Credential, error)

	// MarkIssued transitions the attendee's current credential to ISSUED.
	// Idempotent: repeat calls update badge type and issue time in place.
	MarkIssued(ctx context.Context, attendeeID id.AttendeeID, badgeType string, at time.Time) (models.Credential, error)

	// MarkExpired transitions the credential with the given token to
	// EXPIRED.
	MarkExpired(ctx context.Context, token string, at time.Time) error
}
