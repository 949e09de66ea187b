// Package models defines the badge credential and its lifecycle rules.
package models

import (
	"time"

	"github.com/google/uuid"

	id "gatepass/pkg/domain"
)

// Status is the credential lifecycle state.
type Status string

const (
	// StatusActive: the credential grants access and is the attendee's
	// single live token.
	StatusActive Status = "ACTIVE"
	// StatusExpired: superseded by a newer credential or past ExpiresAt.
	StatusExpired Status = "EXPIRED"
	// StatusIssued: the physical badge was printed at an info desk.
	// Terminal for this credential but never blocks a future reissue.
	StatusIssued Status = "ISSUED"
)

// Expiry rules: credentials outlive the event by a grace window so attendees
// can still retrieve receipts and certificates; events without an end date
// fall back to a fixed window from issuance.
const (
	GraceWindow = 48 * time.Hour
	FallbackTTL = 7 * 24 * time.Hour
)

// Credential is the access token object governing whether an attendee may
// retrieve or claim a badge. At most one Credential per attendee is ACTIVE at
// any instant; the store enforces this by expiring before inserting.
type Credential struct {
	Token      string
	AttendeeID id.AttendeeID
	EventID    id.EventID
	Status     Status
	BadgeType  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	IssuedAt   *time.Time
}

// NewToken generates an opaque client-facing token.
func NewToken() string {
	return uuid.NewString()
}

// ExpiryFor computes the expiry instant for a credential issued now.
func ExpiryFor(now time.Time, eventEnd *time.Time) time.Time {
	if eventEnd != nil {
		return eventEnd.Add(GraceWindow)
	}
	return now.Add(FallbackTTL)
}

// ExpiredAt reports whether the credential is past its expiry at the given
// instant.
func (c Credential) ExpiredAt(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Current reports whether the credential still represents the attendee's
// live access: ACTIVE or ISSUED, never EXPIRED.
func (c Credential) Current() bool {
	return c.Status == StatusActive || c.Status == StatusIssued
}
