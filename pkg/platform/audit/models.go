// Package audit defines the append-only event stream for access-control
// actions. Domain services emit events through a Publisher; sinks fan out to
// memory (tests), Postgres, or Kafka without the services knowing.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	id "gatepass/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose, enabling
// different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with contractual significance:
	// credential issuance, claims, and reissues tied to paid registrations.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and occupancy
	// reporting: zone transitions, scan rejections, dispatch failures.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category   EventCategory
	Timestamp  time.Time
	AttendeeID id.AttendeeID
	EventID    id.EventID
	Action     string
	Zone       string
	Mode       string
	Reason     string
	// RecognizedMinutes carries the dwell minutes credited on an exit.
	RecognizedMinutes int
	// CodeHash is a SHA-256 hash of the raw scanned code. Raw codes are
	// reusable access material and never enter the audit stream.
	CodeHash string
	// ActorID tracks the staff subject for admin operations (claim, reissue).
	ActorID   string
	RequestID string
}

// AccessEvent names the audited actions.
type AccessEvent string

const (
	// Credential lifecycle events.
	EventCredentialIssued   AccessEvent = "credential_issued"
	EventCredentialRenewed  AccessEvent = "credential_auto_renewed"
	EventCredentialClaimed  AccessEvent = "credential_claimed"
	EventCredentialReissued AccessEvent = "credential_reissued"
	EventValidationRedirect AccessEvent = "validation_redirected"
	EventDispatchFailed     AccessEvent = "dispatch_failed"

	// Zone transition events.
	EventZoneEntered  AccessEvent = "zone_entered"
	EventZoneExited   AccessEvent = "zone_exited"
	EventScanRejected AccessEvent = "scan_rejected"
)

var eventCategories = map[AccessEvent]EventCategory{
	EventCredentialIssued:   CategoryCompliance,
	EventCredentialRenewed:  CategoryCompliance,
	EventCredentialClaimed:  CategoryCompliance,
	EventCredentialReissued: CategoryCompliance,
	EventValidationRedirect: CategoryOperations,
	EventDispatchFailed:     CategoryOperations,
	EventZoneEntered:        CategoryOperations,
	EventZoneExited:         CategoryOperations,
	EventScanRejected:       CategoryOperations,
}

// Category returns the category for the event, defaulting to operations for
// unknown actions.
func (e AccessEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}

// HashCode produces the audit-safe representation of a raw scanned code.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
