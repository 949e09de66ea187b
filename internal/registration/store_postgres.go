package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// PostgresStore reads registrations from the SaaS database. Standard and
// external attendees live in separate tables; the kind tag selects which one
// a query hits.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindAttendee(ctx context.Context, kind AttendeeKind, attendeeID id.AttendeeID) (Attendee, error) {
	var table string
	switch kind {
	case KindStandard:
		table = "registrations"
	case KindExternal:
		table = "external_registrations"
	default:
		return Attendee{}, fmt.Errorf("unknown attendee kind %q", kind)
	}

	query := fmt.Sprintf(`
		SELECT attendee_id, event_id, display_name, organization, contact, badge_type, payment_status
		FROM %s
		WHERE attendee_id = $1`, table)

	var (
		a          Attendee
		attendee   uuid.UUID
		event      uuid.UUID
		payment    string
		org        sql.NullString
		badgeType  sql.NullString
		contactCol sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(attendeeID)).Scan(
		&attendee, &event, &a.DisplayName, &org, &contactCol, &badgeType, &payment,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Attendee{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Attendee{}, fmt.Errorf("find attendee: %w", err)
	}

	a.ID = id.AttendeeID(attendee)
	a.EventID = id.EventID(event)
	a.Kind = kind
	a.Organization = org.String
	a.Contact = contactCol.String
	a.BadgeType = badgeType.String
	a.Payment = PaymentStatus(payment)
	return a, nil
}

func (s *PostgresStore) FindEvent(ctx context.Context, eventID id.EventID) (Event, error) {
	var (
		e      Event
		evID   uuid.UUID
		endsAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, ends_at
		FROM events
		WHERE id = $1`, uuid.UUID(eventID)).Scan(&evID, &e.Name, &endsAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Event{}, fmt.Errorf("find event: %w", err)
	}

	e.ID = id.EventID(evID)
	if endsAt.Valid {
		t := endsAt.Time
		e.EndsAt = &t
	}
	return e, nil
}
