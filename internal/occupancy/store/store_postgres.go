package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gatepass/internal/occupancy/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// PostgresStore persists occupancy in the occupancy table and transitions in
// the append-only transition_log table. Apply runs the conditional update and
// the log appends in one transaction: the WHERE clause carries the expected
// state, so a concurrent writer that already changed the row makes the update
// match zero rows and the whole transition rolls back.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, attendeeID id.AttendeeID, eventID id.EventID) (models.Record, error) {
	var (
		rec         models.Record
		attendee    uuid.UUID
		event       uuid.UUID
		status      string
		currentZone sql.NullString
		lastCheckIn sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT attendee_id, event_id, status, current_zone, last_check_in, total_minutes
		FROM occupancy
		WHERE attendee_id = $1 AND event_id = $2`,
		uuid.UUID(attendeeID), uuid.UUID(eventID),
	).Scan(&attendee, &event, &status, &currentZone, &lastCheckIn, &rec.TotalMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Record{}, fmt.Errorf("get occupancy: %w", err)
	}

	rec.AttendeeID = id.AttendeeID(attendee)
	rec.EventID = id.EventID(event)
	rec.Status = models.Status(status)
	rec.CurrentZone = currentZone.String
	if lastCheckIn.Valid {
		rec.LastCheckIn = lastCheckIn.Time
	}
	return rec, nil
}

func (s *PostgresStore) Apply(ctx context.Context, expected *models.Record, next models.Record, entries []models.LogEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback()

	if expected == nil {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO occupancy (attendee_id, event_id, status, current_zone, last_check_in, total_minutes)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (attendee_id, event_id) DO NOTHING`,
			uuid.UUID(next.AttendeeID), uuid.UUID(next.EventID),
			string(next.Status), zoneValue(next.CurrentZone),
			timeValue(next.LastCheckIn), next.TotalMinutes,
		)
		if err != nil {
			return fmt.Errorf("insert occupancy: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("insert occupancy: %w", err)
		} else if n == 0 {
			return sentinel.ErrConflict
		}
	} else {
		res, err := tx.ExecContext(ctx, `
			UPDATE occupancy
			SET status = $1, current_zone = $2, last_check_in = $3, total_minutes = $4
			WHERE attendee_id = $5 AND event_id = $6
			  AND status = $7
			  AND current_zone IS NOT DISTINCT FROM $8
			  AND total_minutes = $9
			  AND last_check_in IS NOT DISTINCT FROM $10`,
			string(next.Status), zoneValue(next.CurrentZone),
			timeValue(next.LastCheckIn), next.TotalMinutes,
			uuid.UUID(next.AttendeeID), uuid.UUID(next.EventID),
			string(expected.Status), zoneValue(expected.CurrentZone), expected.TotalMinutes,
			timeValue(expected.LastCheckIn),
		)
		if err != nil {
			return fmt.Errorf("update occupancy: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("update occupancy: %w", err)
		} else if n == 0 {
			return sentinel.ErrConflict
		}
	}

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transition_log (attendee_id, zone_id, type, occurred_at, method, recognized_minutes)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.UUID(e.AttendeeID), e.ZoneID, string(e.Type),
			e.Timestamp, string(e.Method), e.RecognizedMinutes,
		)
		if err != nil {
			return fmt.Errorf("append transition log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListLog(ctx context.Context, attendeeID id.AttendeeID) ([]models.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT attendee_id, zone_id, type, occurred_at, method, recognized_minutes
		FROM transition_log
		WHERE attendee_id = $1
		ORDER BY id`,
		uuid.UUID(attendeeID))
	if err != nil {
		return nil, fmt.Errorf("list transition log: %w", err)
	}
	defer rows.Close()

	var out []models.LogEntry
	for rows.Next() {
		var (
			e        models.LogEntry
			attendee uuid.UUID
			typ      string
			method   string
		)
		if err := rows.Scan(&attendee, &e.ZoneID, &typ, &e.Timestamp, &method, &e.RecognizedMinutes); err != nil {
			return nil, fmt.Errorf("scan transition log: %w", err)
		}
		e.AttendeeID = id.AttendeeID(attendee)
		e.Type = models.TransitionType(typ)
		e.Method = models.Method(method)
		out = append(out, e)
	}
	return out, rows.Err()
}

func zoneValue(zone string) sql.NullString {
	return sql.NullString{String: zone, Valid: zone != ""}
}

func timeValue(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
