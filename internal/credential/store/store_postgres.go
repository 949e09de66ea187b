package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gatepass/internal/credential/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// PostgresStore persists credentials in the credentials table. Replace runs
// expire-then-insert inside one transaction so concurrent issuers serialize
// on the attendee's row set and no reader observes two ACTIVE rows.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const credentialColumns = `token, attendee_id, event_id, status, badge_type, created_at, expires_at, issued_at`

func (s *PostgresStore) Replace(ctx context.Context, cred models.Credential) (models.Credential, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Credential{}, fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE credentials
		SET status = $1
		WHERE attendee_id = $2 AND status = $3`,
		string(models.StatusExpired), uuid.UUID(cred.AttendeeID), string(models.StatusActive),
	)
	if err != nil {
		return models.Credential{}, fmt.Errorf("expire active credentials: %w", err)
	}

	cred.Status = models.StatusActive
	_, err = tx.ExecContext(ctx, `
		INSERT INTO credentials (`+credentialColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		cred.Token, uuid.UUID(cred.AttendeeID), uuid.UUID(cred.EventID),
		string(cred.Status), nullString(cred.BadgeType),
		cred.CreatedAt, cred.ExpiresAt, nullTime(cred.IssuedAt),
	)
	if err != nil {
		return models.Credential{}, fmt.Errorf("insert credential: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Credential{}, fmt.Errorf("commit replace: %w", err)
	}
	return cred, nil
}

func (s *PostgresStore) FindByToken(ctx context.Context, token string) (models.Credential, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+credentialColumns+`
		FROM credentials
		WHERE token = $1`, token)
	return scanCredential(row)
}

func (s *PostgresStore) FindCurrent(ctx context.Context, attendeeID id.AttendeeID) (models.Credential, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+credentialColumns+`
		FROM credentials
		WHERE attendee_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1`,
		uuid.UUID(attendeeID), string(models.StatusActive), string(models.StatusIssued))
	return scanCredential(row)
}

func (s *PostgresStore) MarkIssued(ctx context.Context, attendeeID id.AttendeeID, badgeType string, at time.Time) (models.Credential, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE credentials
		SET status = $1, badge_type = $2, issued_at = $3
		WHERE token = (
			SELECT token FROM credentials
			WHERE attendee_id = $4 AND status IN ($5, $1)
			ORDER BY created_at DESC
			LIMIT 1
		)
		RETURNING `+credentialColumns,
		string(models.StatusIssued), nullString(badgeType), at,
		uuid.UUID(attendeeID), string(models.StatusActive))
	return scanCredential(row)
}

func (s *PostgresStore) MarkExpired(ctx context.Context, token string, _ time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE credentials
		SET status = $1
		WHERE token = $2`,
		string(models.StatusExpired), token)
	if err != nil {
		return fmt.Errorf("expire credential: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("expire credential: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (models.Credential, error) {
	var (
		cred       models.Credential
		attendeeID uuid.UUID
		eventID    uuid.UUID
		status     string
		badgeType  sql.NullString
		issuedAt   sql.NullTime
	)
	err := row.Scan(&cred.Token, &attendeeID, &eventID, &status, &badgeType,
		&cred.CreatedAt, &cred.ExpiresAt, &issuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Credential{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Credential{}, fmt.Errorf("scan credential: %w", err)
	}

	cred.AttendeeID = id.AttendeeID(attendeeID)
	cred.EventID = id.EventID(eventID)
	cred.Status = models.Status(status)
	cred.BadgeType = badgeType.String
	if issuedAt.Valid {
		t := issuedAt.Time
		cred.IssuedAt = &t
	}
	return cred, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
