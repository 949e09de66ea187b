//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema creates every table the stores touch. Integration suites truncate
// between tests rather than re-applying.
const schema = `
CREATE TABLE IF NOT EXISTS events (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	ends_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS registrations (
	attendee_id UUID PRIMARY KEY,
	event_id UUID NOT NULL,
	display_name TEXT NOT NULL,
	organization TEXT,
	contact TEXT,
	badge_type TEXT,
	payment_status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS external_registrations (
	attendee_id UUID PRIMARY KEY,
	event_id UUID NOT NULL,
	display_name TEXT NOT NULL,
	organization TEXT,
	contact TEXT,
	badge_type TEXT,
	payment_status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS credentials (
	token TEXT PRIMARY KEY,
	attendee_id UUID NOT NULL,
	event_id UUID NOT NULL,
	status TEXT NOT NULL,
	badge_type TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	issued_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS credentials_attendee_idx ON credentials (attendee_id, status);

CREATE TABLE IF NOT EXISTS occupancy (
	attendee_id UUID NOT NULL,
	event_id UUID NOT NULL,
	status TEXT NOT NULL,
	current_zone TEXT,
	last_check_in TIMESTAMPTZ,
	total_minutes INT NOT NULL DEFAULT 0,
	PRIMARY KEY (attendee_id, event_id)
);

CREATE TABLE IF NOT EXISTS transition_log (
	id BIGSERIAL PRIMARY KEY,
	attendee_id UUID NOT NULL,
	zone_id TEXT NOT NULL,
	type TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	method TEXT NOT NULL,
	recognized_minutes INT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS transition_log_attendee_idx ON transition_log (attendee_id, id);
`

// PostgresContainer wraps a testcontainers Postgres instance with the schema
// applied.
type PostgresContainer struct {
	Container testcontainers.Container
	URL       string
	DB        *sql.DB
}

// NewPostgresContainer starts a new Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("gatepass_test"),
		tcpostgres.WithUsername("gatepass"),
		tcpostgres.WithPassword("gatepass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{
		Container: container,
		URL:       url,
		DB:        db,
	}
}

// TruncateTables empties the given tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx,
		fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", ")))
	return err
}
