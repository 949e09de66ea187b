//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"gatepass/internal/credential/models"
	"gatepass/internal/credential/store"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "credentials"))
}

func newCredential(attendeeID id.AttendeeID) models.Credential {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return models.Credential{
		Token:      models.NewToken(),
		AttendeeID: attendeeID,
		EventID:    id.EventID(uuid.New()),
		Status:     models.StatusActive,
		CreatedAt:  now,
		ExpiresAt:  now.Add(models.FallbackTTL),
	}
}

func (s *PostgresStoreSuite) TestReplaceKeepsOneActive() {
	ctx := context.Background()
	attendeeID := id.AttendeeID(uuid.New())

	first, err := s.store.Replace(ctx, newCredential(attendeeID))
	s.Require().NoError(err)

	second, err := s.store.Replace(ctx, newCredential(attendeeID))
	s.Require().NoError(err)

	old, err := s.store.FindByToken(ctx, first.Token)
	s.Require().NoError(err)
	s.Equal(models.StatusExpired, old.Status)

	current, err := s.store.FindCurrent(ctx, attendeeID)
	s.Require().NoError(err)
	s.Equal(second.Token, current.Token)
}

// TestConcurrentReplace verifies that racing issuers leave exactly one
// current credential.
func (s *PostgresStoreSuite) TestConcurrentReplace() {
	ctx := context.Background()
	attendeeID := id.AttendeeID(uuid.New())
	const goroutines = 20

	var wg sync.WaitGroup
	var successes atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.store.Replace(ctx, newCredential(attendeeID)); err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(goroutines), successes.Load())

	var active int
	err := s.postgres.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM credentials WHERE attendee_id = $1 AND status = 'ACTIVE'`,
		uuid.UUID(attendeeID)).Scan(&active)
	s.Require().NoError(err)
	s.Equal(1, active)
}

func (s *PostgresStoreSuite) TestMarkIssued() {
	ctx := context.Background()
	attendeeID := id.AttendeeID(uuid.New())

	cred, err := s.store.Replace(ctx, newCredential(attendeeID))
	s.Require().NoError(err)

	at := time.Now().UTC().Truncate(time.Millisecond)
	issued, err := s.store.MarkIssued(ctx, attendeeID, "speaker", at)
	s.Require().NoError(err)
	s.Equal(cred.Token, issued.Token)
	s.Equal(models.StatusIssued, issued.Status)
	s.Equal("speaker", issued.BadgeType)
	s.Require().NotNil(issued.IssuedAt)

	// idempotent: a second claim keeps the credential ISSUED
	again, err := s.store.MarkIssued(ctx, attendeeID, "speaker", at.Add(time.Minute))
	s.Require().NoError(err)
	s.Equal(issued.Token, again.Token)
	s.Equal(models.StatusIssued, again.Status)
}

func (s *PostgresStoreSuite) TestMarkIssuedWithoutCredential() {
	_, err := s.store.MarkIssued(context.Background(), id.AttendeeID(uuid.New()), "attendee", time.Now())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestMarkExpired() {
	ctx := context.Background()
	attendeeID := id.AttendeeID(uuid.New())

	cred, err := s.store.Replace(ctx, newCredential(attendeeID))
	s.Require().NoError(err)

	s.Require().NoError(s.store.MarkExpired(ctx, cred.Token, time.Now()))

	got, err := s.store.FindByToken(ctx, cred.Token)
	s.Require().NoError(err)
	s.Equal(models.StatusExpired, got.Status)

	s.Require().ErrorIs(s.store.MarkExpired(ctx, "no-such-token", time.Now()), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestFindCurrentIgnoresExpired() {
	ctx := context.Background()
	attendeeID := id.AttendeeID(uuid.New())

	cred, err := s.store.Replace(ctx, newCredential(attendeeID))
	s.Require().NoError(err)
	s.Require().NoError(s.store.MarkExpired(ctx, cred.Token, time.Now()))

	_, err = s.store.FindCurrent(ctx, attendeeID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
