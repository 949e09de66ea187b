package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/credential/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

func newCredential(attendeeID id.AttendeeID, createdAt time.Time) models.Credential {
	return models.Credential{
		Token:      models.NewToken(),
		AttendeeID: attendeeID,
		EventID:    id.EventID(uuid.New()),
		Status:     models.StatusActive,
		CreatedAt:  createdAt,
		ExpiresAt:  createdAt.Add(models.FallbackTTL),
	}
}

func TestInMemoryStore_ReplaceKeepsOneActive(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	attendeeID := id.AttendeeID(uuid.New())
	now := time.Now()

	first, err := s.Replace(ctx, newCredential(attendeeID, now))
	require.NoError(t, err)
	second, err := s.Replace(ctx, newCredential(attendeeID, now.Add(time.Minute)))
	require.NoError(t, err)

	assert.Equal(t, 1, s.ActiveCount(attendeeID))

	old, err := s.FindByToken(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, old.Status)

	current, err := s.FindCurrent(ctx, attendeeID)
	require.NoError(t, err)
	assert.Equal(t, second.Token, current.Token)
}

func TestInMemoryStore_FindCurrentIgnoresExpired(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	attendeeID := id.AttendeeID(uuid.New())

	cred, err := s.Replace(ctx, newCredential(attendeeID, time.Now()))
	require.NoError(t, err)
	require.NoError(t, s.MarkExpired(ctx, cred.Token, time.Now()))

	_, err = s.FindCurrent(ctx, attendeeID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_MarkIssuedIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	attendeeID := id.AttendeeID(uuid.New())
	now := time.Now()

	_, err := s.Replace(ctx, newCredential(attendeeID, now))
	require.NoError(t, err)

	first, err := s.MarkIssued(ctx, attendeeID, "speaker", now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIssued, first.Status)
	assert.Equal(t, "speaker", first.BadgeType)

	// Second claim wins on badge type and issue time.
	later := now.Add(time.Hour)
	second, err := s.MarkIssued(ctx, attendeeID, "attendee", later)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIssued, second.Status)
	assert.Equal(t, "attendee", second.BadgeType)
	assert.Equal(t, later, *second.IssuedAt)
}

func TestInMemoryStore_MarkIssuedWithoutCredential(t *testing.T) {
	s := NewInMemoryStore()
	_, err := s.MarkIssued(context.Background(), id.AttendeeID(uuid.New()), "attendee", time.Now())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
