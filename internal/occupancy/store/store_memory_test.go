package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/occupancy/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

func TestInMemoryStoreApply(t *testing.T) {
	ctx := context.Background()
	attendeeID := id.AttendeeID(uuid.New())
	eventID := id.EventID(uuid.New())
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	entered := models.Record{
		AttendeeID:  attendeeID,
		EventID:     eventID,
		Status:      models.StatusInside,
		CurrentZone: "hall-a",
		LastCheckIn: now,
	}
	enterEntry := models.LogEntry{
		AttendeeID: attendeeID,
		ZoneID:     "hall-a",
		Type:       models.TransitionEnter,
		Timestamp:  now,
		Method:     models.MethodKiosk,
	}

	t.Run("insert with nil expectation", func(t *testing.T) {
		s := NewInMemoryStore()

		_, err := s.Get(ctx, attendeeID, eventID)
		require.ErrorIs(t, err, sentinel.ErrNotFound)

		require.NoError(t, s.Apply(ctx, nil, entered, []models.LogEntry{enterEntry}))

		got, err := s.Get(ctx, attendeeID, eventID)
		require.NoError(t, err)
		assert.Equal(t, entered, got)
		assert.Equal(t, 1, s.LogLen())
	})

	t.Run("nil expectation conflicts when a record exists", func(t *testing.T) {
		s := NewInMemoryStore()
		require.NoError(t, s.Apply(ctx, nil, entered, nil))

		err := s.Apply(ctx, nil, entered, []models.LogEntry{enterEntry})
		assert.ErrorIs(t, err, sentinel.ErrConflict)
		assert.Zero(t, s.LogLen())
	})

	t.Run("stale expectation conflicts and writes nothing", func(t *testing.T) {
		s := NewInMemoryStore()
		require.NoError(t, s.Apply(ctx, nil, entered, nil))

		stale := entered
		stale.CurrentZone = "hall-b"
		next := entered
		next.Status = models.StatusOutside
		next.CurrentZone = ""

		err := s.Apply(ctx, &stale, next, []models.LogEntry{enterEntry})
		assert.ErrorIs(t, err, sentinel.ErrConflict)

		got, err := s.Get(ctx, attendeeID, eventID)
		require.NoError(t, err)
		assert.Equal(t, entered, got)
		assert.Zero(t, s.LogLen())
	})

	t.Run("matching expectation commits record and log together", func(t *testing.T) {
		s := NewInMemoryStore()
		require.NoError(t, s.Apply(ctx, nil, entered, []models.LogEntry{enterEntry}))

		expected := entered
		exited := entered
		exited.Status = models.StatusOutside
		exited.CurrentZone = ""
		exited.TotalMinutes = 30
		exitEntry := models.LogEntry{
			AttendeeID:        attendeeID,
			ZoneID:            "hall-a",
			Type:              models.TransitionExit,
			Timestamp:         now.Add(30 * time.Minute),
			Method:            models.MethodKiosk,
			RecognizedMinutes: 30,
		}

		require.NoError(t, s.Apply(ctx, &expected, exited, []models.LogEntry{exitEntry}))
		assert.Equal(t, 2, s.LogLen())

		entries, err := s.ListLog(ctx, attendeeID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, models.TransitionExit, entries[1].Type)
	})

	t.Run("concurrent appliers commit exactly once", func(t *testing.T) {
		s := NewInMemoryStore()
		require.NoError(t, s.Apply(ctx, nil, entered, nil))

		const racers = 16
		var wg sync.WaitGroup
		var mu sync.Mutex
		committed := 0

		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				expected := entered
				next := entered
				next.Status = models.StatusOutside
				next.CurrentZone = ""
				next.TotalMinutes = 5
				if s.Apply(ctx, &expected, next, []models.LogEntry{enterEntry}) == nil {
					mu.Lock()
					committed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, committed)
		assert.Equal(t, 1, s.LogLen())
	})
}
