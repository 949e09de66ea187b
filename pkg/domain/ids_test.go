package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatepass/pkg/domain-errors"
)

// TestParseUUID_Invariants validates that IDs must be valid, non-empty,
// non-nil UUIDs at trust boundaries.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseAttendeeID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseAttendeeID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseEventID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		attendeeID, err := ParseAttendeeID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, valid.String(), attendeeID.String())
		assert.False(t, attendeeID.IsNil())
	})
}

func TestIDsMarshalAsStrings(t *testing.T) {
	attendeeID := AttendeeID(uuid.New())

	raw, err := json.Marshal(attendeeID)
	require.NoError(t, err)
	assert.Equal(t, `"`+attendeeID.String()+`"`, string(raw))

	var decoded AttendeeID
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, attendeeID, decoded)
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	var eventID EventID
	err := json.Unmarshal([]byte(`"not-a-uuid"`), &eventID)
	require.Error(t, err)
}
