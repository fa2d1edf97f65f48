package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
}

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	// Only pending moves.
	assert.True(t, StatusPending.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusPending.CanTransitionTo(StatusFailed))
	assert.True(t, StatusPending.CanTransitionTo(StatusExpired))

	// A failed event after completion must not revert state.
	assert.False(t, StatusCompleted.CanTransitionTo(StatusFailed))
	assert.False(t, StatusFailed.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusExpired.CanTransitionTo(StatusCompleted))

	// Pending to pending is not a transition.
	assert.False(t, StatusPending.CanTransitionTo(StatusPending))
}

func TestChargeEvent_Validate(t *testing.T) {
	valid := func() ChargeEvent {
		return ChargeEvent{
			ID:        "wh-1",
			Type:      "charge:confirmed",
			CreatedAt: "2026-03-01T10:00:00Z",
			Data: ChargeEventData{
				ID:       "charge-1",
				Code:     "ABCD1234",
				Metadata: map[string]string{},
			},
		}
	}

	e := valid()
	_, ok := e.Validate()
	assert.True(t, ok)

	cases := []struct {
		field  string
		mutate func(*ChargeEvent)
	}{
		{"id", func(e *ChargeEvent) { e.ID = "" }},
		{"type", func(e *ChargeEvent) { e.Type = "" }},
		{"created_at", func(e *ChargeEvent) { e.CreatedAt = "" }},
		{"data.id", func(e *ChargeEvent) { e.Data.ID = "" }},
		{"data.code", func(e *ChargeEvent) { e.Data.Code = "" }},
		{"data.metadata", func(e *ChargeEvent) { e.Data.Metadata = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			e := valid()
			tc.mutate(&e)
			field, ok := e.Validate()
			assert.False(t, ok)
			assert.Equal(t, tc.field, field)
		})
	}
}

func TestChargeEvent_OccurredAt(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	e := ChargeEvent{CreatedAt: "2026-03-01T10:00:00Z"}
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), e.OccurredAt(now))

	// Unparsable timestamps fall back to processing time.
	e = ChargeEvent{CreatedAt: "yesterday"}
	assert.Equal(t, now, e.OccurredAt(now))
}

func TestChargeEvent_UnmarshalWire(t *testing.T) {
	raw := []byte(`{
		"id": "wh-1",
		"type": "charge:confirmed",
		"created_at": "2026-03-01T10:00:00Z",
		"data": {"id": "charge-1", "code": "ABCD1234", "metadata": {"email": "buyer@example.com"}}
	}`)

	var e ChargeEvent
	require.NoError(t, json.Unmarshal(raw, &e))

	_, ok := e.Validate()
	assert.True(t, ok)
	assert.Equal(t, EventChargeConfirmed, e.Type)
	assert.Equal(t, "buyer@example.com", e.Data.Metadata["email"])
}
