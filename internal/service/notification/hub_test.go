package notification

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/travel-console/internal/model"
)

func encode(t *testing.T, event model.NotificationEvent) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	return raw
}

func TestHub_RoutesByOperator(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	alice, bob := uuid.New(), uuid.New()

	aliceCh, closeAlice := hub.Subscribe(alice)
	defer closeAlice()
	bobCh, closeBob := hub.Subscribe(bob)
	defer closeBob()

	hub.Dispatch(EventRead, encode(t, model.NotificationEvent{
		OperatorID:     alice,
		NotificationID: 7,
		Type:           EventRead,
		Counts:         model.NotificationCounts{Read: 1, Unread: 2},
	}))

	require.Len(t, aliceCh, 1)
	got := <-aliceCh
	assert.Equal(t, int64(7), got.NotificationID)
	assert.Equal(t, 2, got.Counts.Unread)
	assert.Empty(t, bobCh)
}

func TestHub_IgnoresForeignAndBrokenEvents(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	op := uuid.New()
	ch, unsubscribe := hub.Subscribe(op)
	defer unsubscribe()

	hub.Dispatch("approval.decided", encode(t, model.NotificationEvent{OperatorID: op}))
	hub.Dispatch(EventRead, json.RawMessage(`{"operator_id":`))
	assert.Empty(t, ch)
}

func TestHub_UnsubscribeClosesStream(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	op := uuid.New()

	ch, unsubscribe := hub.Subscribe(op)
	assert.Equal(t, 1, hub.Streams(op))

	unsubscribe()
	unsubscribe()
	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, hub.Streams(op))

	// Dispatch after close must not panic.
	hub.Dispatch(EventRead, encode(t, model.NotificationEvent{OperatorID: op}))
}

func TestHub_FullBufferDrops(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	op := uuid.New()
	ch, unsubscribe := hub.Subscribe(op)
	defer unsubscribe()

	for i := 0; i < cap(ch)+5; i++ {
		hub.Dispatch(EventRead, encode(t, model.NotificationEvent{OperatorID: op}))
	}
	assert.Len(t, ch, cap(ch))
}
