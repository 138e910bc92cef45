package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBroker struct {
	mu        sync.Mutex
	published []interface{}
	channel   string
	feed      chan []byte
	err       error
}

func (b *memoryBroker) Publish(_ context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.channel = channel
	b.published = append(b.published, message)
	return b.err
}

func (b *memoryBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return b.feed, nil
}

func (b *memoryBroker) Close() error { return nil }

func TestChannelPublisher_Publish(t *testing.T) {
	broker := &memoryBroker{}
	pub := NewChannelPublisher(broker, "console.notifications")

	require.NoError(t, pub.Publish(context.Background(), "notification.read", map[string]int{"id": 1}))
	assert.Equal(t, "console.notifications", broker.channel)
	require.Len(t, broker.published, 1)
	assert.Equal(t, Message{Type: "notification.read", Payload: map[string]int{"id": 1}}, broker.published[0])

	broker.err = errors.New("down")
	assert.ErrorContains(t, pub.Publish(context.Background(), "notification.read", nil), "down")
}

func TestChannelPublisher_Subscribe(t *testing.T) {
	broker := &memoryBroker{feed: make(chan []byte, 2)}
	pub := NewChannelPublisher(broker, "console.notifications")

	got := make(chan string, 2)
	require.NoError(t, pub.Subscribe(context.Background(), func(eventType string, payload json.RawMessage) {
		got <- eventType + ":" + string(payload)
	}))

	broker.feed <- []byte("garbage")
	broker.feed <- []byte(`{"type":"notification.deleted","payload":{"id":3}}`)
	close(broker.feed)

	select {
	case msg := <-got:
		assert.Equal(t, `notification.deleted:{"id":3}`, msg)
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}
}

func TestLocalBroker_FanOut(t *testing.T) {
	broker := NewLocalBroker()
	ctx, cancel := context.WithCancel(context.Background())

	a, err := broker.Subscribe(ctx, "console.notifications")
	require.NoError(t, err)
	b, err := broker.Subscribe(context.Background(), "console.notifications")
	require.NoError(t, err)
	other, err := broker.Subscribe(context.Background(), "other")
	require.NoError(t, err)

	require.NoError(t, broker.Publish(context.Background(), "console.notifications", Message{Type: "notification.read"}))
	assert.JSONEq(t, `{"type":"notification.read","payload":null}`, string(<-a))
	assert.JSONEq(t, `{"type":"notification.read","payload":null}`, string(<-b))
	assert.Empty(t, other)

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, open := <-a:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, broker.Close())
	_, open := <-b
	assert.False(t, open)
	assert.ErrorIs(t, broker.Publish(context.Background(), "x", nil), ErrBrokerClosed)
}

func TestLocalBroker_WithChannelPublisher(t *testing.T) {
	broker := NewLocalBroker()
	defer broker.Close()
	pub := NewChannelPublisher(broker, "console.notifications")

	got := make(chan string, 1)
	require.NoError(t, pub.Subscribe(context.Background(), func(eventType string, _ json.RawMessage) {
		got <- eventType
	}))
	require.NoError(t, pub.Publish(context.Background(), "notification.deleted", map[string]int{"id": 3}))

	select {
	case ev := <-got:
		assert.Equal(t, "notification.deleted", ev)
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}
}

func TestDecode(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"notification.all_read","payload":{"read":4,"unread":0}}`))
	require.NoError(t, err)
	assert.Equal(t, "notification.all_read", msg.Type)
	assert.JSONEq(t, `{"read":4,"unread":0}`, string(msg.Payload))

	_, err = Decode([]byte(`{"payload":{}}`))
	assert.ErrorContains(t, err, "missing type")

	_, err = Decode([]byte("garbage"))
	assert.Error(t, err)
}
