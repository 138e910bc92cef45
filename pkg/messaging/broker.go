// Package messaging carries console events (notification changes) between
// API replicas so every replica can stream them to its SSE clients.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
)

// Broker moves raw JSON payloads over named channels. Redis pub/sub backs it
// across replicas; LocalBroker backs it inside one process.
type Broker interface {
	// Publish marshals message to JSON and sends it on channel.
	Publish(ctx context.Context, channel string, message interface{}) error
	// Subscribe streams payloads until ctx is done or the broker closes.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Publisher is what services depend on to announce a change.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// Message is the envelope every console event travels in, e.g.
// {"type":"notification.read","payload":{...}}.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Received is a Message read off a channel with its payload left encoded.
type Received struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode unwraps a raw channel payload. An envelope without a type is
// rejected since no handler could route it.
func Decode(raw []byte) (Received, error) {
	var msg Received
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Received{}, fmt.Errorf("decode console event: %w", err)
	}
	if msg.Type == "" {
		return Received{}, fmt.Errorf("decode console event: missing type")
	}
	return msg, nil
}
