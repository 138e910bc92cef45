package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var ErrBrokerClosed = errors.New("broker closed")

// ChannelPublisher publishes typed messages on a single broker channel.
type ChannelPublisher struct {
	broker  Broker
	channel string
}

func NewChannelPublisher(broker Broker, channel string) *ChannelPublisher {
	return &ChannelPublisher{broker: broker, channel: channel}
}

func (p *ChannelPublisher) Channel() string { return p.channel }

func (p *ChannelPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	if err := p.broker.Publish(ctx, p.channel, Message{Type: eventType, Payload: payload}); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

// Subscribe decodes every message on the channel and hands it to handler
// until ctx is done. Messages that fail to decode are skipped.
func (p *ChannelPublisher) Subscribe(ctx context.Context, handler func(eventType string, payload json.RawMessage)) error {
	msgChan, err := p.broker.Subscribe(ctx, p.channel)
	if err != nil {
		return err
	}

	go func() {
		for raw := range msgChan {
			msg, err := Decode(raw)
			if err != nil {
				continue
			}
			handler(msg.Type, msg.Payload)
		}
	}()

	return nil
}

// LocalBroker fans messages out to subscribers in this process. Used when no
// Redis URL is configured, so a single replica still streams its own events.
type LocalBroker struct {
	mu     sync.Mutex
	subs   map[string]map[chan []byte]struct{}
	closed bool
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[string]map[chan []byte]struct{})}
}

// Publish never blocks; a subscriber whose buffer is full misses the message.
func (b *LocalBroker) Publish(_ context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBrokerClosed
	}
	for ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

func (b *LocalBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBrokerClosed
	}

	ch := make(chan []byte, 100)
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[chan []byte]struct{})
	}
	b.subs[channel][ch] = struct{}{}

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[channel][ch]; ok {
			delete(b.subs[channel], ch)
			close(ch)
		}
	}()
	return ch, nil
}

func (b *LocalBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for channel, subs := range b.subs {
		for ch := range subs {
			close(ch)
		}
		delete(b.subs, channel)
	}
	return nil
}
