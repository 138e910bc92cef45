package notification

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/travel-console/internal/model"
)

// Subscriber delivers raw broker messages, see messaging.ChannelPublisher.
type Subscriber interface {
	Subscribe(ctx context.Context, handler func(eventType string, payload json.RawMessage)) error
}

// Hub routes published notification events to the operator's open streams.
type Hub struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]map[chan model.NotificationEvent]struct{}
	logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subs:   make(map[uuid.UUID]map[chan model.NotificationEvent]struct{}),
		logger: logger.With().Str("component", "notification-hub").Logger(),
	}
}

// Run feeds the hub from sub until ctx is done.
func (h *Hub) Run(ctx context.Context, sub Subscriber) error {
	return sub.Subscribe(ctx, h.Dispatch)
}

// Dispatch decodes one event and hands it to every stream of its operator.
// Slow streams drop events rather than stall the broker.
func (h *Hub) Dispatch(eventType string, payload json.RawMessage) {
	if !strings.HasPrefix(eventType, "notification.") {
		return
	}
	var event model.NotificationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Warn().Err(err).Str("event_type", eventType).Msg("Dropping undecodable notification event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[event.OperatorID] {
		select {
		case ch <- event:
		default:
			h.logger.Debug().Str("operator_id", event.OperatorID.String()).Msg("Stream buffer full, event dropped")
		}
	}
}

// Subscribe opens a stream for operatorID. The returned func closes it.
func (h *Hub) Subscribe(operatorID uuid.UUID) (<-chan model.NotificationEvent, func()) {
	ch := make(chan model.NotificationEvent, 16)

	h.mu.Lock()
	if h.subs[operatorID] == nil {
		h.subs[operatorID] = make(map[chan model.NotificationEvent]struct{})
	}
	h.subs[operatorID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[operatorID], ch)
			if len(h.subs[operatorID]) == 0 {
				delete(h.subs, operatorID)
			}
			close(ch)
		})
	}
}

// Streams reports how many streams operatorID has open.
func (h *Hub) Streams(operatorID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[operatorID])
}
