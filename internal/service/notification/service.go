package notification

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/service/audit"
	"github.com/jwalitptl/travel-console/pkg/messaging"
	"github.com/jwalitptl/travel-console/pkg/metrics"
)

// Event types published after a change was applied.
const (
	EventRead      = "notification.read"
	EventUnread    = "notification.unread"
	EventDeleted   = "notification.deleted"
	EventAllRead   = "notification.all_read"
	EventRefreshed = "notification.refreshed"
)

const defaultIdleTTL = 30 * time.Minute

const (
	resultApplied  = "applied"
	resultNoop     = "noop"
	resultFailed   = "failed"
	resultNotFound = "not_found"
)

// StoreFactory returns the remote store of one operator's feed.
type StoreFactory func(operatorID uuid.UUID) Store

// Feed is the notification panel as the console renders it.
type Feed struct {
	Tab    model.NotificationTab    `json:"tab"`
	Counts model.NotificationCounts `json:"counts"`
	Items  []model.Notification     `json:"items"`
}

// Service keeps one Inbox per operator. An inbox nobody touched for the
// idle TTL is dropped and reloaded on next use.
type Service struct {
	mu        sync.Mutex
	inboxes   *gocache.Cache
	stores    StoreFactory
	opts      Options
	publisher messaging.Publisher
	auditor   audit.Recorder
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewService(stores StoreFactory, opts Options, publisher messaging.Publisher, auditor audit.Recorder, m *metrics.Metrics) *Service {
	idle := opts.IdleTTL
	if idle <= 0 {
		idle = defaultIdleTTL
	}
	s := &Service{
		inboxes:   gocache.New(idle, idle),
		stores:    stores,
		publisher: publisher,
		auditor:   auditor,
		metrics:   m,
		logger:    opts.Logger.With().Str("component", "notifications").Logger(),
	}

	opts.Logger = s.logger
	onRetry := opts.OnRetry
	opts.OnRetry = func(op string) {
		if m != nil {
			m.NotificationRetries.WithLabelValues(op).Inc()
		}
		if onRetry != nil {
			onRetry(op)
		}
	}
	s.opts = opts
	return s
}

// Inbox returns the operator's inbox, loading it on first use.
func (s *Service) Inbox(ctx context.Context, operatorID uuid.UUID) (*Inbox, error) {
	key := operatorID.String()

	s.mu.Lock()
	var inbox *Inbox
	if v, ok := s.inboxes.Get(key); ok {
		inbox = v.(*Inbox)
	} else {
		opts := s.opts
		opts.Logger = s.logger.With().Str("operator_id", key).Logger()
		inbox = NewInbox(s.stores(operatorID), opts)
	}
	// Every access restarts the idle clock.
	s.inboxes.SetDefault(key, inbox)
	s.mu.Unlock()

	if !inbox.Loaded() {
		if err := inbox.Load(ctx); err != nil {
			return nil, err
		}
	}
	return inbox, nil
}

// Feed renders one tab of the operator's panel. refresh reloads from the
// store before projecting.
func (s *Service) Feed(ctx context.Context, operatorID uuid.UUID, tab model.NotificationTab, refresh bool) (*Feed, error) {
	inbox, err := s.Inbox(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	if refresh {
		if err := inbox.Load(ctx); err != nil {
			return nil, err
		}
		s.publish(ctx, operatorID, EventRefreshed, 0, inbox.Counts())
	}

	switch tab {
	case model.NotificationTabUnread, model.NotificationTabRead:
	default:
		tab = model.NotificationTabAll
	}

	return &Feed{
		Tab:    tab,
		Counts: inbox.Counts(),
		Items:  inbox.Filter(tab),
	}, nil
}

func (s *Service) MarkRead(ctx context.Context, operatorID uuid.UUID, id int64) (model.NotificationCounts, error) {
	return s.mutate(ctx, operatorID, "mark_read", EventRead, model.AuditActionMarkRead, id,
		func(inbox *Inbox) (bool, error) { return inbox.MarkRead(ctx, id) })
}

func (s *Service) MarkUnread(ctx context.Context, operatorID uuid.UUID, id int64) (model.NotificationCounts, error) {
	return s.mutate(ctx, operatorID, "mark_unread", EventUnread, model.AuditActionMarkUnread, id,
		func(inbox *Inbox) (bool, error) { return inbox.MarkUnread(ctx, id) })
}

func (s *Service) Delete(ctx context.Context, operatorID uuid.UUID, id int64) (model.NotificationCounts, error) {
	return s.mutate(ctx, operatorID, "delete", EventDeleted, model.AuditActionDelete, id,
		func(inbox *Inbox) (bool, error) { return inbox.Delete(ctx, id) })
}

func (s *Service) MarkAllRead(ctx context.Context, operatorID uuid.UUID) (model.NotificationCounts, error) {
	return s.mutate(ctx, operatorID, "mark_all_read", EventAllRead, model.AuditActionMarkAllRead, 0,
		func(inbox *Inbox) (bool, error) { return inbox.MarkAllRead(ctx) })
}

func (s *Service) mutate(
	ctx context.Context,
	operatorID uuid.UUID,
	op, eventType, auditAction string,
	id int64,
	apply func(*Inbox) (bool, error),
) (model.NotificationCounts, error) {
	inbox, err := s.Inbox(ctx, operatorID)
	if err != nil {
		s.observe(op, resultFailed)
		return model.NotificationCounts{}, err
	}

	applied, err := apply(inbox)
	counts := inbox.Counts()
	switch {
	case errors.Is(err, ErrNotificationNotFound):
		s.observe(op, resultNotFound)
		return counts, err
	case err != nil:
		s.observe(op, resultFailed)
		return counts, err
	case !applied:
		s.observe(op, resultNoop)
		return counts, nil
	}

	s.observe(op, resultApplied)
	s.publish(ctx, operatorID, eventType, id, counts)

	entityID := ""
	if id != 0 {
		entityID = strconv.FormatInt(id, 10)
	}
	if s.auditor != nil {
		s.auditor.Record(ctx, operatorID, auditAction, model.AuditEntityNotification, entityID, &audit.LogOptions{
			Changes: counts,
		})
	}
	return counts, nil
}

func (s *Service) publish(ctx context.Context, operatorID uuid.UUID, eventType string, id int64, counts model.NotificationCounts) {
	if s.publisher == nil {
		return
	}

	event := model.NotificationEvent{
		ID:             uuid.New(),
		OperatorID:     operatorID,
		NotificationID: id,
		Type:           eventType,
		Counts:         counts,
		CreatedAt:      time.Now(),
	}
	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to publish notification event")
	}
}

func (s *Service) observe(op, result string) {
	if s.metrics != nil {
		s.metrics.NotificationOps.WithLabelValues(op, result).Inc()
	}
}
