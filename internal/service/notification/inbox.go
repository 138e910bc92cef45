package notification

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/travel-console/internal/model"
	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
)

// ErrNotificationNotFound is returned for ids outside the working set.
var ErrNotificationNotFound = apperrors.NewNotFound("notification", nil)

// Store is the remote, authoritative side of one operator's feed.
type Store interface {
	Fetch(ctx context.Context) (*model.NotificationFeed, error)
	MarkRead(ctx context.Context, id int64) error
	MarkUnread(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id int64) error
}

// ReconcilePolicy decides what happens to a local change the store refused.
type ReconcilePolicy string

const (
	// PolicyOptimistic keeps the local change and logs the failure.
	PolicyOptimistic ReconcilePolicy = "optimistic"
	// PolicyRevert restores the previous state and reports a recoverable error.
	PolicyRevert ReconcilePolicy = "revert"
)

func ParsePolicy(s string) (ReconcilePolicy, error) {
	switch p := ReconcilePolicy(s); p {
	case PolicyOptimistic, PolicyRevert:
		return p, nil
	case "":
		return PolicyOptimistic, nil
	default:
		return "", fmt.Errorf("unknown reconcile policy %q", s)
	}
}

type Options struct {
	Policy        ReconcilePolicy
	RetryAttempts int
	RetryDelay    time.Duration
	// IdleTTL is how long Service keeps an untouched inbox; zero means 30m.
	IdleTTL time.Duration
	Logger  zerolog.Logger
	// OnRetry is called before every repeated store call.
	OnRetry func(op string)
}

// Inbox is the working set of one operator's notifications. Unread items
// come first, then read items; counts move in lock-step with every change.
type Inbox struct {
	mu     sync.Mutex
	store  Store
	opts   Options
	items  []model.Notification
	counts model.NotificationCounts
	loaded bool
	// gen is bumped by every load and local mutation. A fetch that started
	// under an older generation is discarded.
	gen uint64
	// loads counts applied fetches.
	loads uint64
}

func NewInbox(store Store, opts Options) *Inbox {
	if opts.Policy == "" {
		opts.Policy = PolicyOptimistic
	}
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = 1
	}
	return &Inbox{store: store, opts: opts}
}

// Load replaces the working set with the store's current feed. Bucket
// totals win over the number of items received when they are set.
func (b *Inbox) Load(ctx context.Context) error {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.mu.Unlock()

	feed, err := b.store.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch notifications: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.gen {
		b.opts.Logger.Debug().Uint64("generation", gen).Msg("Discarding stale notification load")
		return nil
	}

	items := make([]model.Notification, 0, len(feed.Unread.Items)+len(feed.Read.Items))
	for _, n := range feed.Unread.Items {
		n.IsRead = false
		items = append(items, n)
	}
	for _, n := range feed.Read.Items {
		n.IsRead = true
		items = append(items, n)
	}

	b.items = items
	b.loads++
	b.counts = model.NotificationCounts{
		Unread: bucketCount(feed.Unread),
		Read:   bucketCount(feed.Read),
	}
	b.loaded = true
	return nil
}

func bucketCount(bucket model.NotificationBucket) int {
	if bucket.Total > 0 {
		return bucket.Total
	}
	return len(bucket.Items)
}

func (b *Inbox) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

func (b *Inbox) Counts() model.NotificationCounts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

func (b *Inbox) Items() []model.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.items)
}

// Filter projects the working set onto a tab. It never mutates state.
func (b *Inbox) Filter(tab model.NotificationTab) []model.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]model.Notification, 0, len(b.items))
	for _, n := range b.items {
		switch tab {
		case model.NotificationTabUnread:
			if n.IsRead {
				continue
			}
		case model.NotificationTabRead:
			if !n.IsRead {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// MarkRead moves one notification from unread to read. It reports false
// when the item was already read.
func (b *Inbox) MarkRead(ctx context.Context, id int64) (bool, error) {
	return b.setRead(ctx, id, true)
}

// MarkUnread moves one notification from read to unread.
func (b *Inbox) MarkUnread(ctx context.Context, id int64) (bool, error) {
	return b.setRead(ctx, id, false)
}

func (b *Inbox) setRead(ctx context.Context, id int64, read bool) (bool, error) {
	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return false, ErrNotificationNotFound
	}
	if b.items[i].IsRead == read {
		b.mu.Unlock()
		return false, nil
	}

	ch := b.begin(func() {
		// Flip back only if nothing flipped the item since.
		if j := b.indexOf(id); j >= 0 && b.items[j].IsRead == read {
			b.flip(j, !read)
		}
	})
	b.flip(i, read)
	b.mu.Unlock()

	op, call := "mark_read", b.store.MarkRead
	if !read {
		op, call = "mark_unread", b.store.MarkUnread
	}
	err := b.reconcile(ctx, op, ch, func(ctx context.Context) error { return call(ctx, id) })
	return err == nil, err
}

// flip sets item i's read flag and moves one count between buckets.
func (b *Inbox) flip(i int, read bool) {
	b.items[i].IsRead = read
	if read {
		b.counts.Unread = dec(b.counts.Unread)
		b.counts.Read++
	} else {
		b.counts.Read = dec(b.counts.Read)
		b.counts.Unread++
	}
}

// Delete removes a notification and decrements the bucket it was in.
func (b *Inbox) Delete(ctx context.Context, id int64) (bool, error) {
	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return false, ErrNotificationNotFound
	}

	// The bucket to decrement is decided before the store is called.
	removed := b.items[i]
	ch := b.begin(func() {
		if b.indexOf(id) >= 0 {
			return
		}
		b.items = slices.Insert(b.items, min(i, len(b.items)), removed)
		if removed.IsRead {
			b.counts.Read++
		} else {
			b.counts.Unread++
		}
	})

	b.items = slices.Delete(b.items, i, i+1)
	if removed.IsRead {
		b.counts.Read = dec(b.counts.Read)
	} else {
		b.counts.Unread = dec(b.counts.Unread)
	}
	b.mu.Unlock()

	err := b.reconcile(ctx, "delete", ch, func(ctx context.Context) error { return b.store.Delete(ctx, id) })
	return err == nil, err
}

// MarkAllRead marks every unread item read: counts become {read+unread, 0}.
func (b *Inbox) MarkAllRead(ctx context.Context) (bool, error) {
	b.mu.Lock()
	if b.counts.Unread == 0 && !slices.ContainsFunc(b.items, func(n model.Notification) bool { return !n.IsRead }) {
		b.mu.Unlock()
		return false, nil
	}

	var unread []int64
	for _, n := range b.items {
		if !n.IsRead {
			unread = append(unread, n.ID)
		}
	}
	ch := b.begin(func() {
		for _, id := range unread {
			if j := b.indexOf(id); j >= 0 && b.items[j].IsRead {
				b.flip(j, false)
			}
		}
	})

	for i := range b.items {
		b.items[i].IsRead = true
	}
	b.counts = model.NotificationCounts{Read: b.counts.Read + b.counts.Unread, Unread: 0}
	b.mu.Unlock()

	err := b.reconcile(ctx, "mark_all_read", ch, b.store.MarkAllRead)
	return err == nil, err
}

// change is a local mutation awaiting the store's answer.
type change struct {
	gen    uint64
	loads  uint64
	items  []model.Notification
	counts model.NotificationCounts
	// undo reverses just this change when others have happened since.
	undo func()
}

// begin must be called with mu held, before the change is applied. It
// bumps the generation so in-flight loads cannot overwrite the change.
func (b *Inbox) begin(undo func()) change {
	b.gen++
	return change{
		gen:    b.gen,
		loads:  b.loads,
		items:  slices.Clone(b.items),
		counts: b.counts,
		undo:   undo,
	}
}

// reconcile pushes a local change to the store without holding mu,
// retrying transient failures, and applies the policy when the store
// keeps refusing.
func (b *Inbox) reconcile(ctx context.Context, op string, ch change, call func(context.Context) error) error {
	err := b.withRetry(ctx, op, call)
	if err == nil {
		return nil
	}

	logger := b.opts.Logger.With().Str("operation", op).Str("policy", string(b.opts.Policy)).Logger()

	if b.opts.Policy != PolicyRevert {
		logger.Warn().Err(err).Msg("Notification sync failed, keeping local state")
		return nil
	}

	b.mu.Lock()
	switch {
	case b.loads != ch.loads:
		// A load applied since holds the store's word; keep it.
		logger.Debug().Msg("Notification state reloaded, skipping revert")
	case b.gen == ch.gen:
		b.items = ch.items
		b.counts = ch.counts
	default:
		ch.undo()
	}
	b.mu.Unlock()

	logger.Warn().Err(err).Msg("Notification sync failed, local state reverted")
	return apperrors.Upstream("notification change could not be saved, please retry", err)
}

func (b *Inbox) withRetry(ctx context.Context, op string, call func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < b.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			if b.opts.OnRetry != nil {
				b.opts.OnRetry(op)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.opts.RetryDelay * time.Duration(attempt)):
			}
		}

		if err = call(ctx); err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
	}
	return err
}

// retryable reports whether another attempt may succeed. Errors the
// travel API answered deliberately (4xx) are final.
func retryable(err error) bool {
	appErr, ok := apperrors.As(err)
	return !ok || appErr.Recoverable()
}

func (b *Inbox) indexOf(id int64) int {
	return slices.IndexFunc(b.items, func(n model.Notification) bool { return n.ID == id })
}

func dec(n int) int {
	if n > 0 {
		return n - 1
	}
	return 0
}
