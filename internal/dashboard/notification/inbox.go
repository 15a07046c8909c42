package notification

import (
	"context"
	"errors"
	"log"
	"net/url"
	"time"

	"github.com/louisbranch/royaltydesk/internal/collection"
	"github.com/louisbranch/royaltydesk/internal/collection/query"
	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
)

// Scope names the notification collection in stores and snapshots.
const Scope = "notifications"

// Inbox owns the notification store of one session together with the
// drawer's selection and its optimistic mark-as-read.
type Inbox struct {
	gateway   Gateway
	store     *collection.Store[Notification]
	selection *collection.Selection[Notification]
	mutator   *collection.Mutator[Notification]
	now       func() time.Time
}

// NewInbox builds an empty inbox over gateway. A nil gateway fails closed.
func NewInbox(gateway Gateway) *Inbox {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	store := collection.NewStore(Scope, func(ctx context.Context, q url.Values) ([]Notification, error) {
		return gateway.ListNotifications(ctx, q)
	})
	return &Inbox{
		gateway:   gateway,
		store:     store,
		selection: collection.NewSelection(store),
		mutator:   collection.NewMutator(store),
		now:       time.Now,
	}
}

// Store exposes the backing store for snapshots and teardown.
func (i *Inbox) Store() *collection.Store[Notification] {
	return i.store
}

// Refresh reloads every notification.
func (i *Inbox) Refresh(ctx context.Context) error {
	return i.store.Load(ctx, nil)
}

// View returns notifications matching an AIP-160 filter in order_by order.
func (i *Inbox) View(filter string, orderBy string) ([]Notification, error) {
	return query.Apply(i.store, Schema, filter, orderBy)
}

// Groups partitions the inbox into today, yesterday and older relative to now.
func (i *Inbox) Groups(now time.Time) collection.Recency {
	return collection.GroupByRecency(i.store.Snapshot(), Notification.Created, now)
}

// Unread counts unread notifications.
func (i *Inbox) Unread() int {
	count := 0
	for _, n := range i.store.Snapshot() {
		if !n.Read() {
			count++
		}
	}
	return count
}

// Current returns the notification open in the drawer, if it still exists.
func (i *Inbox) Current() (Notification, bool) {
	return i.selection.Current()
}

// Open selects id and marks it read. The selection sticks even if marking
// fails, so the drawer keeps showing the item.
func (i *Inbox) Open(ctx context.Context, id collection.ID) (Notification, error) {
	i.selection.Select(id)
	return i.MarkAsRead(ctx, id)
}

// Close clears the drawer selection.
func (i *Inbox) Close() {
	i.selection.Clear()
}

// MarkAsRead marks id read optimistically. An already read notification is
// returned as is without a remote call.
func (i *Inbox) MarkAsRead(ctx context.Context, id collection.ID) (Notification, error) {
	current, ok := i.store.Get(id)
	if !ok {
		return Notification{}, apperrors.E(apperrors.KindNotFound, "notification not found")
	}
	if current.Read() {
		return current, nil
	}
	return i.mutator.Mutate(ctx, id, markRead{at: i.now().UTC()}, func(ctx context.Context) (Notification, error) {
		return i.gateway.MarkRead(ctx, id)
	})
}

// MarkAllAsRead marks every unread notification read, one request each.
// Items with a mutation in flight are skipped. It returns how many were
// marked and the first failure, after attempting them all.
func (i *Inbox) MarkAllAsRead(ctx context.Context) (int, error) {
	var (
		marked   int
		firstErr error
	)
	for _, n := range i.store.Snapshot() {
		if n.Read() {
			continue
		}
		if _, err := i.MarkAsRead(ctx, n.ID); err != nil {
			if errors.Is(err, apperrors.ErrBusy) {
				continue
			}
			log.Printf("mark notification %d read: %v", n.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		marked++
	}
	return marked, firstErr
}
