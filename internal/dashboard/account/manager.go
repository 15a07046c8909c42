package account

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/louisbranch/royaltydesk/internal/collection"
	"github.com/louisbranch/royaltydesk/internal/collection/query"
	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
)

// Scope names the user collection in stores and snapshots.
const Scope = "users"

// Manager is the admin user manager of one session.
type Manager struct {
	gateway   Gateway
	store     *collection.Store[User]
	selection *collection.Selection[User]
	mutator   *collection.Mutator[User]
}

// NewManager builds an empty manager over gateway.
func NewManager(gateway Gateway) *Manager {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	store := collection.NewStore(Scope, func(ctx context.Context, q url.Values) ([]User, error) {
		return gateway.ListUsers(ctx, q)
	})
	return &Manager{
		gateway:   gateway,
		store:     store,
		selection: collection.NewSelection(store),
		mutator:   collection.NewMutator(store),
	}
}

// Store exposes the backing store.
func (m *Manager) Store() *collection.Store[User] {
	return m.store
}

// Refresh reloads the user list.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.store.Load(ctx, nil)
}

// View returns users matching an AIP-160 filter in order_by order.
func (m *Manager) View(filter string, orderBy string) ([]User, error) {
	return query.Apply(m.store, Schema, filter, orderBy)
}

// Select opens the edit modal for id.
func (m *Manager) Select(id collection.ID) {
	m.selection.Select(id)
}

// Current returns the user in the edit modal. It reflects every confirmed or
// optimistic change without a reload.
func (m *Manager) Current() (User, bool) {
	return m.selection.Current()
}

// Apply performs change on user id optimistically.
func (m *Manager) Apply(ctx context.Context, id collection.ID, change Change) (User, error) {
	if change == nil {
		return User{}, apperrors.E(apperrors.KindValidation, "change is required")
	}
	return m.mutator.Mutate(ctx, id, change, func(ctx context.Context) (User, error) {
		return change.send(ctx, m.gateway, id)
	})
}

// UpdateStatus sets the account status of id.
func (m *Manager) UpdateStatus(ctx context.Context, id collection.ID, status string) (User, error) {
	return m.Apply(ctx, id, SetStatus{Status: status})
}

// Credit adds amountCents to the balance of id.
func (m *Manager) Credit(ctx context.Context, id collection.ID, amountCents int64) (User, error) {
	return m.Apply(ctx, id, Credit{AmountCents: amountCents})
}

// Debit removes amountCents from the balance of id.
func (m *Manager) Debit(ctx context.Context, id collection.ID, amountCents int64) (User, error) {
	return m.Apply(ctx, id, Debit{AmountCents: amountCents})
}

// Delete removes id on the server and then locally. Deletion is not
// optimistic: the user stays listed until the server confirms.
func (m *Manager) Delete(ctx context.Context, id collection.ID) error {
	if _, ok := m.store.Get(id); !ok {
		return apperrors.E(apperrors.KindNotFound, fmt.Sprintf("user %d not found", id))
	}
	if m.mutator.Pending(id) {
		return apperrors.E(apperrors.KindBusy, fmt.Sprintf("user %d has a change in flight", id))
	}
	if err := m.gateway.DeleteUser(ctx, id); err != nil {
		return apperrors.FromTransport(err)
	}
	if err := m.store.Remove(id); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return nil
}
