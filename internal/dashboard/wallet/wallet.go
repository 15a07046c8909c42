// Package wallet implements the wallet view: transaction history, balance
// and the deposit/withdrawal wizard.
package wallet

import (
	"cmp"
	"context"
	"net/url"
	"time"

	"github.com/louisbranch/royaltydesk/internal/collection"
	"github.com/louisbranch/royaltydesk/internal/collection/query"
)

// Scope names the transaction collection in stores and snapshots.
const Scope = "wallet"

// Kind is the direction of a transaction.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
)

// Transaction statuses.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

// Transaction is one wallet movement.
type Transaction struct {
	ID          collection.ID `json:"id"`
	Kind        Kind          `json:"kind"`
	AmountCents int64         `json:"amount_cents"`
	Method      string        `json:"method,omitempty"`
	Network     string        `json:"network,omitempty"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// EntityID implements collection.Entity.
func (t Transaction) EntityID() collection.ID { return t.ID }

// Schema declares the wallet history's facets and sort orders.
var Schema = collection.MustSchema(
	[]collection.Facet[Transaction]{
		{Name: "kind", Kind: collection.FacetSet, Value: func(t Transaction) string { return string(t.Kind) }},
		{Name: "status", Kind: collection.FacetSet, Value: func(t Transaction) string { return t.Status }},
		{Name: "method", Kind: collection.FacetSet, Value: func(t Transaction) string {
			if t.Kind == KindWithdrawal {
				return t.Network
			}
			return t.Method
		}},
	},
	[]collection.SortKey[Transaction]{
		{Name: "created_at", Compare: func(a, b Transaction) int { return a.CreatedAt.Compare(b.CreatedAt) }},
		{Name: "amount", Compare: func(a, b Transaction) int { return cmp.Compare(a.AmountCents, b.AmountCents) }},
	},
)

// Wallet is the wallet view of one session.
type Wallet struct {
	gateway Gateway
	store   *collection.Store[Transaction]
}

// New builds an empty wallet over gateway.
func New(gateway Gateway) *Wallet {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	return &Wallet{
		gateway: gateway,
		store: collection.NewStore(Scope, func(ctx context.Context, q url.Values) ([]Transaction, error) {
			return gateway.ListTransactions(ctx, q)
		}),
	}
}

// Store exposes the backing store.
func (w *Wallet) Store() *collection.Store[Transaction] {
	return w.store
}

// Refresh reloads the transaction history.
func (w *Wallet) Refresh(ctx context.Context) error {
	return w.store.Load(ctx, nil)
}

// View returns transactions matching an AIP-160 filter in order_by order.
func (w *Wallet) View(filter string, orderBy string) ([]Transaction, error) {
	return query.Apply(w.store, Schema, filter, orderBy)
}

// Balance is processed deposits minus processed withdrawals. Pending and
// failed movements do not count.
func (w *Wallet) Balance() int64 {
	var balance int64
	for _, t := range w.store.Snapshot() {
		if t.Status != StatusProcessed {
			continue
		}
		switch t.Kind {
		case KindDeposit:
			balance += t.AmountCents
		case KindWithdrawal:
			balance -= t.AmountCents
		}
	}
	return balance
}
