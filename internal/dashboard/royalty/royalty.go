// Package royalty implements the royalty payout ledger.
package royalty

import (
	"cmp"
	"context"
	"fmt"
	"net/url"

	"github.com/louisbranch/royaltydesk/internal/collection"
	"github.com/louisbranch/royaltydesk/internal/collection/query"
	"github.com/louisbranch/royaltydesk/internal/dashboard/asset"
	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
)

// Scope names the royalty collection in stores and snapshots.
const Scope = "royalties"

// Record is one payout owed for an asset over a period. Amounts are computed
// by the server; the ledger only tracks whether they were paid out.
type Record struct {
	ID          collection.ID `json:"id"`
	AssetID     collection.ID `json:"asset_id"`
	Period      string        `json:"period"`
	AmountCents int64         `json:"amount_cents"`
	Status      string        `json:"status"`
}

// EntityID implements collection.Entity.
func (r Record) EntityID() collection.ID { return r.ID }

// Payout statuses.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
)

// Schema declares the ledger's facets and sort orders. Periods are ISO
// formatted ("2026-03"), so lexical order is chronological.
var Schema = collection.MustSchema(
	[]collection.Facet[Record]{
		{Name: "status", Kind: collection.FacetSet, Value: func(r Record) string { return r.Status }},
		{Name: "period", Kind: collection.FacetSet, Value: func(r Record) string { return r.Period }},
	},
	[]collection.SortKey[Record]{
		{Name: "amount", Compare: func(a, b Record) int { return cmp.Compare(a.AmountCents, b.AmountCents) }},
		{Name: "period", Compare: func(a, b Record) int { return cmp.Compare(a.Period, b.Period) }},
	},
)

type setStatus string

func (s setStatus) Validate() error {
	switch string(s) {
	case StatusPending, StatusProcessed:
		return nil
	default:
		return apperrors.E(apperrors.KindValidation, fmt.Sprintf("unknown payout status %q", string(s)))
	}
}

func (s setStatus) Apply(r Record) Record {
	r.Status = string(s)
	return r
}

// Ledger is the royalty payout list of one session.
type Ledger struct {
	gateway Gateway
	store   *collection.Store[Record]
	mutator *collection.Mutator[Record]
}

// NewLedger builds an empty ledger over gateway.
func NewLedger(gateway Gateway) *Ledger {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	store := collection.NewStore(Scope, func(ctx context.Context, q url.Values) ([]Record, error) {
		return gateway.ListRoyalties(ctx, q)
	})
	return &Ledger{
		gateway: gateway,
		store:   store,
		mutator: collection.NewMutator(store),
	}
}

// Store exposes the backing store.
func (l *Ledger) Store() *collection.Store[Record] {
	return l.store
}

// Refresh reloads the ledger.
func (l *Ledger) Refresh(ctx context.Context) error {
	return l.store.Load(ctx, nil)
}

// View returns records matching an AIP-160 filter in order_by order.
func (l *Ledger) View(filter string, orderBy string) ([]Record, error) {
	return query.Apply(l.store, Schema, filter, orderBy)
}

// MarkProcessed flags a pending payout processed. A record that is already
// processed is returned unchanged.
func (l *Ledger) MarkProcessed(ctx context.Context, id collection.ID) (Record, error) {
	current, ok := l.store.Get(id)
	if !ok {
		return Record{}, apperrors.E(apperrors.KindNotFound, fmt.Sprintf("royalty %d not found", id))
	}
	if current.Status == StatusProcessed {
		return current, nil
	}
	return l.mutator.Mutate(ctx, id, setStatus(StatusProcessed), func(ctx context.Context) (Record, error) {
		return l.gateway.MarkProcessed(ctx, id)
	})
}

// Asset resolves the asset a record pays out for through the asset store.
func (l *Ledger) Asset(id collection.ID, assets *collection.Store[asset.Asset]) (asset.Asset, bool) {
	record, ok := l.store.Get(id)
	if !ok || assets == nil {
		return asset.Asset{}, false
	}
	return assets.Get(record.AssetID)
}

// Totals sums payouts by status.
func (l *Ledger) Totals() map[string]int64 {
	totals := make(map[string]int64, 2)
	for _, r := range l.store.Snapshot() {
		totals[r.Status] += r.AmountCents
	}
	return totals
}
