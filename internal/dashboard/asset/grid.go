package asset

import (
	"context"
	"net/url"

	"github.com/louisbranch/royaltydesk/internal/collection"
	"github.com/louisbranch/royaltydesk/internal/collection/query"
	"golang.org/x/text/language"
)

// Scope names the asset collection in stores and snapshots.
const Scope = "assets"

// Grid is the album grid of one session.
type Grid struct {
	store     *collection.Store[Asset]
	selection *collection.Selection[Asset]
	schema    *collection.Schema[Asset]
}

// NewGrid builds an empty grid over gateway. Titles sort for tag.
func NewGrid(gateway Gateway, tag language.Tag) *Grid {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	store := collection.NewStore(Scope, func(ctx context.Context, q url.Values) ([]Asset, error) {
		return gateway.ListAssets(ctx, q)
	})
	return &Grid{
		store:     store,
		selection: collection.NewSelection(store),
		schema:    NewSchema(tag),
	}
}

// Store exposes the backing store.
func (g *Grid) Store() *collection.Store[Asset] {
	return g.store
}

// Schema returns the grid's view schema.
func (g *Grid) Schema() *collection.Schema[Asset] {
	return g.schema
}

// Refresh reloads the catalogue.
func (g *Grid) Refresh(ctx context.Context) error {
	return g.store.Load(ctx, nil)
}

// View returns assets matching an AIP-160 filter in order_by order, such as
// `genre = "pop" AND royalty_share = "10-20"` ordered by "price desc".
func (g *Grid) View(filter string, orderBy string) ([]Asset, error) {
	return query.Apply(g.store, g.schema, filter, orderBy)
}

// Select opens the detail panel for id.
func (g *Grid) Select(id collection.ID) {
	g.selection.Select(id)
}

// Current returns the asset in the detail panel, if it still exists.
func (g *Grid) Current() (Asset, bool) {
	return g.selection.Current()
}
