// Package asset implements the album grid: a faceted, sortable catalogue of
// investable music assets.
package asset

import (
	"cmp"
	"sync"
	"time"

	"github.com/louisbranch/royaltydesk/internal/collection"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Asset is one listed release.
type Asset struct {
	ID     collection.ID `json:"id"`
	Title  string        `json:"title"`
	Artist string        `json:"artist"`
	Type   string        `json:"type"`
	Genre  string        `json:"genre"`
	Status string        `json:"status"`
	// RoyaltyShare is the percentage of royalties offered, 0 to 100.
	RoyaltyShare float64   `json:"royalty_share"`
	PriceCents   int64     `json:"price_cents"`
	ReleasedAt   time.Time `json:"released_at"`
}

// EntityID implements collection.Entity.
func (a Asset) EntityID() collection.ID { return a.ID }

// Release types.
const (
	TypeSingle = "single"
	TypeEP     = "ep"
	TypeAlbum  = "album"
)

// Listing statuses.
const (
	StatusAvailable = "available"
	StatusSoldOut   = "sold_out"
	StatusUpcoming  = "upcoming"
)

// ShareBuckets are the royalty share ranges offered as grid filters.
var ShareBuckets = []collection.Bucket{
	{Label: "0-10", Min: 0, Max: 10},
	{Label: "10-20", Min: 10, Max: 20},
	{Label: "20-30", Min: 20, Max: 30},
	collection.OpenBucket("30+", 30),
}

// NewSchema declares the grid's facets and sort orders. Titles sort with the
// collation rules of tag.
func NewSchema(tag language.Tag) *collection.Schema[Asset] {
	titles := newTitleCollator(tag)
	return collection.MustSchema(
		[]collection.Facet[Asset]{
			{Name: "status", Kind: collection.FacetSet, Value: func(a Asset) string { return a.Status }},
			{Name: "type", Kind: collection.FacetSet, Value: func(a Asset) string { return a.Type }},
			{Name: "genre", Kind: collection.FacetSet, Value: func(a Asset) string { return a.Genre }},
			{
				Name:    "royalty_share",
				Kind:    collection.FacetRange,
				Number:  func(a Asset) (float64, bool) { return a.RoyaltyShare, a.RoyaltyShare >= 0 },
				Buckets: ShareBuckets,
			},
		},
		[]collection.SortKey[Asset]{
			{Name: "price", Compare: func(a, b Asset) int { return cmp.Compare(a.PriceCents, b.PriceCents) }},
			{Name: "royalty_share", Compare: func(a, b Asset) int { return cmp.Compare(a.RoyaltyShare, b.RoyaltyShare) }},
			{Name: "released_at", Compare: func(a, b Asset) int { return a.ReleasedAt.Compare(b.ReleasedAt) }},
			{Name: "title", Compare: func(a, b Asset) int { return titles.compare(a.Title, b.Title) }},
		},
	)
}

// titleCollator serializes access to a collate.Collator, which keeps
// internal buffers and is not safe for concurrent use.
type titleCollator struct {
	mu       sync.Mutex
	collator *collate.Collator
}

func newTitleCollator(tag language.Tag) *titleCollator {
	return &titleCollator{collator: collate.New(tag, collate.IgnoreCase, collate.IgnoreDiacritics, collate.Numeric)}
}

func (c *titleCollator) compare(a, b string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collator.CompareString(a, b)
}
