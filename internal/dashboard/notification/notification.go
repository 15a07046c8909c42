// Package notification implements the notification drawer: an inbox grouped
// by recency whose items are marked read optimistically.
package notification

import (
	"cmp"
	"strings"
	"time"

	"github.com/louisbranch/royaltydesk/internal/collection"
	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
)

// Notification is one inbox item. CreatedAt is kept as sent by the API so an
// unparsable value stays visible instead of being coerced to a date.
type Notification struct {
	ID        collection.ID `json:"id"`
	Type      string        `json:"type"`
	Title     string        `json:"title"`
	Body      string        `json:"body,omitempty"`
	Source    string        `json:"source"`
	CreatedAt string        `json:"created_at"`
	ReadAt    *time.Time    `json:"read_at,omitempty"`
}

// EntityID implements collection.Entity.
func (n Notification) EntityID() collection.ID { return n.ID }

// Read reports whether the notification has been read.
func (n Notification) Read() bool { return n.ReadAt != nil }

// Created parses CreatedAt. It reports false when the value is missing or not
// RFC 3339.
func (n Notification) Created() (time.Time, bool) {
	raw := strings.TrimSpace(n.CreatedAt)
	if raw == "" {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// State facet values.
const (
	StateRead   = "read"
	StateUnread = "unread"
)

// Schema declares the drawer's facets and sort orders.
var Schema = collection.MustSchema(
	[]collection.Facet[Notification]{
		{Name: "type", Kind: collection.FacetSet, Value: func(n Notification) string { return n.Type }},
		{Name: "source", Kind: collection.FacetSet, Value: func(n Notification) string { return n.Source }},
		{Name: "state", Kind: collection.FacetSet, Value: func(n Notification) string {
			if n.Read() {
				return StateRead
			}
			return StateUnread
		}},
	},
	[]collection.SortKey[Notification]{
		{Name: "created_at", Compare: compareCreated},
		{Name: "title", Compare: func(a, b Notification) int { return cmp.Compare(a.Title, b.Title) }},
	},
)

// compareCreated orders by creation time; items without a usable timestamp
// sort before all dated items.
func compareCreated(a, b Notification) int {
	at, aok := a.Created()
	bt, bok := b.Created()
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	return at.Compare(bt)
}

// markRead sets ReadAt unless it is already set, so applying it twice equals
// applying it once.
type markRead struct {
	at time.Time
}

func (p markRead) Validate() error {
	if p.at.IsZero() {
		return apperrors.E(apperrors.KindValidation, "read time is required")
	}
	return nil
}

func (p markRead) Apply(n Notification) Notification {
	if n.ReadAt != nil {
		return n
	}
	at := p.at
	n.ReadAt = &at
	return n
}
