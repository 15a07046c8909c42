// Package account implements the admin user manager: a filterable user list
// whose status and balance are edited optimistically.
package account

import (
	"cmp"
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/royaltydesk/internal/collection"
	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
)

// User is one platform account as seen by an administrator.
type User struct {
	ID           collection.ID `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	Role         string        `json:"role"`
	Status       string        `json:"status"`
	BalanceCents int64         `json:"balance_cents"`
}

// EntityID implements collection.Entity.
func (u User) EntityID() collection.ID { return u.ID }

// Account statuses.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusBanned    = "banned"
)

// Roles.
const (
	RoleAdmin    = "admin"
	RoleInvestor = "investor"
	RoleArtist   = "artist"
)

// Schema declares the user manager's facets and sort orders.
var Schema = collection.MustSchema(
	[]collection.Facet[User]{
		{Name: "status", Kind: collection.FacetSet, Value: func(u User) string { return u.Status }},
		{Name: "role", Kind: collection.FacetSet, Value: func(u User) string { return u.Role }},
	},
	[]collection.SortKey[User]{
		{Name: "name", Compare: func(a, b User) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }},
		{Name: "email", Compare: func(a, b User) int { return cmp.Compare(strings.ToLower(a.Email), strings.ToLower(b.Email)) }},
		{Name: "balance", Compare: func(a, b User) int { return cmp.Compare(a.BalanceCents, b.BalanceCents) }},
	},
)

// Change is one administrative edit. It is applied locally first and then
// sent to the server.
type Change interface {
	collection.Patch[User]
	send(ctx context.Context, gateway Gateway, id collection.ID) (User, error)
}

// SetStatus moves the account to a new status.
type SetStatus struct {
	Status string
}

func (c SetStatus) Validate() error {
	switch c.Status {
	case StatusActive, StatusSuspended, StatusBanned:
		return nil
	default:
		return apperrors.EK(apperrors.KindValidation, "error.account.unknown_status", fmt.Sprintf("unknown account status %q", c.Status))
	}
}

func (c SetStatus) Apply(u User) User {
	u.Status = c.Status
	return u
}

func (c SetStatus) send(ctx context.Context, gateway Gateway, id collection.ID) (User, error) {
	return gateway.UpdateStatus(ctx, id, c.Status)
}

// Credit adds funds to the account balance.
type Credit struct {
	AmountCents int64
}

func (c Credit) Validate() error {
	return validateAmount(c.AmountCents)
}

func (c Credit) Apply(u User) User {
	u.BalanceCents += c.AmountCents
	return u
}

func (c Credit) send(ctx context.Context, gateway Gateway, id collection.ID) (User, error) {
	return gateway.AdjustBalance(ctx, id, c.AmountCents)
}

// Debit removes funds from the account balance. Whether the balance may go
// negative is decided by the server.
type Debit struct {
	AmountCents int64
}

func (c Debit) Validate() error {
	return validateAmount(c.AmountCents)
}

func (c Debit) Apply(u User) User {
	u.BalanceCents -= c.AmountCents
	return u
}

func (c Debit) send(ctx context.Context, gateway Gateway, id collection.ID) (User, error) {
	return gateway.AdjustBalance(ctx, id, -c.AmountCents)
}

func validateAmount(cents int64) error {
	if cents <= 0 {
		return apperrors.EK(apperrors.KindValidation, "error.account.amount_not_positive", "amount must be positive")
	}
	return nil
}
