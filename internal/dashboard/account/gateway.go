package account

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/louisbranch/royaltydesk/internal/collection"
	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
	"github.com/louisbranch/royaltydesk/internal/platform/httpapi"
)

// Gateway is the admin users API.
type Gateway interface {
	ListUsers(ctx context.Context, query url.Values) ([]User, error)
	UpdateStatus(ctx context.Context, id collection.ID, status string) (User, error)
	// AdjustBalance applies a signed delta in cents.
	AdjustBalance(ctx context.Context, id collection.ID, deltaCents int64) (User, error)
	DeleteUser(ctx context.Context, id collection.ID) error
}

type unavailableGateway struct{}

func (unavailableGateway) ListUsers(context.Context, url.Values) ([]User, error) {
	return nil, apperrors.E(apperrors.KindUnavailable, "user service is not configured")
}

func (unavailableGateway) UpdateStatus(context.Context, collection.ID, string) (User, error) {
	return User{}, apperrors.E(apperrors.KindUnavailable, "user service is not configured")
}

func (unavailableGateway) AdjustBalance(context.Context, collection.ID, int64) (User, error) {
	return User{}, apperrors.E(apperrors.KindUnavailable, "user service is not configured")
}

func (unavailableGateway) DeleteUser(context.Context, collection.ID) error {
	return apperrors.E(apperrors.KindUnavailable, "user service is not configured")
}

type httpGateway struct {
	client *httpapi.Client
}

// NewHTTPGateway returns a Gateway backed by the REST API.
func NewHTTPGateway(client *httpapi.Client) Gateway {
	if client == nil {
		return unavailableGateway{}
	}
	return httpGateway{client: client}
}

func (g httpGateway) ListUsers(ctx context.Context, query url.Values) ([]User, error) {
	return httpapi.GetList[User](ctx, g.client, "admin/users", query, "users")
}

func (g httpGateway) UpdateStatus(ctx context.Context, id collection.ID, status string) (User, error) {
	var out User
	in := struct {
		Status string `json:"status"`
	}{Status: status}
	err := g.client.Do(ctx, http.MethodPatch, fmt.Sprintf("admin/users/%d", id), nil, in, &out)
	return out, err
}

func (g httpGateway) AdjustBalance(ctx context.Context, id collection.ID, deltaCents int64) (User, error) {
	var out User
	in := struct {
		DeltaCents int64 `json:"delta_cents"`
	}{DeltaCents: deltaCents}
	err := g.client.Do(ctx, http.MethodPost, fmt.Sprintf("admin/users/%d/balance", id), nil, in, &out)
	return out, err
}

func (g httpGateway) DeleteUser(ctx context.Context, id collection.ID) error {
	return g.client.Do(ctx, http.MethodDelete, fmt.Sprintf("admin/users/%d", id), nil, nil, nil)
}
