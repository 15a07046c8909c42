package asset

import (
	"context"
	"net/url"

	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
	"github.com/louisbranch/royaltydesk/internal/platform/httpapi"
)

// Gateway loads the asset catalogue.
type Gateway interface {
	ListAssets(ctx context.Context, query url.Values) ([]Asset, error)
}

type unavailableGateway struct{}

func (unavailableGateway) ListAssets(context.Context, url.Values) ([]Asset, error) {
	return nil, apperrors.E(apperrors.KindUnavailable, "asset service is not configured")
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

func (g httpGateway) ListAssets(ctx context.Context, query url.Values) ([]Asset, error) {
	return httpapi.GetList[Asset](ctx, g.client, "assets", query, "assets")
}

// fixtureGateway serves the built-in catalogue.
type fixtureGateway struct{}

// NewFixtureGateway returns a Gateway over the built-in catalogue.
func NewFixtureGateway() Gateway {
	return fixtureGateway{}
}

func (fixtureGateway) ListAssets(ctx context.Context, query url.Values) ([]Asset, error) {
	return Fixtures()(ctx, query)
}
