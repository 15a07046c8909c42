package royalty

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/louisbranch/royaltydesk/internal/collection"
	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
	"github.com/louisbranch/royaltydesk/internal/platform/httpapi"
)

// Gateway is the royalties API.
type Gateway interface {
	ListRoyalties(ctx context.Context, query url.Values) ([]Record, error)
	MarkProcessed(ctx context.Context, id collection.ID) (Record, error)
}

type unavailableGateway struct{}

func (unavailableGateway) ListRoyalties(context.Context, url.Values) ([]Record, error) {
	return nil, apperrors.E(apperrors.KindUnavailable, "royalty service is not configured")
}

func (unavailableGateway) MarkProcessed(context.Context, collection.ID) (Record, error) {
	return Record{}, apperrors.E(apperrors.KindUnavailable, "royalty service is not configured")
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

func (g httpGateway) ListRoyalties(ctx context.Context, query url.Values) ([]Record, error) {
	return httpapi.GetList[Record](ctx, g.client, "royalties", query, "royalties")
}

func (g httpGateway) MarkProcessed(ctx context.Context, id collection.ID) (Record, error) {
	var out Record
	err := g.client.Do(ctx, http.MethodPost, fmt.Sprintf("royalties/%d/process", id), nil, nil, &out)
	return out, err
}
