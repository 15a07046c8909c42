package wallet

import (
	"context"
	"net/http"
	"net/url"

	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
	"github.com/louisbranch/royaltydesk/internal/platform/httpapi"
)

// Gateway is the wallet API.
type Gateway interface {
	ListTransactions(ctx context.Context, query url.Values) ([]Transaction, error)
	CreateTransaction(ctx context.Context, draft Draft) (Transaction, error)
}

type unavailableGateway struct{}

func (unavailableGateway) ListTransactions(context.Context, url.Values) ([]Transaction, error) {
	return nil, apperrors.E(apperrors.KindUnavailable, "wallet service is not configured")
}

func (unavailableGateway) CreateTransaction(context.Context, Draft) (Transaction, error) {
	return Transaction{}, apperrors.E(apperrors.KindUnavailable, "wallet service is not configured")
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

func (g httpGateway) ListTransactions(ctx context.Context, query url.Values) ([]Transaction, error) {
	return httpapi.GetList[Transaction](ctx, g.client, "wallet/transactions", query, "transactions")
}

func (g httpGateway) CreateTransaction(ctx context.Context, draft Draft) (Transaction, error) {
	var out Transaction
	err := g.client.Do(ctx, http.MethodPost, "wallet/transactions", nil, draft, &out)
	return out, err
}
