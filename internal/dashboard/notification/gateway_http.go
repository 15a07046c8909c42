package notification

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/louisbranch/royaltydesk/internal/collection"
	"github.com/louisbranch/royaltydesk/internal/platform/httpapi"
)

type httpGateway struct {
	client *httpapi.Client
}

// NewHTTPGateway returns a Gateway backed by the REST API. A nil client
// yields a gateway that fails closed.
func NewHTTPGateway(client *httpapi.Client) Gateway {
	if client == nil {
		return unavailableGateway{}
	}
	return httpGateway{client: client}
}

func (g httpGateway) ListNotifications(ctx context.Context, query url.Values) ([]Notification, error) {
	return httpapi.GetList[Notification](ctx, g.client, "notifications", query, "notifications")
}

func (g httpGateway) MarkRead(ctx context.Context, id collection.ID) (Notification, error) {
	var out Notification
	err := g.client.Do(ctx, http.MethodPost, fmt.Sprintf("notifications/%d/read", id), nil, nil, &out)
	return out, err
}
