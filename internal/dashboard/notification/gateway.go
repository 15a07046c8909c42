package notification

import (
	"context"
	"net/url"

	"github.com/louisbranch/royaltydesk/internal/collection"
	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
)

// Gateway is the remote side of the inbox.
type Gateway interface {
	ListNotifications(ctx context.Context, query url.Values) ([]Notification, error)
	// MarkRead returns the updated notification, or a zero value when the
	// server confirms without a body.
	MarkRead(ctx context.Context, id collection.ID) (Notification, error)
}

type unavailableGateway struct{}

func (unavailableGateway) ListNotifications(context.Context, url.Values) ([]Notification, error) {
	return nil, apperrors.E(apperrors.KindUnavailable, "notifications service is not configured")
}

func (unavailableGateway) MarkRead(context.Context, collection.ID) (Notification, error) {
	return Notification{}, apperrors.E(apperrors.KindUnavailable, "notifications service is not configured")
}
