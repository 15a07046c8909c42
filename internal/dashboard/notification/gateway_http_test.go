package notification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
	"github.com/louisbranch/royaltydesk/internal/platform/httpapi"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := httpapi.NewClient(server.URL, "token")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return NewHTTPGateway(client)
}

func TestHTTPGatewayListsEnvelope(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notifications" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"notifications":[{"id":1,"type":"royalty.paid","title":"Paid","source":"royalties","created_at":"2026-05-20T09:00:00Z"}]}`))
	})
	items, err := gateway.ListNotifications(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != 1 || items[0].Read() {
		t.Fatalf("items = %+v", items)
	}
}

func TestHTTPGatewayRejectsBareArrayAndMissingField(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`[{"id":1}]`, `{"items":[]}`, ``} {
		gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		if _, err := gateway.ListNotifications(context.Background(), nil); !errors.Is(err, apperrors.ErrNetwork) {
			t.Fatalf("body %q: error = %v, want network", body, err)
		}
	}
}

func TestHTTPGatewayEmptyEnvelope(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"notifications":[]}`))
	})
	items, err := gateway.ListNotifications(context.Background(), nil)
	if err != nil || len(items) != 0 {
		t.Fatalf("ListNotifications() = %v, %v; want empty", items, err)
	}
}

func TestHTTPGatewayMarkRead(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/notifications/7/read" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	got, err := gateway.MarkRead(context.Background(), 7)
	if err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if got.ID != 0 {
		t.Fatalf("MarkRead() = %+v, want zero confirmation", got)
	}
}

func TestNewHTTPGatewayWithoutClientFailsClosed(t *testing.T) {
	t.Parallel()

	if _, err := NewHTTPGateway(nil).MarkRead(context.Background(), 1); !errors.Is(err, apperrors.ErrUnavailable) {
		t.Fatalf("MarkRead() error = %v, want unavailable", err)
	}
}
