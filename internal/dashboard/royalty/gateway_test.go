package royalty

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/louisbranch/royaltydesk/internal/collection"
	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
	"github.com/louisbranch/royaltydesk/internal/platform/httpapi"
)

type royaltyAPI struct {
	mu        sync.Mutex
	list      string
	processed []string
}

func (a *royaltyAPI) setList(body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.list = body
}

func (a *royaltyAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/royalties":
		_, _ = w.Write([]byte(a.list))
	case r.Method == http.MethodPost && r.URL.Path == "/royalties/1/process":
		a.processed = append(a.processed, r.URL.Path)
		_, _ = w.Write([]byte(`{"id":1,"asset_id":4,"period":"2026-03","amount_cents":900,"status":"processed"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

const royaltiesBody = `{"royalties":[{"id":1,"asset_id":4,"period":"2026-03","amount_cents":900,"status":"pending"}]}`

func newHTTPLedger(t *testing.T, api *royaltyAPI) *Ledger {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	client, err := httpapi.NewClient(server.URL, "token")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	ledger := NewLedger(NewHTTPGateway(client))
	if err := ledger.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	return ledger
}

func TestHTTPGatewayMarkProcessed(t *testing.T) {
	t.Parallel()

	api := &royaltyAPI{list: royaltiesBody}
	ledger := newHTTPLedger(t, api)
	got, err := ledger.MarkProcessed(context.Background(), 1)
	if err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}
	if got.Status != StatusProcessed {
		t.Fatalf("MarkProcessed().Status = %q, want %q", got.Status, StatusProcessed)
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.processed) != 1 {
		t.Fatalf("process requests = %v, want 1", api.processed)
	}
}

func TestHTTPGatewayMalformedListKeepsSnapshot(t *testing.T) {
	t.Parallel()

	api := &royaltyAPI{list: royaltiesBody}
	ledger := newHTTPLedger(t, api)
	for _, bad := range []string{`{}`, ``, `{"royalty":[]}`, `{"royalties":"none"}`} {
		api.setList(bad)
		if err := ledger.Refresh(context.Background()); !errors.Is(err, apperrors.ErrNetwork) {
			t.Fatalf("Refresh(%q) error = %v, want network", bad, err)
		}
		if got := ledger.Store().Status(); got != collection.StatusError {
			t.Fatalf("Refresh(%q) status = %q, want %q", bad, got, collection.StatusError)
		}
		if _, ok := ledger.Store().Get(1); !ok {
			t.Fatalf("Refresh(%q) dropped the last good snapshot", bad)
		}
	}
}
