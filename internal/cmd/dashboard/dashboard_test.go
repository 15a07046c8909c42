package dashboard

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
)

var renderNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return renderNow }

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.APIURL != "http://localhost:8080/api" {
		t.Fatalf("api = %q, want default", cfg.APIURL)
	}
	if cfg.View != ViewNotifications {
		t.Fatalf("view = %q, want %q", cfg.View, ViewNotifications)
	}
	if cfg.CacheMaxAge != 24*time.Hour {
		t.Fatalf("cache_max_age = %s, want 24h", cfg.CacheMaxAge)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("ROYALTYDESK_VIEW", "wallet")
	t.Setenv("ROYALTYDESK_LOCALE", "pt-BR")

	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-view", "Assets", "-offline", "-filter", `genre = "pop"`, "-order-by", "price desc"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.View != ViewAssets || !cfg.Offline || cfg.Locale != "pt-BR" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Filter != `genre = "pop"` || cfg.OrderBy != "price desc" {
		t.Fatalf("filter = %q, order_by = %q", cfg.Filter, cfg.OrderBy)
	}
}

func TestParseConfigOfflineDefaultsToAssets(t *testing.T) {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-offline"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.View != ViewAssets {
		t.Fatalf("view = %q, want %q", cfg.View, ViewAssets)
	}

	fs = flag.NewFlagSet("dashboard", flag.ContinueOnError)
	cfg, err = ParseConfig(fs, []string{"-offline", "-view", "wallet"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.View != ViewWallet {
		t.Fatalf("explicit view = %q, want %q", cfg.View, ViewWallet)
	}
}

func TestRunOfflineDefaultView(t *testing.T) {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-offline", "-locale", "en"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out, fixedNow); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Midnight Echoes") {
		t.Fatalf("output = %q, want the fixture catalogue", out.String())
	}
}

func TestParseConfigRejectsUnknownView(t *testing.T) {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	if _, err := ParseConfig(fs, []string{"-view", "charts"}); err == nil {
		t.Fatal("expected unknown view error")
	}
}

func TestRunOfflineAssets(t *testing.T) {
	var out bytes.Buffer
	cfg := Config{Offline: true, View: ViewAssets, Locale: "en", Filter: `genre = "electronic"`, OrderBy: "price desc"}
	if err := run(context.Background(), cfg, &out, fixedNow); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	text := out.String()
	order := []string{"Albums", "Midnight Echoes", "Neon Tides", "Électrique"}
	last := -1
	for _, want := range order {
		at := strings.Index(text, want)
		if at <= last {
			t.Fatalf("output order wrong at %q:\n%s", want, text)
		}
		last = at
	}
	if strings.Contains(text, "Golden Hour") || !strings.Contains(text, "49.99") {
		t.Fatalf("unexpected output:\n%s", text)
	}
}

func TestRunOfflineRejectsBadFilter(t *testing.T) {
	var out bytes.Buffer
	cfg := Config{Offline: true, View: ViewAssets, Filter: `mood = "happy"`}
	if err := run(context.Background(), cfg, &out, fixedNow); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("run() error = %v, want validation", err)
	}
}

func TestRunNotificationsGroupsByDay(t *testing.T) {
	api := newAPI(t, http.StatusOK)
	var out bytes.Buffer
	cfg := Config{APIURL: api, Token: testToken(t, "investor"), View: ViewNotifications, Locale: "en-US"}
	if err := run(context.Background(), cfg, &out, fixedNow); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	text := out.String()
	for _, want := range []string{"Notifications (1 unread)", "Today", "Payout sent", "Older", "Welcome"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Yesterday") {
		t.Fatalf("empty group rendered:\n%s", text)
	}
}

func TestRunAdminViewsRequireAdmin(t *testing.T) {
	api := newAPI(t, http.StatusOK)
	var out bytes.Buffer
	cfg := Config{APIURL: api, Token: testToken(t, "investor"), View: ViewUsers}
	if err := run(context.Background(), cfg, &out, fixedNow); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("run() error = %v, want unauthorized", err)
	}

	out.Reset()
	cfg = Config{APIURL: api, Token: testToken(t, "admin"), View: ViewRoyalties, Locale: "pt-BR"}
	if err := run(context.Background(), cfg, &out, fixedNow); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	for _, want := range []string{"Pagamentos de royalties", "Blue", "9,00"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunFailedLoadWithoutSnapshotIsError(t *testing.T) {
	api := newAPI(t, http.StatusBadGateway)
	var out bytes.Buffer
	cfg := Config{APIURL: api, Token: testToken(t, "investor"), View: ViewWallet}
	if err := run(context.Background(), cfg, &out, fixedNow); !errors.Is(err, apperrors.ErrNetwork) {
		t.Fatalf("run() error = %v, want network", err)
	}
}

func TestRunFailedLoadRendersSnapshot(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "cache.db")
	token := testToken(t, "investor")

	var out bytes.Buffer
	cfg := Config{APIURL: newAPI(t, http.StatusOK), Token: token, View: ViewWallet, CachePath: cache}
	if err := run(context.Background(), cfg, &out, fixedNow); err != nil {
		t.Fatalf("first run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Balance: 50.00") {
		t.Fatalf("first output:\n%s", out.String())
	}

	out.Reset()
	cfg.APIURL = newAPI(t, http.StatusBadGateway)
	if err := run(context.Background(), cfg, &out, fixedNow); err != nil {
		t.Fatalf("second run() error = %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Showing saved data: The server could not be reached") || !strings.Contains(text, "deposit") {
		t.Fatalf("second output:\n%s", text)
	}
}

func TestLocalizeError(t *testing.T) {
	tests := []struct {
		locale string
		err    error
		prefix string
	}{
		{locale: "pt", err: apperrors.EK(apperrors.KindUnauthorized, "error.session.expired", "session token is expired"), prefix: "Sua sessão expirou."},
		{locale: "en", err: apperrors.E(apperrors.KindBusy, "mutation in flight"), prefix: "An update for that item is still in progress."},
		{locale: "en", err: apperrors.EK(apperrors.KindConflict, "error.unknown.key", "x"), prefix: "That item was changed by someone else."},
		{locale: "en", err: errors.New("plain failure"), prefix: "plain failure"},
	}
	for _, tc := range tests {
		if got := LocalizeError(tc.locale, tc.err); !strings.HasPrefix(got, tc.prefix) {
			t.Fatalf("LocalizeError(%q, %v) = %q, want prefix %q", tc.locale, tc.err, got, tc.prefix)
		}
	}
	if got := LocalizeError("en", nil); got != "" {
		t.Fatalf("LocalizeError(nil) = %q, want empty", got)
	}
}

func testToken(t *testing.T, role string) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "user-" + role, "role": role, "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

var apiResponses = map[string]string{
	"/notifications": `{"notifications":[
		{"id":1,"type":"royalty","title":"Payout sent","source":"royalties","created_at":"2026-03-10T09:00:00Z"},
		{"id":2,"type":"system","title":"Welcome","source":"system","created_at":"2026-03-01T09:00:00Z","read_at":"2026-03-02T09:00:00Z"}]}`,
	"/assets":              `{"assets":[{"id":1,"title":"Blue","artist":"A","type":"album","genre":"jazz","status":"available","royalty_share":12.5,"price_cents":1500}]}`,
	"/wallet/transactions": `{"transactions":[{"id":7,"kind":"deposit","amount_cents":5000,"method":"card","status":"processed","created_at":"2026-03-09T10:00:00Z"}]}`,
	"/admin/users":         `{"users":[{"id":3,"email":"a@example.com","name":"Ann","role":"investor","status":"active","balance_cents":100}]}`,
	"/royalties":           `{"royalties":[{"id":4,"asset_id":1,"period":"2026-02","amount_cents":900,"status":"pending"}]}`,
}

// newAPI serves apiResponses, or fails every request with status.
func newAPI(t *testing.T, status int) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		body, ok := apiResponses[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server.URL
}
