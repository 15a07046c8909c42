// Package dashboard parses dashboard command flags and renders one
// collection view for the signed-in user.
package dashboard

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/louisbranch/royaltydesk/internal/dashboard/account"
	"github.com/louisbranch/royaltydesk/internal/dashboard/asset"
	entrypoint "github.com/louisbranch/royaltydesk/internal/platform/cmd"
	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
	"github.com/louisbranch/royaltydesk/internal/platform/httpapi"
	"github.com/louisbranch/royaltydesk/internal/platform/i18n/catalog"
	"github.com/louisbranch/royaltydesk/internal/platform/timeouts"
	"github.com/louisbranch/royaltydesk/internal/session"
	"github.com/louisbranch/royaltydesk/internal/snapshot"
	snapshotsqlite "github.com/louisbranch/royaltydesk/internal/snapshot/sqlite"
)

// Views the command can render.
const (
	ViewNotifications = "notifications"
	ViewAssets        = "assets"
	ViewUsers         = "users"
	ViewRoyalties     = "royalties"
	ViewWallet        = "wallet"
)

// offlineUserID owns the snapshot cache when no token is supplied offline.
const offlineUserID = "offline"

// Config holds dashboard command configuration.
type Config struct {
	APIURL      string        `env:"API_URL" envDefault:"http://localhost:8080/api"`
	Token       string        `env:"TOKEN"`
	TokenKey    string        `env:"TOKEN_KEY"`
	CachePath   string        `env:"CACHE_PATH"`
	CacheMaxAge time.Duration `env:"CACHE_MAX_AGE" envDefault:"24h"`
	Locale      string        `env:"LOCALE" envDefault:"en-US"`
	Offline     bool          `env:"OFFLINE"`
	View        string        `env:"VIEW"`
	Filter      string
	OrderBy     string
}

// ParseConfig parses environment and flags into Config. Without an explicit
// view, offline runs render assets, the one collection served without the
// API.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg, err := entrypoint.ParseConfig(fs, args, bindFlags)
	if err != nil {
		return Config{}, err
	}
	cfg.View = strings.ToLower(strings.TrimSpace(cfg.View))
	if cfg.View == "" {
		cfg.View = ViewNotifications
		if cfg.Offline {
			cfg.View = ViewAssets
		}
	}
	switch cfg.View {
	case ViewNotifications, ViewAssets, ViewUsers, ViewRoyalties, ViewWallet:
	default:
		return Config{}, fmt.Errorf("unknown view %q", cfg.View)
	}
	return cfg, nil
}

func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "The dashboard REST API base URL")
	fs.StringVar(&cfg.Token, "token", cfg.Token, "The session token")
	fs.StringVar(&cfg.TokenKey, "token-key", cfg.TokenKey, "The HS256 key used to verify the session token")
	fs.StringVar(&cfg.CachePath, "cache", cfg.CachePath, "The SQLite snapshot cache path; empty disables the cache")
	fs.DurationVar(&cfg.CacheMaxAge, "cache-max-age", cfg.CacheMaxAge, "The oldest snapshot that may be restored")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "The display locale")
	fs.BoolVar(&cfg.Offline, "offline", cfg.Offline, "Serve assets from the built-in catalogue without calling the API; other views render only from the snapshot cache")
	fs.StringVar(&cfg.Filter, "filter", cfg.Filter, "An AIP-160 filter such as 'status = \"pending\"'")
	fs.StringVar(&cfg.OrderBy, "order-by", cfg.OrderBy, "An AIP-132 order_by such as \"price desc\"")
	fs.StringVar(&cfg.View, "view", cfg.View, "The view to render: notifications, assets, users, royalties or wallet (default notifications, or assets when offline)")
}

// Run renders the configured view to stdout.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDashboard, func(ctx context.Context) error {
		return run(ctx, cfg, os.Stdout, time.Now)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer, now func() time.Time) error {
	tag := catalog.Default().Match(cfg.Locale)

	claims, err := resolveClaims(cfg)
	if err != nil {
		return err
	}
	deps, err := resolveDeps(cfg)
	if err != nil {
		return err
	}
	deps.Locale = tag

	if path := strings.TrimSpace(cfg.CachePath); path != "" {
		store, err := snapshotsqlite.Open(ctx, path)
		if err != nil {
			return fmt.Errorf("open snapshot cache: %w", err)
		}
		deps.Cache = snapshot.NewCache(store, cfg.CacheMaxAge)
		defer func() {
			if err := deps.Cache.Close(); err != nil {
				log.Printf("close snapshot cache: %v", err)
			}
		}()
	}

	s, err := session.Open(claims, deps)
	if err != nil {
		return err
	}
	defer s.Close()

	bootCtx, cancel := context.WithTimeout(ctx, timeouts.Bootstrap)
	defer cancel()
	if err := s.Bootstrap(bootCtx); err != nil {
		log.Printf("bootstrap: %v", err)
	}

	r := newRenderer(out, tag, now())
	return r.render(s, cfg.View, cfg.Filter, cfg.OrderBy)
}

func resolveClaims(cfg Config) (session.Claims, error) {
	if cfg.Offline && strings.TrimSpace(cfg.Token) == "" {
		return session.Claims{UserID: offlineUserID, Role: account.RoleInvestor}, nil
	}
	return session.ParseToken(cfg.Token, []byte(cfg.TokenKey))
}

func resolveDeps(cfg Config) (session.Deps, error) {
	if cfg.Offline {
		return session.Deps{Assets: asset.NewFixtureGateway()}, nil
	}
	client, err := httpapi.NewClient(cfg.APIURL, cfg.Token)
	if err != nil {
		return session.Deps{}, err
	}
	return session.HTTPDeps(client), nil
}

// LocalizeError renders err for a user of locale. Errors that carry a
// localization key use it; other application errors fall back to their
// kind. The technical detail follows in parentheses.
func LocalizeError(locale string, err error) string {
	if err == nil {
		return ""
	}
	bundle := catalog.Default()
	tag := bundle.Match(locale).String()
	var appErr apperrors.Error
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	for _, key := range []string{apperrors.LocalizationKey(err), "error.kind." + string(apperrors.KindOf(err))} {
		if msg, ok := bundle.Message(tag, key); ok {
			return fmt.Sprintf("%s (%v)", msg, err)
		}
	}
	return err.Error()
}
