package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/louisbranch/royaltydesk/internal/collection"
	"github.com/louisbranch/royaltydesk/internal/dashboard/account"
	"github.com/louisbranch/royaltydesk/internal/dashboard/asset"
	"github.com/louisbranch/royaltydesk/internal/dashboard/notification"
	"github.com/louisbranch/royaltydesk/internal/dashboard/royalty"
	"github.com/louisbranch/royaltydesk/internal/dashboard/wallet"
	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
	"github.com/louisbranch/royaltydesk/internal/platform/httpapi"
	"github.com/louisbranch/royaltydesk/internal/snapshot"
)

// Deps holds the gateways and cache a session is built from. A nil gateway
// makes its collection fail closed with Unavailable.
type Deps struct {
	Notifications notification.Gateway
	Assets        asset.Gateway
	Users         account.Gateway
	Royalties     royalty.Gateway
	Wallet        wallet.Gateway
	Cache         *snapshot.Cache
	Locale        language.Tag
}

// HTTPDeps wires every gateway to client.
func HTTPDeps(client *httpapi.Client) Deps {
	return Deps{
		Notifications: notification.NewHTTPGateway(client),
		Assets:        asset.NewHTTPGateway(client),
		Users:         account.NewHTTPGateway(client),
		Royalties:     royalty.NewHTTPGateway(client),
		Wallet:        wallet.NewHTTPGateway(client),
	}
}

// Session is the store set of one signed-in user.
type Session struct {
	claims Claims

	inbox     *notification.Inbox
	grid      *asset.Grid
	wallet    *wallet.Wallet
	users     *account.Manager
	royalties *royalty.Ledger

	collections []handle
	closeOnce   sync.Once
}

// handle is the type-erased lifecycle of one collection.
type handle struct {
	scope   string
	restore func(context.Context) (bool, error)
	refresh func(context.Context) error
	save    func(context.Context) error
	close   func()
}

func newHandle[E collection.Entity](cache *snapshot.Cache, userID string, store *collection.Store[E], refresh func(context.Context) error) handle {
	key := snapshot.Key{UserID: userID, Scope: store.Name()}
	return handle{
		scope: store.Name(),
		restore: func(ctx context.Context) (bool, error) {
			return snapshot.Restore(ctx, cache, key, store)
		},
		refresh: refresh,
		save: func(ctx context.Context) error {
			return snapshot.Save(ctx, cache, key, store)
		},
		close: store.Close,
	}
}

// Open builds the collections claims may see. Nothing is loaded until
// Bootstrap.
func Open(claims Claims, deps Deps) (*Session, error) {
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, apperrors.E(apperrors.KindUnauthorized, "session requires a user id")
	}
	s := &Session{
		claims: claims,
		inbox:  notification.NewInbox(deps.Notifications),
		grid:   asset.NewGrid(deps.Assets, deps.Locale),
		wallet: wallet.New(deps.Wallet),
	}
	s.collections = append(s.collections,
		newHandle(deps.Cache, claims.UserID, s.inbox.Store(), s.inbox.Refresh),
		newHandle(deps.Cache, claims.UserID, s.grid.Store(), s.grid.Refresh),
		newHandle(deps.Cache, claims.UserID, s.wallet.Store(), s.wallet.Refresh),
	)
	if s.IsAdmin() {
		s.users = account.NewManager(deps.Users)
		s.royalties = royalty.NewLedger(deps.Royalties)
		s.collections = append(s.collections,
			newHandle(deps.Cache, claims.UserID, s.users.Store(), s.users.Refresh),
			newHandle(deps.Cache, claims.UserID, s.royalties.Store(), s.royalties.Refresh),
		)
	}
	return s, nil
}

// Claims returns the claims the session was opened with.
func (s *Session) Claims() Claims { return s.claims }

// IsAdmin reports whether admin collections are available.
func (s *Session) IsAdmin() bool { return s.claims.Role == account.RoleAdmin }

// Inbox returns the notification drawer.
func (s *Session) Inbox() *notification.Inbox { return s.inbox }

// Grid returns the album grid.
func (s *Session) Grid() *asset.Grid { return s.grid }

// Wallet returns the user's wallet.
func (s *Session) Wallet() *wallet.Wallet { return s.wallet }

// Users returns the admin user manager.
func (s *Session) Users() (*account.Manager, error) {
	if s.users == nil {
		return nil, apperrors.EK(apperrors.KindUnauthorized, "error.session.admin_required", "user management requires an admin session")
	}
	return s.users, nil
}

// Royalties returns the admin royalty ledger.
func (s *Session) Royalties() (*royalty.Ledger, error) {
	if s.royalties == nil {
		return nil, apperrors.EK(apperrors.KindUnauthorized, "error.session.admin_required", "royalty payouts require an admin session")
	}
	return s.royalties, nil
}

// Scopes lists the collections of this session in bootstrap order.
func (s *Session) Scopes() []string {
	scopes := make([]string, 0, len(s.collections))
	for _, c := range s.collections {
		scopes = append(scopes, c.scope)
	}
	return scopes
}

// Bootstrap warms every collection from the snapshot cache and then loads
// them concurrently. A failed collection keeps its error status and its
// restored snapshot; the others are unaffected. The returned error joins
// every load failure.
func (s *Session) Bootstrap(ctx context.Context) error {
	failures := make([]error, len(s.collections))
	var g errgroup.Group
	for i, c := range s.collections {
		g.Go(func() error {
			if restored, err := c.restore(ctx); err != nil {
				log.Printf("session %s: restore %s snapshot: %v", s.claims.UserID, c.scope, err)
			} else if restored {
				log.Printf("session %s: restored %s snapshot", s.claims.UserID, c.scope)
			}
			if err := c.refresh(ctx); err != nil {
				failures[i] = fmt.Errorf("load %s: %w", c.scope, err)
				return nil
			}
			if err := c.save(ctx); err != nil {
				log.Printf("session %s: save %s snapshot: %v", s.claims.UserID, c.scope, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return errors.Join(failures...)
}

// Close tears down every store. Calls after the first are no-ops.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		for _, c := range s.collections {
			c.close()
		}
	})
}
