// Package snapshot persists the last good contents of each collection so a
// new session can render something before its first load completes.
//
// Snapshot data is always derived: it can be discarded at any time and is
// replaced after every successful load.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/royaltydesk/internal/collection"
	"github.com/louisbranch/royaltydesk/internal/platform/codec"
)

// Entry is one persisted collection payload.
type Entry struct {
	Key     string
	Scope   string
	UserID  string
	Payload []byte
	// Seq is the store version the payload was captured at.
	Seq     uint64
	SavedAt time.Time
}

// Store is the persistence contract for snapshot entries.
type Store interface {
	Close() error
	GetEntry(ctx context.Context, key string) (Entry, bool, error)
	PutEntry(ctx context.Context, entry Entry) error
	DeleteEntry(ctx context.Context, key string) error
}

// Key names one collection of one user.
type Key struct {
	UserID string
	Scope  string
}

// String renders the storage key.
func (k Key) String() string {
	return strings.TrimSpace(k.UserID) + "/" + strings.TrimSpace(k.Scope)
}

func (k Key) validate() error {
	if strings.TrimSpace(k.UserID) == "" || strings.TrimSpace(k.Scope) == "" {
		return errors.New("snapshot key requires user id and scope")
	}
	return nil
}

// Cache reads and writes collection snapshots through a Store. A nil Cache
// is valid and never hits storage.
type Cache struct {
	store  Store
	maxAge time.Duration
	now    func() time.Time
}

// NewCache wraps store. Entries older than maxAge are ignored on restore; a
// zero maxAge accepts any age.
func NewCache(store Store, maxAge time.Duration) *Cache {
	if store == nil {
		return nil
	}
	return &Cache{store: store, maxAge: maxAge, now: time.Now}
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.store.Close()
}

// Save writes the current contents of store under key.
func Save[E collection.Entity](ctx context.Context, c *Cache, key Key, store *collection.Store[E]) error {
	if c == nil {
		return nil
	}
	if err := key.validate(); err != nil {
		return err
	}
	version := store.Version()
	payload, err := codec.Marshal(store.Snapshot())
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", key.Scope, err)
	}
	return c.store.PutEntry(ctx, Entry{
		Key:     key.String(),
		Scope:   strings.TrimSpace(key.Scope),
		UserID:  strings.TrimSpace(key.UserID),
		Payload: payload,
		Seq:     version,
		SavedAt: c.now().UTC(),
	})
}

// Restore seeds store from the entry under key. It reports false when there
// is no usable entry. An entry that no longer decodes is deleted.
func Restore[E collection.Entity](ctx context.Context, c *Cache, key Key, store *collection.Store[E]) (bool, error) {
	if c == nil {
		return false, nil
	}
	if err := key.validate(); err != nil {
		return false, err
	}
	entry, ok, err := c.store.GetEntry(ctx, key.String())
	if err != nil || !ok {
		return false, err
	}
	if c.maxAge > 0 && c.now().Sub(entry.SavedAt) > c.maxAge {
		return false, nil
	}
	var items []E
	if err := codec.Unmarshal(entry.Payload, &items); err != nil {
		if delErr := c.store.DeleteEntry(ctx, entry.Key); delErr != nil {
			return false, errors.Join(fmt.Errorf("decode %s snapshot: %w", key.Scope, err), delErr)
		}
		return false, fmt.Errorf("decode %s snapshot: %w", key.Scope, err)
	}
	if err := store.Restore(items); err != nil {
		return false, err
	}
	return true, nil
}
