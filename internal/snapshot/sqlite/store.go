// Package sqlite stores collection snapshots in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/royaltydesk/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/royaltydesk/internal/snapshot"
	"github.com/louisbranch/royaltydesk/internal/snapshot/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for snapshot entries.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates a snapshot store at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetEntry loads a snapshot by key.
func (s *Store) GetEntry(ctx context.Context, key string) (snapshot.Entry, bool, error) {
	if s == nil || s.sqlDB == nil {
		return snapshot.Entry{}, false, fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return snapshot.Entry{}, false, fmt.Errorf("snapshot key is required")
	}

	var (
		entry   snapshot.Entry
		seq     int64
		savedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT entry_key, scope, user_id, payload, source_seq, saved_at
		 FROM snapshot_entries
		 WHERE entry_key = ?`,
		key,
	).Scan(&entry.Key, &entry.Scope, &entry.UserID, &entry.Payload, &seq, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return snapshot.Entry{}, false, nil
	}
	if err != nil {
		return snapshot.Entry{}, false, fmt.Errorf("get snapshot entry: %w", err)
	}
	if seq > 0 {
		entry.Seq = uint64(seq)
	}
	entry.SavedAt = fromUnixMillis(savedAt)
	return entry, true, nil
}

// PutEntry upserts a snapshot by key.
func (s *Store) PutEntry(ctx context.Context, entry snapshot.Entry) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	entry.Key = strings.TrimSpace(entry.Key)
	if entry.Key == "" {
		return fmt.Errorf("snapshot key is required")
	}
	entry.Scope = strings.TrimSpace(entry.Scope)
	if entry.Scope == "" {
		return fmt.Errorf("snapshot scope is required")
	}
	if len(entry.Payload) == 0 {
		return fmt.Errorf("snapshot payload is required")
	}
	if entry.SavedAt.IsZero() {
		entry.SavedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO snapshot_entries (entry_key, scope, user_id, payload, source_seq, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(entry_key) DO UPDATE SET
		    scope = excluded.scope,
		    user_id = excluded.user_id,
		    payload = excluded.payload,
		    source_seq = excluded.source_seq,
		    saved_at = excluded.saved_at`,
		entry.Key,
		entry.Scope,
		strings.TrimSpace(entry.UserID),
		entry.Payload,
		int64(entry.Seq),
		toUnixMillis(entry.SavedAt),
	)
	if err != nil {
		return fmt.Errorf("put snapshot entry: %w", err)
	}
	return nil
}

// DeleteEntry removes a snapshot by key.
func (s *Store) DeleteEntry(ctx context.Context, key string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("snapshot key is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM snapshot_entries WHERE entry_key = ?`, key); err != nil {
		return fmt.Errorf("delete snapshot entry: %w", err)
	}
	return nil
}

// DeleteUser drops every snapshot of one user, for sign-out.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM snapshot_entries WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete user snapshots: %w", err)
	}
	return nil
}

func toUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromUnixMillis(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

var _ snapshot.Store = (*Store)(nil)
