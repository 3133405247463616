package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DefaultCacheTTL is how long a read is served from memory.
const DefaultCacheTTL = 5 * time.Minute

// memoryDSN opens a private in-memory database.
const memoryDSN = ":memory:"

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithCacheTTL overrides the read-cache expiry.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *SQLiteStore) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// SQLiteStore implements the Store interface using a local SQLite database.
// Every value is a JSON document stored under its key.
type SQLiteStore struct {
	db       *sqlx.DB
	cache    *readCache
	cacheTTL time.Duration
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	if dbPath != memoryDSN {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Each connection to :memory: would get its own empty database.
	if dbPath == memoryDSN {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db, cacheTTL: DefaultCacheTTL}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = newReadCache(s.cacheTTL)

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ClearCache drops every cached read.
func (s *SQLiteStore) ClearCache() {
	s.cache.purge()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// readRaw returns the stored document for key, or nil if the key is absent.
func (s *SQLiteStore) readRaw(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM kv_entries WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return []byte(value), nil
}

// get decodes the value stored under key into dest. cached reads go through
// the read cache. It reports whether the key was present.
func (s *SQLiteStore) get(ctx context.Context, key string, dest any, cached bool) (bool, error) {
	var raw []byte
	if cached {
		if v, ok := s.cache.get(key); ok {
			raw = v
		}
	}
	if raw == nil {
		var err error
		raw, err = s.readRaw(ctx, key)
		if err != nil {
			return false, err
		}
		if raw == nil {
			return false, nil
		}
		if cached {
			s.cache.put(key, raw)
		}
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// put replaces the value stored under key and refreshes the cache entry.
func (s *SQLiteStore) put(ctx context.Context, key string, value any, cached bool) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(raw), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}

	if cached {
		s.cache.put(key, raw)
	}
	return nil
}

// remove deletes key from the database and the cache.
func (s *SQLiteStore) remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	s.cache.remove(key)
	return nil
}
