package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dshills/symdex-mcp/pkg/types"
)

// SQLiteStore persists shards in a single per-project SQLite database. It is
// an alternative to the disk backend for projects where one file per shard
// creates too many inodes.
type SQLiteStore struct {
	db     *sql.DB
	closed atomic.Bool
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// NewSQLiteStore creates a sqlite shard store under the project's hidden
// index directory
func NewSQLiteStore(projectRoot string) (*SQLiteStore, error) {
	dir := filepath.Join(projectRoot, IndexDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := openDatabase(filepath.Join(dir, "shards.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS shards (
			id         TEXT PRIMARY KEY,
			data       BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// StoreShard persists one shard, replacing any previous version
func (s *SQLiteStore) StoreShard(ctx context.Context, id string, shard *types.FileShard) error {
	if id == "" {
		return types.ErrMissingPath
	}
	if s.closed.Load() {
		return ErrClosed
	}

	data, err := json.Marshal(shard)
	if err != nil {
		return fmt.Errorf("failed to encode shard: %w", err)
	}

	query := `
		INSERT INTO shards (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, id, data, time.Now()); err != nil {
		return fmt.Errorf("failed to store shard: %w", err)
	}
	return nil
}

// LoadShard returns the stored shard or (nil, nil) when absent
func (s *SQLiteStore) LoadShard(ctx context.Context, id string) (*types.FileShard, error) {
	if id == "" {
		return nil, types.ErrMissingPath
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM shards WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load shard: %w", err)
	}

	var shard types.FileShard
	if err := json.Unmarshal(data, &shard); err != nil {
		// Corrupted rows force re-extraction, same as a missing shard.
		return nil, nil
	}
	return &shard, nil
}

// Close closes the database connection. Later operations return ErrClosed.
func (s *SQLiteStore) Close() error {
	s.closed.Store(true)
	return s.db.Close()
}
