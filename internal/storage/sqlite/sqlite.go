// Package sqlite provides a SQLite-backed implementation of the storage.Repository interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/borrowchecker/internal/models"
	"github.com/mmynk/borrowchecker/internal/storage"
)

// Ensure SQLiteStore implements storage.Repository
var _ storage.Repository = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Repository using SQLite.
// Unlike the git snapshot it accepts writes; every write bumps a revision
// counter that Refresh compares against.
type SQLiteStore struct {
	db *sql.DB

	mu   sync.Mutex // guards seen
	seen int64
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create database directory: %v", models.ErrBackend, err)
	}

	// Foreign keys are per connection, so enable them in the DSN for every pooled one.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", models.ErrBackend, err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to run migrations: %v", models.ErrBackend, err)
	}

	s := &SQLiteStore{db: db}
	if s.seen, err = s.revision(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Refresh reports whether any write landed since the previous Refresh,
// including writes made by other processes sharing the database file.
func (s *SQLiteStore) Refresh(ctx context.Context) (storage.RefreshResult, error) {
	rev, err := s.revision(ctx, s.db)
	if err != nil {
		return storage.RefreshResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := rev != s.seen
	s.seen = rev
	return storage.RefreshResult{HasChanges: changed}, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) revision(ctx context.Context, q queryer) (int64, error) {
	var rev int64
	if err := q.QueryRowContext(ctx, "SELECT value FROM revision WHERE id = 1").Scan(&rev); err != nil {
		return 0, backendError("failed to read revision", err)
	}
	return rev, nil
}

// bump records a write; it must run inside the write's transaction.
func bump(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "UPDATE revision SET value = value + 1 WHERE id = 1"); err != nil {
		return backendError("failed to bump revision", err)
	}
	return nil
}

// commit bumps the revision and commits tx.
func commit(ctx context.Context, tx *sql.Tx) error {
	if err := bump(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return backendError("failed to commit transaction", err)
	}
	return nil
}

func backendError(msg string, err error) error {
	return fmt.Errorf("%w: %s: %v", models.ErrBackend, msg, err)
}

func (s *SQLiteStore) begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, backendError("failed to begin transaction", err)
	}
	return tx, nil
}
