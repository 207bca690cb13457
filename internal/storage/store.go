// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/mmynk/borrowchecker/internal/models"
)

// RefreshResult reports what a Refresh observed.
type RefreshResult struct {
	// HasChanges is true when the backing store moved since the previous refresh.
	HasChanges bool
}

// Repository defines the interface for group, ledger and transaction storage.
// This abstraction allows swapping storage backends (git snapshot, SQLite, memory)
// without changing the session or service layers.
//
// Errors wrap the kinds declared in the models package: models.ErrNotFound,
// models.ErrParse, models.ErrUnsupported and models.ErrBackend.
// Read-only backends return models.ErrUnsupported from every write.
type Repository interface {
	// LoadGroup returns the group configuration containing all entities.
	LoadGroup(ctx context.Context) (*models.Group, error)

	// SaveGroup persists the group, replacing the stored entity list.
	SaveGroup(ctx context.Context, group *models.Group) error

	// ListLedgers scans the store and returns every ledger.
	// It rebuilds the ledger ID index used by the transaction operations.
	// A ledger descriptor that fails to parse fails the whole scan.
	ListLedgers(ctx context.Context) ([]models.Ledger, error)

	// CreateLedger stores a new ledger and returns its ID.
	// A nil ledger.ID is replaced by a fresh one.
	CreateLedger(ctx context.Context, ledger models.Ledger) (uuid.UUID, error)

	// UpdateLedger updates ledger metadata (display name, participants).
	UpdateLedger(ctx context.Context, ledger models.Ledger) error

	// DeleteLedger removes a ledger together with its transactions.
	DeleteLedger(ctx context.Context, ledgerID uuid.UUID) error

	// ListTransactions returns every transaction of a ledger.
	// Unparseable transaction records are logged and skipped.
	ListTransactions(ctx context.Context, ledgerID uuid.UUID) ([]models.Transaction, error)

	// CreateTransaction adds a transaction to a ledger and returns its ID.
	// A nil txn.ID is replaced by a fresh one.
	CreateTransaction(ctx context.Context, ledgerID uuid.UUID, txn models.Transaction) (uuid.UUID, error)

	// UpdateTransaction replaces an existing transaction.
	UpdateTransaction(ctx context.Context, ledgerID uuid.UUID, txn models.Transaction) error

	// DeleteTransaction removes a transaction from a ledger.
	DeleteTransaction(ctx context.Context, ledgerID, txnID uuid.UUID) error

	// Refresh re-resolves the backing store's current state and rebuilds the ledger index.
	// It is idempotent and safe to call repeatedly.
	Refresh(ctx context.Context) (RefreshResult, error)

	// Close releases any resources held by the repository.
	Close() error
}
