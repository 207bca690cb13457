// Package memory provides an in-memory implementation of storage.Repository.
// It backs the session and service tests and is handy for demos.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mmynk/borrowchecker/internal/models"
	"github.com/mmynk/borrowchecker/internal/storage"
)

// Ensure Store implements storage.Repository
var _ storage.Repository = (*Store)(nil)

type ledgerEntry struct {
	ledger       models.Ledger
	transactions []models.Transaction
}

// Store keeps a group and its ledgers in memory.
// Values are copied on the way in and out, so callers never share slices with the store.
type Store struct {
	mu       sync.RWMutex
	group    *models.Group
	ledgers  map[uuid.UUID]*ledgerEntry
	order    []uuid.UUID
	revision int64
	seen     int64
}

// New creates a Store holding the given group (which may be nil).
func New(group *models.Group) *Store {
	s := &Store{ledgers: make(map[uuid.UUID]*ledgerEntry)}
	if group != nil {
		s.group = cloneGroup(group)
	}
	return s
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// LoadGroup returns a copy of the stored group.
func (s *Store) LoadGroup(ctx context.Context) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.group == nil {
		return nil, fmt.Errorf("%w: group", models.ErrNotFound)
	}
	return cloneGroup(s.group), nil
}

// SaveGroup replaces the stored group.
func (s *Store) SaveGroup(ctx context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.group = cloneGroup(group)
	s.revision++
	return nil
}

// ListLedgers returns the ledgers in creation order.
func (s *Store) ListLedgers(ctx context.Context) ([]models.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ledgers := make([]models.Ledger, 0, len(s.order))
	for _, id := range s.order {
		ledgers = append(ledgers, cloneLedger(s.ledgers[id].ledger))
	}
	return ledgers, nil
}

// CreateLedger stores a new ledger.
func (s *Store) CreateLedger(ctx context.Context, ledger models.Ledger) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ledger.ID == uuid.Nil {
		ledger.ID = uuid.New()
	}
	if _, exists := s.ledgers[ledger.ID]; exists {
		return uuid.Nil, fmt.Errorf("%w: ledger %s already exists", models.ErrValidation, ledger.ID)
	}
	s.ledgers[ledger.ID] = &ledgerEntry{ledger: cloneLedger(ledger)}
	s.order = append(s.order, ledger.ID)
	s.revision++
	return ledger.ID, nil
}

// UpdateLedger replaces ledger metadata.
func (s *Store) UpdateLedger(ctx context.Context, ledger models.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.ledgers[ledger.ID]
	if !ok {
		return fmt.Errorf("%w: ledger %s", models.ErrNotFound, ledger.ID)
	}
	entry.ledger = cloneLedger(ledger)
	s.revision++
	return nil
}

// DeleteLedger removes a ledger and its transactions.
func (s *Store) DeleteLedger(ctx context.Context, ledgerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ledgers[ledgerID]; !ok {
		return fmt.Errorf("%w: ledger %s", models.ErrNotFound, ledgerID)
	}
	delete(s.ledgers, ledgerID)
	s.order = slices.DeleteFunc(s.order, func(id uuid.UUID) bool { return id == ledgerID })
	s.revision++
	return nil
}

// ListTransactions returns the ledger's transactions in insertion order.
func (s *Store) ListTransactions(ctx context.Context, ledgerID uuid.UUID) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.ledgers[ledgerID]
	if !ok {
		return nil, fmt.Errorf("%w: ledger %s", models.ErrNotFound, ledgerID)
	}
	txns := make([]models.Transaction, len(entry.transactions))
	for i, t := range entry.transactions {
		txns[i] = cloneTransaction(t)
	}
	return txns, nil
}

// CreateTransaction appends a transaction to a ledger.
func (s *Store) CreateTransaction(ctx context.Context, ledgerID uuid.UUID, txn models.Transaction) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.ledgers[ledgerID]
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: ledger %s", models.ErrNotFound, ledgerID)
	}
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	if indexOf(entry.transactions, txn.ID) >= 0 {
		return uuid.Nil, fmt.Errorf("%w: transaction %s already exists", models.ErrValidation, txn.ID)
	}
	entry.transactions = append(entry.transactions, cloneTransaction(txn))
	s.revision++
	return txn.ID, nil
}

// UpdateTransaction replaces an existing transaction.
func (s *Store) UpdateTransaction(ctx context.Context, ledgerID uuid.UUID, txn models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.ledgers[ledgerID]
	if !ok {
		return fmt.Errorf("%w: ledger %s", models.ErrNotFound, ledgerID)
	}
	i := indexOf(entry.transactions, txn.ID)
	if i < 0 {
		return fmt.Errorf("%w: transaction %s", models.ErrNotFound, txn.ID)
	}
	entry.transactions[i] = cloneTransaction(txn)
	s.revision++
	return nil
}

// DeleteTransaction removes a transaction.
func (s *Store) DeleteTransaction(ctx context.Context, ledgerID, txnID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.ledgers[ledgerID]
	if !ok {
		return fmt.Errorf("%w: ledger %s", models.ErrNotFound, ledgerID)
	}
	i := indexOf(entry.transactions, txnID)
	if i < 0 {
		return fmt.Errorf("%w: transaction %s", models.ErrNotFound, txnID)
	}
	entry.transactions = slices.Delete(entry.transactions, i, i+1)
	s.revision++
	return nil
}

// Refresh reports whether any write happened since the previous Refresh.
func (s *Store) Refresh(ctx context.Context) (storage.RefreshResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.revision != s.seen
	s.seen = s.revision
	return storage.RefreshResult{HasChanges: changed}, nil
}

func indexOf(txns []models.Transaction, id uuid.UUID) int {
	return slices.IndexFunc(txns, func(t models.Transaction) bool { return t.ID == id })
}

func cloneGroup(g *models.Group) *models.Group {
	return &models.Group{Entities: slices.Clone(g.Entities)}
}

func cloneLedger(l models.Ledger) models.Ledger {
	l.Participants = slices.Clone(l.Participants)
	return l
}

func cloneTransaction(t models.Transaction) models.Transaction {
	t.SplitRatios = slices.Clone(t.SplitRatios)
	return t
}
