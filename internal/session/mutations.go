package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mmynk/borrowchecker/internal/models"
	"github.com/mmynk/borrowchecker/internal/validation"
)

// Writes are validated against the loaded state, committed to the repository, then
// reflected in the session. At most one write per ledger is in flight.

// lockLedger returns the write lock of one ledger, locked.
func (s *Session) lockLedger(id uuid.UUID) *sync.Mutex {
	s.writeMu.Lock()
	mu, ok := s.writeLocks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.writeLocks[id] = mu
	}
	s.writeMu.Unlock()
	mu.Lock()
	return mu
}

func (s *Session) observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = models.Kind(err)
	}
	s.metrics.ObserveMutation(op, outcome)
}

// SaveGroup validates and stores a new group, then reloads the session.
func (s *Session) SaveGroup(ctx context.Context, group *models.Group) (err error) {
	defer func() { s.observe("save_group", err) }()

	result := validation.ValidateGroup(group)
	if err := result.Err(); err != nil {
		return err
	}
	if err := s.repo.SaveGroup(ctx, group); err != nil {
		return err
	}
	return s.Load(ctx)
}

// CreateLedger validates and stores a new ledger and returns its ID.
// A nil ID is replaced by a fresh one.
func (s *Session) CreateLedger(ctx context.Context, ledger models.Ledger) (id uuid.UUID, err error) {
	defer func() { s.observe("create_ledger", err) }()

	if ledger.ID == uuid.Nil {
		ledger.ID = uuid.New()
	}
	mu := s.lockLedger(ledger.ID)
	defer mu.Unlock()

	result := validation.ValidateLedger(&ledger, s.Group())
	if err := result.Err(); err != nil {
		return uuid.Nil, err
	}
	if id, err = s.repo.CreateLedger(ctx, ledger); err != nil {
		return uuid.Nil, err
	}
	if err := s.reloadLedgers(ctx); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// UpdateLedger validates and stores new metadata for an existing ledger.
func (s *Session) UpdateLedger(ctx context.Context, ledger models.Ledger) (err error) {
	defer func() { s.observe("update_ledger", err) }()

	mu := s.lockLedger(ledger.ID)
	defer mu.Unlock()

	if _, err := s.Ledger(ledger.ID); err != nil {
		return err
	}
	result := validation.ValidateLedger(&ledger, s.Group())
	if err := result.Err(); err != nil {
		return err
	}
	if err := s.repo.UpdateLedger(ctx, ledger); err != nil {
		return err
	}
	return s.reloadLedgers(ctx)
}

// DeleteLedger removes a ledger with its transactions. Deleting the current ledger
// clears the selection.
func (s *Session) DeleteLedger(ctx context.Context, ledgerID uuid.UUID) (err error) {
	defer func() { s.observe("delete_ledger", err) }()

	mu := s.lockLedger(ledgerID)
	defer mu.Unlock()

	if _, err := s.Ledger(ledgerID); err != nil {
		return err
	}
	if err := s.repo.DeleteLedger(ctx, ledgerID); err != nil {
		return err
	}
	s.invalidate(ledgerID)
	if err := s.reloadLedgers(ctx); err != nil {
		return err
	}

	s.currentMu.Lock()
	if s.current == ledgerID {
		s.current = uuid.Nil
	}
	s.currentMu.Unlock()
	return nil
}

// CreateTransaction validates and stores a new transaction and returns its ID.
// A nil ID is replaced by a fresh one.
func (s *Session) CreateTransaction(ctx context.Context, ledgerID uuid.UUID, txn models.Transaction) (id uuid.UUID, err error) {
	defer func() { s.observe("create_transaction", err) }()

	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	mu := s.lockLedger(ledgerID)
	defer mu.Unlock()

	if err := s.validateTransaction(ledgerID, &txn); err != nil {
		return uuid.Nil, err
	}
	if id, err = s.repo.CreateTransaction(ctx, ledgerID, txn); err != nil {
		return uuid.Nil, err
	}
	s.invalidate(ledgerID)
	return id, nil
}

// UpdateTransaction validates and replaces an existing transaction.
func (s *Session) UpdateTransaction(ctx context.Context, ledgerID uuid.UUID, txn models.Transaction) (err error) {
	defer func() { s.observe("update_transaction", err) }()

	mu := s.lockLedger(ledgerID)
	defer mu.Unlock()

	if err := s.validateTransaction(ledgerID, &txn); err != nil {
		return err
	}
	if err := s.repo.UpdateTransaction(ctx, ledgerID, txn); err != nil {
		return err
	}
	s.invalidate(ledgerID)
	return nil
}

// DeleteTransaction removes a transaction from a ledger.
func (s *Session) DeleteTransaction(ctx context.Context, ledgerID, txnID uuid.UUID) (err error) {
	defer func() { s.observe("delete_transaction", err) }()

	mu := s.lockLedger(ledgerID)
	defer mu.Unlock()

	if _, err := s.Ledger(ledgerID); err != nil {
		return err
	}
	if err := s.repo.DeleteTransaction(ctx, ledgerID, txnID); err != nil {
		return err
	}
	s.invalidate(ledgerID)
	return nil
}

func (s *Session) validateTransaction(ledgerID uuid.UUID, txn *models.Transaction) error {
	ledger, err := s.Ledger(ledgerID)
	if err != nil {
		return err
	}
	result := validation.ValidateTransaction(txn, &ledger, s.Group())
	return result.Err()
}

// reloadLedgers re-reads the ledger set after a ledger write, keeping cached transactions.
func (s *Session) reloadLedgers(ctx context.Context) error {
	ledgers, err := s.repo.ListLedgers(ctx)
	if err != nil {
		return err
	}
	s.ledgersMu.Lock()
	s.ledgers = ledgers
	s.gen++
	s.ledgersMu.Unlock()
	s.metrics.SetLedgers(len(ledgers))
	return nil
}
