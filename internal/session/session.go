// Package session holds the state of one running Borrow Checker application: the loaded
// group, the ledger set, the per-ledger transaction cache, the current ledger and the
// viewing user.
//
// The Session is created by the composition root (cmd/server, cmd/borrowck) and passed to
// whatever serves commands. It is a read-mostly cache over a storage.Repository and is
// rebuilt by Refresh; it is never authoritative across a refresh.
//
// Locking: each field has its own lock, always taken in the order
// group -> ledgers -> current -> user, and never held across repository I/O.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mmynk/borrowchecker/internal/metrics"
	"github.com/mmynk/borrowchecker/internal/models"
	"github.com/mmynk/borrowchecker/internal/storage"
)

// Option configures a Session.
type Option func(*Session)

// WithMetrics records refreshes, ledger counts and writes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithUser preselects the viewing user once the group is loaded.
func WithUser(id uuid.UUID) Option {
	return func(s *Session) { s.user = id }
}

// Session is the shared state of one application instance.
type Session struct {
	repo    storage.Repository
	metrics *metrics.Metrics

	groupMu sync.RWMutex
	group   *models.Group

	ledgersMu sync.RWMutex
	ledgers   []models.Ledger
	cache     map[uuid.UUID][]models.Transaction
	gen       uint64 // bumped whenever ledgers or cache entries are invalidated

	currentMu sync.RWMutex
	current   uuid.UUID // uuid.Nil: no ledger selected

	userMu sync.RWMutex
	user   uuid.UUID // uuid.Nil: no user selected

	writeMu    sync.Mutex
	writeLocks map[uuid.UUID]*sync.Mutex
}

// New creates an empty Session over repo. Call Load before use.
func New(repo storage.Repository, opts ...Option) *Session {
	s := &Session{
		repo:       repo,
		cache:      make(map[uuid.UUID][]models.Transaction),
		writeLocks: make(map[uuid.UUID]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository returns the repository the session reads from.
func (s *Session) Repository() storage.Repository {
	return s.repo
}

// Load reads the group and the ledger set and replaces the session's view of them.
// Selections that no longer resolve are cleared.
func (s *Session) Load(ctx context.Context) error {
	group, err := s.repo.LoadGroup(ctx)
	if err != nil {
		return fmt.Errorf("failed to load group: %w", err)
	}
	ledgers, err := s.repo.ListLedgers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list ledgers: %w", err)
	}

	s.groupMu.Lock()
	s.group = group
	s.groupMu.Unlock()

	s.ledgersMu.Lock()
	s.ledgers = ledgers
	s.cache = make(map[uuid.UUID][]models.Transaction)
	s.gen++
	s.ledgersMu.Unlock()

	s.currentMu.Lock()
	if s.current != uuid.Nil && !containsLedger(ledgers, s.current) {
		slog.Info("Current ledger no longer exists, clearing selection", "ledger", s.current)
		s.current = uuid.Nil
	}
	s.currentMu.Unlock()

	s.userMu.Lock()
	if s.user != uuid.Nil && !group.Has(s.user) {
		slog.Info("Selected user no longer exists, clearing selection", "user", s.user)
		s.user = uuid.Nil
	}
	s.userMu.Unlock()

	s.metrics.SetLedgers(len(ledgers))
	slog.Info("Session loaded", "entities", len(group.Entities), "ledgers", len(ledgers))
	return nil
}

// Refresh asks the repository to re-resolve its state and reloads the session if it changed.
func (s *Session) Refresh(ctx context.Context) (storage.RefreshResult, error) {
	res, err := s.repo.Refresh(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to refresh repository: %w", err)
	}
	s.metrics.ObserveRefresh(res.HasChanges)
	if !res.HasChanges {
		return res, nil
	}
	if err := s.Load(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// Group returns a copy of the loaded group, or nil before Load.
func (s *Session) Group() *models.Group {
	s.groupMu.RLock()
	defer s.groupMu.RUnlock()
	if s.group == nil {
		return nil
	}
	return &models.Group{Entities: slices.Clone(s.group.Entities)}
}

// Ledgers returns the loaded ledgers.
func (s *Session) Ledgers() []models.Ledger {
	s.ledgersMu.RLock()
	defer s.ledgersMu.RUnlock()
	out := make([]models.Ledger, len(s.ledgers))
	for i, l := range s.ledgers {
		l.Participants = slices.Clone(l.Participants)
		out[i] = l
	}
	return out
}

// Ledger returns one loaded ledger.
func (s *Session) Ledger(id uuid.UUID) (models.Ledger, error) {
	s.ledgersMu.RLock()
	defer s.ledgersMu.RUnlock()
	for _, l := range s.ledgers {
		if l.ID == id {
			l.Participants = slices.Clone(l.Participants)
			return l, nil
		}
	}
	return models.Ledger{}, fmt.Errorf("%w: ledger %s", models.ErrNotFound, id)
}

// Transactions returns a ledger's transactions, reading them from the repository on
// first use and serving them from the cache afterwards.
func (s *Session) Transactions(ctx context.Context, ledgerID uuid.UUID) ([]models.Transaction, error) {
	s.ledgersMu.RLock()
	known := containsLedger(s.ledgers, ledgerID)
	cached, hit := s.cache[ledgerID]
	gen := s.gen
	s.ledgersMu.RUnlock()

	if !known {
		return nil, fmt.Errorf("%w: ledger %s", models.ErrNotFound, ledgerID)
	}
	if hit {
		return cloneTransactions(cached), nil
	}

	txns, err := s.repo.ListTransactions(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	slog.Debug("Transactions loaded", "ledger", ledgerID, "count", len(txns))

	s.ledgersMu.Lock()
	// A refresh or write in the meantime makes this read stale; don't cache it.
	if s.gen == gen {
		s.cache[ledgerID] = txns
	}
	s.ledgersMu.Unlock()
	return cloneTransactions(txns), nil
}

// LedgerWithTransactions returns a ledger together with its transactions.
func (s *Session) LedgerWithTransactions(ctx context.Context, ledgerID uuid.UUID) (*models.LedgerWithTransactions, error) {
	ledger, err := s.Ledger(ledgerID)
	if err != nil {
		return nil, err
	}
	txns, err := s.Transactions(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	return &models.LedgerWithTransactions{Ledger: ledger, Transactions: txns}, nil
}

// SwitchLedger makes id the current ledger. An id that is not in the loaded ledger set
// fails with models.ErrNotFound and leaves the current selection unchanged.
func (s *Session) SwitchLedger(id uuid.UUID) error {
	s.ledgersMu.RLock()
	defer s.ledgersMu.RUnlock()
	if !containsLedger(s.ledgers, id) {
		return fmt.Errorf("%w: ledger %s", models.ErrNotFound, id)
	}

	s.currentMu.Lock()
	defer s.currentMu.Unlock()
	s.current = id
	slog.Debug("Switched ledger", "ledger", id)
	return nil
}

// CurrentLedger returns the current ledger ID and whether one is selected.
func (s *Session) CurrentLedger() (uuid.UUID, bool) {
	s.currentMu.RLock()
	defer s.currentMu.RUnlock()
	return s.current, s.current != uuid.Nil
}

// SelectUser makes id the viewing user. An id that is not in the loaded group fails with
// models.ErrNotFound and leaves the selection unchanged.
func (s *Session) SelectUser(id uuid.UUID) error {
	s.groupMu.RLock()
	defer s.groupMu.RUnlock()
	if !s.group.Has(id) {
		return fmt.Errorf("%w: entity %s", models.ErrNotFound, id)
	}

	s.userMu.Lock()
	defer s.userMu.Unlock()
	s.user = id
	return nil
}

// CurrentUser returns the viewing user and whether one is selected.
func (s *Session) CurrentUser() (uuid.UUID, bool) {
	s.userMu.RLock()
	defer s.userMu.RUnlock()
	return s.user, s.user != uuid.Nil
}

// resolveLedger returns id, or the current ledger when id is uuid.Nil.
func (s *Session) resolveLedger(id uuid.UUID) (uuid.UUID, error) {
	if id != uuid.Nil {
		return id, nil
	}
	if cur, ok := s.CurrentLedger(); ok {
		return cur, nil
	}
	return uuid.Nil, fmt.Errorf("%w: no ledger selected", models.ErrNotFound)
}

// resolveUser returns id, or the viewing user when id is uuid.Nil.
func (s *Session) resolveUser(id uuid.UUID) (uuid.UUID, error) {
	if id != uuid.Nil {
		return id, nil
	}
	if cur, ok := s.CurrentUser(); ok {
		return cur, nil
	}
	return uuid.Nil, fmt.Errorf("%w: no user selected", models.ErrNotFound)
}

// invalidate drops the cached transactions of one ledger.
func (s *Session) invalidate(ledgerID uuid.UUID) {
	s.ledgersMu.Lock()
	delete(s.cache, ledgerID)
	s.gen++
	s.ledgersMu.Unlock()
}

// cloneTransactions copies txns deeply enough that callers can't reach the cache.
func cloneTransactions(txns []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(txns))
	for i, t := range txns {
		t.SplitRatios = slices.Clone(t.SplitRatios)
		out[i] = t
	}
	return out
}

func containsLedger(ledgers []models.Ledger, id uuid.UUID) bool {
	return slices.ContainsFunc(ledgers, func(l models.Ledger) bool { return l.ID == id })
}
