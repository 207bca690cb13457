package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/mmynk/borrowchecker/internal/calculator"
	"github.com/mmynk/borrowchecker/internal/models"
	"github.com/mmynk/borrowchecker/internal/validation"
)

// Balances computes what every entity owes userID in a ledger, per currency.
// uuid.Nil selects the current ledger or the viewing user.
func (s *Session) Balances(ctx context.Context, ledgerID, userID uuid.UUID) (calculator.Balances, error) {
	ledgerID, err := s.resolveLedger(ledgerID)
	if err != nil {
		return nil, err
	}
	userID, err = s.resolveUser(userID)
	if err != nil {
		return nil, err
	}
	txns, err := s.Transactions(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	return calculator.CalculateBalances(txns, userID), nil
}

// Settlements proposes payments that settle a whole ledger, per currency.
// uuid.Nil selects the current ledger.
func (s *Session) Settlements(ctx context.Context, ledgerID uuid.UUID) (map[string][]models.Settlement, error) {
	ledgerID, err := s.resolveLedger(ledgerID)
	if err != nil {
		return nil, err
	}
	txns, err := s.Transactions(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	net := calculator.NetBalances(txns)
	out := make(map[string][]models.Settlement, len(net))
	for _, currency := range net.Currencies() {
		out[currency] = calculator.CalculateSettlements(net[currency], currency)
	}
	return out, nil
}

// ValidateLedger checks a loaded ledger and all of its transactions against the group.
func (s *Session) ValidateLedger(ctx context.Context, ledgerID uuid.UUID) (validation.Result, error) {
	ledgerID, err := s.resolveLedger(ledgerID)
	if err != nil {
		return validation.Result{}, err
	}
	lwt, err := s.LedgerWithTransactions(ctx, ledgerID)
	if err != nil {
		return validation.Result{}, err
	}
	group := s.Group()
	result := validation.ValidateLedger(&lwt.Ledger, group)
	result.Errors = append(result.Errors, validation.ValidateLedgerTransactions(lwt, group).Errors...)
	return result, nil
}
