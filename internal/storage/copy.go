package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/borrowchecker/internal/models"
)

// CopyStats counts what Copy wrote and what it found already present.
type CopyStats struct {
	Entities            int
	Ledgers             int
	Transactions        int
	SkippedLedgers      int
	SkippedTransactions int
}

// Copy writes the group, ledgers and transactions of src into dst, keeping their IDs.
// Ledgers and transactions dst already holds are left alone and counted as skipped.
func Copy(ctx context.Context, dst, src Repository) (CopyStats, error) {
	var stats CopyStats

	group, err := src.LoadGroup(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to load group: %w", err)
	}
	if err := dst.SaveGroup(ctx, group); err != nil {
		return stats, fmt.Errorf("failed to save group: %w", err)
	}
	stats.Entities = len(group.Entities)

	ledgers, err := src.ListLedgers(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list ledgers: %w", err)
	}
	for _, ledger := range ledgers {
		if _, err := dst.CreateLedger(ctx, ledger); errors.Is(err, models.ErrValidation) {
			slog.Info("Ledger already present, copying missing transactions only", "ledger", ledger.ID)
			stats.SkippedLedgers++
		} else if err != nil {
			return stats, fmt.Errorf("failed to create ledger %s: %w", ledger.ID, err)
		} else {
			stats.Ledgers++
		}

		txns, err := src.ListTransactions(ctx, ledger.ID)
		if err != nil {
			return stats, fmt.Errorf("failed to list transactions of %s: %w", ledger.ID, err)
		}
		for _, txn := range txns {
			_, err := dst.CreateTransaction(ctx, ledger.ID, txn)
			switch {
			case errors.Is(err, models.ErrValidation):
				stats.SkippedTransactions++
			case err != nil:
				return stats, fmt.Errorf("failed to create transaction %s: %w", txn.ID, err)
			default:
				stats.Transactions++
			}
		}
		slog.Debug("Ledger copied", "ledger", ledger.ID, "transactions", len(txns))
	}
	return stats, nil
}
