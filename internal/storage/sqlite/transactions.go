package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/borrowchecker/internal/models"
)

// ListTransactions returns a ledger's transactions in insertion order.
// Rows that fail to decode are logged and skipped.
func (s *SQLiteStore) ListTransactions(ctx context.Context, ledgerID uuid.UUID) ([]models.Transaction, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM ledgers WHERE id = ?", ledgerID.String()).Scan(&one)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: ledger %s", models.ErrNotFound, ledgerID)
	}
	if err != nil {
		return nil, backendError("failed to get ledger", err)
	}

	splits, err := s.splits(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, paid_by_entity, currency_iso_4217, amount, transaction_datetime
		 FROM transactions WHERE ledger_id = ? ORDER BY rowid`,
		ledgerID.String(),
	)
	if err != nil {
		return nil, backendError("failed to get transactions", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var id, description, paidBy, currency, amount, datetime string
		if err := rows.Scan(&id, &description, &paidBy, &currency, &amount, &datetime); err != nil {
			return nil, backendError("failed to scan transaction", err)
		}
		txn, err := decodeRow(id, description, paidBy, currency, amount, datetime)
		if err != nil {
			slog.Warn("Skipping unreadable transaction row", "ledger", ledgerID, "id", id, "error", err)
			continue
		}
		txn.SplitRatios = splits[id]
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, backendError("failed to iterate transactions", err)
	}
	return txns, nil
}

func decodeRow(id, description, paidBy, currency, amount, datetime string) (*models.Transaction, error) {
	txn := &models.Transaction{Description: description, Currency: currency}
	var err error
	if txn.ID, err = models.ParseID(id); err != nil {
		return nil, err
	}
	if txn.PaidByEntity, err = models.ParseID(paidBy); err != nil {
		return nil, err
	}
	if txn.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	if txn.Datetime, err = time.Parse(time.RFC3339Nano, datetime); err != nil {
		return nil, fmt.Errorf("transaction_datetime: %w", err)
	}
	return txn, nil
}

// splits loads the split ratios of every transaction in a ledger in one query,
// keyed by transaction ID text.
func (s *SQLiteStore) splits(ctx context.Context, ledgerID uuid.UUID) (map[string][]models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.transaction_id, s.entity_id, s.numerator, s.denominator
		 FROM split_ratios s JOIN transactions t ON t.id = s.transaction_id
		 WHERE t.ledger_id = ?
		 ORDER BY s.transaction_id, s.position`,
		ledgerID.String(),
	)
	if err != nil {
		return nil, backendError("failed to get split ratios", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Split)
	for rows.Next() {
		var txnID, entityID string
		var ratio models.Ratio
		if err := rows.Scan(&txnID, &entityID, &ratio.Num, &ratio.Den); err != nil {
			return nil, backendError("failed to scan split ratio", err)
		}
		// A malformed entity id is kept as the nil UUID so validation reports it.
		id, err := models.ParseID(entityID)
		if err != nil {
			slog.Warn("Unreadable split entity", "ledger", ledgerID, "transaction", txnID, "error", err)
		}
		out[txnID] = append(out[txnID], models.Split{EntityID: id, Ratio: ratio})
	}
	if err := rows.Err(); err != nil {
		return nil, backendError("failed to iterate split ratios", err)
	}
	return out, nil
}

// CreateTransaction persists a new transaction with its split ratios.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, ledgerID uuid.UUID, txn models.Transaction) (uuid.UUID, error) {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	exists, err := rowExists(ctx, tx, "SELECT 1 FROM ledgers WHERE id = ?", ledgerID.String())
	if err != nil {
		return uuid.Nil, err
	}
	if !exists {
		return uuid.Nil, fmt.Errorf("%w: ledger %s", models.ErrNotFound, ledgerID)
	}
	exists, err = rowExists(ctx, tx, "SELECT 1 FROM transactions WHERE id = ?", txn.ID.String())
	if err != nil {
		return uuid.Nil, err
	}
	if exists {
		return uuid.Nil, fmt.Errorf("%w: transaction %s already exists", models.ErrValidation, txn.ID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions
		 (id, ledger_id, description, paid_by_entity, currency_iso_4217, amount, transaction_datetime)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		txn.ID.String(), ledgerID.String(), txn.Description, txn.PaidByEntity.String(),
		txn.Currency, txn.Amount.String(), txn.Datetime.Format(time.RFC3339Nano),
	)
	if err != nil {
		return uuid.Nil, backendError("failed to insert transaction", err)
	}
	if err := insertSplits(ctx, tx, txn); err != nil {
		return uuid.Nil, err
	}
	if err := commit(ctx, tx); err != nil {
		return uuid.Nil, err
	}
	return txn.ID, nil
}

// UpdateTransaction replaces a transaction and its split ratios.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, ledgerID uuid.UUID, txn models.Transaction) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE transactions
		 SET description = ?, paid_by_entity = ?, currency_iso_4217 = ?, amount = ?, transaction_datetime = ?
		 WHERE id = ? AND ledger_id = ?`,
		txn.Description, txn.PaidByEntity.String(), txn.Currency, txn.Amount.String(),
		txn.Datetime.Format(time.RFC3339Nano), txn.ID.String(), ledgerID.String(),
	)
	if err != nil {
		return backendError("failed to update transaction", err)
	}
	if err := expectRow(result, "transaction", txn.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM split_ratios WHERE transaction_id = ?", txn.ID.String()); err != nil {
		return backendError("failed to clear split ratios", err)
	}
	if err := insertSplits(ctx, tx, txn); err != nil {
		return err
	}
	return commit(ctx, tx)
}

// DeleteTransaction removes a transaction; its split ratios cascade.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, ledgerID, txnID uuid.UUID) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND ledger_id = ?",
		txnID.String(), ledgerID.String(),
	)
	if err != nil {
		return backendError("failed to delete transaction", err)
	}
	if err := expectRow(result, "transaction", txnID); err != nil {
		return err
	}
	return commit(ctx, tx)
}

func insertSplits(ctx context.Context, tx *sql.Tx, txn models.Transaction) error {
	for i, split := range txn.SplitRatios {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO split_ratios (transaction_id, position, entity_id, numerator, denominator)
			 VALUES (?, ?, ?, ?, ?)`,
			txn.ID.String(), i, split.EntityID.String(), split.Ratio.Num, split.Ratio.Den,
		)
		if err != nil {
			return backendError("failed to insert split ratio", err)
		}
	}
	return nil
}
