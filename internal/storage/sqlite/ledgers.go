package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/borrowchecker/internal/models"
)

// ListLedgers returns every ledger in creation order.
// A row with a malformed identifier fails the whole listing.
func (s *SQLiteStore) ListLedgers(ctx context.Context) ([]models.Ledger, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, display_name FROM ledgers ORDER BY created_at, rowid",
	)
	if err != nil {
		return nil, backendError("failed to list ledgers", err)
	}
	defer rows.Close()

	var ledgers []models.Ledger
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, backendError("failed to scan ledger", err)
		}
		ledgerID, err := models.ParseID(id)
		if err != nil {
			return nil, fmt.Errorf("%w: ledger row: %v", models.ErrParse, err)
		}
		ledgers = append(ledgers, models.Ledger{ID: ledgerID, DisplayName: name})
	}
	if err := rows.Err(); err != nil {
		return nil, backendError("failed to iterate ledgers", err)
	}

	participants, err := s.participants(ctx)
	if err != nil {
		return nil, err
	}
	for i := range ledgers {
		ledgers[i].Participants = participants[ledgers[i].ID]
	}
	return ledgers, nil
}

// participants loads the participant lists of all ledgers, keyed by ledger ID.
func (s *SQLiteStore) participants(ctx context.Context) (map[uuid.UUID][]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT ledger_id, entity_id FROM ledger_participants ORDER BY ledger_id, position",
	)
	if err != nil {
		return nil, backendError("failed to get participants", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]uuid.UUID)
	for rows.Next() {
		var ledgerID, entityID string
		if err := rows.Scan(&ledgerID, &entityID); err != nil {
			return nil, backendError("failed to scan participant", err)
		}
		lid, err := models.ParseID(ledgerID)
		if err != nil {
			return nil, fmt.Errorf("%w: participant row: %v", models.ErrParse, err)
		}
		eid, err := models.ParseID(entityID)
		if err != nil {
			return nil, fmt.Errorf("%w: participant row: %v", models.ErrParse, err)
		}
		out[lid] = append(out[lid], eid)
	}
	if err := rows.Err(); err != nil {
		return nil, backendError("failed to iterate participants", err)
	}
	return out, nil
}

// CreateLedger persists a new ledger with its participants.
func (s *SQLiteStore) CreateLedger(ctx context.Context, ledger models.Ledger) (uuid.UUID, error) {
	if ledger.ID == uuid.Nil {
		ledger.ID = uuid.New()
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	exists, err := rowExists(ctx, tx, "SELECT 1 FROM ledgers WHERE id = ?", ledger.ID.String())
	if err != nil {
		return uuid.Nil, err
	}
	if exists {
		return uuid.Nil, fmt.Errorf("%w: ledger %s already exists", models.ErrValidation, ledger.ID)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO ledgers (id, display_name, created_at) VALUES (?, ?, ?)",
		ledger.ID.String(), ledger.DisplayName, time.Now().UnixNano(),
	)
	if err != nil {
		return uuid.Nil, backendError("failed to insert ledger", err)
	}
	if err := insertParticipants(ctx, tx, ledger); err != nil {
		return uuid.Nil, err
	}
	if err := commit(ctx, tx); err != nil {
		return uuid.Nil, err
	}
	return ledger.ID, nil
}

// UpdateLedger replaces the display name and participant list of a ledger.
func (s *SQLiteStore) UpdateLedger(ctx context.Context, ledger models.Ledger) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"UPDATE ledgers SET display_name = ? WHERE id = ?",
		ledger.DisplayName, ledger.ID.String(),
	)
	if err != nil {
		return backendError("failed to update ledger", err)
	}
	if err := expectRow(result, "ledger", ledger.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM ledger_participants WHERE ledger_id = ?", ledger.ID.String()); err != nil {
		return backendError("failed to clear participants", err)
	}
	if err := insertParticipants(ctx, tx, ledger); err != nil {
		return err
	}
	return commit(ctx, tx)
}

// DeleteLedger removes a ledger; participants, transactions and splits cascade.
func (s *SQLiteStore) DeleteLedger(ctx context.Context, ledgerID uuid.UUID) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM ledgers WHERE id = ?", ledgerID.String())
	if err != nil {
		return backendError("failed to delete ledger", err)
	}
	if err := expectRow(result, "ledger", ledgerID); err != nil {
		return err
	}
	return commit(ctx, tx)
}

func insertParticipants(ctx context.Context, tx *sql.Tx, ledger models.Ledger) error {
	for i, p := range ledger.Participants {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO ledger_participants (ledger_id, entity_id, position) VALUES (?, ?, ?)",
			ledger.ID.String(), p.String(), i,
		)
		if err != nil {
			return backendError("failed to insert participant", err)
		}
	}
	return nil
}

func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, backendError("failed to query", err)
	}
	return true, nil
}

// expectRow turns a statement that touched no row into models.ErrNotFound.
func expectRow(result sql.Result, what string, id uuid.UUID) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return backendError("failed to get rows affected", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s", models.ErrNotFound, what, id)
	}
	return nil
}
