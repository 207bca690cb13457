package sqlite

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/borrowchecker/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "borrowchecker-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "nested", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	group := &models.Group{Entities: []models.Entity{
		{ID: alice, DisplayName: "Alice"},
		{ID: bob, DisplayName: "Bob"},
		{ID: carol, DisplayName: "Carol"},
	}}

	var ledgerID uuid.UUID

	t.Run("LoadGroup on empty database", func(t *testing.T) {
		_, err := store.LoadGroup(ctx)
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SaveGroup keeps entity order", func(t *testing.T) {
		if err := store.SaveGroup(ctx, group); err != nil {
			t.Fatalf("SaveGroup failed: %v", err)
		}
		got, err := store.LoadGroup(ctx)
		if err != nil {
			t.Fatalf("LoadGroup failed: %v", err)
		}
		if diff := cmp.Diff(group, got); diff != "" {
			t.Errorf("group mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("CreateLedger generates ID", func(t *testing.T) {
		var err error
		ledgerID, err = store.CreateLedger(ctx, models.Ledger{
			DisplayName:  "39C3",
			Participants: []uuid.UUID{carol, alice, bob},
		})
		if err != nil {
			t.Fatalf("CreateLedger failed: %v", err)
		}
		if ledgerID == uuid.Nil {
			t.Fatal("Expected ledger ID to be generated")
		}

		ledgers, err := store.ListLedgers(ctx)
		if err != nil {
			t.Fatalf("ListLedgers failed: %v", err)
		}
		want := []models.Ledger{{ID: ledgerID, DisplayName: "39C3", Participants: []uuid.UUID{carol, alice, bob}}}
		if diff := cmp.Diff(want, ledgers); diff != "" {
			t.Errorf("ledgers mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("CreateLedger rejects duplicate ID", func(t *testing.T) {
		_, err := store.CreateLedger(ctx, models.Ledger{ID: ledgerID, DisplayName: "again"})
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("Expected ErrValidation, got %v", err)
		}
	})

	t.Run("UpdateLedger replaces name and participants", func(t *testing.T) {
		updated := models.Ledger{ID: ledgerID, DisplayName: "39C3 Hamburg", Participants: []uuid.UUID{alice, bob, carol}}
		if err := store.UpdateLedger(ctx, updated); err != nil {
			t.Fatalf("UpdateLedger failed: %v", err)
		}
		ledgers, err := store.ListLedgers(ctx)
		if err != nil {
			t.Fatalf("ListLedgers failed: %v", err)
		}
		if diff := cmp.Diff([]models.Ledger{updated}, ledgers); diff != "" {
			t.Errorf("ledgers mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Malformed split entity is logged", func(t *testing.T) {
		id, err := store.CreateTransaction(ctx, ledgerID, models.Transaction{
			PaidByEntity: alice,
			Currency:     "EUR",
			Amount:       decimal.NewFromInt(8),
			Datetime:     time.Date(2025, 12, 27, 10, 0, 0, 0, time.UTC),
			SplitRatios:  models.EqualSplits([]uuid.UUID{alice, bob}),
		})
		if err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
		defer store.DeleteTransaction(ctx, ledgerID, id)
		if _, err := store.db.ExecContext(ctx, "UPDATE split_ratios SET entity_id = 'bob' WHERE transaction_id = ? AND position = 1", id.String()); err != nil {
			t.Fatalf("corrupting split failed: %v", err)
		}

		var buf bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
		defer slog.SetDefault(prev)

		txns, err := store.ListTransactions(ctx, ledgerID)
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if len(txns) != 1 || len(txns[0].SplitRatios) != 2 {
			t.Fatalf("Expected the transaction with both splits, got %+v", txns)
		}
		if txns[0].SplitRatios[1].EntityID != uuid.Nil {
			t.Errorf("Expected the nil UUID for the malformed entity, got %s", txns[0].SplitRatios[1].EntityID)
		}
		if !strings.Contains(buf.String(), "Unreadable split entity") || !strings.Contains(buf.String(), id.String()) {
			t.Errorf("Expected a warning naming the transaction, got %q", buf.String())
		}
	})

	t.Run("Transaction lifecycle", func(t *testing.T) {
		offset := time.FixedZone("", 3600)
		txn := models.Transaction{
			Description:  "🚆",
			PaidByEntity: bob,
			Currency:     "CHF",
			Amount:       decimal.RequireFromString("598.80"),
			Datetime:     time.Date(2025, 11, 17, 14, 43, 2, 500, offset),
			SplitRatios: []models.Split{
				{EntityID: alice, Ratio: models.NewRatio(1, 3)},
				{EntityID: bob, Ratio: models.NewRatio(2, 6)},
				{EntityID: carol, Ratio: models.NewRatio(1, 3)},
			},
		}

		id, err := store.CreateTransaction(ctx, ledgerID, txn)
		if err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
		txn.ID = id

		txns, err := store.ListTransactions(ctx, ledgerID)
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if diff := cmp.Diff([]models.Transaction{txn}, txns); diff != "" {
			t.Errorf("transactions mismatch (-want +got):\n%s", diff)
		}
		if _, off := txns[0].Datetime.Zone(); off != 3600 {
			t.Errorf("offset: expected 3600, got %d", off)
		}

		txn.Amount = decimal.RequireFromString("12.05")
		txn.SplitRatios = models.EqualSplits([]uuid.UUID{alice, bob})
		if err := store.UpdateTransaction(ctx, ledgerID, txn); err != nil {
			t.Fatalf("UpdateTransaction failed: %v", err)
		}
		txns, err = store.ListTransactions(ctx, ledgerID)
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if diff := cmp.Diff([]models.Transaction{txn}, txns); diff != "" {
			t.Errorf("updated transaction mismatch (-want +got):\n%s", diff)
		}

		if err := store.DeleteTransaction(ctx, ledgerID, id); err != nil {
			t.Fatalf("DeleteTransaction failed: %v", err)
		}
		txns, _ = store.ListTransactions(ctx, ledgerID)
		if len(txns) != 0 {
			t.Errorf("Expected 0 transactions after delete, got %d", len(txns))
		}
	})

	t.Run("Missing rows are NotFound", func(t *testing.T) {
		missing := uuid.New()
		errs := map[string]error{
			"UpdateLedger":      store.UpdateLedger(ctx, models.Ledger{ID: missing}),
			"DeleteLedger":      store.DeleteLedger(ctx, missing),
			"UpdateTransaction": store.UpdateTransaction(ctx, ledgerID, models.Transaction{ID: missing}),
			"DeleteTransaction": store.DeleteTransaction(ctx, ledgerID, missing),
		}
		_, errs["ListTransactions"] = store.ListTransactions(ctx, missing)
		_, errs["CreateTransaction"] = store.CreateTransaction(ctx, missing, models.Transaction{})
		for op, err := range errs {
			if !errors.Is(err, models.ErrNotFound) {
				t.Errorf("%s: expected ErrNotFound, got %v", op, err)
			}
		}
	})

	t.Run("DeleteLedger cascades", func(t *testing.T) {
		id, err := store.CreateLedger(ctx, models.Ledger{DisplayName: "short-lived", Participants: []uuid.UUID{alice}})
		if err != nil {
			t.Fatalf("CreateLedger failed: %v", err)
		}
		_, err = store.CreateTransaction(ctx, id, models.Transaction{
			PaidByEntity: alice,
			Currency:     "EUR",
			Amount:       decimal.NewFromInt(5),
			Datetime:     time.Now(),
			SplitRatios:  models.EqualSplits([]uuid.UUID{alice}),
		})
		if err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
		if err := store.DeleteLedger(ctx, id); err != nil {
			t.Fatalf("DeleteLedger failed: %v", err)
		}

		var orphans int
		if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM split_ratios s LEFT JOIN transactions t ON t.id = s.transaction_id WHERE t.id IS NULL").Scan(&orphans); err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if orphans != 0 {
			t.Errorf("Expected no orphaned split ratios, got %d", orphans)
		}
		ledgers, _ := store.ListLedgers(ctx)
		if len(ledgers) != 1 {
			t.Errorf("Expected 1 ledger left, got %d", len(ledgers))
		}
	})
}

func TestListTransactionsSkipsBadRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	payer := uuid.New()
	ledgerID, err := store.CreateLedger(ctx, models.Ledger{DisplayName: "L", Participants: []uuid.UUID{payer}})
	if err != nil {
		t.Fatalf("CreateLedger failed: %v", err)
	}
	good := models.Transaction{
		PaidByEntity: payer,
		Currency:     "CHF",
		Amount:       decimal.NewFromInt(10),
		Datetime:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		SplitRatios:  models.EqualSplits([]uuid.UUID{payer}),
	}
	if _, err := store.CreateTransaction(ctx, ledgerID, good); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	_, err = store.db.ExecContext(ctx,
		`INSERT INTO transactions (id, ledger_id, description, paid_by_entity, currency_iso_4217, amount, transaction_datetime)
		 VALUES (?, ?, 'bad', ?, 'CHF', 'lots', 'yesterday')`,
		uuid.NewString(), ledgerID.String(), payer.String(),
	)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	txns, err := store.ListTransactions(ctx, ledgerID)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(txns) != 1 {
		t.Errorf("Expected 1 readable transaction, got %d", len(txns))
	}
}

func TestRefresh(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	res, err := store.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if res.HasChanges {
		t.Error("Expected no changes on a fresh store")
	}

	if _, err := store.CreateLedger(ctx, models.Ledger{DisplayName: "L"}); err != nil {
		t.Fatalf("CreateLedger failed: %v", err)
	}
	if res, _ = store.Refresh(ctx); !res.HasChanges {
		t.Error("Expected changes after a write")
	}
	if res, _ = store.Refresh(ctx); res.HasChanges {
		t.Error("Expected a second Refresh to report no changes")
	}

	// A failed write leaves the revision alone.
	_, _ = store.CreateTransaction(ctx, uuid.New(), models.Transaction{})
	if res, _ = store.Refresh(ctx); res.HasChanges {
		t.Error("Expected no changes after a failed write")
	}
}
