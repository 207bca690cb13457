package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/borrowchecker/internal/models"
)

var (
	alice    = uuid.MustParse("c8744a29-7ed0-447a-af5a-51e4ad291d1d")
	bob      = uuid.MustParse("3abaaf40-a35a-488d-8ef2-0184c8c5f3c3")
	carol    = uuid.MustParse("92c0a0fc-aa86-4922-ab1f-7b9326720177")
	outsider = uuid.MustParse("0f0e7f2a-2d64-4c4b-9a0c-3c1d6f1a9b10")
)

func testGroup() *models.Group {
	return &models.Group{Entities: []models.Entity{
		{ID: alice, DisplayName: "Alice"},
		{ID: bob, DisplayName: "Bob"},
		{ID: carol, DisplayName: "Carol"},
		{ID: outsider, DisplayName: "Dave"},
	}}
}

func testLedger() *models.Ledger {
	return &models.Ledger{
		ID:           uuid.MustParse("10cc6659-531e-4c8f-881f-1bf6b24abbc0"),
		DisplayName:  "39C3",
		Participants: []uuid.UUID{alice, bob, carol},
	}
}

func validTransaction() *models.Transaction {
	return &models.Transaction{
		ID:           uuid.New(),
		Description:  "Train",
		PaidByEntity: bob,
		Currency:     "CHF",
		Amount:       decimal.NewFromInt(600),
		Datetime:     time.Date(2025, 11, 17, 14, 43, 2, 0, time.UTC),
		SplitRatios:  models.EqualSplits([]uuid.UUID{alice, bob, carol}),
	}
}

// kinds returns the field -> kind pairs of a result.
func kinds(r Result) map[string]ErrorKind {
	out := make(map[string]ErrorKind, len(r.Errors))
	for _, e := range r.Errors {
		out[e.Field] = e.Kind
	}
	return out
}

func TestValidateGroup(t *testing.T) {
	tests := []struct {
		name  string
		group *models.Group
		want  map[string]ErrorKind
	}{
		{"valid", testGroup(), map[string]ErrorKind{}},
		{"nil", nil, map[string]ErrorKind{"entities": MissingField}},
		{"empty", &models.Group{}, map[string]ErrorKind{"entities": MissingField}},
		{
			name: "duplicate id and blank name",
			group: &models.Group{Entities: []models.Entity{
				{ID: alice, DisplayName: "Alice"},
				{ID: alice, DisplayName: "  "},
			}},
			want: map[string]ErrorKind{
				"entities[1].id":           DuplicateValue,
				"entities[1].display_name": MissingField,
			},
		},
		{
			name:  "nil id",
			group: &models.Group{Entities: []models.Entity{{DisplayName: "Ghost"}}},
			want:  map[string]ErrorKind{"entities[0].id": MissingField},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kinds(ValidateGroup(tt.group))
			if len(got) != len(tt.want) {
				t.Fatalf("errors: expected %v, got %v", tt.want, got)
			}
			for field, kind := range tt.want {
				if got[field] != kind {
					t.Errorf("%s: expected %s, got %s", field, kind, got[field])
				}
			}
		})
	}
}

func TestValidateLedger(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l *models.Ledger)
		want   map[string]ErrorKind
	}{
		{"valid", func(l *models.Ledger) {}, map[string]ErrorKind{}},
		{"missing id", func(l *models.Ledger) { l.ID = uuid.Nil }, map[string]ErrorKind{"id": MissingField}},
		{"blank name", func(l *models.Ledger) { l.DisplayName = "" }, map[string]ErrorKind{"display_name": MissingField}},
		{"no participants", func(l *models.Ledger) { l.Participants = nil }, map[string]ErrorKind{"participants": MissingField}},
		{
			name:   "unknown participant",
			mutate: func(l *models.Ledger) { l.Participants = append(l.Participants, uuid.New()) },
			want:   map[string]ErrorKind{"participants[3]": InvalidReference},
		},
		{
			name:   "duplicate participant",
			mutate: func(l *models.Ledger) { l.Participants = append(l.Participants, alice) },
			want:   map[string]ErrorKind{"participants[3]": DuplicateValue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := testLedger()
			tt.mutate(ledger)
			got := kinds(ValidateLedger(ledger, testGroup()))
			if len(got) != len(tt.want) {
				t.Fatalf("errors: expected %v, got %v", tt.want, got)
			}
			for field, kind := range tt.want {
				if got[field] != kind {
					t.Errorf("%s: expected %s, got %s", field, kind, got[field])
				}
			}
		})
	}
}

func TestValidateTransaction(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(txn *models.Transaction)
		want   map[string]ErrorKind
	}{
		{"valid", func(txn *models.Transaction) {}, map[string]ErrorKind{}},
		{
			name: "unequal but exact ratios",
			mutate: func(txn *models.Transaction) {
				txn.SplitRatios = []models.Split{
					{EntityID: alice, Ratio: models.NewRatio(1, 6)},
					{EntityID: bob, Ratio: models.NewRatio(2, 6)},
					{EntityID: carol, Ratio: models.NewRatio(1, 2)},
				}
			},
			want: map[string]ErrorKind{},
		},
		{"missing id", func(txn *models.Transaction) { txn.ID = uuid.Nil }, map[string]ErrorKind{"id": MissingField}},
		{"payer not in group", func(txn *models.Transaction) { txn.PaidByEntity = uuid.New() }, map[string]ErrorKind{"paid_by_entity": InvalidReference}},
		{"payer not in ledger", func(txn *models.Transaction) { txn.PaidByEntity = outsider }, map[string]ErrorKind{"paid_by_entity": InvalidReference}},
		{"lower-case currency", func(txn *models.Transaction) { txn.Currency = "chf" }, map[string]ErrorKind{"currency_iso_4217": InvalidFormat}},
		{"long currency", func(txn *models.Transaction) { txn.Currency = "CHFX" }, map[string]ErrorKind{"currency_iso_4217": InvalidFormat}},
		{"missing currency", func(txn *models.Transaction) { txn.Currency = "" }, map[string]ErrorKind{"currency_iso_4217": MissingField}},
		{"zero amount", func(txn *models.Transaction) { txn.Amount = decimal.Zero }, map[string]ErrorKind{"amount": InvalidValue}},
		{"negative amount", func(txn *models.Transaction) { txn.Amount = decimal.NewFromInt(-3) }, map[string]ErrorKind{"amount": InvalidValue}},
		{"missing datetime", func(txn *models.Transaction) { txn.Datetime = time.Time{} }, map[string]ErrorKind{"transaction_datetime": MissingField}},
		{"no splits", func(txn *models.Transaction) { txn.SplitRatios = nil }, map[string]ErrorKind{"split_ratios": MissingField}},
		{
			name: "ratios sum below one",
			mutate: func(txn *models.Transaction) {
				txn.SplitRatios = models.EqualSplits([]uuid.UUID{alice, bob, carol})
				txn.SplitRatios[2].Ratio = models.NewRatio(1, 4)
			},
			want: map[string]ErrorKind{"split_ratios": SumMismatch},
		},
		{
			name: "non-positive ratio",
			mutate: func(txn *models.Transaction) {
				txn.SplitRatios = []models.Split{
					{EntityID: alice, Ratio: models.NewRatio(3, 2)},
					{EntityID: bob, Ratio: models.NewRatio(-1, 2)},
				}
			},
			want: map[string]ErrorKind{"split_ratios[1].ratio": InvalidValue},
		},
		{
			name: "zero denominator",
			mutate: func(txn *models.Transaction) {
				txn.SplitRatios = []models.Split{
					{EntityID: alice, Ratio: models.NewRatio(1, 1)},
					{EntityID: bob, Ratio: models.NewRatio(1, 0)},
				}
			},
			want: map[string]ErrorKind{"split_ratios[1].ratio": InvalidValue},
		},
		{
			name: "split entity outside ledger",
			mutate: func(txn *models.Transaction) {
				txn.SplitRatios = models.EqualSplits([]uuid.UUID{alice, outsider})
			},
			want: map[string]ErrorKind{"split_ratios[1].entity_id": InvalidReference},
		},
		{
			name: "duplicate split entity",
			mutate: func(txn *models.Transaction) {
				txn.SplitRatios = models.EqualSplits([]uuid.UUID{alice, alice})
			},
			want: map[string]ErrorKind{"split_ratios[1].entity_id": DuplicateValue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := validTransaction()
			tt.mutate(txn)
			got := kinds(ValidateTransaction(txn, testLedger(), testGroup()))
			if len(got) != len(tt.want) {
				t.Fatalf("errors: expected %v, got %v", tt.want, got)
			}
			for field, kind := range tt.want {
				if got[field] != kind {
					t.Errorf("%s: expected %s, got %s", field, kind, got[field])
				}
			}
		})
	}
}

func TestValidateSplitRatiosSumIsExact(t *testing.T) {
	// Seven sevenths accumulate float error but are exactly one as fractions.
	ids := make([]uuid.UUID, 7)
	for i := range ids {
		ids[i] = uuid.New()
	}
	if fe := ValidateSplitRatiosSum("split_ratios", models.EqualSplits(ids)); fe != nil {
		t.Errorf("expected 7 x 1/7 to sum to 1, got %v", fe)
	}

	splits := models.EqualSplits(ids[:3])
	splits[0].Ratio = models.NewRatio(333333, 1000000)
	if fe := ValidateSplitRatiosSum("split_ratios", splits); fe == nil || fe.Kind != SumMismatch {
		t.Errorf("expected SumMismatch for an approximate third, got %v", fe)
	}
}

func TestResultErr(t *testing.T) {
	valid := ValidateTransaction(validTransaction(), testLedger(), testGroup())
	if err := valid.Err(); err != nil {
		t.Fatalf("expected nil error for a valid result, got %v", err)
	}

	txn := validTransaction()
	txn.Amount = decimal.Zero
	res := ValidateTransaction(txn, testLedger(), testGroup())
	err := res.Err()
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if errors.Is(err, models.ErrReference) {
		t.Errorf("did not expect ErrReference for an amount error")
	}
	if models.Kind(err) != "validation_error" {
		t.Errorf("kind: expected validation_error, got %s", models.Kind(err))
	}

	txn.PaidByEntity = uuid.New()
	res = ValidateTransaction(txn, testLedger(), testGroup())
	err = res.Err()
	if !errors.Is(err, models.ErrReference) || !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrReference and ErrValidation, got %v", err)
	}
	if fes := FieldErrors(err); len(fes) != 2 {
		t.Errorf("field errors: expected 2, got %d", len(fes))
	}
}

func TestValidateLedgerTransactions(t *testing.T) {
	bad := validTransaction()
	bad.Currency = "usd"
	lwt := &models.LedgerWithTransactions{
		Ledger:       *testLedger(),
		Transactions: []models.Transaction{*validTransaction(), *bad},
	}
	r := ValidateLedgerTransactions(lwt, testGroup())
	if len(r.Errors) != 1 {
		t.Fatalf("errors: expected 1, got %v", r.Errors)
	}
	if r.Errors[0].Field != "transactions[1].currency_iso_4217" {
		t.Errorf("field: expected transactions[1].currency_iso_4217, got %s", r.Errors[0].Field)
	}
}
