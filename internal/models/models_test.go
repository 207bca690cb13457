package models

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/google/uuid"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"canonical", "c8744a29-7ed0-447a-af5a-51e4ad291d1d", false},
		{"upper case", "C8744A29-7ED0-447A-AF5A-51E4AD291D1D", false},
		{"nil uuid", "00000000-0000-0000-0000-000000000000", true},
		{"empty", "", true},
		{"garbage", "araex", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseID(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidID) {
					t.Errorf("expected ErrInvalidID, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseID failed: %v", err)
			}
			if id.String() != "c8744a29-7ed0-447a-af5a-51e4ad291d1d" {
				t.Errorf("expected canonical form, got %s", id)
			}
		})
	}

	if _, err := ParseIDs([]string{uuid.NewString(), "nope"}); !errors.Is(err, ErrInvalidID) {
		t.Errorf("ParseIDs: expected ErrInvalidID, got %v", err)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("ledger x: %w", ErrNotFound), "not_found"},
		{ErrInvalidID, "invalid_id"},
		{ErrParse, "parse_error"},
		{errors.Join(ErrValidation, ErrReference), "reference_error"},
		{ErrValidation, "validation_error"},
		{ErrUnsupported, "unsupported_operation"},
		{ErrBackend, "backend_error"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v): expected %q, got %q", tt.err, tt.want, got)
		}
	}
}

func TestParseRatio(t *testing.T) {
	tests := []struct {
		in      string
		want    Ratio
		wantErr bool
	}{
		{"1/3", NewRatio(1, 3), false},
		{" 2 / 6 ", NewRatio(2, 6), false},
		{"1", NewRatio(1, 1), false},
		{"-1/2", NewRatio(-1, 2), false},
		{"1/0", Ratio{}, true},
		{"a/b", Ratio{}, true},
		{"", Ratio{}, true},
		{"99999999999999999999/1", Ratio{}, true},
	}
	for _, tt := range tests {
		got, err := ParseRatio(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRatio(%q): wantErr %v, got %v", tt.in, tt.wantErr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRatio(%q): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestRatio(t *testing.T) {
	if NewRatio(2, 6).Rat().Cmp(big.NewRat(1, 3)) != 0 {
		t.Error("2/6 should equal 1/3")
	}
	if NewRatio(2, 6).String() != "2/6" {
		t.Errorf("ratios keep their written form, got %s", NewRatio(2, 6))
	}
	if NewRatio(1, 0).Valid() || NewRatio(1, 0).Rat().Sign() != 0 {
		t.Error("zero denominator should be invalid and read as zero")
	}

	r, err := RatioFromRat(big.NewRat(4, 12))
	if err != nil || r != NewRatio(1, 3) {
		t.Errorf("RatioFromRat(4/12): expected 1/3, got %s (%v)", r, err)
	}
	huge := new(big.Rat).SetFrac(new(big.Int).Lsh(big.NewInt(1), 70), big.NewInt(3))
	if _, err := RatioFromRat(huge); err == nil {
		t.Error("RatioFromRat: expected out of range error")
	}
}

func TestEqualSplitsSumToOne(t *testing.T) {
	for n := 1; n <= 13; n++ {
		ids := make([]uuid.UUID, n)
		for i := range ids {
			ids[i] = uuid.New()
		}
		if sum := SumRatios(EqualSplits(ids)); sum.Cmp(big.NewRat(1, 1)) != 0 {
			t.Errorf("%d equal splits sum to %s", n, sum.RatString())
		}
	}
}

func TestGroupAndLedgerLookups(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	group := &Group{Entities: []Entity{{ID: a, DisplayName: "A"}}}
	if !group.Has(a) || group.Has(b) {
		t.Error("Has: wrong membership")
	}
	if group.DisplayName(b) != b.String() {
		t.Errorf("unknown entity should render as its id, got %q", group.DisplayName(b))
	}
	var none *Group
	if none.Has(a) {
		t.Error("nil group has no entities")
	}

	ledger := &Ledger{Participants: []uuid.UUID{a}}
	if !ledger.HasParticipant(a) || ledger.HasParticipant(b) {
		t.Error("HasParticipant: wrong membership")
	}

	txn := &Transaction{SplitRatios: []Split{{EntityID: a, Ratio: NewRatio(1, 4)}, {EntityID: a, Ratio: NewRatio(1, 4)}}}
	if txn.RatioOf(a).Cmp(big.NewRat(1, 2)) != 0 || txn.RatioOf(b).Sign() != 0 {
		t.Error("RatioOf: wrong share")
	}
}
