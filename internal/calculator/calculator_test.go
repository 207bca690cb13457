package calculator

import (
	"errors"
	"math/big"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/borrowchecker/internal/models"
)

var (
	x = uuid.MustParse("00000000-0000-4000-8000-00000000000a")
	y = uuid.MustParse("00000000-0000-4000-8000-00000000000b")
	z = uuid.MustParse("00000000-0000-4000-8000-00000000000c")
)

func txn(payer uuid.UUID, amount, currency string, splits ...models.Split) models.Transaction {
	return models.Transaction{
		ID:           uuid.New(),
		PaidByEntity: payer,
		Currency:     currency,
		Amount:       decimal.RequireFromString(amount),
		Datetime:     time.Date(2025, 11, 17, 14, 43, 2, 0, time.UTC),
		SplitRatios:  splits,
	}
}

func rat(s string) *big.Rat {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		panic("bad rat " + s)
	}
	return r
}

func TestCalculateBalancesExample(t *testing.T) {
	txns := []models.Transaction{txn(y, "600", "CHF", models.EqualSplits([]uuid.UUID{x, y, z})...)}

	asX := CalculateBalances(txns, x)
	if got := asX.Get("CHF", y); got.Cmp(rat("-200")) != 0 {
		t.Errorf("as X, balance[Y]: expected -200, got %s", got.RatString())
	}
	if _, ok := asX["CHF"][z]; ok {
		t.Errorf("as X, Z should not appear: X and Z share no debt")
	}

	asY := CalculateBalances(txns, y)
	for _, id := range []uuid.UUID{x, z} {
		if got := asY.Get("CHF", id); got.Cmp(rat("200")) != 0 {
			t.Errorf("as Y, balance[%s]: expected 200, got %s", id, got.RatString())
		}
	}
	if _, ok := asY["CHF"][y]; ok {
		t.Errorf("as Y, Y should not owe itself")
	}
	if Format(asY.Get("CHF", x), "USD") != "$200.00" {
		t.Errorf("format: expected $200.00, got %s", Format(asY.Get("CHF", x), "USD"))
	}
}

func TestCalculateBalancesKeepsCurrenciesApart(t *testing.T) {
	txns := []models.Transaction{
		txn(y, "30", "CHF", models.EqualSplits([]uuid.UUID{x, y})...),
		txn(y, "10", "EUR", models.EqualSplits([]uuid.UUID{x, y})...),
		txn(x, "4", "EUR", models.EqualSplits([]uuid.UUID{x, y})...),
	}
	b := CalculateBalances(txns, x)
	if got := b.Currencies(); len(got) != 2 || got[0] != "CHF" || got[1] != "EUR" {
		t.Fatalf("currencies: expected [CHF EUR], got %v", got)
	}
	if got := b.Get("CHF", y); got.Cmp(rat("-15")) != 0 {
		t.Errorf("CHF: expected -15, got %s", got.RatString())
	}
	if got := b.Get("EUR", y); got.Cmp(rat("-3")) != 0 {
		t.Errorf("EUR: expected -3, got %s", got.RatString())
	}
}

func TestUserShare(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		ratio  models.Ratio
		want   string
	}{
		{"third of 600", "600", models.NewRatio(1, 3), "200"},
		{"third of 100", "100", models.NewRatio(1, 3), "100/3"},
		{"unreduced ratio", "598.80", models.NewRatio(2, 6), "199.6"},
		{"seven thirteenths", "12.34", models.NewRatio(7, 13), "4319/650"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := txn(y, tt.amount, "CHF",
				models.Split{EntityID: x, Ratio: tt.ratio},
				models.Split{EntityID: y, Ratio: models.NewRatio(tt.ratio.Den-tt.ratio.Num, tt.ratio.Den)},
			)
			if got := UserShare(&tx, x); got.Cmp(rat(tt.want)) != 0 {
				t.Errorf("expected %s, got %s", tt.want, got.RatString())
			}
		})
	}

	tx := txn(y, "10", "CHF", models.EqualSplits([]uuid.UUID{y})...)
	if got := UserShare(&tx, x); got.Sign() != 0 {
		t.Errorf("absent user: expected 0, got %s", got.RatString())
	}
}

func TestNormalizeSplitRatios(t *testing.T) {
	splits := []models.Split{
		{EntityID: x, Ratio: models.NewRatio(2, 1)},
		{EntityID: y, Ratio: models.NewRatio(1, 1)},
		{EntityID: z, Ratio: models.NewRatio(3, 1)},
	}
	got, err := NormalizeSplitRatios(splits)
	if err != nil {
		t.Fatalf("NormalizeSplitRatios failed: %v", err)
	}
	want := []models.Ratio{models.NewRatio(1, 3), models.NewRatio(1, 6), models.NewRatio(1, 2)}
	for i, r := range want {
		if got[i].Ratio != r || got[i].EntityID != splits[i].EntityID {
			t.Errorf("split %d: expected %s, got %s", i, r, got[i].Ratio)
		}
	}
	if models.SumRatios(got).Cmp(big.NewRat(1, 1)) != 0 {
		t.Errorf("normalized ratios do not sum to exactly 1")
	}

	for name, in := range map[string][]models.Split{
		"empty":    nil,
		"all zero": {{EntityID: x, Ratio: models.NewRatio(0, 1)}, {EntityID: y, Ratio: models.NewRatio(0, 5)}},
	} {
		if _, err := NormalizeSplitRatios(in); !errors.Is(err, ErrZeroRatios) {
			t.Errorf("%s: expected ErrZeroRatios, got %v", name, err)
		}
	}
}

// randomLedger builds n transactions with random payers, amounts and ratios.
func randomLedger(rng *rand.Rand, ids []uuid.UUID, n int) []models.Transaction {
	txns := make([]models.Transaction, n)
	for i := range txns {
		weights := make([]models.Split, len(ids))
		for j, id := range ids {
			weights[j] = models.Split{EntityID: id, Ratio: models.NewRatio(int64(rng.Intn(5)+1), 1)}
		}
		splits, _ := NormalizeSplitRatios(weights)
		amount := decimal.New(int64(rng.Intn(100000)+1), -2)
		txns[i] = txn(ids[rng.Intn(len(ids))], amount.String(), "CHF", splits...)
	}
	return txns
}

func TestBalanceConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ids := []uuid.UUID{x, y, z, uuid.New(), uuid.New()}

	for round := 0; round < 20; round++ {
		txns := randomLedger(rng, ids, 15)

		for _, tx := range txns {
			if models.SumRatios(tx.SplitRatios).Cmp(big.NewRat(1, 1)) != 0 {
				t.Fatalf("split ratios do not sum to exactly 1")
			}
		}

		total := new(big.Rat)
		for _, viewer := range ids {
			for _, v := range CalculateBalances(txns, viewer)["CHF"] {
				total.Add(total, v)
			}
		}
		if total.Sign() != 0 {
			t.Errorf("round %d: viewer balances sum to %s, expected 0", round, total.RatString())
		}

		net := new(big.Rat)
		for _, v := range NetBalances(txns)["CHF"] {
			net.Add(net, v)
		}
		if net.Sign() != 0 {
			t.Errorf("round %d: net balances sum to %s, expected 0", round, net.RatString())
		}
	}
}

func TestCalculateSettlements(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ids := []uuid.UUID{x, y, z, uuid.New(), uuid.New(), uuid.New()}

	for round := 0; round < 20; round++ {
		balances := NetBalances(randomLedger(rng, ids, 10))["CHF"]
		settlements := CalculateSettlements(balances, "CHF")

		if len(settlements) > len(balances)-1 {
			t.Errorf("round %d: %d settlements for %d entities", round, len(settlements), len(balances))
		}
		after := make(map[uuid.UUID]*big.Rat)
		for id, v := range balances {
			after[id] = new(big.Rat).Set(v)
		}
		for _, s := range settlements {
			if s.Amount.Sign() <= 0 {
				t.Errorf("round %d: non-positive settlement %s", round, s.Amount.RatString())
			}
			if s.Currency != "CHF" {
				t.Errorf("currency: expected CHF, got %s", s.Currency)
			}
			after[s.From].Add(after[s.From], s.Amount)
			after[s.To].Sub(after[s.To], s.Amount)
		}
		for id, v := range after {
			if !IsSettled(v, "CHF") {
				t.Errorf("round %d: %s left with %s", round, id, v.FloatString(4))
			}
		}
	}
}

func TestCalculateSettlementsIsDeterministic(t *testing.T) {
	balances := map[uuid.UUID]*big.Rat{
		x: rat("-10"),
		y: rat("-10"),
		z: rat("20"),
	}
	first := CalculateSettlements(balances, "EUR")
	if len(first) != 2 {
		t.Fatalf("settlements: expected 2, got %d", len(first))
	}
	if first[0].From != x || first[1].From != y {
		t.Errorf("ties should go to the lower id first, got %s then %s", first[0].From, first[1].From)
	}
	for i := 0; i < 10; i++ {
		again := CalculateSettlements(balances, "EUR")
		for j := range first {
			if again[j].From != first[j].From || again[j].To != first[j].To || again[j].Amount.Cmp(first[j].Amount) != 0 {
				t.Fatalf("run %d differs at %d", i, j)
			}
		}
	}
	if balances[x].Cmp(rat("-10")) != 0 {
		t.Errorf("input balances must not be modified")
	}
}

func TestCalculateSettlementsIgnoresDust(t *testing.T) {
	balances := map[uuid.UUID]*big.Rat{x: rat("-1/300"), y: rat("1/300")}
	if got := CalculateSettlements(balances, "CHF"); len(got) != 0 {
		t.Errorf("expected no settlements below one cent, got %d", len(got))
	}
	if got := CalculateSettlements(balances, "ZZZ"); len(got) != 0 {
		t.Errorf("unknown currency: expected no settlements below the default epsilon, got %d", len(got))
	}
}

func TestCalculateSettlementsClearsSubCentDebtors(t *testing.T) {
	ids := []uuid.UUID{x, y, z, uuid.New(), uuid.New(), uuid.New()}
	txns := []models.Transaction{txn(y, "0.02", "CHF", models.EqualSplits(ids)...)}

	balances := NetBalances(txns)["CHF"]
	settlements := CalculateSettlements(balances, "CHF")
	if len(settlements) == 0 {
		t.Fatalf("settlements: expected payments towards the payer, got none")
	}

	after := make(map[uuid.UUID]*big.Rat)
	for id, v := range balances {
		after[id] = new(big.Rat).Set(v)
	}
	for _, s := range settlements {
		if s.To != y {
			t.Errorf("settlement to %s, expected payer %s", s.To, y)
		}
		after[s.From].Add(after[s.From], s.Amount)
		after[s.To].Sub(after[s.To], s.Amount)
	}
	for id, v := range after {
		if !IsSettled(v, "CHF") {
			t.Errorf("%s left with %s", id, v.RatString())
		}
	}
}

func TestBalancesTotal(t *testing.T) {
	txns := []models.Transaction{txn(y, "600", "CHF", models.EqualSplits([]uuid.UUID{x, y, z})...)}

	tests := []struct {
		name   string
		viewer uuid.UUID
		want   string
	}{
		{"debtor", x, "-200"},
		{"payer", y, "400"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateBalances(txns, tt.viewer).Total("CHF")
			if got.Cmp(rat(tt.want)) != 0 {
				t.Errorf("total: expected %s, got %s", tt.want, got.RatString())
			}
		})
	}

	if got := CalculateBalances(txns, x).Total("EUR"); got.Sign() != 0 {
		t.Errorf("missing currency: expected 0, got %s", got.RatString())
	}
}

func TestMoneyHelpers(t *testing.T) {
	tests := []struct {
		currency string
		epsilon  string
	}{
		{"CHF", "1/100"},
		{"JPY", "1"},
		{"BHD", "1/1000"},
		{"ZZZ", "1/100"},
	}
	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			if got := Epsilon(tt.currency); got.Cmp(rat(tt.epsilon)) != 0 {
				t.Errorf("epsilon: expected %s, got %s", tt.epsilon, got.RatString())
			}
		})
	}

	if got := Round(rat("200/3"), "CHF"); !got.Equal(decimal.RequireFromString("66.67")) {
		t.Errorf("round: expected 66.67, got %s", got)
	}
	if got := Round(rat("-200/3"), "JPY"); !got.Equal(decimal.NewFromInt(-67)) {
		t.Errorf("round: expected -67, got %s", got)
	}
	if !IsSettled(rat("1/300"), "CHF") || IsSettled(rat("1/100"), "CHF") {
		t.Errorf("IsSettled: one cent is not dust, a third of a cent is")
	}
	if got := Format(rat("1234.5"), "ZZZ"); got != "1234.50 ZZZ" {
		t.Errorf("format unknown currency: expected 1234.50 ZZZ, got %s", got)
	}
}
