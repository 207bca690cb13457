package calculator

import (
	"math/big"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// defaultFraction is used for codes go-money does not know.
const defaultFraction = 2

func fraction(currency string) int32 {
	if cur := money.GetCurrency(currency); cur != nil {
		return int32(cur.Fraction)
	}
	return defaultFraction
}

// Epsilon is one minor unit of the currency (0.01 for CHF, 1 for JPY).
func Epsilon(currency string) *big.Rat {
	return new(big.Rat).SetFrac(big.NewInt(1), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(fraction(currency))), nil))
}

// IsSettled reports whether |amount| is below one minor unit.
// Settled balances are hidden from users but kept in computations.
func IsSettled(amount *big.Rat, currency string) bool {
	abs := new(big.Rat).Abs(amount)
	return abs.Cmp(Epsilon(currency)) < 0
}

// Round rounds an exact amount to the currency's minor unit, half away from zero.
func Round(amount *big.Rat, currency string) decimal.Decimal {
	return decimal.NewFromBigRat(amount, fraction(currency))
}

// Format renders an amount with the currency's symbol and separators, e.g. "CHF 200.00".
func Format(amount *big.Rat, currency string) string {
	rounded := Round(amount, currency)
	if money.GetCurrency(currency) == nil {
		return rounded.StringFixed(defaultFraction) + " " + currency
	}
	minor := rounded.Shift(fraction(currency)).IntPart()
	return money.New(minor, currency).Display()
}
