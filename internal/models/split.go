package models

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Ratio is an exact fraction Num/Den.
// Ratios are kept as written (2/6 stays 2/6); comparisons go through Rat.
type Ratio struct {
	Num int64
	Den int64
}

// NewRatio returns the ratio num/den.
func NewRatio(num, den int64) Ratio {
	return Ratio{Num: num, Den: den}
}

// RatioFromRat converts a big.Rat to a Ratio.
// It fails when the reduced numerator or denominator does not fit in an int64.
func RatioFromRat(r *big.Rat) (Ratio, error) {
	if !r.Num().IsInt64() || !r.Denom().IsInt64() {
		return Ratio{}, fmt.Errorf("ratio %s out of range", r.RatString())
	}
	return Ratio{Num: r.Num().Int64(), Den: r.Denom().Int64()}, nil
}

// ParseRatio parses "n/d" (or a bare integer "n") into a Ratio with a non-zero denominator.
func ParseRatio(s string) (Ratio, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		den = "1"
	}
	n, okN := new(big.Int).SetString(strings.TrimSpace(num), 10)
	d, okD := new(big.Int).SetString(strings.TrimSpace(den), 10)
	if !okN || !okD || !n.IsInt64() || !d.IsInt64() {
		return Ratio{}, fmt.Errorf("malformed ratio %q", s)
	}
	r := Ratio{Num: n.Int64(), Den: d.Int64()}
	if !r.Valid() {
		return Ratio{}, fmt.Errorf("ratio %q has a zero denominator", s)
	}
	return r, nil
}

// Valid reports whether the denominator is non-zero.
func (r Ratio) Valid() bool {
	return r.Den != 0
}

// Rat returns the ratio as a big.Rat. An invalid ratio yields zero.
func (r Ratio) Rat() *big.Rat {
	if r.Den == 0 {
		return new(big.Rat)
	}
	return big.NewRat(r.Num, r.Den)
}

// Sign returns -1, 0 or +1 depending on the sign of the ratio.
func (r Ratio) Sign() int {
	return r.Rat().Sign()
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Split assigns a fraction of a transaction's cost to one entity.
type Split struct {
	EntityID uuid.UUID
	Ratio    Ratio
}

// SumRatios adds the ratios of all splits exactly.
func SumRatios(splits []Split) *big.Rat {
	sum := new(big.Rat)
	for _, s := range splits {
		sum.Add(sum, s.Ratio.Rat())
	}
	return sum
}

// EqualSplits divides a cost into len(ids) equal shares.
func EqualSplits(ids []uuid.UUID) []Split {
	splits := make([]Split, len(ids))
	for i, id := range ids {
		splits[i] = Split{EntityID: id, Ratio: NewRatio(1, int64(len(ids)))}
	}
	return splits
}
