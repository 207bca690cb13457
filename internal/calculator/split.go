// Package calculator computes shares, balances and settlements from ledger transactions.
//
// All arithmetic is exact: amounts are converted from decimal to big.Rat and ratios are
// already fractions, so no rounding happens until a value is displayed (see Round and Format).
package calculator

import (
	"errors"
	"math/big"

	"github.com/google/uuid"

	"github.com/mmynk/borrowchecker/internal/models"
)

// ErrZeroRatios is returned when split ratios cannot be rescaled because they add up to
// zero or less.
var ErrZeroRatios = errors.New("split ratios sum to zero")

// UserShare returns the part of the transaction's amount carried by userID:
// amount x ratio, or zero when the user is not in the split.
func UserShare(txn *models.Transaction, userID uuid.UUID) *big.Rat {
	share := txn.Amount.Rat()
	return share.Mul(share, txn.RatioOf(userID))
}

// NormalizeSplitRatios rescales ratios so they sum to exactly one, keeping their proportions.
// Empty input, or input whose ratios sum to zero or less, fails with ErrZeroRatios.
func NormalizeSplitRatios(splits []models.Split) ([]models.Split, error) {
	sum := models.SumRatios(splits)
	if len(splits) == 0 || sum.Sign() <= 0 {
		return nil, ErrZeroRatios
	}

	out := make([]models.Split, len(splits))
	for i, s := range splits {
		r := new(big.Rat).Quo(s.Ratio.Rat(), sum)
		ratio, err := models.RatioFromRat(r)
		if err != nil {
			return nil, err
		}
		out[i] = models.Split{EntityID: s.EntityID, Ratio: ratio}
	}
	return out, nil
}
