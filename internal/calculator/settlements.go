package calculator

import (
	"math/big"

	"github.com/google/uuid"

	"github.com/mmynk/borrowchecker/internal/models"
)

// CalculateSettlements proposes payments that bring net balances (positive = is owed)
// back to zero.
//
// Greedy algorithm: repeatedly match the largest debtor with the largest creditor and
// transfer the smaller of the two amounts, until both the largest debt and the largest
// credit are below the currency's epsilon. Ties go to the lower entity ID so results are deterministic.
// This keeps the payment count low for common cases but is not globally minimal.
func CalculateSettlements(balances map[uuid.UUID]*big.Rat, currency string) []models.Settlement {
	remaining := make(map[uuid.UUID]*big.Rat, len(balances))
	for id, v := range balances {
		remaining[id] = new(big.Rat).Set(v)
	}

	var settlements []models.Settlement
	for {
		debtor, creditor := extremes(remaining)
		if debtor == uuid.Nil || creditor == uuid.Nil {
			break
		}
		debt := new(big.Rat).Neg(remaining[debtor])
		credit := remaining[creditor]
		// Many small debts can add up to a credit above epsilon, so keep going
		// until both sides are settled.
		if IsSettled(debt, currency) && IsSettled(credit, currency) {
			break
		}

		amount := debt
		if credit.Cmp(debt) < 0 {
			amount = new(big.Rat).Set(credit)
		}
		settlements = append(settlements, models.Settlement{
			From:     debtor,
			To:       creditor,
			Amount:   amount,
			Currency: currency,
		})
		remaining[debtor].Add(remaining[debtor], amount)
		remaining[creditor].Sub(remaining[creditor], amount)
	}
	return settlements
}

// extremes returns the entity with the most negative and the one with the most positive
// balance; uuid.Nil when there is none.
func extremes(balances map[uuid.UUID]*big.Rat) (debtor, creditor uuid.UUID) {
	for id, v := range balances {
		switch v.Sign() {
		case -1:
			if debtor == uuid.Nil || better(v, balances[debtor], -1, id, debtor) {
				debtor = id
			}
		case 1:
			if creditor == uuid.Nil || better(v, balances[creditor], 1, id, creditor) {
				creditor = id
			}
		}
	}
	return debtor, creditor
}

// better reports whether (v, id) beats (best, bestID) in direction dir.
func better(v, best *big.Rat, dir int, id, bestID uuid.UUID) bool {
	if c := v.Cmp(best) * dir; c != 0 {
		return c > 0
	}
	return id.String() < bestID.String()
}
