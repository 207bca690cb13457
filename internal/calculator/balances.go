package calculator

import (
	"math/big"
	"slices"

	"github.com/google/uuid"

	"github.com/mmynk/borrowchecker/internal/models"
)

// Balances holds signed amounts per currency and entity.
// Currencies are never mixed: each code has its own map.
type Balances map[string]map[uuid.UUID]*big.Rat

func (b Balances) add(currency string, id uuid.UUID, amount *big.Rat) {
	m, ok := b[currency]
	if !ok {
		m = make(map[uuid.UUID]*big.Rat)
		b[currency] = m
	}
	cur, ok := m[id]
	if !ok {
		cur = new(big.Rat)
		m[id] = cur
	}
	cur.Add(cur, amount)
}

// Currencies returns the currency codes present, sorted.
func (b Balances) Currencies() []string {
	codes := make([]string, 0, len(b))
	for code := range b {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Get returns the balance of id in currency, or zero.
func (b Balances) Get(currency string, id uuid.UUID) *big.Rat {
	if v, ok := b[currency][id]; ok {
		return new(big.Rat).Set(v)
	}
	return new(big.Rat)
}

// Total sums every entity's balance in currency. For balances from
// CalculateBalances this is the viewer's overall position: positive means
// the viewer is owed money in total.
func (b Balances) Total(currency string) *big.Rat {
	total := new(big.Rat)
	for _, v := range b[currency] {
		total.Add(total, v)
	}
	return total
}

// CalculateBalances computes what every other entity owes userID, per currency.
// A positive balance means the entity owes the viewer; negative means the viewer owes them.
//
// Algorithm, per transaction:
// - viewer paid: every other split entity owes the viewer its share
// - someone else paid: the viewer owes the payer the viewer's share
// The viewer's own share of a transaction they paid is never counted.
// Entities whose balance cancels out keep a zero entry.
func CalculateBalances(txns []models.Transaction, userID uuid.UUID) Balances {
	balances := make(Balances)
	for i := range txns {
		txn := &txns[i]
		if txn.PaidByEntity == userID {
			for _, s := range txn.SplitRatios {
				if s.EntityID == userID {
					continue
				}
				balances.add(txn.Currency, s.EntityID, UserShare(txn, s.EntityID))
			}
			continue
		}
		share := UserShare(txn, userID)
		balances.add(txn.Currency, txn.PaidByEntity, share.Neg(share))
	}
	return balances
}

// NetBalances computes every entity's net position in the ledger, per currency.
// Positive means the entity is owed money, negative means it owes.
// Each currency's balances sum to exactly zero.
func NetBalances(txns []models.Transaction) Balances {
	balances := make(Balances)
	for i := range txns {
		txn := &txns[i]
		// Make sure the payer shows up even when they carry the whole cost.
		balances.add(txn.Currency, txn.PaidByEntity, new(big.Rat))
		for _, s := range txn.SplitRatios {
			if s.EntityID == txn.PaidByEntity {
				continue
			}
			share := UserShare(txn, s.EntityID)
			balances.add(txn.Currency, txn.PaidByEntity, share)
			balances.add(txn.Currency, s.EntityID, new(big.Rat).Neg(share))
		}
	}
	return balances
}
