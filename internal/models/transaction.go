package models

import (
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one recorded expense.
// The payer advanced Amount; SplitRatios says how the cost is shared.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID).
	ID uuid.UUID

	// Description is free text (e.g., "Train tickets", or just an emoji).
	Description string

	// PaidByEntity is the entity that paid the full amount.
	PaidByEntity uuid.UUID

	// Currency is the ISO 4217 code of Amount (e.g., "CHF").
	Currency string

	// Amount is the strictly positive total cost.
	Amount decimal.Decimal

	// Datetime is when the expense happened, with its original offset.
	Datetime time.Time

	// SplitRatios must sum to exactly 1.
	SplitRatios []Split
}

// RatioOf returns the split ratio of the given entity, or zero when absent.
func (t *Transaction) RatioOf(id uuid.UUID) *big.Rat {
	r := new(big.Rat)
	for _, s := range t.SplitRatios {
		if s.EntityID == id {
			r.Add(r, s.Ratio.Rat())
		}
	}
	return r
}
