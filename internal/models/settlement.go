package models

import (
	"math/big"

	"github.com/google/uuid"
)

// Settlement is a proposed payment that reduces outstanding balances.
type Settlement struct {
	// From is the entity that pays (debtor).
	From uuid.UUID

	// To is the entity that receives the payment (creditor).
	To uuid.UUID

	// Amount is the exact amount to transfer.
	Amount *big.Rat

	// Currency is the ISO 4217 code of Amount.
	Currency string
}
