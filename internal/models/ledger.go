package models

import "github.com/google/uuid"

// Ledger is one shared account (for example one trip or event).
// Participants is an ordered set of Entity IDs from the owning Group.
type Ledger struct {
	ID           uuid.UUID
	DisplayName  string
	Participants []uuid.UUID
}

// HasParticipant reports whether id is one of the ledger's participants.
func (l *Ledger) HasParticipant(id uuid.UUID) bool {
	for _, p := range l.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// LedgerWithTransactions combines a Ledger with its materialized transactions.
// It is owned by the session cache and rebuilt on refresh.
type LedgerWithTransactions struct {
	Ledger       Ledger
	Transactions []Transaction
}
