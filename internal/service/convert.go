package service

import (
	"fmt"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/borrowchecker/internal/calculator"
	"github.com/mmynk/borrowchecker/internal/models"
)

func toEntity(group *models.Group, id uuid.UUID) Entity {
	return Entity{ID: id.String(), DisplayName: group.DisplayName(id)}
}

func toLedger(l models.Ledger, group *models.Group) Ledger {
	out := Ledger{ID: l.ID.String(), DisplayName: l.DisplayName, Participants: make([]Entity, len(l.Participants))}
	for i, p := range l.Participants {
		out.Participants[i] = toEntity(group, p)
	}
	return out
}

// toTransaction renders a transaction; viewer may be uuid.Nil.
func toTransaction(t models.Transaction, viewer uuid.UUID) Transaction {
	out := Transaction{
		ID:           t.ID.String(),
		Description:  t.Description,
		PaidByEntity: t.PaidByEntity.String(),
		Currency:     t.Currency,
		Amount:       t.Amount.String(),
		Datetime:     t.Datetime.Format(time.RFC3339Nano),
		SplitRatios:  make([]Split, len(t.SplitRatios)),
	}
	for i, s := range t.SplitRatios {
		out.SplitRatios[i] = Split{EntityID: s.EntityID.String(), Ratio: s.Ratio.String()}
	}
	if viewer != uuid.Nil {
		share := calculator.UserShare(&t, viewer)
		out.ViewerShare = calculator.Round(share, t.Currency).String()
		switch {
		case t.PaidByEntity == viewer:
			out.Direction = "lent"
		case share.Sign() > 0:
			out.Direction = "borrowed"
		}
	}
	return out
}

// fromTransaction parses a wire transaction. An empty id yields uuid.Nil.
func fromTransaction(in Transaction) (models.Transaction, error) {
	var t models.Transaction
	var err error
	if in.ID != "" {
		if t.ID, err = models.ParseID(in.ID); err != nil {
			return t, fmt.Errorf("id: %w", err)
		}
	}
	if t.PaidByEntity, err = models.ParseID(in.PaidByEntity); err != nil {
		return t, fmt.Errorf("paid_by_entity: %w", err)
	}
	if t.Amount, err = decimal.NewFromString(in.Amount); err != nil {
		return t, fmt.Errorf("%w: amount %q: %v", models.ErrValidation, in.Amount, err)
	}
	if t.Datetime, err = time.Parse(time.RFC3339Nano, in.Datetime); err != nil {
		return t, fmt.Errorf("%w: transaction_datetime %q: %v", models.ErrValidation, in.Datetime, err)
	}
	t.Description = in.Description
	t.Currency = in.Currency
	t.SplitRatios = make([]models.Split, len(in.SplitRatios))
	for i, s := range in.SplitRatios {
		id, err := models.ParseID(s.EntityID)
		if err != nil {
			return t, fmt.Errorf("split_ratios[%d].entity_id: %w", i, err)
		}
		ratio, err := models.ParseRatio(s.Ratio)
		if err != nil {
			return t, fmt.Errorf("%w: split_ratios[%d].ratio: %v", models.ErrValidation, i, err)
		}
		t.SplitRatios[i] = models.Split{EntityID: id, Ratio: ratio}
	}
	return t, nil
}

// parseOptionalID parses s, mapping the empty string to uuid.Nil.
func parseOptionalID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return models.ParseID(s)
}

func toBalances(b calculator.Balances, group *models.Group) []Balance {
	var out []Balance
	for _, currency := range b.Currencies() {
		for _, e := range group.Entities {
			amount, ok := b[currency][e.ID]
			if !ok {
				continue
			}
			out = append(out, toBalance(e.ID, group, currency, amount))
		}
		// Entities missing from the group still show up, ordered by ID.
		var missing []uuid.UUID
		for id := range b[currency] {
			if !group.Has(id) {
				missing = append(missing, id)
			}
		}
		slices.SortFunc(missing, func(i, j uuid.UUID) int {
			return strings.Compare(i.String(), j.String())
		})
		for _, id := range missing {
			out = append(out, toBalance(id, group, currency, b[currency][id]))
		}
	}
	return out
}

func toTotals(b calculator.Balances) []Total {
	out := []Total{}
	for _, currency := range b.Currencies() {
		total := b.Total(currency)
		out = append(out, Total{
			Currency: currency,
			Amount:   calculator.Round(total, currency).String(),
			Exact:    total.RatString(),
			Display:  calculator.Format(total, currency),
			Settled:  calculator.IsSettled(total, currency),
		})
	}
	return out
}

func toBalance(id uuid.UUID, group *models.Group, currency string, amount *big.Rat) Balance {
	return Balance{
		EntityID:    id.String(),
		DisplayName: group.DisplayName(id),
		Currency:    currency,
		Amount:      calculator.Round(amount, currency).String(),
		Exact:       amount.RatString(),
		Display:     calculator.Format(amount, currency),
		Settled:     calculator.IsSettled(amount, currency),
	}
}

func toSettlement(s models.Settlement, group *models.Group) Settlement {
	return Settlement{
		From:     s.From.String(),
		FromName: group.DisplayName(s.From),
		To:       s.To.String(),
		ToName:   group.DisplayName(s.To),
		Currency: s.Currency,
		Amount:   calculator.Round(s.Amount, s.Currency).String(),
		Display:  calculator.Format(s.Amount, s.Currency),
	}
}
