// Package validation checks groups, ledgers and transactions against the business rules
// calculations and writes rely on.
//
// Every check is pure and collects all problems it finds instead of stopping at the first:
// structural decoding is the storage layer's job, semantic rules are this package's.
package validation

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/borrowchecker/internal/models"
)

// ErrorKind classifies a field error.
type ErrorKind string

const (
	MissingField     ErrorKind = "missing_field"
	InvalidFormat    ErrorKind = "invalid_format"
	InvalidReference ErrorKind = "invalid_reference"
	InvalidValue     ErrorKind = "invalid_value"
	DuplicateValue   ErrorKind = "duplicate_value"
	SumMismatch      ErrorKind = "sum_mismatch"
)

// FieldError is one rule violation scoped to a field path such as "split_ratios[1].ratio".
type FieldError struct {
	Field   string
	Message string
	Kind    ErrorKind
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Result is the outcome of a validation: valid when it holds no errors.
type Result struct {
	Errors []FieldError
}

// Valid reports whether no rule was violated.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Result) add(field string, kind ErrorKind, format string, args ...any) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...), Kind: kind})
}

func (r *Result) merge(prefix string, other Result) {
	for _, e := range other.Errors {
		if prefix != "" {
			e.Field = prefix + "." + e.Field
		}
		r.Errors = append(r.Errors, e)
	}
}

// Err returns nil for a valid result and otherwise an *Error wrapping models.ErrValidation.
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &Error{Errors: r.Errors}
}

// Error carries the field errors of a failed validation through error returns.
// It matches models.ErrValidation, and models.ErrReference too when an id dangles.
type Error struct {
	Errors []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("%s: %s", models.ErrValidation, strings.Join(msgs, "; "))
}

func (e *Error) Unwrap() []error {
	errs := []error{models.ErrValidation}
	for _, fe := range e.Errors {
		if fe.Kind == InvalidReference {
			errs = append(errs, models.ErrReference)
			break
		}
	}
	return errs
}

// FieldErrors extracts the field errors carried by err, if any.
func FieldErrors(err error) []FieldError {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Errors
	}
	return nil
}

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateGroup checks that the group has entities with unique IDs and non-empty names.
func ValidateGroup(group *models.Group) Result {
	var r Result
	if group == nil || len(group.Entities) == 0 {
		r.add("entities", MissingField, "group has no entities")
		return r
	}
	seen := make(map[uuid.UUID]int, len(group.Entities))
	for i, e := range group.Entities {
		field := fmt.Sprintf("entities[%d]", i)
		if e.ID == uuid.Nil {
			r.add(field+".id", MissingField, "id is required")
		} else if first, dup := seen[e.ID]; dup {
			r.add(field+".id", DuplicateValue, "id %s already used by entities[%d]", e.ID, first)
		} else {
			seen[e.ID] = i
		}
		if strings.TrimSpace(e.DisplayName) == "" {
			r.add(field+".display_name", MissingField, "display name is required")
		}
	}
	return r
}

// ValidateLedger checks ledger metadata and that every participant belongs to the group.
func ValidateLedger(ledger *models.Ledger, group *models.Group) Result {
	var r Result
	if ledger == nil {
		r.add("ledger", MissingField, "ledger is required")
		return r
	}
	if ledger.ID == uuid.Nil {
		r.add("id", MissingField, "id is required")
	}
	if strings.TrimSpace(ledger.DisplayName) == "" {
		r.add("display_name", MissingField, "display name is required")
	}
	if len(ledger.Participants) == 0 {
		r.add("participants", MissingField, "ledger has no participants")
	}
	seen := make(map[uuid.UUID]bool, len(ledger.Participants))
	for i, p := range ledger.Participants {
		field := fmt.Sprintf("participants[%d]", i)
		if seen[p] {
			r.add(field, DuplicateValue, "participant %s listed twice", p)
			continue
		}
		seen[p] = true
		if fe := ValidateEntityReference(field, p, group); fe != nil {
			r.Errors = append(r.Errors, *fe)
		}
	}
	return r
}

// ValidateTransaction checks a transaction against the ledger it belongs to and the group.
func ValidateTransaction(txn *models.Transaction, ledger *models.Ledger, group *models.Group) Result {
	var r Result
	if txn == nil {
		r.add("transaction", MissingField, "transaction is required")
		return r
	}
	if txn.ID == uuid.Nil {
		r.add("id", MissingField, "id is required")
	}

	if fe := validateParticipant("paid_by_entity", txn.PaidByEntity, ledger, group); fe != nil {
		r.Errors = append(r.Errors, *fe)
	}
	if fe := ValidateCurrency("currency_iso_4217", txn.Currency); fe != nil {
		r.Errors = append(r.Errors, *fe)
	}
	if fe := ValidateAmount("amount", txn.Amount); fe != nil {
		r.Errors = append(r.Errors, *fe)
	}
	if txn.Datetime.IsZero() {
		r.add("transaction_datetime", MissingField, "datetime is required")
	}

	if len(txn.SplitRatios) == 0 {
		r.add("split_ratios", MissingField, "transaction has no split ratios")
		return r
	}
	seen := make(map[uuid.UUID]bool, len(txn.SplitRatios))
	for i, s := range txn.SplitRatios {
		field := fmt.Sprintf("split_ratios[%d]", i)
		if seen[s.EntityID] {
			r.add(field+".entity_id", DuplicateValue, "entity %s appears in more than one split", s.EntityID)
		}
		seen[s.EntityID] = true
		if fe := validateParticipant(field+".entity_id", s.EntityID, ledger, group); fe != nil {
			r.Errors = append(r.Errors, *fe)
		}
		if !s.Ratio.Valid() {
			r.add(field+".ratio", InvalidValue, "ratio %s has a zero denominator", s.Ratio)
		} else if s.Ratio.Sign() <= 0 {
			r.add(field+".ratio", InvalidValue, "ratio %s must be positive", s.Ratio)
		}
	}
	if fe := ValidateSplitRatiosSum("split_ratios", txn.SplitRatios); fe != nil {
		r.Errors = append(r.Errors, *fe)
	}
	return r
}

// ValidateLedgerTransactions validates every transaction of a loaded ledger.
// Field paths are prefixed with transactions[i].
func ValidateLedgerTransactions(lwt *models.LedgerWithTransactions, group *models.Group) Result {
	var r Result
	if lwt == nil {
		return r
	}
	for i := range lwt.Transactions {
		r.merge(fmt.Sprintf("transactions[%d]", i), ValidateTransaction(&lwt.Transactions[i], &lwt.Ledger, group))
	}
	return r
}

// ValidateEntityReference checks that id resolves to an entity of the group.
func ValidateEntityReference(field string, id uuid.UUID, group *models.Group) *FieldError {
	if id == uuid.Nil {
		return &FieldError{Field: field, Message: "entity id is required", Kind: MissingField}
	}
	if !group.Has(id) {
		return &FieldError{Field: field, Message: fmt.Sprintf("entity %s is not in the group", id), Kind: InvalidReference}
	}
	return nil
}

// ValidateCurrency checks the ISO 4217 lexical form: three upper-case letters.
func ValidateCurrency(field, code string) *FieldError {
	if code == "" {
		return &FieldError{Field: field, Message: "currency is required", Kind: MissingField}
	}
	if !currencyPattern.MatchString(code) {
		return &FieldError{Field: field, Message: fmt.Sprintf("currency %q is not a three-letter ISO 4217 code", code), Kind: InvalidFormat}
	}
	return nil
}

// ValidateAmount checks that an amount is strictly positive.
func ValidateAmount(field string, amount decimal.Decimal) *FieldError {
	if !amount.IsPositive() {
		return &FieldError{Field: field, Message: fmt.Sprintf("amount %s must be positive", amount), Kind: InvalidValue}
	}
	return nil
}

// ValidateSplitRatiosSum checks that the ratios add up to exactly one.
func ValidateSplitRatiosSum(field string, splits []models.Split) *FieldError {
	sum := models.SumRatios(splits)
	if sum.Cmp(big.NewRat(1, 1)) != 0 {
		return &FieldError{Field: field, Message: fmt.Sprintf("ratios sum to %s, expected 1", sum.RatString()), Kind: SumMismatch}
	}
	return nil
}

// validateParticipant checks group membership first, then ledger membership.
func validateParticipant(field string, id uuid.UUID, ledger *models.Ledger, group *models.Group) *FieldError {
	if fe := ValidateEntityReference(field, id, group); fe != nil {
		return fe
	}
	if ledger == nil || !ledger.HasParticipant(id) {
		return &FieldError{Field: field, Message: fmt.Sprintf("entity %s is not a participant of the ledger", id), Kind: InvalidReference}
	}
	return nil
}
