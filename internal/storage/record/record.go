// Package record encodes and decodes the TOML records a Borrow Checker dataset is made of:
// group.toml, the .ledger.toml descriptor of each ledger, and one file per transaction.
//
// Decoding is strict about identifiers and ratios (a malformed one is a models.ErrParse)
// and lenient about representation: amounts may be TOML integers, floats or decimal
// strings, ratios may be tables, "n/d" strings or [n, d] arrays.
package record

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"

	"github.com/mmynk/borrowchecker/internal/models"
)

const (
	// GroupFile is the default name of the group record at the repository root.
	GroupFile = "group.toml"

	// LedgerMarker is the descriptor that turns a directory into a ledger.
	LedgerMarker = ".ledger.toml"

	// Extension is the extension of transaction records.
	Extension = ".toml"
)

type groupRecord struct {
	Entities []entityRecord `toml:"entities"`
}

type entityRecord struct {
	ID          string `toml:"id"`
	DisplayName string `toml:"display_name"`
}

type ledgerRecord struct {
	ID           string   `toml:"id"`
	DisplayName  string   `toml:"display_name"`
	Participants []string `toml:"participants"`
}

// transactionIn accepts every representation seen in existing datasets.
type transactionIn struct {
	ID             string    `toml:"id"`
	Description    string    `toml:"description"`
	PaidByEntity   string    `toml:"paid_by_entity"`
	Currency       string    `toml:"currency_iso_4217"`
	Amount         any       `toml:"amount"`
	Datetime       any       `toml:"transaction_datetime"`
	LegacyDatetime any       `toml:"transaction_datetime_rfc_3339"`
	SplitRatios    []splitIn `toml:"split_ratios"`
}

type splitIn struct {
	EntityID string `toml:"entity_id"`
	Ratio    any    `toml:"ratio"`
}

type transactionOut struct {
	ID           string     `toml:"id"`
	Description  string     `toml:"description"`
	PaidByEntity string     `toml:"paid_by_entity"`
	Currency     string     `toml:"currency_iso_4217"`
	Amount       any        `toml:"amount"`
	Datetime     time.Time  `toml:"transaction_datetime"`
	SplitRatios  []splitOut `toml:"split_ratios"`
}

type splitOut struct {
	EntityID string   `toml:"entity_id"`
	Ratio    ratioOut `toml:"ratio,inline"`
}

type ratioOut struct {
	Numerator   int64 `toml:"numerator"`
	Denominator int64 `toml:"denominator"`
}

// DecodeGroup parses a group record.
func DecodeGroup(data []byte) (*models.Group, error) {
	var rec groupRecord
	if err := toml.Unmarshal(data, &rec); err != nil {
		return nil, parseError("group", err)
	}
	group := &models.Group{Entities: make([]models.Entity, 0, len(rec.Entities))}
	for i, e := range rec.Entities {
		id, err := models.ParseID(e.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: group entities[%d].id: %v", models.ErrParse, i, err)
		}
		group.Entities = append(group.Entities, models.Entity{ID: id, DisplayName: e.DisplayName})
	}
	return group, nil
}

// EncodeGroup renders a group record.
func EncodeGroup(group *models.Group) ([]byte, error) {
	rec := groupRecord{Entities: make([]entityRecord, len(group.Entities))}
	for i, e := range group.Entities {
		rec.Entities[i] = entityRecord{ID: e.ID.String(), DisplayName: e.DisplayName}
	}
	return toml.Marshal(rec)
}

// DecodeLedger parses a ledger descriptor.
func DecodeLedger(data []byte) (*models.Ledger, error) {
	var rec ledgerRecord
	if err := toml.Unmarshal(data, &rec); err != nil {
		return nil, parseError("ledger", err)
	}
	id, err := models.ParseID(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: ledger id: %v", models.ErrParse, err)
	}
	participants, err := models.ParseIDs(rec.Participants)
	if err != nil {
		return nil, fmt.Errorf("%w: ledger participants: %v", models.ErrParse, err)
	}
	return &models.Ledger{ID: id, DisplayName: rec.DisplayName, Participants: participants}, nil
}

// EncodeLedger renders a ledger descriptor.
func EncodeLedger(ledger *models.Ledger) ([]byte, error) {
	return toml.Marshal(ledgerRecord{
		ID:           ledger.ID.String(),
		DisplayName:  ledger.DisplayName,
		Participants: models.IDStrings(ledger.Participants),
	})
}

// DecodeTransaction parses a transaction record.
// A record without an id key decodes with a nil ID; see DecodeTransactionFile.
func DecodeTransaction(data []byte) (*models.Transaction, error) {
	var rec transactionIn
	if err := toml.Unmarshal(data, &rec); err != nil {
		return nil, parseError("transaction", err)
	}

	txn := &models.Transaction{
		Description: rec.Description,
		Currency:    rec.Currency,
	}
	var err error
	if rec.ID != "" {
		if txn.ID, err = models.ParseID(rec.ID); err != nil {
			return nil, fmt.Errorf("%w: transaction id: %v", models.ErrParse, err)
		}
	}
	if txn.PaidByEntity, err = models.ParseID(rec.PaidByEntity); err != nil {
		return nil, fmt.Errorf("%w: paid_by_entity: %v", models.ErrParse, err)
	}
	if txn.Amount, err = decodeAmount(rec.Amount); err != nil {
		return nil, fmt.Errorf("%w: amount: %v", models.ErrParse, err)
	}

	raw := rec.Datetime
	if raw == nil {
		raw = rec.LegacyDatetime
	}
	if txn.Datetime, err = decodeDatetime(raw); err != nil {
		return nil, fmt.Errorf("%w: transaction_datetime: %v", models.ErrParse, err)
	}

	txn.SplitRatios = make([]models.Split, 0, len(rec.SplitRatios))
	for i, s := range rec.SplitRatios {
		id, err := models.ParseID(s.EntityID)
		if err != nil {
			return nil, fmt.Errorf("%w: split_ratios[%d].entity_id: %v", models.ErrParse, i, err)
		}
		ratio, err := decodeRatio(s.Ratio)
		if err != nil {
			return nil, fmt.Errorf("%w: split_ratios[%d].ratio: %v", models.ErrParse, i, err)
		}
		txn.SplitRatios = append(txn.SplitRatios, models.Split{EntityID: id, Ratio: ratio})
	}
	return txn, nil
}

// DecodeTransactionFile parses a transaction record stored under name.
// When the record carries no id, the file stem is used if it is a UUID.
func DecodeTransactionFile(name string, data []byte) (*models.Transaction, error) {
	txn, err := DecodeTransaction(data)
	if err != nil {
		return nil, err
	}
	if txn.ID != uuid.Nil {
		return txn, nil
	}
	stem := strings.TrimSuffix(path.Base(name), path.Ext(name))
	id, err := models.ParseID(stem)
	if err != nil {
		return nil, fmt.Errorf("%w: %s has no id and its name is not one", models.ErrParse, name)
	}
	txn.ID = id
	return txn, nil
}

// EncodeTransaction renders a transaction record.
func EncodeTransaction(txn *models.Transaction) ([]byte, error) {
	rec := transactionOut{
		ID:           txn.ID.String(),
		Description:  txn.Description,
		PaidByEntity: txn.PaidByEntity.String(),
		Currency:     txn.Currency,
		Amount:       encodeAmount(txn.Amount),
		Datetime:     txn.Datetime,
		SplitRatios:  make([]splitOut, len(txn.SplitRatios)),
	}
	for i, s := range txn.SplitRatios {
		rec.SplitRatios[i] = splitOut{
			EntityID: s.EntityID.String(),
			Ratio:    ratioOut{Numerator: s.Ratio.Num, Denominator: s.Ratio.Den},
		}
	}
	return toml.Marshal(rec)
}

// TransactionFileName is the file name a transaction is stored under.
func TransactionFileName(id uuid.UUID) string {
	return id.String() + Extension
}

func parseError(what string, err error) error {
	if derr, ok := err.(*toml.DecodeError); ok {
		row, col := derr.Position()
		return fmt.Errorf("%w: %s record at %d:%d: %v", models.ErrParse, what, row, col, derr)
	}
	return fmt.Errorf("%w: %s record: %v", models.ErrParse, what, err)
}

func decodeAmount(v any) (decimal.Decimal, error) {
	switch a := v.(type) {
	case nil:
		return decimal.Decimal{}, fmt.Errorf("missing")
	case int64:
		return decimal.NewFromInt(a), nil
	case float64:
		return decimal.NewFromFloat(a), nil
	case string:
		return decimal.NewFromString(a)
	default:
		return decimal.Decimal{}, fmt.Errorf("unexpected type %T", v)
	}
}

// encodeAmount keeps amounts as TOML floats when that is lossless, which is what
// hand-written datasets use, and falls back to a decimal string otherwise.
func encodeAmount(d decimal.Decimal) any {
	f := d.InexactFloat64()
	if decimal.NewFromFloat(f).Equal(d) {
		return f
	}
	return d.String()
}

func decodeDatetime(v any) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("missing")
	case time.Time:
		return t, nil
	case toml.LocalDateTime:
		return t.AsTime(time.UTC), nil
	case toml.LocalDate:
		return t.AsTime(time.UTC), nil
	case string:
		return time.Parse(time.RFC3339Nano, t)
	default:
		return time.Time{}, fmt.Errorf("unexpected type %T", v)
	}
}

func decodeRatio(v any) (models.Ratio, error) {
	var r models.Ratio
	switch x := v.(type) {
	case map[string]any:
		num, okN := x["numerator"].(int64)
		den, okD := x["denominator"].(int64)
		if !okN || !okD {
			return r, fmt.Errorf("expected integer numerator and denominator")
		}
		r = models.NewRatio(num, den)
	case []any:
		if len(x) != 2 {
			return r, fmt.Errorf("expected [numerator, denominator]")
		}
		num, okN := x[0].(int64)
		den, okD := x[1].(int64)
		if !okN || !okD {
			return r, fmt.Errorf("expected integer numerator and denominator")
		}
		r = models.NewRatio(num, den)
	case string:
		return models.ParseRatio(x)
	case int64:
		r = models.NewRatio(x, 1)
	default:
		return r, fmt.Errorf("unexpected type %T", v)
	}
	if !r.Valid() {
		return r, fmt.Errorf("zero denominator")
	}
	return r, nil
}
