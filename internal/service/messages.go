package service

// Wire messages of borrowchecker.v1.BorrowService.
// Identifiers are canonical UUID text, amounts decimal strings, ratios "n/d".

type Entity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type Ledger struct {
	ID           string   `json:"id"`
	DisplayName  string   `json:"display_name"`
	Participants []Entity `json:"participants"`
}

type Split struct {
	EntityID string `json:"entity_id"`
	Ratio    string `json:"ratio"`
}

type Transaction struct {
	ID           string  `json:"id,omitempty"`
	Description  string  `json:"description"`
	PaidByEntity string  `json:"paid_by_entity"`
	Currency     string  `json:"currency_iso_4217"`
	Amount       string  `json:"amount"`
	Datetime     string  `json:"transaction_datetime"`
	SplitRatios  []Split `json:"split_ratios"`

	// Set on listings when a viewing user is known.
	ViewerShare string `json:"viewer_share,omitempty"`
	Direction   string `json:"direction,omitempty"` // "lent", "borrowed" or empty
}

type Balance struct {
	EntityID    string `json:"entity_id"`
	DisplayName string `json:"display_name"`
	Currency    string `json:"currency_iso_4217"`
	Amount      string `json:"amount"` // rounded to the currency's minor unit
	Exact       string `json:"exact"`  // exact fraction
	Display     string `json:"display"`
	Settled     bool   `json:"settled"`
}

type Settlement struct {
	From     string `json:"from"`
	FromName string `json:"from_name"`
	To       string `json:"to"`
	ToName   string `json:"to_name"`
	Currency string `json:"currency_iso_4217"`
	Amount   string `json:"amount"`
	Display  string `json:"display"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

type LoadGroupRequest struct{}

type LoadGroupResponse struct {
	Entities []Entity `json:"entities"`
}

type ListLedgersRequest struct{}

type ListLedgersResponse struct {
	Ledgers []Ledger `json:"ledgers"`
}

type ListTransactionsRequest struct {
	LedgerID string `json:"ledger_id,omitempty"` // empty: current ledger
}

type ListTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type RefreshRequest struct{}

type RefreshResponse struct {
	HasChanges bool `json:"has_changes"`
}

type SwitchLedgerRequest struct {
	LedgerID string `json:"ledger_id"`
}

type SwitchLedgerResponse struct {
	LedgerID string `json:"ledger_id"`
}

type SelectUserRequest struct {
	UserID string `json:"user_id"`
}

type SelectUserResponse struct {
	UserID string `json:"user_id"`
}

type GetSessionRequest struct{}

type GetSessionResponse struct {
	CurrentLedgerID string `json:"current_ledger_id,omitempty"`
	UserID          string `json:"user_id,omitempty"`
	LedgerCount     int    `json:"ledger_count"`
	EntityCount     int    `json:"entity_count"`
}

type CalculateBalancesRequest struct {
	LedgerID string `json:"ledger_id,omitempty"` // empty: current ledger
	UserID   string `json:"user_id,omitempty"`   // empty: viewing user
}

// Total is the viewer's overall position in one currency; positive means the
// viewer is owed money.
type Total struct {
	Currency string `json:"currency_iso_4217"`
	Amount   string `json:"amount"`
	Exact    string `json:"exact"`
	Display  string `json:"display"`
	Settled  bool   `json:"settled"`
}

type CalculateBalancesResponse struct {
	Balances []Balance `json:"balances"`
	Totals   []Total   `json:"totals"`
}

type CalculateSettlementsRequest struct {
	LedgerID string `json:"ledger_id,omitempty"`
}

type CalculateSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type ValidateGroupRequest struct{}

type ValidateLedgerRequest struct {
	LedgerID string `json:"ledger_id,omitempty"`
}

type ValidateTransactionRequest struct {
	LedgerID    string      `json:"ledger_id"`
	Transaction Transaction `json:"transaction"`
}

type ValidateResponse struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

type CreateLedgerRequest struct {
	DisplayName  string   `json:"display_name"`
	Participants []string `json:"participants"`
}

type CreateLedgerResponse struct {
	LedgerID string `json:"ledger_id"`
}

type UpdateLedgerRequest struct {
	LedgerID     string   `json:"ledger_id"`
	DisplayName  string   `json:"display_name"`
	Participants []string `json:"participants"`
}

type UpdateLedgerResponse struct{}

type DeleteLedgerRequest struct {
	LedgerID string `json:"ledger_id"`
}

type DeleteLedgerResponse struct{}

type CreateTransactionRequest struct {
	LedgerID    string      `json:"ledger_id"`
	Transaction Transaction `json:"transaction"`
}

type CreateTransactionResponse struct {
	TransactionID string `json:"transaction_id"`
}

type UpdateTransactionRequest struct {
	LedgerID    string      `json:"ledger_id"`
	Transaction Transaction `json:"transaction"`
}

type UpdateTransactionResponse struct{}

type DeleteTransactionRequest struct {
	LedgerID      string `json:"ledger_id"`
	TransactionID string `json:"transaction_id"`
}

type DeleteTransactionResponse struct{}
