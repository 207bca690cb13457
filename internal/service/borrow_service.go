// Package service exposes a session over Connect as borrowchecker.v1.BorrowService.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/borrowchecker/internal/models"
	"github.com/mmynk/borrowchecker/internal/session"
	"github.com/mmynk/borrowchecker/internal/validation"
)

// BorrowService implements the Connect BorrowService over one Session.
type BorrowService struct {
	session *session.Session
}

// NewBorrowService creates a new BorrowService backed by the given session.
// The session must have been loaded.
func NewBorrowService(s *session.Session) *BorrowService {
	return &BorrowService{session: s}
}

// LoadGroup returns the entities of the loaded group.
func (s *BorrowService) LoadGroup(ctx context.Context, req *connect.Request[LoadGroupRequest]) (*connect.Response[LoadGroupResponse], error) {
	group := s.session.Group()
	if group == nil {
		return nil, toConnectError(fmt.Errorf("%w: no group loaded", models.ErrNotFound))
	}

	entities := make([]Entity, len(group.Entities))
	for i, e := range group.Entities {
		entities[i] = Entity{ID: e.ID.String(), DisplayName: e.DisplayName}
	}
	return connect.NewResponse(&LoadGroupResponse{Entities: entities}), nil
}

// ListLedgers returns the loaded ledgers with resolved participant names.
func (s *BorrowService) ListLedgers(ctx context.Context, req *connect.Request[ListLedgersRequest]) (*connect.Response[ListLedgersResponse], error) {
	group := s.session.Group()
	ledgers := s.session.Ledgers()

	out := make([]Ledger, len(ledgers))
	for i, l := range ledgers {
		out[i] = toLedger(l, group)
	}

	slog.Info("ListLedgers successful", "count", len(out))
	return connect.NewResponse(&ListLedgersResponse{Ledgers: out}), nil
}

// ListTransactions returns a ledger's transactions. When a viewing user is selected,
// each transaction carries that user's share and whether they lent or borrowed.
func (s *BorrowService) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error) {
	ledgerID, err := s.ledgerOrCurrent(req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(err)
	}

	txns, err := s.session.Transactions(ctx, ledgerID)
	if err != nil {
		slog.Error("ListTransactions failed", "ledger_id", ledgerID, "error", err)
		return nil, toConnectError(err)
	}

	viewer, _ := s.session.CurrentUser()
	out := make([]Transaction, len(txns))
	for i, t := range txns {
		out[i] = toTransaction(t, viewer)
	}

	slog.Info("ListTransactions successful", "ledger_id", ledgerID, "count", len(out))
	return connect.NewResponse(&ListTransactionsResponse{Transactions: out}), nil
}

// Refresh re-resolves the repository and reloads the session when it changed.
func (s *BorrowService) Refresh(ctx context.Context, req *connect.Request[RefreshRequest]) (*connect.Response[RefreshResponse], error) {
	res, err := s.session.Refresh(ctx)
	if err != nil {
		slog.Error("Refresh failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Refresh successful", "has_changes", res.HasChanges)
	return connect.NewResponse(&RefreshResponse{HasChanges: res.HasChanges}), nil
}

// SwitchLedger changes the current ledger.
func (s *BorrowService) SwitchLedger(ctx context.Context, req *connect.Request[SwitchLedgerRequest]) (*connect.Response[SwitchLedgerResponse], error) {
	id, err := models.ParseID(req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.session.SwitchLedger(id); err != nil {
		slog.Warn("SwitchLedger rejected", "ledger_id", id, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Switched ledger", "ledger_id", id)
	return connect.NewResponse(&SwitchLedgerResponse{LedgerID: id.String()}), nil
}

// SelectUser changes the viewing user.
func (s *BorrowService) SelectUser(ctx context.Context, req *connect.Request[SelectUserRequest]) (*connect.Response[SelectUserResponse], error) {
	id, err := models.ParseID(req.Msg.UserID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.session.SelectUser(id); err != nil {
		slog.Warn("SelectUser rejected", "user_id", id, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Selected user", "user_id", id)
	return connect.NewResponse(&SelectUserResponse{UserID: id.String()}), nil
}

// GetSession reports the current selections and the size of the loaded state.
func (s *BorrowService) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[GetSessionResponse], error) {
	resp := &GetSessionResponse{LedgerCount: len(s.session.Ledgers())}
	if group := s.session.Group(); group != nil {
		resp.EntityCount = len(group.Entities)
	}
	if id, ok := s.session.CurrentLedger(); ok {
		resp.CurrentLedgerID = id.String()
	}
	if id, ok := s.session.CurrentUser(); ok {
		resp.UserID = id.String()
	}
	return connect.NewResponse(resp), nil
}

// CalculateBalances returns what each entity owes the user (negative) or is owed by
// them (positive), per currency.
func (s *BorrowService) CalculateBalances(ctx context.Context, req *connect.Request[CalculateBalancesRequest]) (*connect.Response[CalculateBalancesResponse], error) {
	ledgerID, err := parseOptionalID(req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	userID, err := parseOptionalID(req.Msg.UserID)
	if err != nil {
		return nil, toConnectError(err)
	}

	balances, err := s.session.Balances(ctx, ledgerID, userID)
	if err != nil {
		slog.Error("CalculateBalances failed", "ledger_id", req.Msg.LedgerID, "user_id", req.Msg.UserID, "error", err)
		return nil, toConnectError(err)
	}

	out := toBalances(balances, s.session.Group())
	slog.Info("CalculateBalances successful", "currencies", len(balances.Currencies()), "count", len(out))
	return connect.NewResponse(&CalculateBalancesResponse{Balances: out, Totals: toTotals(balances)}), nil
}

// CalculateSettlements proposes payments that settle the whole ledger.
func (s *BorrowService) CalculateSettlements(ctx context.Context, req *connect.Request[CalculateSettlementsRequest]) (*connect.Response[CalculateSettlementsResponse], error) {
	ledgerID, err := parseOptionalID(req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(err)
	}

	byCurrency, err := s.session.Settlements(ctx, ledgerID)
	if err != nil {
		slog.Error("CalculateSettlements failed", "ledger_id", req.Msg.LedgerID, "error", err)
		return nil, toConnectError(err)
	}

	group := s.session.Group()
	out := []Settlement{}
	for _, currency := range slices.Sorted(maps.Keys(byCurrency)) {
		for _, st := range byCurrency[currency] {
			out = append(out, toSettlement(st, group))
		}
	}

	slog.Info("CalculateSettlements successful", "count", len(out))
	return connect.NewResponse(&CalculateSettlementsResponse{Settlements: out}), nil
}

// ValidateGroup checks the loaded group.
func (s *BorrowService) ValidateGroup(ctx context.Context, req *connect.Request[ValidateGroupRequest]) (*connect.Response[ValidateResponse], error) {
	group := s.session.Group()
	if group == nil {
		return nil, toConnectError(fmt.Errorf("%w: no group loaded", models.ErrNotFound))
	}
	return connect.NewResponse(toValidateResponse(validation.ValidateGroup(group))), nil
}

// ValidateLedger checks a ledger and every one of its transactions.
func (s *BorrowService) ValidateLedger(ctx context.Context, req *connect.Request[ValidateLedgerRequest]) (*connect.Response[ValidateResponse], error) {
	ledgerID, err := parseOptionalID(req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	result, err := s.session.ValidateLedger(ctx, ledgerID)
	if err != nil {
		return nil, toConnectError(err)
	}

	if !result.Valid() {
		slog.Warn("Ledger failed validation", "ledger_id", req.Msg.LedgerID, "errors", len(result.Errors))
	}
	return connect.NewResponse(toValidateResponse(result)), nil
}

// ValidateTransaction checks a transaction against a ledger without storing it.
func (s *BorrowService) ValidateTransaction(ctx context.Context, req *connect.Request[ValidateTransactionRequest]) (*connect.Response[ValidateResponse], error) {
	ledgerID, err := models.ParseID(req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	ledger, err := s.session.Ledger(ledgerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	txn, err := fromTransaction(req.Msg.Transaction)
	if err != nil {
		return nil, toConnectError(err)
	}

	result := validation.ValidateTransaction(&txn, &ledger, s.session.Group())
	return connect.NewResponse(toValidateResponse(result)), nil
}

// CreateLedger creates a new ledger.
func (s *BorrowService) CreateLedger(ctx context.Context, req *connect.Request[CreateLedgerRequest]) (*connect.Response[CreateLedgerResponse], error) {
	slog.Info("CreateLedger request received",
		"display_name", req.Msg.DisplayName,
		"participants_count", len(req.Msg.Participants),
	)

	participants, err := models.ParseIDs(req.Msg.Participants)
	if err != nil {
		return nil, toConnectError(err)
	}
	id, err := s.session.CreateLedger(ctx, models.Ledger{
		DisplayName:  req.Msg.DisplayName,
		Participants: participants,
	})
	if err != nil {
		slog.Error("CreateLedger failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Ledger created", "ledger_id", id)
	return connect.NewResponse(&CreateLedgerResponse{LedgerID: id.String()}), nil
}

// UpdateLedger replaces the display name and participants of a ledger.
func (s *BorrowService) UpdateLedger(ctx context.Context, req *connect.Request[UpdateLedgerRequest]) (*connect.Response[UpdateLedgerResponse], error) {
	slog.Info("UpdateLedger request received",
		"ledger_id", req.Msg.LedgerID,
		"display_name", req.Msg.DisplayName,
		"participants_count", len(req.Msg.Participants),
	)

	ledgerID, err := models.ParseID(req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	participants, err := models.ParseIDs(req.Msg.Participants)
	if err != nil {
		return nil, toConnectError(err)
	}
	err = s.session.UpdateLedger(ctx, models.Ledger{
		ID:           ledgerID,
		DisplayName:  req.Msg.DisplayName,
		Participants: participants,
	})
	if err != nil {
		slog.Error("UpdateLedger failed", "ledger_id", ledgerID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Ledger updated", "ledger_id", ledgerID)
	return connect.NewResponse(&UpdateLedgerResponse{}), nil
}

// DeleteLedger removes a ledger and its transactions.
func (s *BorrowService) DeleteLedger(ctx context.Context, req *connect.Request[DeleteLedgerRequest]) (*connect.Response[DeleteLedgerResponse], error) {
	slog.Info("DeleteLedger request received", "ledger_id", req.Msg.LedgerID)

	ledgerID, err := models.ParseID(req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.session.DeleteLedger(ctx, ledgerID); err != nil {
		slog.Error("DeleteLedger failed", "ledger_id", ledgerID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Ledger deleted", "ledger_id", ledgerID)
	return connect.NewResponse(&DeleteLedgerResponse{}), nil
}

// CreateTransaction adds a transaction to a ledger.
func (s *BorrowService) CreateTransaction(ctx context.Context, req *connect.Request[CreateTransactionRequest]) (*connect.Response[CreateTransactionResponse], error) {
	slog.Info("CreateTransaction request received",
		"ledger_id", req.Msg.LedgerID,
		"description", req.Msg.Transaction.Description,
		"amount", req.Msg.Transaction.Amount,
		"currency", req.Msg.Transaction.Currency,
	)

	ledgerID, err := models.ParseID(req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	txn, err := fromTransaction(req.Msg.Transaction)
	if err != nil {
		return nil, toConnectError(err)
	}
	id, err := s.session.CreateTransaction(ctx, ledgerID, txn)
	if err != nil {
		slog.Error("CreateTransaction failed", "ledger_id", ledgerID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Transaction created", "ledger_id", ledgerID, "transaction_id", id)
	return connect.NewResponse(&CreateTransactionResponse{TransactionID: id.String()}), nil
}

// UpdateTransaction replaces an existing transaction.
func (s *BorrowService) UpdateTransaction(ctx context.Context, req *connect.Request[UpdateTransactionRequest]) (*connect.Response[UpdateTransactionResponse], error) {
	slog.Info("UpdateTransaction request received",
		"ledger_id", req.Msg.LedgerID,
		"transaction_id", req.Msg.Transaction.ID,
	)

	ledgerID, err := models.ParseID(req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	txn, err := fromTransaction(req.Msg.Transaction)
	if err != nil {
		return nil, toConnectError(err)
	}
	if txn.ID == uuid.Nil {
		return nil, toConnectError(fmt.Errorf("%w: transaction id is required", models.ErrInvalidID))
	}
	if err := s.session.UpdateTransaction(ctx, ledgerID, txn); err != nil {
		slog.Error("UpdateTransaction failed", "ledger_id", ledgerID, "transaction_id", txn.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Transaction updated", "ledger_id", ledgerID, "transaction_id", txn.ID)
	return connect.NewResponse(&UpdateTransactionResponse{}), nil
}

// DeleteTransaction removes a transaction.
func (s *BorrowService) DeleteTransaction(ctx context.Context, req *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error) {
	slog.Info("DeleteTransaction request received",
		"ledger_id", req.Msg.LedgerID,
		"transaction_id", req.Msg.TransactionID,
	)

	ledgerID, err := models.ParseID(req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	txnID, err := models.ParseID(req.Msg.TransactionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.session.DeleteTransaction(ctx, ledgerID, txnID); err != nil {
		slog.Error("DeleteTransaction failed", "ledger_id", ledgerID, "transaction_id", txnID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Transaction deleted", "ledger_id", ledgerID, "transaction_id", txnID)
	return connect.NewResponse(&DeleteTransactionResponse{}), nil
}

// ledgerOrCurrent parses id, falling back to the current ledger when it is empty.
func (s *BorrowService) ledgerOrCurrent(id string) (uuid.UUID, error) {
	if id != "" {
		return models.ParseID(id)
	}
	if cur, ok := s.session.CurrentLedger(); ok {
		return cur, nil
	}
	return uuid.Nil, fmt.Errorf("%w: no ledger selected", models.ErrNotFound)
}

func toValidateResponse(result validation.Result) *ValidateResponse {
	resp := &ValidateResponse{Valid: result.Valid()}
	for _, fe := range result.Errors {
		resp.Errors = append(resp.Errors, FieldError{Field: fe.Field, Message: fe.Message, Kind: string(fe.Kind)})
	}
	return resp
}
