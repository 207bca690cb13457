package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// BorrowServiceName is the fully-qualified name of the BorrowService service.
const BorrowServiceName = "borrowchecker.v1.BorrowService"

// Procedure paths of BorrowService, as they appear on the wire.
const (
	BorrowServiceLoadGroupProcedure            = "/borrowchecker.v1.BorrowService/LoadGroup"
	BorrowServiceListLedgersProcedure          = "/borrowchecker.v1.BorrowService/ListLedgers"
	BorrowServiceListTransactionsProcedure     = "/borrowchecker.v1.BorrowService/ListTransactions"
	BorrowServiceRefreshProcedure              = "/borrowchecker.v1.BorrowService/Refresh"
	BorrowServiceSwitchLedgerProcedure         = "/borrowchecker.v1.BorrowService/SwitchLedger"
	BorrowServiceSelectUserProcedure           = "/borrowchecker.v1.BorrowService/SelectUser"
	BorrowServiceGetSessionProcedure           = "/borrowchecker.v1.BorrowService/GetSession"
	BorrowServiceCalculateBalancesProcedure    = "/borrowchecker.v1.BorrowService/CalculateBalances"
	BorrowServiceCalculateSettlementsProcedure = "/borrowchecker.v1.BorrowService/CalculateSettlements"
	BorrowServiceValidateGroupProcedure        = "/borrowchecker.v1.BorrowService/ValidateGroup"
	BorrowServiceValidateLedgerProcedure       = "/borrowchecker.v1.BorrowService/ValidateLedger"
	BorrowServiceValidateTransactionProcedure  = "/borrowchecker.v1.BorrowService/ValidateTransaction"
	BorrowServiceCreateLedgerProcedure         = "/borrowchecker.v1.BorrowService/CreateLedger"
	BorrowServiceUpdateLedgerProcedure         = "/borrowchecker.v1.BorrowService/UpdateLedger"
	BorrowServiceDeleteLedgerProcedure         = "/borrowchecker.v1.BorrowService/DeleteLedger"
	BorrowServiceCreateTransactionProcedure    = "/borrowchecker.v1.BorrowService/CreateTransaction"
	BorrowServiceUpdateTransactionProcedure    = "/borrowchecker.v1.BorrowService/UpdateTransaction"
	BorrowServiceDeleteTransactionProcedure    = "/borrowchecker.v1.BorrowService/DeleteTransaction"
)

// NewBorrowServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
// Messages are exchanged as JSON.
func NewBorrowServiceHandler(svc *BorrowService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(BorrowServiceLoadGroupProcedure, connect.NewUnaryHandler(BorrowServiceLoadGroupProcedure, svc.LoadGroup, opts...))
	mux.Handle(BorrowServiceListLedgersProcedure, connect.NewUnaryHandler(BorrowServiceListLedgersProcedure, svc.ListLedgers, opts...))
	mux.Handle(BorrowServiceListTransactionsProcedure, connect.NewUnaryHandler(BorrowServiceListTransactionsProcedure, svc.ListTransactions, opts...))
	mux.Handle(BorrowServiceRefreshProcedure, connect.NewUnaryHandler(BorrowServiceRefreshProcedure, svc.Refresh, opts...))
	mux.Handle(BorrowServiceSwitchLedgerProcedure, connect.NewUnaryHandler(BorrowServiceSwitchLedgerProcedure, svc.SwitchLedger, opts...))
	mux.Handle(BorrowServiceSelectUserProcedure, connect.NewUnaryHandler(BorrowServiceSelectUserProcedure, svc.SelectUser, opts...))
	mux.Handle(BorrowServiceGetSessionProcedure, connect.NewUnaryHandler(BorrowServiceGetSessionProcedure, svc.GetSession, opts...))
	mux.Handle(BorrowServiceCalculateBalancesProcedure, connect.NewUnaryHandler(BorrowServiceCalculateBalancesProcedure, svc.CalculateBalances, opts...))
	mux.Handle(BorrowServiceCalculateSettlementsProcedure, connect.NewUnaryHandler(BorrowServiceCalculateSettlementsProcedure, svc.CalculateSettlements, opts...))
	mux.Handle(BorrowServiceValidateGroupProcedure, connect.NewUnaryHandler(BorrowServiceValidateGroupProcedure, svc.ValidateGroup, opts...))
	mux.Handle(BorrowServiceValidateLedgerProcedure, connect.NewUnaryHandler(BorrowServiceValidateLedgerProcedure, svc.ValidateLedger, opts...))
	mux.Handle(BorrowServiceValidateTransactionProcedure, connect.NewUnaryHandler(BorrowServiceValidateTransactionProcedure, svc.ValidateTransaction, opts...))
	mux.Handle(BorrowServiceCreateLedgerProcedure, connect.NewUnaryHandler(BorrowServiceCreateLedgerProcedure, svc.CreateLedger, opts...))
	mux.Handle(BorrowServiceUpdateLedgerProcedure, connect.NewUnaryHandler(BorrowServiceUpdateLedgerProcedure, svc.UpdateLedger, opts...))
	mux.Handle(BorrowServiceDeleteLedgerProcedure, connect.NewUnaryHandler(BorrowServiceDeleteLedgerProcedure, svc.DeleteLedger, opts...))
	mux.Handle(BorrowServiceCreateTransactionProcedure, connect.NewUnaryHandler(BorrowServiceCreateTransactionProcedure, svc.CreateTransaction, opts...))
	mux.Handle(BorrowServiceUpdateTransactionProcedure, connect.NewUnaryHandler(BorrowServiceUpdateTransactionProcedure, svc.UpdateTransaction, opts...))
	mux.Handle(BorrowServiceDeleteTransactionProcedure, connect.NewUnaryHandler(BorrowServiceDeleteTransactionProcedure, svc.DeleteTransaction, opts...))

	return "/" + BorrowServiceName + "/", mux
}

// BorrowServiceClient is a client for the borrowchecker.v1.BorrowService service.
type BorrowServiceClient struct {
	loadGroup            *connect.Client[LoadGroupRequest, LoadGroupResponse]
	listLedgers          *connect.Client[ListLedgersRequest, ListLedgersResponse]
	listTransactions     *connect.Client[ListTransactionsRequest, ListTransactionsResponse]
	refresh              *connect.Client[RefreshRequest, RefreshResponse]
	switchLedger         *connect.Client[SwitchLedgerRequest, SwitchLedgerResponse]
	selectUser           *connect.Client[SelectUserRequest, SelectUserResponse]
	getSession           *connect.Client[GetSessionRequest, GetSessionResponse]
	calculateBalances    *connect.Client[CalculateBalancesRequest, CalculateBalancesResponse]
	calculateSettlements *connect.Client[CalculateSettlementsRequest, CalculateSettlementsResponse]
	validateGroup        *connect.Client[ValidateGroupRequest, ValidateResponse]
	validateLedger       *connect.Client[ValidateLedgerRequest, ValidateResponse]
	validateTransaction  *connect.Client[ValidateTransactionRequest, ValidateResponse]
	createLedger         *connect.Client[CreateLedgerRequest, CreateLedgerResponse]
	updateLedger         *connect.Client[UpdateLedgerRequest, UpdateLedgerResponse]
	deleteLedger         *connect.Client[DeleteLedgerRequest, DeleteLedgerResponse]
	createTransaction    *connect.Client[CreateTransactionRequest, CreateTransactionResponse]
	updateTransaction    *connect.Client[UpdateTransactionRequest, UpdateTransactionResponse]
	deleteTransaction    *connect.Client[DeleteTransactionRequest, DeleteTransactionResponse]
}

// NewBorrowServiceClient constructs a client for the BorrowService service.
// baseURL is the server's scheme and host, e.g. http://localhost:8080.
func NewBorrowServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BorrowServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &BorrowServiceClient{
		loadGroup:            connect.NewClient[LoadGroupRequest, LoadGroupResponse](httpClient, baseURL+BorrowServiceLoadGroupProcedure, opts...),
		listLedgers:          connect.NewClient[ListLedgersRequest, ListLedgersResponse](httpClient, baseURL+BorrowServiceListLedgersProcedure, opts...),
		listTransactions:     connect.NewClient[ListTransactionsRequest, ListTransactionsResponse](httpClient, baseURL+BorrowServiceListTransactionsProcedure, opts...),
		refresh:              connect.NewClient[RefreshRequest, RefreshResponse](httpClient, baseURL+BorrowServiceRefreshProcedure, opts...),
		switchLedger:         connect.NewClient[SwitchLedgerRequest, SwitchLedgerResponse](httpClient, baseURL+BorrowServiceSwitchLedgerProcedure, opts...),
		selectUser:           connect.NewClient[SelectUserRequest, SelectUserResponse](httpClient, baseURL+BorrowServiceSelectUserProcedure, opts...),
		getSession:           connect.NewClient[GetSessionRequest, GetSessionResponse](httpClient, baseURL+BorrowServiceGetSessionProcedure, opts...),
		calculateBalances:    connect.NewClient[CalculateBalancesRequest, CalculateBalancesResponse](httpClient, baseURL+BorrowServiceCalculateBalancesProcedure, opts...),
		calculateSettlements: connect.NewClient[CalculateSettlementsRequest, CalculateSettlementsResponse](httpClient, baseURL+BorrowServiceCalculateSettlementsProcedure, opts...),
		validateGroup:        connect.NewClient[ValidateGroupRequest, ValidateResponse](httpClient, baseURL+BorrowServiceValidateGroupProcedure, opts...),
		validateLedger:       connect.NewClient[ValidateLedgerRequest, ValidateResponse](httpClient, baseURL+BorrowServiceValidateLedgerProcedure, opts...),
		validateTransaction:  connect.NewClient[ValidateTransactionRequest, ValidateResponse](httpClient, baseURL+BorrowServiceValidateTransactionProcedure, opts...),
		createLedger:         connect.NewClient[CreateLedgerRequest, CreateLedgerResponse](httpClient, baseURL+BorrowServiceCreateLedgerProcedure, opts...),
		updateLedger:         connect.NewClient[UpdateLedgerRequest, UpdateLedgerResponse](httpClient, baseURL+BorrowServiceUpdateLedgerProcedure, opts...),
		deleteLedger:         connect.NewClient[DeleteLedgerRequest, DeleteLedgerResponse](httpClient, baseURL+BorrowServiceDeleteLedgerProcedure, opts...),
		createTransaction:    connect.NewClient[CreateTransactionRequest, CreateTransactionResponse](httpClient, baseURL+BorrowServiceCreateTransactionProcedure, opts...),
		updateTransaction:    connect.NewClient[UpdateTransactionRequest, UpdateTransactionResponse](httpClient, baseURL+BorrowServiceUpdateTransactionProcedure, opts...),
		deleteTransaction:    connect.NewClient[DeleteTransactionRequest, DeleteTransactionResponse](httpClient, baseURL+BorrowServiceDeleteTransactionProcedure, opts...),
	}
}

// LoadGroup calls borrowchecker.v1.BorrowService.LoadGroup.
func (c *BorrowServiceClient) LoadGroup(ctx context.Context, req *connect.Request[LoadGroupRequest]) (*connect.Response[LoadGroupResponse], error) {
	return c.loadGroup.CallUnary(ctx, req)
}

// ListLedgers calls borrowchecker.v1.BorrowService.ListLedgers.
func (c *BorrowServiceClient) ListLedgers(ctx context.Context, req *connect.Request[ListLedgersRequest]) (*connect.Response[ListLedgersResponse], error) {
	return c.listLedgers.CallUnary(ctx, req)
}

// ListTransactions calls borrowchecker.v1.BorrowService.ListTransactions.
func (c *BorrowServiceClient) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

// Refresh calls borrowchecker.v1.BorrowService.Refresh.
func (c *BorrowServiceClient) Refresh(ctx context.Context, req *connect.Request[RefreshRequest]) (*connect.Response[RefreshResponse], error) {
	return c.refresh.CallUnary(ctx, req)
}

// SwitchLedger calls borrowchecker.v1.BorrowService.SwitchLedger.
func (c *BorrowServiceClient) SwitchLedger(ctx context.Context, req *connect.Request[SwitchLedgerRequest]) (*connect.Response[SwitchLedgerResponse], error) {
	return c.switchLedger.CallUnary(ctx, req)
}

// SelectUser calls borrowchecker.v1.BorrowService.SelectUser.
func (c *BorrowServiceClient) SelectUser(ctx context.Context, req *connect.Request[SelectUserRequest]) (*connect.Response[SelectUserResponse], error) {
	return c.selectUser.CallUnary(ctx, req)
}

// GetSession calls borrowchecker.v1.BorrowService.GetSession.
func (c *BorrowServiceClient) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[GetSessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

// CalculateBalances calls borrowchecker.v1.BorrowService.CalculateBalances.
func (c *BorrowServiceClient) CalculateBalances(ctx context.Context, req *connect.Request[CalculateBalancesRequest]) (*connect.Response[CalculateBalancesResponse], error) {
	return c.calculateBalances.CallUnary(ctx, req)
}

// CalculateSettlements calls borrowchecker.v1.BorrowService.CalculateSettlements.
func (c *BorrowServiceClient) CalculateSettlements(ctx context.Context, req *connect.Request[CalculateSettlementsRequest]) (*connect.Response[CalculateSettlementsResponse], error) {
	return c.calculateSettlements.CallUnary(ctx, req)
}

// ValidateGroup calls borrowchecker.v1.BorrowService.ValidateGroup.
func (c *BorrowServiceClient) ValidateGroup(ctx context.Context, req *connect.Request[ValidateGroupRequest]) (*connect.Response[ValidateResponse], error) {
	return c.validateGroup.CallUnary(ctx, req)
}

// ValidateLedger calls borrowchecker.v1.BorrowService.ValidateLedger.
func (c *BorrowServiceClient) ValidateLedger(ctx context.Context, req *connect.Request[ValidateLedgerRequest]) (*connect.Response[ValidateResponse], error) {
	return c.validateLedger.CallUnary(ctx, req)
}

// ValidateTransaction calls borrowchecker.v1.BorrowService.ValidateTransaction.
func (c *BorrowServiceClient) ValidateTransaction(ctx context.Context, req *connect.Request[ValidateTransactionRequest]) (*connect.Response[ValidateResponse], error) {
	return c.validateTransaction.CallUnary(ctx, req)
}

// CreateLedger calls borrowchecker.v1.BorrowService.CreateLedger.
func (c *BorrowServiceClient) CreateLedger(ctx context.Context, req *connect.Request[CreateLedgerRequest]) (*connect.Response[CreateLedgerResponse], error) {
	return c.createLedger.CallUnary(ctx, req)
}

// UpdateLedger calls borrowchecker.v1.BorrowService.UpdateLedger.
func (c *BorrowServiceClient) UpdateLedger(ctx context.Context, req *connect.Request[UpdateLedgerRequest]) (*connect.Response[UpdateLedgerResponse], error) {
	return c.updateLedger.CallUnary(ctx, req)
}

// DeleteLedger calls borrowchecker.v1.BorrowService.DeleteLedger.
func (c *BorrowServiceClient) DeleteLedger(ctx context.Context, req *connect.Request[DeleteLedgerRequest]) (*connect.Response[DeleteLedgerResponse], error) {
	return c.deleteLedger.CallUnary(ctx, req)
}

// CreateTransaction calls borrowchecker.v1.BorrowService.CreateTransaction.
func (c *BorrowServiceClient) CreateTransaction(ctx context.Context, req *connect.Request[CreateTransactionRequest]) (*connect.Response[CreateTransactionResponse], error) {
	return c.createTransaction.CallUnary(ctx, req)
}

// UpdateTransaction calls borrowchecker.v1.BorrowService.UpdateTransaction.
func (c *BorrowServiceClient) UpdateTransaction(ctx context.Context, req *connect.Request[UpdateTransactionRequest]) (*connect.Response[UpdateTransactionResponse], error) {
	return c.updateTransaction.CallUnary(ctx, req)
}

// DeleteTransaction calls borrowchecker.v1.BorrowService.DeleteTransaction.
func (c *BorrowServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}
