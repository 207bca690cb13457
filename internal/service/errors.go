package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/borrowchecker/internal/models"
)

// toConnectError maps an error kind from the models package to a Connect code.
// Context cancellation keeps its own code; anything unclassified is internal.
func toConnectError(err error) *connect.Error {
	var code connect.Code
	switch {
	case errors.Is(err, models.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, models.ErrInvalidID),
		errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrReference):
		code = connect.CodeInvalidArgument
	case errors.Is(err, models.ErrUnsupported):
		code = connect.CodeUnimplemented
	case errors.Is(err, models.ErrParse):
		code = connect.CodeDataLoss
	case errors.Is(err, models.ErrBackend):
		code = connect.CodeUnavailable
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	default:
		code = connect.CodeInternal
		slog.Error("Unclassified error", "error", err)
	}
	return connect.NewError(code, err)
}
