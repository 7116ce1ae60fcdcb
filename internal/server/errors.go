package server

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"google.golang.org/genproto/googleapis/rpc/errdetails"

	"github.com/at-ishikawa/parentstudy/internal/inference"
	"github.com/at-ishikawa/parentstudy/internal/tutor"
	"github.com/at-ishikawa/parentstudy/internal/validation"
)

var requestValidator = validation.MustNew("json")

func validateRequest(msg any) *connect.Error {
	err := requestValidator.Struct(msg)
	if err == nil {
		return nil
	}
	return invalidArgument(err)
}

func invalidArgument(err error) *connect.Error {
	connectErr := connect.NewError(connect.CodeInvalidArgument, err)
	var valErr *validation.Error
	if errors.As(err, &valErr) {
		fieldViolations := make([]*errdetails.BadRequest_FieldViolation, 0, len(valErr.Violations))
		for _, v := range valErr.Violations {
			fieldViolations = append(fieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       v.Field,
				Description: v.Description,
			})
		}
		if detail, detailErr := connect.NewErrorDetail(&errdetails.BadRequest{
			FieldViolations: fieldViolations,
		}); detailErr == nil {
			connectErr.AddDetail(detail)
		}
	}
	return connectErr
}

// toConnectError maps a tutor or provider failure to a Connect status code.
func toConnectError(ctx context.Context, err error) *connect.Error {
	var (
		connectErr *connect.Error
		serviceErr *inference.ServiceError
		payloadErr *inference.PayloadError
	)
	switch {
	case errors.As(err, &connectErr):
		return connectErr
	case errors.Is(err, tutor.ErrInvalidInput):
		return invalidArgument(err)
	case errors.Is(err, inference.ErrCanceled), errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.As(err, &serviceErr):
		slog.WarnContext(ctx, "inference provider failed", "provider", serviceErr.Provider, "status", serviceErr.StatusCode, "error", err)
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.As(err, &payloadErr), errors.Is(err, inference.ErrNoData):
		slog.ErrorContext(ctx, "unusable inference payload", "error", err)
		return connect.NewError(connect.CodeInternal, err)
	default:
		slog.ErrorContext(ctx, "unexpected error", "error", err)
		return connect.NewError(connect.CodeInternal, err)
	}
}
