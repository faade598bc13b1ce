package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aman3729/credit-score/internal/domain/model"
)

// toStatus maps domain errors onto gRPC codes. Unknown errors become
// Internal without leaking their text.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var (
		validation    *model.ValidationError
		configuration *model.ConfigurationError
		policyMissing *model.PolicyNotFoundError
	)
	switch {
	case errors.As(err, &validation):
		return status.Error(codes.InvalidArgument, validation.Error())
	case errors.As(err, &configuration):
		return status.Error(codes.FailedPrecondition, configuration.Error())
	case errors.As(err, &policyMissing):
		return status.Error(codes.NotFound, policyMissing.Error())
	case errors.Is(err, model.ErrBorrowerNotFound), errors.Is(err, model.ErrDecisionNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, model.ErrConcurrencyConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, model.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
