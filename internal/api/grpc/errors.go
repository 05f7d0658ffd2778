package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fieldservice-backend/internal/domain"
	"fieldservice-backend/internal/logger"
)

// toStatus maps a service error onto a gRPC status. Errors that are already
// statuses pass through.
func toStatus(method string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrConflict):
		code = codes.Aborted
	case errors.Is(err, domain.ErrInvalidState):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrInvalidInput):
		code = codes.InvalidArgument
	default:
		logger.Error("RPC failed", "method", method, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
