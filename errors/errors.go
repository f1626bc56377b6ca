package errors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrInvalidPayload   = fmt.Errorf("invalid payload")
	ErrUnknownEvent     = fmt.Errorf("unknown event type")
	ErrNotJoined        = fmt.Errorf("connection has not joined a room")
	ErrAlreadyJoined    = fmt.Errorf("connection already joined a room")
	ErrReadOnlyRoom     = fmt.Errorf("dashboard connections cannot emit updates")
	ErrForbiddenRoom    = fmt.Errorf("missing role for requested room")
	ErrDealNotFound     = fmt.Errorf("deal not found in CRM")
	ErrDispatcherClosed = fmt.Errorf("dispatcher is not running")
	ErrInvalidResetTime = fmt.Errorf("daily reset time must be formatted as HH:MM")
)

// StatusError is returned by the CRM client when the remote answers with a non 2xx code.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("crm responded with status %d: %s", e.StatusCode, e.Body)
}

// MapToGRPCError converts domain errors into gRPC status errors at the transport edge.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrForbiddenRoom):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, ErrInvalidPayload), errors.Is(err, ErrUnknownEvent),
		errors.Is(err, ErrNotJoined), errors.Is(err, ErrAlreadyJoined), errors.Is(err, ErrReadOnlyRoom):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrDispatcherClosed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
