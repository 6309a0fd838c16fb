package grpc

import (
	"errors"

	"agrirent-backend/internal/domain"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC codes. Errors that already carry a status
// pass through.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codeFor(err), err.Error())
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, domain.ErrCompensationFailed),
		errors.Is(err, domain.ErrBookingCreateFailed),
		errors.Is(err, domain.ErrStoreUnavailable):
		return codes.Unavailable
	case errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrValidation):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrNotAuthenticated):
		return codes.Unauthenticated
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrSelfBooking):
		return codes.PermissionDenied
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrNoActiveBooking):
		return codes.NotFound
	case errors.Is(err, domain.ErrReservationRaceLost):
		return codes.Aborted
	case errors.Is(err, domain.ErrAlreadyReserved),
		errors.Is(err, domain.ErrNotForRent),
		errors.Is(err, domain.ErrInvalidTransition):
		return codes.FailedPrecondition
	}
	return codes.Internal
}
