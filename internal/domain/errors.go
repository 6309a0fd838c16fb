package domain

import "errors"

// Store-level errors.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConditionFailed is returned by conditional updates whose guard did not match,
	// i.e. the compare-and-swap lost.
	ErrConditionFailed = errors.New("conditional update did not apply")
)

// Reservation and lifecycle errors.
var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidDateRange    = errors.New("invalid date range")
	ErrNotForRent          = errors.New("equipment is not listed for rent")
	ErrSelfBooking         = errors.New("owners cannot book their own equipment")
	ErrAlreadyReserved     = errors.New("equipment is already reserved")
	ErrReservationRaceLost = errors.New("equipment was reserved by a concurrent request")
	ErrBookingCreateFailed = errors.New("booking could not be created")
	ErrCompensationFailed  = errors.New("equipment availability could not be restored")
	ErrNoActiveBooking     = errors.New("no active booking for equipment")
	ErrInvalidTransition   = errors.New("invalid booking status transition")
)
