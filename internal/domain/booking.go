package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusRented    BookingStatus = "rented"
	BookingStatusCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusRented, BookingStatusCompleted:
		return true
	}
	return false
}

// IsReserved is true for the states that hold the equipment.
func (s BookingStatus) IsReserved() bool {
	return s == BookingStatusPending || s == BookingStatusRented
}

// CanTransitionTo encodes pending -> rented -> completed, with pending -> completed
// allowed directly. Nothing leaves completed.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusRented || next == BookingStatusCompleted
	case BookingStatusRented:
		return next == BookingStatusCompleted
	}
	return false
}

type Booking struct {
	ID          uuid.UUID     `json:"id"`
	EquipmentID uuid.UUID     `json:"equipment_id"`
	RenterID    uuid.UUID     `json:"renter_id"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	CostCents   int64         `json:"cost_cents"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BookingView is a booking together with the equipment it references, as the
// dashboards show it. Equipment is nil when the item could not be loaded.
type BookingView struct {
	Booking
	Equipment *Equipment `json:"equipment,omitempty"`
}

// Reservation is the outcome of a successful reserve call. Delist tells the caller
// to drop the equipment from any cached list of available items.
type Reservation struct {
	Booking *Booking `json:"booking"`
	Delist  bool     `json:"delist"`
}

// ValidateBookingWindow checks a date range against today. All three values are
// expected to be truncated to a UTC calendar date.
func ValidateBookingWindow(start, end, today time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidDateRange)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidDateRange, end.Format(DateLayout), start.Format(DateLayout))
	}
	if start.Before(today) {
		return fmt.Errorf("%w: start date %s is in the past", ErrInvalidDateRange, start.Format(DateLayout))
	}
	return nil
}

// DateLayout is the wire format for booking dates.
const DateLayout = "2006-01-02"
