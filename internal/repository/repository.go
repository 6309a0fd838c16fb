package repository

import (
	"context"
	"time"

	"agrirent-backend/internal/domain"

	"github.com/google/uuid"
)

type EquipmentRepository interface {
	Create(ctx context.Context, equipment *domain.Equipment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error)
	GetAvailability(ctx context.Context, id uuid.UUID) (bool, error)
	// SetAvailability only applies when the stored flag differs from available.
	// Returns domain.ErrConditionFailed when the row already holds the value.
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) (*domain.Equipment, error)
	// RestoreAvailability sets availability to true for the return of bookingID. It only
	// applies while bookingID is still non-completed and no other non-completed booking
	// holds the item; otherwise, or when the flag is already true, it returns
	// domain.ErrConditionFailed.
	RestoreAvailability(ctx context.Context, id, bookingID uuid.UUID) (*domain.Equipment, error)
	Search(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Equipment, error)

	// Reconciliation
	ListAvailableWithActiveBooking(ctx context.Context) ([]domain.ConsistencyIssue, error)
	ListUnavailableWithoutActiveBooking(ctx context.Context, updatedBefore time.Time) ([]domain.ConsistencyIssue, error)
	// ReleaseIfStranded flips availability back to true only if the item is still
	// unavailable, has no non-completed booking and was last updated before updatedBefore.
	ReleaseIfStranded(ctx context.Context, id uuid.UUID, updatedBefore time.Time) (bool, error)
}

type BookingRepository interface {
	Insert(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// FindActiveByEquipment returns domain.ErrNotFound when no booking is pending or rented.
	FindActiveByEquipment(ctx context.Context, equipmentID uuid.UUID) (*domain.Booking, error)
	// UpdateStatus never modifies a completed booking (domain.ErrConditionFailed).
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)
	ListByRenter(ctx context.Context, renterID uuid.UUID, includeCompleted bool) ([]domain.Booking, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, includeCompleted bool) ([]domain.Booking, error)
}

// TxFunc runs with repositories bound to a single transaction.
type TxFunc func(ctx context.Context, equipment EquipmentRepository, bookings BookingRepository) error

// Transactor is implemented by stores that can run several calls atomically.
type Transactor interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id int64, userID uuid.UUID) error
}
