package service

import (
	"context"
	"time"

	"agrirent-backend/internal/domain"

	"github.com/google/uuid"
)

// ReserveRequest carries the caller's identity explicitly; RenterID is uuid.Nil for
// anonymous callers.
type ReserveRequest struct {
	EquipmentID uuid.UUID
	RenterID    uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
}

type ReservationService interface {
	Reserve(ctx context.Context, req ReserveRequest) (*domain.Reservation, error)
	IsBookable(ctx context.Context, equipmentID uuid.UUID) (bool, error)
}

type LifecycleService interface {
	CompleteBooking(ctx context.Context, equipmentID, ownerID uuid.UUID) (*domain.Booking, error)
	StartRental(ctx context.Context, bookingID, ownerID uuid.UUID) (*domain.Booking, error)
	DetectInconsistencies(ctx context.Context, strandedAfter time.Duration) (*domain.ConsistencyReport, error)
	ReleaseStranded(ctx context.Context, strandedAfter time.Duration) (int, error)
}

type EquipmentService interface {
	Register(ctx context.Context, ownerID uuid.UUID, equipment *domain.Equipment) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Equipment, error)
	ListMine(ctx context.Context, ownerID uuid.UUID) ([]domain.Equipment, error)
	Search(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error)
}

type BookingQueryService interface {
	ListRentals(ctx context.Context, renterID uuid.UUID) ([]domain.BookingView, error)
	ListLendings(ctx context.Context, ownerID uuid.UUID) ([]domain.BookingView, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID uuid.UUID, notificationID int64) error
}

// Notifier delivers booking events. Failures never change a workflow's outcome.
type Notifier interface {
	BookingReserved(ctx context.Context, booking *domain.Booking, equipment *domain.Equipment) error
	BookingCompleted(ctx context.Context, booking *domain.Booking) error
}
