package service

import (
	"context"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/repository"

	"github.com/google/uuid"
)

type bookingQueryService struct {
	bookingRepo   repository.BookingRepository
	equipmentRepo repository.EquipmentRepository
}

func NewBookingQueryService(bookingRepo repository.BookingRepository, equipmentRepo repository.EquipmentRepository) BookingQueryService {
	return &bookingQueryService{bookingRepo: bookingRepo, equipmentRepo: equipmentRepo}
}

// ListRentals returns the renter's bookings that are not completed.
func (s *bookingQueryService) ListRentals(ctx context.Context, renterID uuid.UUID) ([]domain.BookingView, error) {
	if renterID == uuid.Nil {
		return nil, domain.ErrNotAuthenticated
	}
	bookings, err := s.bookingRepo.ListByRenter(ctx, renterID, false)
	if err != nil {
		return nil, storeError("list rentals", err)
	}
	return s.withEquipment(ctx, bookings), nil
}

// ListLendings returns non-completed bookings of the owner's equipment.
func (s *bookingQueryService) ListLendings(ctx context.Context, ownerID uuid.UUID) ([]domain.BookingView, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrNotAuthenticated
	}
	bookings, err := s.bookingRepo.ListByOwner(ctx, ownerID, false)
	if err != nil {
		return nil, storeError("list lendings", err)
	}
	return s.withEquipment(ctx, bookings), nil
}

// withEquipment attaches each booking's equipment row, loading every item once.
// A lookup failure leaves Equipment nil rather than failing the listing.
func (s *bookingQueryService) withEquipment(ctx context.Context, bookings []domain.Booking) []domain.BookingView {
	items := make(map[uuid.UUID]*domain.Equipment)
	views := make([]domain.BookingView, len(bookings))
	for i, b := range bookings {
		views[i].Booking = b
		e, seen := items[b.EquipmentID]
		if !seen {
			var err error
			e, err = s.equipmentRepo.GetByID(ctx, b.EquipmentID)
			if err != nil {
				logger.WarnContext(ctx, "Failed to load equipment for booking", "booking_id", b.ID, "equipment_id", b.EquipmentID, "error", err)
				e = nil
			}
			items[b.EquipmentID] = e
		}
		views[i].Equipment = e
	}
	return views
}
