package memory

import (
	"context"
	"fmt"
	"sort"

	"agrirent-backend/internal/domain"

	"github.com/google/uuid"
)

type bookingRepository struct {
	s *Store
	j *journal
}

// Insert rejects a second non-completed booking for the same equipment, matching
// the partial unique index of the Postgres schema.
func (r *bookingRepository) Insert(ctx context.Context, b *domain.Booking) error {
	defer r.s.writeLock(r.j)()
	if err := r.s.enter(ctx, OpInsertBooking); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if b.Status.IsReserved() && r.s.activeBookingLocked(b.EquipmentID) != nil {
		return fmt.Errorf("equipment %s already has an active booking: %w", b.EquipmentID, domain.ErrConditionFailed)
	}
	b.ID = uuid.New()
	now := r.s.now()
	b.CreatedAt = now
	b.UpdatedAt = now

	r.j.recordBooking(b.ID, nil)
	c := *b
	r.s.bookings[b.ID] = &c
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	c := *b
	return &c, nil
}

func (r *bookingRepository) FindActiveByEquipment(ctx context.Context, equipmentID uuid.UUID) (*domain.Booking, error) {
	if err := r.s.enter(ctx, OpFindActive); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	b := r.s.activeBookingLocked(equipmentID)
	if b == nil {
		return nil, fmt.Errorf("active booking for equipment %s: %w", equipmentID, domain.ErrNotFound)
	}
	c := *b
	return &c, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	defer r.s.writeLock(r.j)()
	if err := r.s.enter(ctx, OpUpdateStatus); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	if b.Status == domain.BookingStatusCompleted {
		return nil, fmt.Errorf("booking %s is completed: %w", id, domain.ErrConditionFailed)
	}
	r.j.recordBooking(id, b)
	b.Status = status
	b.UpdatedAt = r.s.now()
	c := *b
	return &c, nil
}

func (r *bookingRepository) ListByRenter(ctx context.Context, renterID uuid.UUID, includeCompleted bool) ([]domain.Booking, error) {
	return r.list(ctx, includeCompleted, func(b *domain.Booking) bool { return b.RenterID == renterID })
}

func (r *bookingRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, includeCompleted bool) ([]domain.Booking, error) {
	return r.list(ctx, includeCompleted, func(b *domain.Booking) bool { return b.OwnerID == ownerID })
}

func (r *bookingRepository) list(ctx context.Context, includeCompleted bool, keep func(*domain.Booking) bool) ([]domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []domain.Booking
	for _, b := range r.s.bookings {
		if !keep(b) || (!includeCompleted && b.Status == domain.BookingStatusCompleted) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
