package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"agrirent-backend/internal/domain"

	"github.com/google/uuid"
)

type equipmentRepository struct {
	s *Store
	j *journal
}

func copyEquipment(e *domain.Equipment) *domain.Equipment {
	c := *e
	c.ImagePaths = append([]string(nil), e.ImagePaths...)
	return &c
}

func (r *equipmentRepository) Create(ctx context.Context, e *domain.Equipment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if _, exists := r.s.equipment[e.ID]; exists {
		return fmt.Errorf("%w: equipment %s already exists", domain.ErrValidation, e.ID)
	}
	now := r.s.now()
	e.CreatedAt = now
	e.UpdatedAt = now
	r.j.recordEquipment(e.ID, nil)
	r.s.equipment[e.ID] = copyEquipment(e)
	return nil
}

func (r *equipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	if err := r.s.enter(ctx, OpGetEquipment); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	e, ok := r.s.equipment[id]
	if !ok {
		return nil, fmt.Errorf("equipment %s: %w", id, domain.ErrNotFound)
	}
	return copyEquipment(e), nil
}

func (r *equipmentRepository) GetAvailability(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := r.s.enter(ctx, OpGetAvailability); err != nil {
		return false, err
	}
	defer r.s.mu.Unlock()

	e, ok := r.s.equipment[id]
	if !ok {
		return false, fmt.Errorf("equipment %s: %w", id, domain.ErrNotFound)
	}
	return e.Available, nil
}

func (r *equipmentRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (*domain.Equipment, error) {
	defer r.s.writeLock(r.j)()
	if err := r.s.enter(ctx, OpSetAvailability); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	e, ok := r.s.equipment[id]
	if !ok {
		return nil, fmt.Errorf("equipment %s: %w", id, domain.ErrNotFound)
	}
	if e.Available == available {
		return nil, fmt.Errorf("equipment %s availability already %t: %w", id, available, domain.ErrConditionFailed)
	}
	r.j.recordEquipment(id, e)
	e.Available = available
	e.UpdatedAt = r.s.now()
	return copyEquipment(e), nil
}

func (r *equipmentRepository) RestoreAvailability(ctx context.Context, id, bookingID uuid.UUID) (*domain.Equipment, error) {
	defer r.s.writeLock(r.j)()
	if err := r.s.enter(ctx, OpRestoreAvailability); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	e, ok := r.s.equipment[id]
	if !ok {
		return nil, fmt.Errorf("equipment %s: %w", id, domain.ErrNotFound)
	}
	if e.Available {
		return nil, fmt.Errorf("equipment %s availability already true: %w", id, domain.ErrConditionFailed)
	}
	if b, ok := r.s.bookings[bookingID]; !ok || !b.Status.IsReserved() {
		return nil, fmt.Errorf("booking %s is no longer active: %w", bookingID, domain.ErrConditionFailed)
	}
	if r.s.heldByOtherLocked(id, bookingID) {
		return nil, fmt.Errorf("equipment %s is held by another booking: %w", id, domain.ErrConditionFailed)
	}
	r.j.recordEquipment(id, e)
	e.Available = true
	e.UpdatedAt = r.s.now()
	return copyEquipment(e), nil
}

func (r *equipmentRepository) Search(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	return r.list(ctx, filter.Matches)
}

func (r *equipmentRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Equipment, error) {
	return r.list(ctx, func(e *domain.Equipment) bool { return e.OwnerID == ownerID })
}

func (r *equipmentRepository) list(ctx context.Context, keep func(*domain.Equipment) bool) ([]domain.Equipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var items []domain.Equipment
	for _, e := range r.s.equipment {
		if keep(e) {
			items = append(items, *copyEquipment(e))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *equipmentRepository) ListAvailableWithActiveBooking(ctx context.Context) ([]domain.ConsistencyIssue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var issues []domain.ConsistencyIssue
	for _, e := range r.s.equipment {
		if !e.Available {
			continue
		}
		if b := r.s.activeBookingLocked(e.ID); b != nil {
			bookingID := b.ID
			issues = append(issues, domain.ConsistencyIssue{
				Kind:        domain.IssueDrifted,
				EquipmentID: e.ID,
				OwnerID:     e.OwnerID,
				BookingID:   &bookingID,
				Since:       e.UpdatedAt,
			})
		}
	}
	sortIssues(issues)
	return issues, nil
}

func (r *equipmentRepository) ListUnavailableWithoutActiveBooking(ctx context.Context, updatedBefore time.Time) ([]domain.ConsistencyIssue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var issues []domain.ConsistencyIssue
	for _, e := range r.s.equipment {
		if r.s.strandedLocked(e, updatedBefore) {
			issues = append(issues, domain.ConsistencyIssue{
				Kind:        domain.IssueStranded,
				EquipmentID: e.ID,
				OwnerID:     e.OwnerID,
				Since:       e.UpdatedAt,
			})
		}
	}
	sortIssues(issues)
	return issues, nil
}

func (r *equipmentRepository) ReleaseIfStranded(ctx context.Context, id uuid.UUID, updatedBefore time.Time) (bool, error) {
	defer r.s.writeLock(r.j)()
	if err := r.s.enter(ctx, OpReleaseStranded); err != nil {
		return false, err
	}
	defer r.s.mu.Unlock()

	e, ok := r.s.equipment[id]
	if !ok || !r.s.strandedLocked(e, updatedBefore) {
		return false, nil
	}
	r.j.recordEquipment(id, e)
	e.Available = true
	e.UpdatedAt = r.s.now()
	return true, nil
}

func (s *Store) strandedLocked(e *domain.Equipment, updatedBefore time.Time) bool {
	return !e.Available && e.UpdatedAt.Before(updatedBefore) && s.activeBookingLocked(e.ID) == nil
}

func sortIssues(issues []domain.ConsistencyIssue) {
	sort.Slice(issues, func(i, j int) bool { return issues[i].Since.Before(issues[j].Since) })
}
