package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/repository"

	"github.com/google/uuid"
)

type lifecycleService struct {
	equipmentRepo repository.EquipmentRepository
	bookingRepo   repository.BookingRepository
	notifier      Notifier
	now           func() time.Time
	storeTimeout  time.Duration
}

type LifecycleOption func(*lifecycleService)

func WithLifecycleClock(now func() time.Time) LifecycleOption {
	return func(s *lifecycleService) {
		s.now = now
	}
}

func WithLifecycleStoreTimeout(d time.Duration) LifecycleOption {
	return func(s *lifecycleService) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

func WithLifecycleNotifier(n Notifier) LifecycleOption {
	return func(s *lifecycleService) {
		s.notifier = n
	}
}

func NewLifecycleService(
	equipmentRepo repository.EquipmentRepository,
	bookingRepo repository.BookingRepository,
	opts ...LifecycleOption,
) LifecycleService {
	s := &lifecycleService{
		equipmentRepo: equipmentRepo,
		bookingRepo:   bookingRepo,
		now:           time.Now,
		storeTimeout:  defaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CompleteBooking records the physical return of the equipment: availability goes
// back to true, then the active booking is marked completed. A failure between the
// two writes is logged and surfaced but not undone.
func (s *lifecycleService) CompleteBooking(ctx context.Context, equipmentID, ownerID uuid.UUID) (*domain.Booking, error) {
	logger.EnterMethod("lifecycleService.CompleteBooking", "equipmentID", equipmentID, "ownerID", ownerID)

	if ownerID == uuid.Nil {
		return nil, domain.ErrNotAuthenticated
	}

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	active, err := s.bookingRepo.FindActiveByEquipment(sctx, equipmentID)
	cancel()
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoActiveBooking
	}
	if err != nil {
		return nil, storeError("find active booking", err)
	}
	if active.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}

	// The restore is refused while another booking holds the item, so a stale
	// completion racing a newer reservation cannot free it.
	sctx, cancel = context.WithTimeout(ctx, s.storeTimeout)
	_, err = s.equipmentRepo.RestoreAvailability(sctx, equipmentID, active.ID)
	cancel()
	if err != nil && !errors.Is(err, domain.ErrConditionFailed) {
		return nil, storeError("restore availability", err)
	}

	sctx, cancel = context.WithTimeout(ctx, s.storeTimeout)
	completed, err := s.bookingRepo.UpdateStatus(sctx, active.ID, domain.BookingStatusCompleted)
	cancel()
	if errors.Is(err, domain.ErrConditionFailed) {
		// A concurrent completion got there first.
		logger.WarnContext(ctx, "Booking already completed concurrently", "equipment_id", equipmentID, "booking_id", active.ID)
		return nil, domain.ErrNoActiveBooking
	}
	if err != nil {
		logger.Inconsistency(ctx, "booking_not_completed", err,
			"equipment_id", equipmentID, "booking_id", active.ID)
		return nil, fmt.Errorf("%w: complete booking %s after availability was restored: %v",
			domain.ErrStoreUnavailable, active.ID, err)
	}

	logger.InfoContext(ctx, "Booking completed", "equipment_id", equipmentID, "booking_id", completed.ID)
	s.notifyCompleted(ctx, completed)

	logger.ExitMethod("lifecycleService.CompleteBooking", "bookingID", completed.ID)
	return completed, nil
}

// StartRental moves a pending booking to rented when the owner hands the equipment over.
func (s *lifecycleService) StartRental(ctx context.Context, bookingID, ownerID uuid.UUID) (*domain.Booking, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrNotAuthenticated
	}

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	b, err := s.bookingRepo.GetByID(sctx, bookingID)
	cancel()
	if err != nil {
		return nil, storeError("load booking", err)
	}
	if b.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	if !b.Status.CanTransitionTo(domain.BookingStatusRented) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, b.Status, domain.BookingStatusRented)
	}

	sctx, cancel = context.WithTimeout(ctx, s.storeTimeout)
	updated, err := s.bookingRepo.UpdateStatus(sctx, bookingID, domain.BookingStatusRented)
	cancel()
	if errors.Is(err, domain.ErrConditionFailed) {
		return nil, fmt.Errorf("%w: booking %s was completed concurrently", domain.ErrInvalidTransition, bookingID)
	}
	if err != nil {
		return nil, storeError("start rental", err)
	}

	logger.InfoContext(ctx, "Rental started", "booking_id", bookingID, "equipment_id", updated.EquipmentID)
	return updated, nil
}

// DetectInconsistencies reports items whose availability flag disagrees with the
// booking table.
func (s *lifecycleService) DetectInconsistencies(ctx context.Context, strandedAfter time.Duration) (*domain.ConsistencyReport, error) {
	now := s.now().UTC()

	drifted, err := s.equipmentRepo.ListAvailableWithActiveBooking(ctx)
	if err != nil {
		return nil, storeError("list drifted equipment", err)
	}
	stranded, err := s.equipmentRepo.ListUnavailableWithoutActiveBooking(ctx, now.Add(-strandedAfter))
	if err != nil {
		return nil, storeError("list stranded equipment", err)
	}

	report := &domain.ConsistencyReport{
		CheckedAt: now,
		Drifted:   drifted,
		Stranded:  stranded,
	}
	if report.Drifted == nil {
		report.Drifted = []domain.ConsistencyIssue{}
	}
	if report.Stranded == nil {
		report.Stranded = []domain.ConsistencyIssue{}
	}
	return report, nil
}

// ReleaseStranded makes stranded items available again. Each release re-checks the
// stranded condition atomically, so an item reserved in the meantime is untouched.
func (s *lifecycleService) ReleaseStranded(ctx context.Context, strandedAfter time.Duration) (int, error) {
	cutoff := s.now().UTC().Add(-strandedAfter)

	stranded, err := s.equipmentRepo.ListUnavailableWithoutActiveBooking(ctx, cutoff)
	if err != nil {
		return 0, storeError("list stranded equipment", err)
	}

	released := 0
	var errs []error
	for _, issue := range stranded {
		ok, err := s.equipmentRepo.ReleaseIfStranded(ctx, issue.EquipmentID, cutoff)
		if err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", issue.EquipmentID, err))
			continue
		}
		if ok {
			released++
			logger.WarnContext(ctx, "Released stranded equipment", "equipment_id", issue.EquipmentID, "unavailable_since", issue.Since)
		}
	}
	if len(errs) > 0 {
		return released, storeError("release stranded equipment", errors.Join(errs...))
	}
	return released, nil
}

func (s *lifecycleService) notifyCompleted(ctx context.Context, b *domain.Booking) {
	if s.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultNotifyTimeout)
	defer cancel()
	if err := s.notifier.BookingCompleted(nctx, b); err != nil {
		logger.WarnContext(ctx, "Failed to notify renter of completion", "booking_id", b.ID, "error", err)
	}
}
