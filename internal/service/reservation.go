package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/repository"
	"agrirent-backend/internal/utils"

	"github.com/google/uuid"
)

const (
	defaultStoreTimeout  = 3 * time.Second
	defaultNotifyTimeout = 5 * time.Second
)

type reservationService struct {
	equipmentRepo       repository.EquipmentRepository
	bookingRepo         repository.BookingRepository
	tx                  repository.Transactor
	notifier            Notifier
	now                 func() time.Time
	storeTimeout        time.Duration
	compensationTimeout time.Duration
	forbidSelfBooking   bool
}

type ReservationOption func(*reservationService)

// WithClock sets the clock used to decide what "today" is.
func WithClock(now func() time.Time) ReservationOption {
	return func(s *reservationService) {
		s.now = now
	}
}

// WithStoreTimeout bounds every individual store call.
func WithStoreTimeout(d time.Duration) ReservationOption {
	return func(s *reservationService) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

func WithCompensationTimeout(d time.Duration) ReservationOption {
	return func(s *reservationService) {
		if d > 0 {
			s.compensationTimeout = d
		}
	}
}

// WithSelfBookingForbidden rejects reservations where the renter owns the item.
func WithSelfBookingForbidden(forbid bool) ReservationOption {
	return func(s *reservationService) {
		s.forbidSelfBooking = forbid
	}
}

// WithTransactions runs the claim, verify and insert steps in one store
// transaction instead of the compensating saga.
func WithTransactions(tx repository.Transactor) ReservationOption {
	return func(s *reservationService) {
		s.tx = tx
	}
}

func WithReservationNotifier(n Notifier) ReservationOption {
	return func(s *reservationService) {
		s.notifier = n
	}
}

func NewReservationService(
	equipmentRepo repository.EquipmentRepository,
	bookingRepo repository.BookingRepository,
	opts ...ReservationOption,
) ReservationService {
	s := &reservationService{
		equipmentRepo: equipmentRepo,
		bookingRepo:   bookingRepo,
		now:           time.Now,
		storeTimeout:  defaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.compensationTimeout == 0 {
		s.compensationTimeout = s.storeTimeout
	}
	return s
}

func (s *reservationService) IsBookable(ctx context.Context, equipmentID uuid.UUID) (bool, error) {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	e, err := s.equipmentRepo.GetByID(sctx, equipmentID)
	if err != nil {
		return false, storeError("load equipment", err)
	}
	return e.Bookable(), nil
}

// Reserve claims the equipment's availability flag and records a pending booking.
// The conditional availability update is the only serialization point: at most one
// concurrent caller can flip the flag to false.
func (s *reservationService) Reserve(ctx context.Context, req ReserveRequest) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.Reserve", "equipmentID", req.EquipmentID, "renterID", req.RenterID)

	booking, item, err := s.prepare(ctx, req)
	if err != nil {
		logger.ExitMethodWithError("reservationService.Reserve", err, "equipmentID", req.EquipmentID, "stage", "precheck")
		return nil, err
	}

	if s.tx != nil {
		err = s.reserveInTx(ctx, booking)
	} else {
		err = s.reserveSaga(ctx, booking)
	}
	if err != nil {
		logger.ExitMethodWithError("reservationService.Reserve", err, "equipmentID", req.EquipmentID)
		return nil, err
	}

	logger.InfoContext(ctx, "Equipment reserved",
		"equipment_id", booking.EquipmentID, "booking_id", booking.ID, "renter_id", booking.RenterID,
		"cost_cents", booking.CostCents)
	s.notifyReserved(ctx, booking, item)

	logger.ExitMethod("reservationService.Reserve", "bookingID", booking.ID)
	return &domain.Reservation{Booking: booking, Delist: true}, nil
}

// prepare checks preconditions and runs the optimistic pre-check. It never writes.
func (s *reservationService) prepare(ctx context.Context, req ReserveRequest) (*domain.Booking, *domain.Equipment, error) {
	if req.RenterID == uuid.Nil {
		return nil, nil, domain.ErrNotAuthenticated
	}
	start := utils.TruncateToDate(req.StartDate)
	end := utils.TruncateToDate(req.EndDate)
	if err := domain.ValidateBookingWindow(start, end, utils.TruncateToDate(s.now())); err != nil {
		return nil, nil, err
	}

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	item, err := s.equipmentRepo.GetByID(sctx, req.EquipmentID)
	cancel()
	if err != nil {
		return nil, nil, storeError("load equipment", err)
	}
	if !item.ForRent {
		return nil, nil, domain.ErrNotForRent
	}
	if s.forbidSelfBooking && item.OwnerID == req.RenterID {
		return nil, nil, domain.ErrSelfBooking
	}
	if !item.Available {
		return nil, nil, domain.ErrAlreadyReserved
	}

	cost, err := utils.CalculateRentalCost(start, end, item.DailyPriceCents)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidDateRange, err)
	}

	booking := &domain.Booking{
		EquipmentID: item.ID,
		RenterID:    req.RenterID,
		OwnerID:     item.OwnerID,
		StartDate:   start,
		EndDate:     end,
		CostCents:   cost,
		Status:      domain.BookingStatusPending,
	}
	return booking, item, nil
}

// claim flips availability to false. A lost condition is a lost race; any other
// failure leaves the flag's owner unknown, so the caller must not compensate.
func (s *reservationService) claim(ctx context.Context, equipmentRepo repository.EquipmentRepository, id uuid.UUID) error {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	_, err := equipmentRepo.SetAvailability(sctx, id, false)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrConditionFailed):
		return domain.ErrReservationRaceLost
	case errors.Is(err, domain.ErrNotFound):
		return err
	default:
		logger.WarnContext(ctx, "Availability claim outcome unknown, left for stranded release",
			"equipment_id", id, "error", err)
		return storeError("claim availability", err)
	}
}

// verify re-reads the flag after a successful claim. claimed is false when the
// flag reads true again, meaning this caller no longer holds it.
func (s *reservationService) verify(ctx context.Context, equipmentRepo repository.EquipmentRepository, id uuid.UUID) (claimed bool, err error) {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	available, err := equipmentRepo.GetAvailability(sctx, id)
	if err != nil {
		return false, storeError("verify availability", err)
	}
	return !available, nil
}

func (s *reservationService) record(ctx context.Context, bookingRepo repository.BookingRepository, booking *domain.Booking) error {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := bookingRepo.Insert(sctx, booking); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBookingCreateFailed, err)
	}
	return nil
}

func (s *reservationService) reserveSaga(ctx context.Context, booking *domain.Booking) error {
	if err := s.claim(ctx, s.equipmentRepo, booking.EquipmentID); err != nil {
		return err
	}

	claimed, err := s.verify(ctx, s.equipmentRepo, booking.EquipmentID)
	if err != nil {
		return s.compensate(ctx, booking.EquipmentID, err)
	}
	if !claimed {
		return domain.ErrReservationRaceLost
	}

	if err := s.record(ctx, s.bookingRepo, booking); err != nil {
		return s.compensate(ctx, booking.EquipmentID, err)
	}
	return nil
}

// compensate restores availability after a failure that followed a successful
// claim. It runs detached from the caller's cancellation with its own deadline.
func (s *reservationService) compensate(ctx context.Context, equipmentID uuid.UUID, cause error) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.compensationTimeout)
	defer cancel()

	logger.WarnContext(ctx, "Compensating reservation", "equipment_id", equipmentID, "cause", cause)
	_, err := s.equipmentRepo.SetAvailability(cctx, equipmentID, true)
	switch {
	case err == nil:
		return cause
	case errors.Is(err, domain.ErrConditionFailed):
		// Someone already made it available again; nothing is stranded.
		logger.WarnContext(ctx, "Compensation found availability already restored", "equipment_id", equipmentID)
		return cause
	default:
		logger.Inconsistency(ctx, "availability_stranded", err, "equipment_id", equipmentID, "cause", cause)
		return errors.Join(cause, fmt.Errorf("%w: %v", domain.ErrCompensationFailed, err))
	}
}

func (s *reservationService) reserveInTx(ctx context.Context, booking *domain.Booking) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, equipmentRepo repository.EquipmentRepository, bookingRepo repository.BookingRepository) error {
		if err := s.claim(ctx, equipmentRepo, booking.EquipmentID); err != nil {
			return err
		}
		claimed, err := s.verify(ctx, equipmentRepo, booking.EquipmentID)
		if err != nil {
			return err
		}
		if !claimed {
			return domain.ErrReservationRaceLost
		}
		return s.record(ctx, bookingRepo, booking)
	})
	if err == nil {
		return nil
	}
	for _, known := range []error{
		domain.ErrReservationRaceLost,
		domain.ErrBookingCreateFailed,
		domain.ErrStoreUnavailable,
		domain.ErrNotFound,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	// begin or commit failed
	return storeError("reservation transaction", err)
}

func (s *reservationService) notifyReserved(ctx context.Context, booking *domain.Booking, item *domain.Equipment) {
	if s.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultNotifyTimeout)
	defer cancel()
	if err := s.notifier.BookingReserved(nctx, booking, item); err != nil {
		logger.WarnContext(ctx, "Failed to notify owner of booking", "booking_id", booking.ID, "error", err)
	}
}
