// Package memory is an in-process implementation of the repositories. Every operation
// runs under one mutex, so conditional updates are linearizable just like the
// single-statement conditional updates of the Postgres store.
package memory

import (
	"context"
	"sync"
	"time"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/repository"

	"github.com/google/uuid"
)

// Op names a store call for fault injection.
type Op string

const (
	OpGetEquipment        Op = "equipment.GetByID"
	OpGetAvailability     Op = "equipment.GetAvailability"
	OpSetAvailability     Op = "equipment.SetAvailability"
	OpRestoreAvailability Op = "equipment.RestoreAvailability"
	OpInsertBooking       Op = "bookings.Insert"
	OpFindActive          Op = "bookings.FindActiveByEquipment"
	OpUpdateStatus        Op = "bookings.UpdateStatus"
	OpReleaseStranded     Op = "equipment.ReleaseIfStranded"
	OpCreateNotification  Op = "notifications.Create"
)

// FaultHook is consulted before each call; a non-nil error fails the call without
// touching state.
type FaultHook func(ctx context.Context, op Op) error

type Store struct {
	mu            sync.Mutex
	txMu          sync.Mutex
	now           func() time.Time
	fault         FaultHook
	equipment     map[uuid.UUID]*domain.Equipment
	bookings      map[uuid.UUID]*domain.Booking
	users         map[uuid.UUID]*domain.User
	notifications []*domain.Notification
	nextNoteID    int64

	Equipment     repository.EquipmentRepository
	Bookings      repository.BookingRepository
	Users         repository.UserRepository
	Notifications repository.NotificationRepository
}

type Option func(*Store)

// WithClock overrides the clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithFaultHook(hook FaultHook) Option {
	return func(s *Store) {
		s.fault = hook
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		now:       func() time.Time { return time.Now().UTC() },
		equipment: make(map[uuid.UUID]*domain.Equipment),
		bookings:  make(map[uuid.UUID]*domain.Booking),
		users:     make(map[uuid.UUID]*domain.User),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Equipment = &equipmentRepository{s: s}
	s.Bookings = &bookingRepository{s: s}
	s.Users = &userRepository{s: s}
	s.Notifications = &notificationRepository{s: s}
	return s
}

// SetFaultHook replaces the fault hook. Pass nil to clear it.
func (s *Store) SetFaultHook(hook FaultHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = hook
}

// FailNext makes the next call to op fail with err.
func (s *Store) FailNext(op Op, err error) {
	var once sync.Once
	s.SetFaultHook(func(_ context.Context, got Op) error {
		var out error
		if got == op {
			once.Do(func() { out = err })
		}
		return out
	})
}

// Touch sets an item's UpdatedAt, letting tests age a row past a grace period.
func (s *Store) Touch(id uuid.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.equipment[id]; ok {
		e.UpdatedAt = at
	}
}

// ForceAvailability writes the flag without the conditional guard, for seeding
// inconsistent states in tests.
func (s *Store) ForceAvailability(id uuid.UUID, available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.equipment[id]; ok {
		e.Available = available
	}
}

// enter locks the store and runs the fault hook. Callers must unlock on success.
func (s *Store) enter(ctx context.Context, op Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.fault != nil {
		if err := s.fault(ctx, op); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	return nil
}

func (s *Store) activeBookingLocked(equipmentID uuid.UUID) *domain.Booking {
	var found *domain.Booking
	for _, b := range s.bookings {
		if b.EquipmentID == equipmentID && b.Status.IsReserved() {
			if found == nil || b.CreatedAt.After(found.CreatedAt) {
				found = b
			}
		}
	}
	return found
}

// heldByOtherLocked reports whether a non-completed booking other than bookingID
// references the equipment.
func (s *Store) heldByOtherLocked(equipmentID, bookingID uuid.UUID) bool {
	for _, b := range s.bookings {
		if b.EquipmentID == equipmentID && b.ID != bookingID && b.Status.IsReserved() {
			return true
		}
	}
	return false
}

// writeLock makes a write issued outside a transaction wait for any running
// transaction, so a rollback never overwrites it. Writes bound to a transaction
// already hold txMu.
func (s *Store) writeLock(j *journal) func() {
	if j != nil {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

// WithinTx serializes transactions and undoes their writes when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	j := &journal{
		equipment: make(map[uuid.UUID]*domain.Equipment),
		bookings:  make(map[uuid.UUID]*domain.Booking),
	}
	err := fn(ctx, &equipmentRepository{s: s, j: j}, &bookingRepository{s: s, j: j})
	if err != nil {
		s.rollback(j)
	}
	return err
}

// journal records the pre-transaction value of every row a transaction writes.
// A nil entry means the row did not exist.
type journal struct {
	equipment map[uuid.UUID]*domain.Equipment
	bookings  map[uuid.UUID]*domain.Booking
}

func (j *journal) recordEquipment(id uuid.UUID, prior *domain.Equipment) {
	if j == nil {
		return
	}
	if _, seen := j.equipment[id]; seen {
		return
	}
	if prior != nil {
		c := *prior
		prior = &c
	}
	j.equipment[id] = prior
}

func (j *journal) recordBooking(id uuid.UUID, prior *domain.Booking) {
	if j == nil {
		return
	}
	if _, seen := j.bookings[id]; seen {
		return
	}
	if prior != nil {
		c := *prior
		prior = &c
	}
	j.bookings[id] = prior
}

func (s *Store) rollback(j *journal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, prior := range j.equipment {
		if prior == nil {
			delete(s.equipment, id)
			continue
		}
		s.equipment[id] = prior
	}
	for id, prior := range j.bookings {
		if prior == nil {
			delete(s.bookings, id)
			continue
		}
		s.bookings[id] = prior
	}
}
