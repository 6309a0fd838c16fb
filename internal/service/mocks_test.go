package service_test

import (
	"context"
	"time"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockEquipmentRepo
type MockEquipmentRepo struct {
	mock.Mock
}

func (m *MockEquipmentRepo) Create(ctx context.Context, e *domain.Equipment) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
func (m *MockEquipmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) GetAvailability(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockEquipmentRepo) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (*domain.Equipment, error) {
	args := m.Called(ctx, id, available)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) RestoreAvailability(ctx context.Context, id, bookingID uuid.UUID) (*domain.Equipment, error) {
	args := m.Called(ctx, id, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) Search(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Equipment, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) ListAvailableWithActiveBooking(ctx context.Context) ([]domain.ConsistencyIssue, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ConsistencyIssue), args.Error(1)
}
func (m *MockEquipmentRepo) ListUnavailableWithoutActiveBooking(ctx context.Context, updatedBefore time.Time) ([]domain.ConsistencyIssue, error) {
	args := m.Called(ctx, updatedBefore)
	return args.Get(0).([]domain.ConsistencyIssue), args.Error(1)
}
func (m *MockEquipmentRepo) ReleaseIfStranded(ctx context.Context, id uuid.UUID, updatedBefore time.Time) (bool, error) {
	args := m.Called(ctx, id, updatedBefore)
	return args.Bool(0), args.Error(1)
}

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Insert(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) FindActiveByEquipment(ctx context.Context, equipmentID uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, equipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListByRenter(ctx context.Context, renterID uuid.UUID, includeCompleted bool) ([]domain.Booking, error) {
	args := m.Called(ctx, renterID, includeCompleted)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, includeCompleted bool) ([]domain.Booking, error) {
	args := m.Called(ctx, ownerID, includeCompleted)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

// MockTransactor hands the mocked repositories to the callback and reports its error.
type MockTransactor struct {
	mock.Mock
	Equipment repository.EquipmentRepository
	Bookings  repository.BookingRepository
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	args := m.Called(ctx)
	if err := fn(ctx, m.Equipment, m.Bookings); err != nil {
		return err
	}
	return args.Error(0)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id int64, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) BookingReserved(ctx context.Context, b *domain.Booking, e *domain.Equipment) error {
	args := m.Called(ctx, b, e)
	return args.Error(0)
}
func (m *MockNotifier) BookingCompleted(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
