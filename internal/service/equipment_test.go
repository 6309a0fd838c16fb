package service_test

import (
	"context"
	"testing"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/repository/memory"
	"agrirent-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEquipmentService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner and availability are forced", func(t *testing.T) {
		store := memory.NewStore()
		svc := service.NewEquipmentService(store.Equipment)
		ownerID := uuid.New()
		e := &domain.Equipment{OwnerID: uuid.New(), Category: "Harvester", DailyPriceCents: 25000, Condition: 6, ForRent: true}

		require.NoError(t, svc.Register(ctx, ownerID, e))
		assert.Equal(t, ownerID, e.OwnerID)
		assert.True(t, e.Available)

		got, err := svc.Get(ctx, e.ID)
		require.NoError(t, err)
		assert.True(t, got.Bookable())

		mine, err := svc.ListMine(ctx, ownerID)
		require.NoError(t, err)
		assert.Len(t, mine, 1)
	})

	t.Run("Validation", func(t *testing.T) {
		repo := new(MockEquipmentRepo)
		svc := service.NewEquipmentService(repo)
		err := svc.Register(ctx, uuid.New(), &domain.Equipment{Category: "Harvester", Condition: 11})
		assert.ErrorIs(t, err, domain.ErrValidation)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Anonymous", func(t *testing.T) {
		repo := new(MockEquipmentRepo)
		err := service.NewEquipmentService(repo).Register(ctx, uuid.Nil, &domain.Equipment{})
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})
}

func TestEquipmentService_SearchHidesReserved(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewEquipmentService(store.Equipment)

	free := seed(t, store, 100)
	taken := seed(t, store, 100)
	_, err := store.Equipment.SetAvailability(ctx, taken.ID, false)
	require.NoError(t, err)

	items, err := svc.Search(ctx, domain.EquipmentFilter{Category: "Tractor"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, free.ID, items[0].ID)
}

func TestNotificationService_Paging(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNotificationRepo)
	svc := service.NewNotificationService(repo)
	userID := uuid.New()

	repo.On("List", ctx, userID, int32(20), int32(0)).Return([]domain.Notification{{ID: 1}}, int32(1), nil)
	notes, total, err := svc.GetNotifications(ctx, userID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.Equal(t, int32(1), total)

	repo.On("List", ctx, userID, int32(10), int32(20)).Return([]domain.Notification{}, int32(21), nil)
	_, _, err = svc.GetNotifications(ctx, userID, 3, 10)
	require.NoError(t, err)

	repo.On("MarkAsRead", ctx, int64(7), userID).Return(domain.ErrNotFound)
	assert.ErrorIs(t, svc.MarkAsRead(ctx, userID, 7), domain.ErrNotFound)
}

func TestBookingQueryService(t *testing.T) {
	ctx := context.Background()
	renterID := uuid.New()

	t.Run("Rentals carry their equipment", func(t *testing.T) {
		repo, eq := new(MockBookingRepo), new(MockEquipmentRepo)
		svc := service.NewBookingQueryService(repo, eq)
		tractor := &domain.Equipment{ID: uuid.New(), Brand: "Mahindra", Category: "Tractor"}
		missing := uuid.New()

		repo.On("ListByRenter", ctx, renterID, false).Return([]domain.Booking{
			{ID: uuid.New(), EquipmentID: tractor.ID},
			{ID: uuid.New(), EquipmentID: tractor.ID},
			{ID: uuid.New(), EquipmentID: missing},
		}, nil)
		eq.On("GetByID", ctx, tractor.ID).Return(tractor, nil).Once()
		eq.On("GetByID", ctx, missing).Return(nil, domain.ErrNotFound).Once()

		got, err := svc.ListRentals(ctx, renterID)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, tractor, got[0].Equipment)
		assert.Equal(t, tractor, got[1].Equipment)
		assert.Nil(t, got[2].Equipment)
		eq.AssertNumberOfCalls(t, "GetByID", 2)
	})

	t.Run("Anonymous caller", func(t *testing.T) {
		svc := service.NewBookingQueryService(new(MockBookingRepo), new(MockEquipmentRepo))
		_, err := svc.ListLendings(ctx, uuid.Nil)
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})
}
