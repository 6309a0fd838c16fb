package service

import (
	"context"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/repository"

	"github.com/google/uuid"
)

type equipmentService struct {
	equipmentRepo repository.EquipmentRepository
}

func NewEquipmentService(equipmentRepo repository.EquipmentRepository) EquipmentService {
	return &equipmentService{equipmentRepo: equipmentRepo}
}

// Register lists a new item for ownerID. New items always start available so that
// no unavailable item exists without a booking.
func (s *equipmentService) Register(ctx context.Context, ownerID uuid.UUID, e *domain.Equipment) error {
	if ownerID == uuid.Nil {
		return domain.ErrNotAuthenticated
	}
	e.ID = uuid.Nil
	e.OwnerID = ownerID
	e.Available = true
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.equipmentRepo.Create(ctx, e); err != nil {
		return storeError("create equipment", err)
	}
	logger.InfoContext(ctx, "Equipment registered", "equipment_id", e.ID, "owner_id", ownerID, "category", e.Category)
	return nil
}

func (s *equipmentService) Get(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	e, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("load equipment", err)
	}
	return e, nil
}

func (s *equipmentService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]domain.Equipment, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrNotAuthenticated
	}
	items, err := s.equipmentRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeError("list owner equipment", err)
	}
	return items, nil
}

// Search returns bookable items only.
func (s *equipmentService) Search(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	items, err := s.equipmentRepo.Search(ctx, filter)
	if err != nil {
		return nil, storeError("search equipment", err)
	}
	return items, nil
}
