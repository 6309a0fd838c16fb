package service

import (
	"context"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/repository"

	"github.com/google/uuid"
)

const maxNotificationPageSize = 100

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int32) ([]domain.Notification, int32, error) {
	if userID == uuid.Nil {
		return nil, 0, domain.ErrNotAuthenticated
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxNotificationPageSize {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	notes, total, err := s.noteRepo.List(ctx, userID, pageSize, offset)
	if err != nil {
		return nil, 0, storeError("list notifications", err)
	}
	return notes, total, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, notificationID int64) error {
	if userID == uuid.Nil {
		return domain.ErrNotAuthenticated
	}
	if err := s.noteRepo.MarkAsRead(ctx, notificationID, userID); err != nil {
		return storeError("mark notification read", err)
	}
	return nil
}
