package memory

import (
	"context"
	"fmt"
	"sort"

	"agrirent-backend/internal/domain"

	"github.com/google/uuid"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.s.now()
	}
	c := *u
	r.s.users[u.ID] = &c
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	c := *u
	return &c, nil
}

type notificationRepository struct {
	s *Store
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if err := r.s.enter(ctx, OpCreateNotification); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	r.s.nextNoteID++
	n.ID = r.s.nextNoteID
	n.CreatedAt = r.s.now()
	c := *n
	r.s.notifications = append(r.s.notifications, &c)
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Notification, int32, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var mine []domain.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			mine = append(mine, *n)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].ID > mine[j].ID })

	total := int32(len(mine))
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return mine[offset:end], total, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id int64, userID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return fmt.Errorf("notification %d: %w", id, domain.ErrNotFound)
}
