package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/repository"

	"github.com/google/uuid"
)

const bookingColumns = `id, equipment_id, renter_id, owner_id, start_date, end_date, cost_cents, status, created_at, updated_at`

type bookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) repository.BookingRepository {
	return &bookingRepository{db: db}
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var status string
	err := row.Scan(&b.ID, &b.EquipmentID, &b.RenterID, &b.OwnerID, &b.StartDate, &b.EndDate, &b.CostCents, &status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}

// Insert stores a new booking. A second non-completed booking for the same equipment
// violates bookings_one_active_per_equipment and is reported as ErrConditionFailed.
func (r *bookingRepository) Insert(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.Insert", "equipmentID", b.EquipmentID, "renterID", b.RenterID)

	now := time.Now().UTC()
	query := `INSERT INTO bookings (equipment_id, renter_id, owner_id, start_date, end_date, cost_cents, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	logger.DatabaseCall("INSERT", "bookings", "equipmentID", b.EquipmentID)
	err := r.db.QueryRowContext(ctx, query, b.EquipmentID, b.RenterID, b.OwnerID, b.StartDate, b.EndDate, b.CostCents,
		string(b.Status), now, now).Scan(&b.ID)
	logger.DatabaseResult("INSERT", 1, err, "bookingID", b.ID)

	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Insert", err, "equipmentID", b.EquipmentID)
		if isUniqueViolation(err) {
			return fmt.Errorf("equipment %s already has an active booking: %w", b.EquipmentID, domain.ErrConditionFailed)
		}
		return err
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	logger.ExitMethod("bookingRepository.Insert", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	return b, err
}

func (r *bookingRepository) FindActiveByEquipment(ctx context.Context, equipmentID uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE equipment_id = $1 AND status <> 'completed'
	          ORDER BY created_at DESC LIMIT 1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, equipmentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active booking for equipment %s: %w", equipmentID, domain.ErrNotFound)
	}
	return b, err
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	query := `UPDATE bookings SET status = $2, updated_at = $3
	          WHERE id = $1 AND status <> 'completed'
	          RETURNING ` + bookingColumns
	logger.DatabaseCall("UPDATE", "bookings", "bookingID", id, "status", status)
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id, string(status), time.Now().UTC()))
	if err == nil {
		logger.DatabaseResult("UPDATE", 1, nil, "bookingID", id)
		return b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("UPDATE", 0, err, "bookingID", id)
		return nil, err
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	return nil, fmt.Errorf("booking %s is completed: %w", id, domain.ErrConditionFailed)
}

func (r *bookingRepository) ListByRenter(ctx context.Context, renterID uuid.UUID, includeCompleted bool) ([]domain.Booking, error) {
	return r.list(ctx, "renter_id", renterID, includeCompleted)
}

func (r *bookingRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, includeCompleted bool) ([]domain.Booking, error) {
	return r.list(ctx, "owner_id", ownerID, includeCompleted)
}

func (r *bookingRepository) list(ctx context.Context, column string, userID uuid.UUID, includeCompleted bool) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + column + ` = $1`
	if !includeCompleted {
		query += ` AND status <> 'completed'`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
