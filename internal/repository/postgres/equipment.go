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

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	dialectPostgres = "postgres"
	tableEquipment  = "equipment"

	equipmentColumns = `id, owner_id, brand, model, description, category, age_years, daily_price_cents, location, state, district, condition_score, image_paths, availability, for_rent, created_at, updated_at`

	// active booking predicate shared by the reconciliation queries
	activeBookingExists = `EXISTS (SELECT 1 FROM bookings b WHERE b.equipment_id = e.id AND b.status <> 'completed')`

	otherActiveBookingExists = `EXISTS (SELECT 1 FROM bookings b WHERE b.equipment_id = e.id AND b.status <> 'completed' AND b.id <> $2)`
	bookingStillActive       = `EXISTS (SELECT 1 FROM bookings b WHERE b.id = $2 AND b.status <> 'completed')`
)

var equipmentSelectColumns = []any{
	"id", "owner_id", "brand", "model", "description", "category", "age_years", "daily_price_cents",
	"location", "state", "district", "condition_score", "image_paths", "availability", "for_rent", "created_at", "updated_at",
}

type equipmentRepository struct {
	db DBTX
}

func NewEquipmentRepository(db DBTX) repository.EquipmentRepository {
	return &equipmentRepository{db: db}
}

func scanEquipment(row rowScanner) (*domain.Equipment, error) {
	e := &domain.Equipment{}
	var imagePaths []string
	err := row.Scan(&e.ID, &e.OwnerID, &e.Brand, &e.Model, &e.Description, &e.Category, &e.AgeYears, &e.DailyPriceCents,
		&e.Location, &e.State, &e.District, &e.Condition, pq.Array(&imagePaths), &e.Available, &e.ForRent, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.ImagePaths = imagePaths
	return e, nil
}

func (r *equipmentRepository) Create(ctx context.Context, e *domain.Equipment) error {
	logger.EnterMethod("equipmentRepository.Create", "ownerID", e.OwnerID, "category", e.Category)

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	query := `INSERT INTO equipment (` + equipmentColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	logger.DatabaseCall("INSERT", tableEquipment, "equipmentID", e.ID)
	_, err := r.db.ExecContext(ctx, query, e.ID, e.OwnerID, e.Brand, e.Model, e.Description, e.Category, e.AgeYears,
		e.DailyPriceCents, e.Location, e.State, e.District, e.Condition, pq.Array(e.ImagePaths), e.Available, e.ForRent,
		e.CreatedAt, e.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "equipmentID", e.ID)

	if err != nil {
		logger.ExitMethodWithError("equipmentRepository.Create", err, "equipmentID", e.ID)
		return err
	}
	logger.ExitMethod("equipmentRepository.Create", "equipmentID", e.ID)
	return nil
}

func (r *equipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1`
	e, err := scanEquipment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("equipment %s: %w", id, domain.ErrNotFound)
	}
	return e, err
}

func (r *equipmentRepository) GetAvailability(ctx context.Context, id uuid.UUID) (bool, error) {
	var available bool
	err := r.db.QueryRowContext(ctx, `SELECT availability FROM equipment WHERE id = $1`, id).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("equipment %s: %w", id, domain.ErrNotFound)
	}
	return available, err
}

// SetAvailability is the compare-and-swap on the availability flag. The WHERE clause
// makes the check and the write a single atomic statement.
func (r *equipmentRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (*domain.Equipment, error) {
	query := `UPDATE equipment SET availability = $2, updated_at = $3
	          WHERE id = $1 AND availability <> $2
	          RETURNING ` + equipmentColumns
	logger.DatabaseCall("UPDATE", tableEquipment, "equipmentID", id, "availability", available)
	e, err := scanEquipment(r.db.QueryRowContext(ctx, query, id, available, time.Now().UTC()))
	if err == nil {
		logger.DatabaseResult("UPDATE", 1, nil, "equipmentID", id)
		return e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("UPDATE", 0, err, "equipmentID", id)
		return nil, err
	}
	return nil, r.conditionFailed(ctx, id, fmt.Sprintf("availability already %t", available))
}

// RestoreAvailability is the guarded release used when a booking completes. The
// booking guards keep a stale completion from freeing an item that a newer
// booking holds.
func (r *equipmentRepository) RestoreAvailability(ctx context.Context, id, bookingID uuid.UUID) (*domain.Equipment, error) {
	query := `UPDATE equipment e SET availability = true, updated_at = $3
	          WHERE e.id = $1 AND e.availability = false AND ` + bookingStillActive + `
	            AND NOT ` + otherActiveBookingExists + `
	          RETURNING ` + equipmentColumns
	logger.DatabaseCall("UPDATE", tableEquipment, "equipmentID", id, "bookingID", bookingID, "operation", "restore availability")
	e, err := scanEquipment(r.db.QueryRowContext(ctx, query, id, bookingID, time.Now().UTC()))
	if err == nil {
		logger.DatabaseResult("UPDATE", 1, nil, "equipmentID", id)
		return e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("UPDATE", 0, err, "equipmentID", id)
		return nil, err
	}
	return nil, r.conditionFailed(ctx, id, "already available, booking completed or held by another booking")
}

// conditionFailed tells a missing row apart from a guard that did not match.
func (r *equipmentRepository) conditionFailed(ctx context.Context, id uuid.UUID, reason string) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM equipment WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("equipment %s: %w", id, domain.ErrNotFound)
	}
	logger.DatabaseResult("UPDATE", 0, nil, "equipmentID", id, "reason", reason)
	return fmt.Errorf("equipment %s %s: %w", id, reason, domain.ErrConditionFailed)
}

func (r *equipmentRepository) buildSearchQuery(filter domain.EquipmentFilter) (string, []any, error) {
	where := goqu.Ex{
		"availability": true,
		"for_rent":     true,
	}
	if filter.Category != "" {
		where["category"] = filter.Category
	}
	if filter.State != "" {
		where["state"] = filter.State
	}
	if filter.District != "" {
		where["district"] = filter.District
	}

	ds := goqu.Dialect(dialectPostgres).
		From(tableEquipment).
		Select(equipmentSelectColumns...).
		Where(where)
	if filter.MaxDailyPriceCents > 0 {
		ds = ds.Where(goqu.C("daily_price_cents").Lte(filter.MaxDailyPriceCents))
	}
	ds = ds.Order(goqu.I("created_at").Desc()).Prepared(true)

	return ds.ToSQL()
}

func (r *equipmentRepository) Search(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	query, args, err := r.buildSearchQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build equipment search: %w", err)
	}
	logger.DatabaseCall("SELECT", tableEquipment, "filter", filter)
	return r.queryEquipment(ctx, query, args...)
}

func (r *equipmentRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE owner_id = $1 ORDER BY created_at DESC`
	return r.queryEquipment(ctx, query, ownerID)
}

func (r *equipmentRepository) queryEquipment(ctx context.Context, query string, args ...any) ([]domain.Equipment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	return items, rows.Err()
}

func (r *equipmentRepository) ListAvailableWithActiveBooking(ctx context.Context) ([]domain.ConsistencyIssue, error) {
	query := `SELECT e.id, e.owner_id, b.id, e.updated_at
	          FROM equipment e
	          JOIN bookings b ON b.equipment_id = e.id AND b.status <> 'completed'
	          WHERE e.availability = true
	          ORDER BY e.updated_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []domain.ConsistencyIssue
	for rows.Next() {
		issue := domain.ConsistencyIssue{Kind: domain.IssueDrifted}
		var bookingID uuid.UUID
		if err := rows.Scan(&issue.EquipmentID, &issue.OwnerID, &bookingID, &issue.Since); err != nil {
			return nil, err
		}
		issue.BookingID = &bookingID
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

func (r *equipmentRepository) ListUnavailableWithoutActiveBooking(ctx context.Context, updatedBefore time.Time) ([]domain.ConsistencyIssue, error) {
	query := `SELECT e.id, e.owner_id, e.updated_at
	          FROM equipment e
	          WHERE e.availability = false AND e.updated_at < $1 AND NOT ` + activeBookingExists + `
	          ORDER BY e.updated_at`
	rows, err := r.db.QueryContext(ctx, query, updatedBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []domain.ConsistencyIssue
	for rows.Next() {
		issue := domain.ConsistencyIssue{Kind: domain.IssueStranded}
		if err := rows.Scan(&issue.EquipmentID, &issue.OwnerID, &issue.Since); err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

func (r *equipmentRepository) ReleaseIfStranded(ctx context.Context, id uuid.UUID, updatedBefore time.Time) (bool, error) {
	query := `UPDATE equipment e SET availability = true, updated_at = $3
	          WHERE e.id = $1 AND e.availability = false AND e.updated_at < $2 AND NOT ` + activeBookingExists
	logger.DatabaseCall("UPDATE", tableEquipment, "equipmentID", id, "operation", "release stranded")
	res, err := r.db.ExecContext(ctx, query, id, updatedBefore, time.Now().UTC())
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "equipmentID", id)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	logger.DatabaseResult("UPDATE", n, nil, "equipmentID", id)
	return n > 0, nil
}
