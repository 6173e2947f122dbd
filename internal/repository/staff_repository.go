package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dermaplan/booking-api/internal/models"
)

// StaffRepository persists the clinic staff roster.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository builds the repository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// GetByID fetches a single staff row.
func (r *StaffRepository) GetByID(ctx context.Context, id string) (*models.Staff, error) {
	const query = `SELECT id, full_name, title, active, created_at, updated_at FROM staff WHERE id = $1`
	var member models.Staff
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	return &member, nil
}

// List returns staff matching the filter ordered by name.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	argPos := 1

	if filter.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", argPos))
		args = append(args, *filter.Active)
		argPos++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("full_name ILIKE $%d", argPos))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	query := fmt.Sprintf(`SELECT id, full_name, title, active, created_at, updated_at FROM staff%s ORDER BY full_name ASC`, clause)
	var members []models.Staff
	if err := r.db.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return members, nil
}

// Create inserts a new staff member.
func (r *StaffRepository) Create(ctx context.Context, member *models.Staff) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now

	const query = `INSERT INTO staff (id, full_name, title, active, created_at, updated_at)
VALUES (:id, :full_name, :title, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

// Update persists the full staff row.
func (r *StaffRepository) Update(ctx context.Context, member *models.Staff) error {
	member.UpdatedAt = time.Now().UTC()
	const query = `UPDATE staff SET full_name = :full_name, title = :title, active = :active, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	return nil
}
