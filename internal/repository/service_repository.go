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

// ServiceRepository persists the bookable service catalog.
type ServiceRepository struct {
	db *sqlx.DB
}

// NewServiceRepository builds the repository.
func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

const serviceColumns = `id, name, description, duration_min, price_cents, active, created_at, updated_at`

// GetByID fetches a single service row.
func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*models.Service, error) {
	query := fmt.Sprintf(`SELECT %s FROM services WHERE id = $1`, serviceColumns)
	var svc models.Service
	if err := r.db.GetContext(ctx, &svc, query, id); err != nil {
		return nil, err
	}
	return &svc, nil
}

// List returns services matching the filter ordered by name.
func (r *ServiceRepository) List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	argPos := 1

	if filter.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", argPos))
		args = append(args, *filter.Active)
		argPos++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("name ILIKE $%d", argPos))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM services%s ORDER BY name ASC`, serviceColumns, clause)
	var services []models.Service
	if err := r.db.SelectContext(ctx, &services, query, args...); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// Create inserts a new service with generated defaults.
func (r *ServiceRepository) Create(ctx context.Context, svc *models.Service) error {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	const query = `INSERT INTO services (id, name, description, duration_min, price_cents, active, created_at, updated_at)
VALUES (:id, :name, :description, :duration_min, :price_cents, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, svc); err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}

// Update persists the full service row.
func (r *ServiceRepository) Update(ctx context.Context, svc *models.Service) error {
	svc.UpdatedAt = time.Now().UTC()
	const query = `UPDATE services
SET name = :name, description = :description, duration_min = :duration_min,
    price_cents = :price_cents, active = :active, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, svc); err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	return nil
}
