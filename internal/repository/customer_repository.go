package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/dermaplan/booking-api/internal/models"
)

// CustomerRepository reads customers collected through the booking wizard.
// Writes happen inside the booking transaction (AppointmentRepository.Book).
type CustomerRepository struct {
	db *sqlx.DB
}

// NewCustomerRepository builds the repository.
func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// GetByID fetches a single customer row.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	const query = `SELECT id, full_name, email, phone, created_at, updated_at FROM customers WHERE id = $1`
	var customer models.Customer
	if err := r.db.GetContext(ctx, &customer, query, id); err != nil {
		return nil, err
	}
	return &customer, nil
}

// List returns customers matching the filter plus the total count.
func (r *CustomerRepository) List(ctx context.Context, filter models.CustomerFilter) ([]models.Customer, int, error) {
	clause := ""
	args := make([]interface{}, 0, 3)
	argPos := 1
	if filter.Search != "" {
		clause = fmt.Sprintf(" WHERE full_name ILIKE $%d OR email ILIKE $%d", argPos, argPos)
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM customers"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	order := "full_name"
	if filter.SortBy == "created_at" {
		order = "created_at"
	}
	direction := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		direction = "DESC"
	}

	query := fmt.Sprintf(`SELECT id, full_name, email, phone, created_at, updated_at
FROM customers%s ORDER BY %s %s LIMIT $%d OFFSET $%d`, clause, order, direction, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	return customers, total, nil
}

// ListAppointments returns a customer's booking history, newest first.
func (r *CustomerRepository) ListAppointments(ctx context.Context, customerID string) ([]models.Appointment, error) {
	const query = `SELECT id, customer_id, service_id, staff_id, start_at, end_at, status, created_at, updated_at
FROM appointments WHERE customer_id = $1 ORDER BY start_at DESC`
	var appts []models.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, customerID); err != nil {
		return nil, fmt.Errorf("list customer appointments: %w", err)
	}
	return appts, nil
}

// ListForExport returns all customers for CSV/PDF rendering.
func (r *CustomerRepository) ListForExport(ctx context.Context) ([]models.Customer, error) {
	const query = `SELECT id, full_name, email, phone, created_at, updated_at FROM customers ORDER BY full_name ASC`
	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, query); err != nil {
		return nil, fmt.Errorf("list customers for export: %w", err)
	}
	return customers, nil
}
