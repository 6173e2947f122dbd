package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/dermaplan/booking-api/internal/models"
)

// ErrAppointmentOverlap signals that the guarded insert found a confirmed
// booking occupying part of the requested interval.
var ErrAppointmentOverlap = errors.New("appointment overlaps an existing confirmed booking")

// pgExclusionViolation is raised by the appointments_no_overlap constraint.
const pgExclusionViolation = "23P01"

// AppointmentRepository persists bookings and the queries derived from them.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository builds the repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Book upserts the customer and inserts the confirmed appointment in one
// transaction. The insert carries its own overlap guard and the table carries
// an exclusion constraint over tsrange(start_at, end_at) for confirmed rows,
// so two racing callers cannot both commit: the loser sees
// ErrAppointmentOverlap. On success appt.ID and appt.CustomerID are populated.
func (r *AppointmentRepository) Book(ctx context.Context, customer *models.Customer, appt *models.Appointment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}

	now := time.Now().UTC()
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}

	const upsertCustomer = `INSERT INTO customers (id, full_name, email, phone, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (email)
DO UPDATE SET full_name = EXCLUDED.full_name, phone = EXCLUDED.phone, updated_at = EXCLUDED.updated_at
RETURNING id`
	if err := tx.GetContext(ctx, &customer.ID, upsertCustomer,
		customer.ID, customer.FullName, customer.Email, customer.Phone, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert customer: %w", err)
	}

	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	appt.CustomerID = customer.ID
	appt.Status = models.AppointmentStatusConfirmed
	appt.CreatedAt = now
	appt.UpdatedAt = now

	const insertAppointment = `INSERT INTO appointments (id, customer_id, service_id, staff_id, start_at, end_at, status, created_at, updated_at)
SELECT $1, $2, $3, $4, $5, $6, $7, $8, $8
WHERE NOT EXISTS (
    SELECT 1 FROM appointments
    WHERE status = $7 AND start_at < $6 AND end_at > $5
)`
	res, err := tx.ExecContext(ctx, insertAppointment,
		appt.ID, appt.CustomerID, appt.ServiceID, appt.StaffID,
		appt.StartAt, appt.EndAt, appt.Status, now)
	if err != nil {
		_ = tx.Rollback()
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgExclusionViolation {
			return ErrAppointmentOverlap
		}
		return fmt.Errorf("insert appointment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert appointment result: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return ErrAppointmentOverlap
	}

	if err := tx.Commit(); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgExclusionViolation {
			return ErrAppointmentOverlap
		}
		return fmt.Errorf("commit booking tx: %w", err)
	}
	return nil
}

// ListConfirmedBetween returns the start/end windows of confirmed appointments
// whose start falls inside [from, to], ordered by start time.
func (r *AppointmentRepository) ListConfirmedBetween(ctx context.Context, from, to time.Time) ([]models.TimeWindow, error) {
	const query = `SELECT start_at, end_at FROM appointments
WHERE status = $1 AND start_at >= $2 AND start_at <= $3
ORDER BY start_at ASC`
	var windows []models.TimeWindow
	if err := r.db.SelectContext(ctx, &windows, query, models.AppointmentStatusConfirmed, from, to); err != nil {
		return nil, fmt.Errorf("list confirmed appointments: %w", err)
	}
	return windows, nil
}

// GetByID returns a single appointment row.
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	const query = `SELECT id, customer_id, service_id, staff_id, start_at, end_at, status, created_at, updated_at
FROM appointments WHERE id = $1`
	var appt models.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id); err != nil {
		return nil, err
	}
	return &appt, nil
}

// List returns appointments matching the filter plus the total count.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	where := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)
	argPos := 1

	if filter.From != nil {
		where = append(where, fmt.Sprintf("start_at >= $%d", argPos))
		args = append(args, *filter.From)
		argPos++
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("start_at <= $%d", argPos))
		args = append(args, *filter.To)
		argPos++
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filter.Status)
		argPos++
	}
	if filter.StaffID != "" {
		where = append(where, fmt.Sprintf("staff_id = $%d", argPos))
		args = append(args, filter.StaffID)
		argPos++
	}
	if filter.ServiceID != "" {
		where = append(where, fmt.Sprintf("service_id = $%d", argPos))
		args = append(args, filter.ServiceID)
		argPos++
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM appointments" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	order := "start_at"
	if filter.SortBy == "created_at" {
		order = "created_at"
	}
	direction := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		direction = "DESC"
	}

	query := fmt.Sprintf(`SELECT id, customer_id, service_id, staff_id, start_at, end_at, status, created_at, updated_at
FROM appointments%s ORDER BY %s %s LIMIT $%d OFFSET $%d`, clause, order, direction, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	var appts []models.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	return appts, total, nil
}

// UpdateStatus moves an appointment to the target state. The caller is
// responsible for transition validation; sql.ErrNoRows is returned when the
// row does not exist.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	const query = `UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update appointment status result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// StatusCountsBetween aggregates appointments per status for the dashboard.
func (r *AppointmentRepository) StatusCountsBetween(ctx context.Context, from, to time.Time) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM appointments
WHERE start_at >= $1 AND start_at <= $2 GROUP BY status`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, from, to); err != nil {
		return nil, fmt.Errorf("count appointments by status: %w", err)
	}
	return counts, nil
}

// CountConfirmedAfter returns the number of upcoming confirmed appointments.
func (r *AppointmentRepository) CountConfirmedAfter(ctx context.Context, after time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM appointments WHERE status = $1 AND start_at > $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, models.AppointmentStatusConfirmed, after); err != nil {
		return 0, fmt.Errorf("count upcoming appointments: %w", err)
	}
	return count, nil
}

// TopServicesBetween returns the busiest services in the range.
func (r *AppointmentRepository) TopServicesBetween(ctx context.Context, from, to time.Time, limit int) ([]models.ServiceBookingCount, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `SELECT a.service_id, s.name AS service_name, COUNT(*) AS bookings
FROM appointments a
JOIN services s ON s.id = a.service_id
WHERE a.start_at >= $1 AND a.start_at <= $2
GROUP BY a.service_id, s.name
ORDER BY bookings DESC, s.name ASC
LIMIT $3`
	var rows []models.ServiceBookingCount
	if err := r.db.SelectContext(ctx, &rows, query, from, to, limit); err != nil {
		return nil, fmt.Errorf("top services: %w", err)
	}
	return rows, nil
}

// ListForExport returns the denormalised rows rendered by CSV/PDF exports.
func (r *AppointmentRepository) ListForExport(ctx context.Context, from, to *time.Time, status *string) ([]models.AppointmentExportRow, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	argPos := 1

	if from != nil {
		where = append(where, fmt.Sprintf("a.start_at >= $%d", argPos))
		args = append(args, *from)
		argPos++
	}
	if to != nil {
		where = append(where, fmt.Sprintf("a.start_at <= $%d", argPos))
		args = append(args, *to)
		argPos++
	}
	if status != nil && *status != "" {
		where = append(where, fmt.Sprintf("a.status = $%d", argPos))
		args = append(args, *status)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	query := fmt.Sprintf(`SELECT a.id, a.start_at, a.end_at, a.status,
	s.name AS service_name, c.full_name AS customer_name, c.email, c.phone
FROM appointments a
JOIN services s ON s.id = a.service_id
JOIN customers c ON c.id = a.customer_id%s
ORDER BY a.start_at ASC`, clause)

	var rows []models.AppointmentExportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list appointments for export: %w", err)
	}
	return rows, nil
}
