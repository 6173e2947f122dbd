package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermaplan/booking-api/internal/models"
)

func newAppointmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func bookingFixtures() (*models.Customer, *models.Appointment) {
	customer := &models.Customer{
		FullName: "Ayse Yilmaz",
		Email:    "ayse@example.com",
		Phone:    "+905551234567",
	}
	appt := &models.Appointment{
		ServiceID: "svc-1",
		StartAt:   time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		EndAt:     time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
	}
	return customer, appt
}

func TestAppointmentRepositoryBook(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()

	repo := NewAppointmentRepository(db)
	customer, appt := bookingFixtures()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WithArgs(sqlmock.AnyArg(), customer.FullName, customer.Email, customer.Phone, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cust-1"))
	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(sqlmock.AnyArg(), "cust-1", "svc-1", nil, appt.StartAt, appt.EndAt, models.AppointmentStatusConfirmed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Book(context.Background(), customer, appt))
	assert.Equal(t, "cust-1", customer.ID)
	assert.Equal(t, "cust-1", appt.CustomerID)
	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, models.AppointmentStatusConfirmed, appt.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryBookGuardedInsertFindsOverlap(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()

	repo := NewAppointmentRepository(db)
	customer, appt := bookingFixtures()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cust-1"))
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Book(context.Background(), customer, appt)
	assert.ErrorIs(t, err, ErrAppointmentOverlap)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryBookExclusionConstraintRace(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()

	repo := NewAppointmentRepository(db)
	customer, appt := bookingFixtures()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cust-1"))
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnError(&pq.Error{Code: pq.ErrorCode(pgExclusionViolation)})
	mock.ExpectRollback()

	err := repo.Book(context.Background(), customer, appt)
	assert.ErrorIs(t, err, ErrAppointmentOverlap)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryListConfirmedBetween(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()

	repo := NewAppointmentRepository(db)
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	rows := sqlmock.NewRows([]string{"start_at", "end_at"}).
		AddRow(from.Add(10*time.Hour), from.Add(11*time.Hour)).
		AddRow(from.Add(14*time.Hour), from.Add(15*time.Hour))
	mock.ExpectQuery("SELECT start_at, end_at FROM appointments").
		WithArgs(models.AppointmentStatusConfirmed, from, to).
		WillReturnRows(rows)

	windows, err := repo.ListConfirmedBetween(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, from.Add(10*time.Hour), windows[0].StartAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()

	repo := NewAppointmentRepository(db)
	mock.ExpectExec("UPDATE appointments SET status").
		WithArgs(models.AppointmentStatusCancelled, sqlmock.AnyArg(), "appt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "appt-1", models.AppointmentStatusCancelled))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryUpdateStatusMissingRow(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()

	repo := NewAppointmentRepository(db)
	mock.ExpectExec("UPDATE appointments SET status").
		WithArgs(models.AppointmentStatusCancelled, sqlmock.AnyArg(), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "ghost", models.AppointmentStatusCancelled)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryListWithFilter(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()

	repo := NewAppointmentRepository(db)
	status := models.AppointmentStatusConfirmed
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM appointments").
		WithArgs(from, status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	rows := sqlmock.NewRows([]string{"id", "customer_id", "service_id", "staff_id", "start_at", "end_at", "status", "created_at", "updated_at"}).
		AddRow("appt-1", "cust-1", "svc-1", nil, from.Add(10*time.Hour), from.Add(11*time.Hour), status, from, from)
	mock.ExpectQuery("SELECT id, customer_id, service_id").
		WithArgs(from, status, 20, 0).
		WillReturnRows(rows)

	appts, total, err := repo.List(context.Background(), models.AppointmentFilter{From: &from, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, appts, 1)
	assert.Equal(t, "appt-1", appts[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
