package models

import "time"

// AppointmentStatus enumerates the lifecycle states of a booking.
type AppointmentStatus string

const (
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// Valid reports whether the status is a known value.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusConfirmed, AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the status may move to the target state.
// Only confirmed appointments may change; completed/cancelled/no_show are terminal.
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	if s != AppointmentStatusConfirmed {
		return false
	}
	switch target {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	default:
		return false
	}
}

// Appointment represents a persisted booking.
type Appointment struct {
	ID         string            `db:"id" json:"id"`
	CustomerID string            `db:"customer_id" json:"customer_id"`
	ServiceID  string            `db:"service_id" json:"service_id"`
	StaffID    *string           `db:"staff_id" json:"staff_id,omitempty"`
	StartAt    time.Time         `db:"start_at" json:"start_at"`
	EndAt      time.Time         `db:"end_at" json:"end_at"`
	Status     AppointmentStatus `db:"status" json:"status"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updated_at"`
}

// TimeWindow is the start/end projection of an appointment used for overlap checks.
type TimeWindow struct {
	StartAt time.Time `db:"start_at" json:"start_at"`
	EndAt   time.Time `db:"end_at" json:"end_at"`
}

// StatusCount aggregates appointments per status for a date range.
type StatusCount struct {
	Status AppointmentStatus `db:"status" json:"status"`
	Count  int               `db:"count" json:"count"`
}

// ServiceBookingCount aggregates bookings per service for a date range.
type ServiceBookingCount struct {
	ServiceID   string `db:"service_id" json:"service_id"`
	ServiceName string `db:"service_name" json:"service_name"`
	Bookings    int    `db:"bookings" json:"bookings"`
}

// AppointmentExportRow is the denormalised projection rendered by exports.
type AppointmentExportRow struct {
	ID           string    `db:"id"`
	StartAt      time.Time `db:"start_at"`
	EndAt        time.Time `db:"end_at"`
	Status       string    `db:"status"`
	ServiceName  string    `db:"service_name"`
	CustomerName string    `db:"customer_name"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
}

// AppointmentFilter captures admin listing criteria.
type AppointmentFilter struct {
	From      *time.Time
	To        *time.Time
	Status    *AppointmentStatus
	StaffID   string
	ServiceID string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
