package dto

import "github.com/dermaplan/booking-api/internal/models"

// UpdateAppointmentStatusRequest moves an appointment to a new lifecycle state.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required"`
}
