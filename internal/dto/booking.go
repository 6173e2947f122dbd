package dto

import (
	"time"

	"github.com/dermaplan/booking-api/internal/models"
)

// CustomerInput carries the contact details collected by the booking wizard.
type CustomerInput struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
}

// BookAppointmentRequest is the public booking payload.
type BookAppointmentRequest struct {
	ServiceID string        `json:"serviceId" validate:"required"`
	StaffID   *string       `json:"staffId,omitempty"`
	StartAt   time.Time     `json:"startAt" validate:"required"`
	Customer  CustomerInput `json:"customer" validate:"required"`
}

// BookAppointmentResponse mirrors the legacy 201 response shape.
type BookAppointmentResponse struct {
	Success     bool                `json:"success"`
	Appointment *models.Appointment `json:"appointment"`
}
