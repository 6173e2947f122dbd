package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dermaplan/booking-api/internal/dto"
	"github.com/dermaplan/booking-api/internal/models"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
	"github.com/dermaplan/booking-api/pkg/response"
)

type bookingCreator interface {
	Book(ctx context.Context, req dto.BookAppointmentRequest) (*models.Appointment, error)
}

type appointmentAdminService interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, target models.AppointmentStatus, actor *models.JWTClaims) (*models.Appointment, error)
}

// AppointmentHandler serves the public booking endpoint and the admin
// appointment management endpoints. The public route keeps the wizard's
// original top-level JSON shape; admin routes use the standard envelope.
type AppointmentHandler struct {
	bookings bookingCreator
	admin    appointmentAdminService
}

// NewAppointmentHandler builds a new handler.
func NewAppointmentHandler(bookings bookingCreator, admin appointmentAdminService) *AppointmentHandler {
	return &AppointmentHandler{bookings: bookings, admin: admin}
}

// Book godoc
// @Summary Book an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param payload body dto.BookAppointmentRequest true "Booking payload"
// @Success 201 {object} dto.BookAppointmentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /appointments [post]
func (h *AppointmentHandler) Book(c *gin.Context) {
	var req dto.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking payload"})
		return
	}

	appt, err := h.bookings.Book(c.Request.Context(), req)
	if err != nil {
		publicError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.BookAppointmentResponse{Success: true, Appointment: appt})
}

// List godoc
// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Param from query string false "Range start (RFC3339)"
// @Param to query string false "Range end (RFC3339)"
// @Param status query string false "Status filter"
// @Param staffId query string false "Staff filter"
// @Param serviceId query string false "Service filter"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	filter, err := parseAppointmentFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	appts, pagination, err := h.admin.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appts, pagination)
}

// Get godoc
// @Summary Get an appointment
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /admin/appointments/{id} [get]
func (h *AppointmentHandler) Get(c *gin.Context) {
	appt, err := h.admin.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appt, nil)
}

// UpdateStatus godoc
// @Summary Update appointment status
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body dto.UpdateAppointmentStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /admin/appointments/{id}/status [patch]
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	appt, err := h.admin.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appt, nil)
}

func parseAppointmentFilter(c *gin.Context) (models.AppointmentFilter, error) {
	filter := models.AppointmentFilter{
		StaffID:   c.Query("staffId"),
		ServiceID: c.Query("serviceId"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if raw := c.Query("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "from must be RFC3339")
		}
		filter.From = &ts
	}
	if raw := c.Query("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "to must be RFC3339")
		}
		filter.To = &ts
	}
	if raw := c.Query("status"); raw != "" {
		status := models.AppointmentStatus(raw)
		filter.Status = &status
	}
	filter.Page = parseIntQuery(c, "page", 1)
	filter.PageSize = parseIntQuery(c, "pageSize", 20)
	return filter, nil
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
