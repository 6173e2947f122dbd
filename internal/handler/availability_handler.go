package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dermaplan/booking-api/internal/dto"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
)

type availabilityProvider interface {
	Slots(ctx context.Context, date, serviceID, staffID string) (*dto.AvailabilityResponse, error)
}

// AvailabilityHandler serves the public slot listing consumed by the
// booking wizard. Responses keep the wizard's original top-level JSON shape
// rather than the admin envelope so existing clients keep working.
type AvailabilityHandler struct {
	service availabilityProvider
}

// NewAvailabilityHandler builds a new handler.
func NewAvailabilityHandler(service availabilityProvider) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// Get godoc
// @Summary List bookable slots for a day
// @Tags Availability
// @Produce json
// @Param date query string true "Target day (YYYY-MM-DD)"
// @Param serviceId query string true "Service identifier"
// @Param staffId query string false "Staff identifier"
// @Success 200 {object} dto.AvailabilityResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /availability [get]
func (h *AvailabilityHandler) Get(c *gin.Context) {
	date := c.Query("date")
	serviceID := c.Query("serviceId")
	if date == "" || serviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and serviceId are required"})
		return
	}

	resp, err := h.service.Slots(c.Request.Context(), date, serviceID, c.Query("staffId"))
	if err != nil {
		publicError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// publicError renders the wizard-facing error shape: a top-level error string.
func publicError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.JSON(appErr.Status, gin.H{"error": appErr.Message})
}
