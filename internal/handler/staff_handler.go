package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dermaplan/booking-api/internal/dto"
	"github.com/dermaplan/booking-api/internal/models"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
	"github.com/dermaplan/booking-api/pkg/response"
)

type staffRoster interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, error)
	ListPublic(ctx context.Context) ([]models.Staff, error)
	Get(ctx context.Context, id string) (*models.Staff, error)
	Create(ctx context.Context, req dto.CreateStaffRequest, actor *models.JWTClaims) (*models.Staff, error)
	Update(ctx context.Context, id string, req dto.UpdateStaffRequest, actor *models.JWTClaims) (*models.Staff, error)
	Deactivate(ctx context.Context, id string, actor *models.JWTClaims) error
}

// StaffHandler exposes the staff roster.
type StaffHandler struct {
	roster staffRoster
}

// NewStaffHandler builds a new handler.
func NewStaffHandler(roster staffRoster) *StaffHandler {
	return &StaffHandler{roster: roster}
}

// ListPublic godoc
// @Summary List active staff
// @Tags Staff
// @Produce json
// @Success 200 {array} models.Staff
// @Router /staff [get]
func (h *StaffHandler) ListPublic(c *gin.Context) {
	staff, err := h.roster.ListPublic(c.Request.Context())
	if err != nil {
		publicError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

// List godoc
// @Summary List staff
// @Tags Staff
// @Produce json
// @Param search query string false "Name search"
// @Param active query bool false "Active filter"
// @Success 200 {object} response.Envelope
// @Router /admin/staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	filter := models.StaffFilter{
		Search:   c.Query("search"),
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "pageSize", 50),
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}
	staff, err := h.roster.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, staff, nil)
}

// Get godoc
// @Summary Get a staff member
// @Tags Staff
// @Produce json
// @Param id path string true "Staff ID"
// @Success 200 {object} response.Envelope
// @Router /admin/staff/{id} [get]
func (h *StaffHandler) Get(c *gin.Context) {
	member, err := h.roster.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Create godoc
// @Summary Create a staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Param payload body dto.CreateStaffRequest true "Staff payload"
// @Success 201 {object} response.Envelope
// @Router /admin/staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	var req dto.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid staff payload"))
		return
	}
	member, err := h.roster.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Update godoc
// @Summary Update a staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path string true "Staff ID"
// @Param payload body dto.UpdateStaffRequest true "Staff payload"
// @Success 200 {object} response.Envelope
// @Router /admin/staff/{id} [put]
func (h *StaffHandler) Update(c *gin.Context) {
	var req dto.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid staff payload"))
		return
	}
	member, err := h.roster.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Deactivate godoc
// @Summary Deactivate a staff member
// @Tags Staff
// @Param id path string true "Staff ID"
// @Success 204 "No Content"
// @Router /admin/staff/{id} [delete]
func (h *StaffHandler) Deactivate(c *gin.Context) {
	if err := h.roster.Deactivate(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
