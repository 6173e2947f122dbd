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

type serviceCatalog interface {
	List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error)
	ListPublic(ctx context.Context) ([]models.Service, error)
	Get(ctx context.Context, id string) (*models.Service, error)
	Create(ctx context.Context, req dto.CreateServiceRequest, actor *models.JWTClaims) (*models.Service, error)
	Update(ctx context.Context, id string, req dto.UpdateServiceRequest, actor *models.JWTClaims) (*models.Service, error)
	Deactivate(ctx context.Context, id string, actor *models.JWTClaims) error
}

// ServiceHandler exposes the service catalog: a public listing for the
// booking wizard and the admin CRUD surface.
type ServiceHandler struct {
	catalog serviceCatalog
}

// NewServiceHandler builds a new handler.
func NewServiceHandler(catalog serviceCatalog) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

// ListPublic godoc
// @Summary List active services
// @Tags Services
// @Produce json
// @Success 200 {array} models.Service
// @Router /services [get]
func (h *ServiceHandler) ListPublic(c *gin.Context) {
	services, err := h.catalog.ListPublic(c.Request.Context())
	if err != nil {
		publicError(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

// List godoc
// @Summary List services
// @Tags Services
// @Produce json
// @Param search query string false "Name search"
// @Param active query bool false "Active filter"
// @Success 200 {object} response.Envelope
// @Router /admin/services [get]
func (h *ServiceHandler) List(c *gin.Context) {
	filter := models.ServiceFilter{
		Search:   c.Query("search"),
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "pageSize", 50),
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}
	services, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, services, nil)
}

// Get godoc
// @Summary Get a service
// @Tags Services
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} response.Envelope
// @Router /admin/services/{id} [get]
func (h *ServiceHandler) Get(c *gin.Context) {
	svc, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, svc, nil)
}

// Create godoc
// @Summary Create a service
// @Tags Services
// @Accept json
// @Produce json
// @Param payload body dto.CreateServiceRequest true "Service payload"
// @Success 201 {object} response.Envelope
// @Router /admin/services [post]
func (h *ServiceHandler) Create(c *gin.Context) {
	var req dto.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid service payload"))
		return
	}
	svc, err := h.catalog.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, svc)
}

// Update godoc
// @Summary Update a service
// @Tags Services
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param payload body dto.UpdateServiceRequest true "Service payload"
// @Success 200 {object} response.Envelope
// @Router /admin/services/{id} [put]
func (h *ServiceHandler) Update(c *gin.Context) {
	var req dto.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid service payload"))
		return
	}
	svc, err := h.catalog.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, svc, nil)
}

// Deactivate godoc
// @Summary Deactivate a service
// @Tags Services
// @Param id path string true "Service ID"
// @Success 204 "No Content"
// @Router /admin/services/{id} [delete]
func (h *ServiceHandler) Deactivate(c *gin.Context) {
	if err := h.catalog.Deactivate(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
