package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dermaplan/booking-api/internal/models"
	"github.com/dermaplan/booking-api/pkg/response"
)

type customerDirectory interface {
	List(ctx context.Context, filter models.CustomerFilter) ([]models.Customer, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Customer, error)
	History(ctx context.Context, id string) ([]models.Appointment, error)
}

// CustomerHandler exposes the admin customer directory.
type CustomerHandler struct {
	customers customerDirectory
}

// NewCustomerHandler builds a new handler.
func NewCustomerHandler(customers customerDirectory) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// List godoc
// @Summary List customers
// @Tags Customers
// @Produce json
// @Param search query string false "Name, email or phone search"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	filter := models.CustomerFilter{
		Search:    c.Query("search"),
		Page:      parseIntQuery(c, "page", 1),
		PageSize:  parseIntQuery(c, "pageSize", 20),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	customers, pagination, err := h.customers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, customers, pagination)
}

// Get godoc
// @Summary Get a customer
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} response.Envelope
// @Router /admin/customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, customer, nil)
}

// History godoc
// @Summary List a customer's appointments
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} response.Envelope
// @Router /admin/customers/{id}/appointments [get]
func (h *CustomerHandler) History(c *gin.Context) {
	appts, err := h.customers.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appts, nil)
}
