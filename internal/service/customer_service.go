package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/dermaplan/booking-api/internal/models"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
)

type customerRepository interface {
	List(ctx context.Context, filter models.CustomerFilter) ([]models.Customer, int, error)
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	ListAppointments(ctx context.Context, customerID string) ([]models.Appointment, error)
}

// CustomerService exposes the read-only admin view over wizard customers.
type CustomerService struct {
	repo   customerRepository
	logger *zap.Logger
}

// NewCustomerService constructs a CustomerService.
func NewCustomerService(repo customerRepository, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{repo: repo, logger: logger}
}

// List returns customers matching the filter plus pagination data.
func (s *CustomerService) List(ctx context.Context, filter models.CustomerFilter) ([]models.Customer, *models.Pagination, error) {
	customers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list customers")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return customers, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a customer by id.
func (s *CustomerService) Get(ctx context.Context, id string) (*models.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "customer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load customer")
	}
	return customer, nil
}

// History returns a customer's bookings, newest first.
func (s *CustomerService) History(ctx context.Context, id string) ([]models.Appointment, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	appts, err := s.repo.ListAppointments(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load customer history")
	}
	return appts, nil
}
