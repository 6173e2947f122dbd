package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dermaplan/booking-api/internal/dto"
	"github.com/dermaplan/booking-api/internal/models"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
)

// auditLogger is satisfied by UserRepository and shared by the admin services.
type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type serviceCatalogRepository interface {
	List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error)
	GetByID(ctx context.Context, id string) (*models.Service, error)
	Create(ctx context.Context, svc *models.Service) error
	Update(ctx context.Context, svc *models.Service) error
}

// ServiceCatalogService manages the bookable service catalog.
type ServiceCatalogService struct {
	repo      serviceCatalogRepository
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewServiceCatalogService constructs a ServiceCatalogService.
func NewServiceCatalogService(repo serviceCatalogRepository, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *ServiceCatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServiceCatalogService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns catalog entries matching the filter.
func (s *ServiceCatalogService) List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error) {
	services, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list services")
	}
	return services, nil
}

// ListPublic returns only active services for the booking wizard.
func (s *ServiceCatalogService) ListPublic(ctx context.Context) ([]models.Service, error) {
	active := true
	return s.List(ctx, models.ServiceFilter{Active: &active})
}

// Get returns a service by id.
func (s *ServiceCatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}
	return svc, nil
}

// Create registers a new catalog entry.
func (s *ServiceCatalogService) Create(ctx context.Context, req dto.CreateServiceRequest, actor *models.JWTClaims) (*models.Service, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service payload")
	}

	svc := &models.Service{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		DurationMin: req.DurationMin,
		PriceCents:  req.PriceCents,
		Active:      true,
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}

	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create service")
	}
	s.recordAudit(ctx, actor, svc.ID, "created")
	return svc, nil
}

// Update applies a partial update to an existing entry.
func (s *ServiceCatalogService) Update(ctx context.Context, id string, req dto.UpdateServiceRequest, actor *models.JWTClaims) (*models.Service, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service payload")
	}

	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}

	if req.Name != nil {
		svc.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		svc.Description = strings.TrimSpace(*req.Description)
	}
	if req.DurationMin != nil {
		svc.DurationMin = *req.DurationMin
	}
	if req.PriceCents != nil {
		svc.PriceCents = *req.PriceCents
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}

	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update service")
	}
	s.recordAudit(ctx, actor, svc.ID, "updated")
	return svc, nil
}

// Deactivate hides a service from the booking wizard without deleting history.
func (s *ServiceCatalogService) Deactivate(ctx context.Context, id string, actor *models.JWTClaims) error {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}
	svc.Active = false
	if err := s.repo.Update(ctx, svc); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate service")
	}
	s.recordAudit(ctx, actor, svc.ID, "deactivated")
	return nil
}

func (s *ServiceCatalogService) recordAudit(ctx context.Context, actor *models.JWTClaims, serviceID, change string) {
	if s.audit == nil || actor == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionServiceChange,
		Resource:   "service",
		ResourceID: &serviceID,
		NewValues:  []byte(`{"change":"` + change + `"}`),
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to write audit log", zap.Error(err))
	}
}
