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

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, error)
	GetByID(ctx context.Context, id string) (*models.Staff, error)
	Create(ctx context.Context, member *models.Staff) error
	Update(ctx context.Context, member *models.Staff) error
}

// StaffService manages the practitioner roster.
type StaffService struct {
	repo      staffRepository
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService constructs a StaffService.
func NewStaffService(repo staffRepository, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns roster entries matching the filter.
func (s *StaffService) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, error) {
	staff, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}
	return staff, nil
}

// ListPublic returns only active staff for the booking wizard.
func (s *StaffService) ListPublic(ctx context.Context) ([]models.Staff, error) {
	active := true
	return s.List(ctx, models.StaffFilter{Active: &active})
}

// Get returns a staff member by id.
func (s *StaffService) Get(ctx context.Context, id string) (*models.Staff, error) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	return member, nil
}

// Create adds a staff member to the roster.
func (s *StaffService) Create(ctx context.Context, req dto.CreateStaffRequest, actor *models.JWTClaims) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}

	member := &models.Staff{
		FullName: strings.TrimSpace(req.FullName),
		Title:    strings.TrimSpace(req.Title),
		Active:   true,
	}
	if req.Active != nil {
		member.Active = *req.Active
	}

	if err := s.repo.Create(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff member")
	}
	s.recordAudit(ctx, actor, member.ID, "created")
	return member, nil
}

// Update applies a partial update to a roster entry.
func (s *StaffService) Update(ctx context.Context, id string, req dto.UpdateStaffRequest, actor *models.JWTClaims) (*models.Staff, error) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}

	if req.FullName != nil {
		member.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Title != nil {
		member.Title = strings.TrimSpace(*req.Title)
	}
	if req.Active != nil {
		member.Active = *req.Active
	}

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff member")
	}
	s.recordAudit(ctx, actor, member.ID, "updated")
	return member, nil
}

// Deactivate removes a staff member from the wizard without deleting history.
func (s *StaffService) Deactivate(ctx context.Context, id string, actor *models.JWTClaims) error {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	member.Active = false
	if err := s.repo.Update(ctx, member); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate staff member")
	}
	s.recordAudit(ctx, actor, member.ID, "deactivated")
	return nil
}

func (s *StaffService) recordAudit(ctx context.Context, actor *models.JWTClaims, staffID, change string) {
	if s.audit == nil || actor == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionStaffChange,
		Resource:   "staff",
		ResourceID: &staffID,
		NewValues:  []byte(`{"change":"` + change + `"}`),
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to write audit log", zap.Error(err))
	}
}
