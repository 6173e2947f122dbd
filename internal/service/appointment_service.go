package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dermaplan/booking-api/internal/models"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
)

type appointmentRepository interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error)
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error
}

// AppointmentService exposes the admin view over bookings.
type AppointmentService struct {
	repo   appointmentRepository
	audit  auditLogger
	cache  *CacheService
	logger *zap.Logger
}

// NewAppointmentService constructs an AppointmentService.
func NewAppointmentService(repo appointmentRepository, audit auditLogger, cache *CacheService, logger *zap.Logger) *AppointmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentService{repo: repo, audit: audit, cache: cache, logger: logger}
}

// List returns appointments matching the filter plus pagination data.
func (s *AppointmentService) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, *models.Pagination, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", *filter.Status))
	}
	appts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return appts, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single appointment.
func (s *AppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	return appt, nil
}

// UpdateStatus moves an appointment through its lifecycle. Only confirmed
// appointments may change state; completed, cancelled and no-show are
// terminal.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id string, target models.AppointmentStatus, actor *models.JWTClaims) (*models.Appointment, error) {
	if !target.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", target))
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}

	if !appt.Status.CanTransitionTo(target) {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("cannot move appointment from %s to %s", appt.Status, target))
	}

	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment status")
	}

	previous := appt.Status
	appt.Status = target
	s.recordAudit(ctx, actor, id, previous, target)

	if s.cache != nil {
		// Cancelling frees a slot and shifts the dashboard counters.
		_ = s.cache.Invalidate(ctx, "dashboard:*")
	}

	s.logger.Info("appointment status changed",
		zap.String("appointment_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(target)),
	)
	return appt, nil
}

func (s *AppointmentService) recordAudit(ctx context.Context, actor *models.JWTClaims, apptID string, from, to models.AppointmentStatus) {
	if s.audit == nil || actor == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionAppointmentStatus,
		Resource:   "appointment",
		ResourceID: &apptID,
		OldValues:  []byte(fmt.Sprintf(`{"status":%q}`, from)),
		NewValues:  []byte(fmt.Sprintf(`{"status":%q}`, to)),
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to write audit log", zap.Error(err))
	}
}
