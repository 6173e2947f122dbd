package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dermaplan/booking-api/internal/dto"
	"github.com/dermaplan/booking-api/internal/models"
	"github.com/dermaplan/booking-api/internal/repository"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
)

type bookingServiceReader interface {
	GetByID(ctx context.Context, id string) (*models.Service, error)
}

type bookingStaffReader interface {
	GetByID(ctx context.Context, id string) (*models.Staff, error)
}

type bookingAppointmentStore interface {
	Book(ctx context.Context, customer *models.Customer, appt *models.Appointment) error
}

// BookingService turns a wizard submission into a confirmed appointment.
type BookingService struct {
	services     bookingServiceReader
	staff        bookingStaffReader
	appointments bookingAppointmentStore
	cache        *CacheService
	metrics      *MetricsService
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewBookingService constructs a BookingService.
func NewBookingService(services bookingServiceReader, staff bookingStaffReader, appointments bookingAppointmentStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		services:     services,
		staff:        staff,
		appointments: appointments,
		cache:        cache,
		metrics:      metrics,
		validate:     validator.New(),
		logger:       logger,
	}
}

// Book validates the request, derives the appointment window from the
// service duration and persists customer plus appointment in one
// transaction. The storage layer rejects overlapping confirmed bookings, so
// two racing requests for the same window cannot both succeed.
func (s *BookingService) Book(ctx context.Context, req dto.BookAppointmentRequest) (*models.Appointment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking request")
	}
	if req.StartAt.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startAt is required")
	}

	svc, err := s.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}
	if !svc.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
	}

	if req.StaffID != nil && *req.StaffID != "" {
		if _, err := s.staff.GetByID(ctx, *req.StaffID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
		}
	}

	startAt := req.StartAt.UTC()
	appt := &models.Appointment{
		ServiceID: svc.ID,
		StaffID:   req.StaffID,
		StartAt:   startAt,
		EndAt:     startAt.Add(svc.Duration()),
		Status:    models.AppointmentStatusConfirmed,
	}
	customer := &models.Customer{
		FullName: req.Customer.FullName,
		Email:    req.Customer.Email,
		Phone:    req.Customer.Phone,
	}

	if err := s.appointments.Book(ctx, customer, appt); err != nil {
		if errors.Is(err, repository.ErrAppointmentOverlap) {
			if s.metrics != nil {
				s.metrics.RecordBooking("conflict")
			}
			s.logger.Info("booking rejected, slot already taken",
				zap.String("service_id", svc.ID),
				zap.Time("start_at", appt.StartAt),
			)
			return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to book appointment")
	}

	if s.metrics != nil {
		s.metrics.RecordBooking("booked")
	}
	if s.cache != nil {
		// Dashboard aggregates include today's bookings.
		_ = s.cache.Invalidate(ctx, "dashboard:*")
	}

	s.logger.Info("appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.String("service_id", svc.ID),
		zap.Time("start_at", appt.StartAt),
		zap.Duration("duration", svc.Duration()),
	)
	return appt, nil
}
