package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dermaplan/booking-api/internal/dto"
	"github.com/dermaplan/booking-api/internal/models"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
)

type availabilitySettingsReader interface {
	Get(ctx context.Context) (*models.BusinessSettings, error)
}

type availabilityServiceReader interface {
	GetByID(ctx context.Context, id string) (*models.Service, error)
}

type availabilityAppointmentReader interface {
	ListConfirmedBetween(ctx context.Context, from, to time.Time) ([]models.TimeWindow, error)
}

// AvailabilityService computes the bookable slots for a calendar day.
type AvailabilityService struct {
	settings     availabilitySettingsReader
	services     availabilityServiceReader
	appointments availabilityAppointmentReader
	metrics      *MetricsService
	logger       *zap.Logger
	now          func() time.Time
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(settings availabilitySettingsReader, services availabilityServiceReader, appointments availabilityAppointmentReader, metrics *MetricsService, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		settings:     settings,
		services:     services,
		appointments: appointments,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// Slots resolves the calendar configuration and the day's confirmed bookings,
// then computes the candidate slots for the requested service.
//
// staffID narrows nothing today: slots are computed against the shared
// calendar, so appointments of every staff member block the day equally.
// TODO: apply the staff filter to the overlap query once product decides
// whether per-staff calendars should exist.
func (s *AvailabilityService) Slots(ctx context.Context, date, serviceID, staffID string) (*dto.AvailabilityResponse, error) {
	if date == "" || serviceID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date and serviceId are required")
	}

	// Lookup failures here deliberately surface as 500, not 404: the legacy
	// endpoint treats a missing settings row or service as a backend fault
	// and the booking wizard keys off that.
	settings, err := s.settings.Get(ctx)
	if err != nil {
		msg := "failed to load settings"
		if errors.Is(err, sql.ErrNoRows) {
			msg = "business settings not configured"
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msg)
	}

	loc, err := settings.Location()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid business timezone")
	}

	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be formatted as YYYY-MM-DD")
	}

	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		msg := "failed to load service"
		if errors.Is(err, sql.ErrNoRows) {
			msg = "service not found"
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msg)
	}

	dayEnd := day.Add(24*time.Hour - time.Millisecond)
	existing, err := s.appointments.ListConfirmedBetween(ctx, day, dayEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointments")
	}

	intervals := settings.OpeningHours.ForDay(day.Weekday())
	slots, err := ComputeDaySlots(day, intervals, settings.BookingRules, svc.Duration(), existing, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed opening hours")
	}

	if s.metrics != nil {
		s.metrics.RecordAvailabilityRequest()
	}

	views := make([]dto.SlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, dto.SlotView{Start: slot.Start, End: slot.End, Available: slot.Available})
	}
	return &dto.AvailabilityResponse{Timezone: settings.Timezone, Slots: views}, nil
}

// ComputeDaySlots walks every opening interval of the day in steps of the
// configured slot granularity and emits one candidate slot per cursor
// position, each spanning exactly the service duration. A candidate that
// would run past the interval end is dropped, not clipped. Candidates are
// marked unavailable when they start before now+minNotice or when they
// overlap a confirmed booking; both kinds are still emitted so callers can
// render them greyed out. Overlap is half-open: slots that merely touch a
// booking's boundary instant stay available.
//
// dayStart must be midnight of the target day in the business timezone; the
// wall-clock interval bounds are resolved against that same day.
func ComputeDaySlots(dayStart time.Time, intervals []models.OpeningInterval, rules models.BookingRules, serviceDuration time.Duration, existing []models.TimeWindow, now time.Time) ([]models.Slot, error) {
	if rules.SlotMinutes <= 0 {
		return nil, fmt.Errorf("slot granularity must be positive, got %d", rules.SlotMinutes)
	}
	if serviceDuration <= 0 {
		return nil, fmt.Errorf("service duration must be positive, got %s", serviceDuration)
	}

	step := time.Duration(rules.SlotMinutes) * time.Minute
	earliestAllowed := now.Add(time.Duration(rules.MinNoticeMinutes) * time.Minute)

	slots := make([]models.Slot, 0, len(intervals)*8)
	for _, interval := range intervals {
		startOffset, err := interval.StartOffset()
		if err != nil {
			return nil, err
		}
		endOffset, err := interval.EndOffset()
		if err != nil {
			return nil, err
		}

		intervalEnd := dayStart.Add(endOffset)
		for cursor := dayStart.Add(startOffset); !cursor.Add(serviceDuration).After(intervalEnd); cursor = cursor.Add(step) {
			end := cursor.Add(serviceDuration)
			available := !cursor.Before(earliestAllowed) && !overlapsAny(cursor, end, existing)
			slots = append(slots, models.Slot{Start: cursor, End: end, Available: available})
		}
	}
	return slots, nil
}

// overlapsAny applies the half-open interval test against every window.
func overlapsAny(start, end time.Time, windows []models.TimeWindow) bool {
	for _, w := range windows {
		if start.Before(w.EndAt) && w.StartAt.Before(end) {
			return true
		}
	}
	return false
}
