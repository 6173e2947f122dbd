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

type dashboardAppointmentRepository interface {
	StatusCountsBetween(ctx context.Context, from, to time.Time) ([]models.StatusCount, error)
	CountConfirmedAfter(ctx context.Context, after time.Time) (int, error)
	TopServicesBetween(ctx context.Context, from, to time.Time, limit int) ([]models.ServiceBookingCount, error)
}

type dashboardSettingsReader interface {
	Get(ctx context.Context) (*models.BusinessSettings, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL        time.Duration
	TopServicesSpan time.Duration
	TopServicesMax  int
}

// DashboardService composes the admin dashboard payload with a
// read-through cache in front of the aggregate queries.
type DashboardService struct {
	appointments dashboardAppointmentRepository
	settings     dashboardSettingsReader
	metrics      *MetricsService
	cache        *CacheService
	logger       *zap.Logger
	now          func() time.Time
	cfg          DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(appointments dashboardAppointmentRepository, settings dashboardSettingsReader, metrics *MetricsService, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TopServicesSpan <= 0 {
		cfg.TopServicesSpan = 30 * 24 * time.Hour
	}
	if cfg.TopServicesMax <= 0 {
		cfg.TopServicesMax = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		appointments: appointments,
		settings:     settings,
		metrics:      metrics,
		cache:        cache,
		logger:       logger,
		now:          time.Now,
		cfg:          cfg,
	}
}

// Summary returns the dashboard for the business-local day containing now
// and indicates whether the payload came from cache.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardSummary, bool, error) {
	loc := time.UTC
	if s.settings != nil {
		settings, err := s.settings.Get(ctx)
		switch {
		case err == nil:
			if l, locErr := settings.Location(); locErr == nil {
				loc = l
			}
		case errors.Is(err, sql.ErrNoRows):
			// Dashboard still renders with UTC days before initial setup.
		default:
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
		}
	}

	now := s.now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)

	cacheKey := fmt.Sprintf("dashboard:summary:%s", dayStart.Format("2006-01-02"))
	if s.cache != nil {
		var cached dto.DashboardSummary
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	summary, err := s.compose(ctx, dayStart, dayEnd, now)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return summary, false, nil
}

// SystemMetrics surfaces runtime counters for the ops panel.
func (s *DashboardService) SystemMetrics() models.SystemMetrics {
	return s.metrics.Snapshot()
}

func (s *DashboardService) compose(ctx context.Context, dayStart, dayEnd, now time.Time) (*dto.DashboardSummary, error) {
	counts, err := s.appointments.StatusCountsBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate appointments")
	}

	breakdown := make(map[string]int, len(counts))
	total := 0
	for _, count := range counts {
		breakdown[string(count.Status)] = count.Count
		total += count.Count
	}

	upcoming, err := s.appointments.CountConfirmedAfter(ctx, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count upcoming appointments")
	}

	top, err := s.appointments.TopServicesBetween(ctx, dayStart.Add(-s.cfg.TopServicesSpan), dayEnd, s.cfg.TopServicesMax)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank services")
	}
	topRows := make([]dto.ServiceBookingRow, 0, len(top))
	for _, row := range top {
		topRows = append(topRows, dto.ServiceBookingRow{
			ServiceID:   row.ServiceID,
			ServiceName: row.ServiceName,
			Bookings:    row.Bookings,
		})
	}

	return &dto.DashboardSummary{
		Date:            dayStart.Format("2006-01-02"),
		TodayTotal:      total,
		TodayCompleted:  breakdown[string(models.AppointmentStatusCompleted)],
		UpcomingCount:   upcoming,
		StatusBreakdown: breakdown,
		TopServices:     topRows,
		GeneratedAt:     now.UTC(),
	}, nil
}
