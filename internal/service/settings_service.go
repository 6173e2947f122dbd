package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dermaplan/booking-api/internal/dto"
	"github.com/dermaplan/booking-api/internal/models"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
)

type settingsRepository interface {
	Get(ctx context.Context) (*models.BusinessSettings, error)
	Update(ctx context.Context, settings *models.BusinessSettings) error
}

// SettingsService manages the single-row business calendar configuration.
type SettingsService struct {
	repo      settingsRepository
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo settingsRepository, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// Get returns the current configuration.
func (s *SettingsService) Get(ctx context.Context) (*models.BusinessSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "business settings not configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	return settings, nil
}

// Update replaces opening hours, booking rules and timezone after validating
// every weekday key, interval shape and rule bound. Invalid configuration is
// rejected before it can poison slot generation.
func (s *SettingsService) Update(ctx context.Context, req dto.UpdateSettingsRequest, actor *models.JWTClaims) (*models.BusinessSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}
	if err := validateOpeningHours(req.OpeningHours); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid opening hours")
	}
	if err := req.BookingRules.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking rules")
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unknown timezone")
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "business settings not configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}

	settings.OpeningHours = req.OpeningHours
	settings.BookingRules = req.BookingRules
	settings.Timezone = req.Timezone

	if err := s.repo.Update(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update settings")
	}

	if s.audit != nil && actor != nil {
		log := &models.AuditLog{
			UserID:   &actor.UserID,
			Action:   models.AuditActionSettingsUpdate,
			Resource: "settings",
		}
		if err := s.audit.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to write audit log", zap.Error(err))
		}
	}
	return settings, nil
}

func validateOpeningHours(hours models.OpeningHours) error {
	valid := map[string]struct{}{}
	for _, key := range models.WeekdayKeys {
		valid[key] = struct{}{}
	}
	for key, intervals := range hours {
		if _, ok := valid[key]; !ok {
			return fmt.Errorf("unknown weekday key %q", key)
		}
		for _, interval := range intervals {
			if err := interval.Validate(); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	}
	return nil
}
