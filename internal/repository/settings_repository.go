package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dermaplan/booking-api/internal/models"
)

// SettingsRepository persists the single business settings row.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository builds the repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings row. The table holds exactly one row seeded by the
// initial migration; sql.ErrNoRows surfaces when it is missing.
func (r *SettingsRepository) Get(ctx context.Context) (*models.BusinessSettings, error) {
	const query = `SELECT id, opening_hours, booking_rules, timezone, updated_at FROM settings LIMIT 1`
	var settings models.BusinessSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update replaces the calendar configuration.
func (r *SettingsRepository) Update(ctx context.Context, settings *models.BusinessSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	const query = `UPDATE settings
SET opening_hours = :opening_hours, booking_rules = :booking_rules, timezone = :timezone, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}
