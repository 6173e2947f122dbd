package dto

import "github.com/dermaplan/booking-api/internal/models"

// UpdateSettingsRequest replaces the business calendar configuration.
type UpdateSettingsRequest struct {
	OpeningHours models.OpeningHours `json:"opening_hours" validate:"required"`
	BookingRules models.BookingRules `json:"booking_rules" validate:"required"`
	Timezone     string              `json:"timezone" validate:"required"`
}
