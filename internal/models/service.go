package models

import "time"

// Service represents a bookable clinic service.
type Service struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	DurationMin int       `db:"duration_min" json:"duration_min"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Duration returns the service duration as a time.Duration.
func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMin) * time.Minute
}

// ServiceFilter captures listing criteria for the catalog.
type ServiceFilter struct {
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
