package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WeekdayKeys are the opening-hours map keys in time.Weekday order.
var WeekdayKeys = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// OpeningInterval is a contiguous span of a business day during which
// appointments may start, expressed as wall-clock "HH:MM" strings.
type OpeningInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// StartOffset returns the interval start as an offset from midnight.
func (i OpeningInterval) StartOffset() (time.Duration, error) {
	return parseWallClock(i.Start)
}

// EndOffset returns the interval end as an offset from midnight.
func (i OpeningInterval) EndOffset() (time.Duration, error) {
	return parseWallClock(i.End)
}

// Validate checks the HH:MM shape and ordering of the interval.
func (i OpeningInterval) Validate() error {
	start, err := parseWallClock(i.Start)
	if err != nil {
		return fmt.Errorf("invalid interval start %q: %w", i.Start, err)
	}
	end, err := parseWallClock(i.End)
	if err != nil {
		return fmt.Errorf("invalid interval end %q: %w", i.End, err)
	}
	if end <= start {
		return fmt.Errorf("interval end %q must be after start %q", i.End, i.Start)
	}
	return nil
}

func parseWallClock(raw string) (time.Duration, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}

// OpeningHours maps weekday keys (mon..sun) to opening intervals, stored as JSONB.
type OpeningHours map[string][]OpeningInterval

// ForDay returns the intervals for the given weekday, possibly empty.
func (h OpeningHours) ForDay(day time.Weekday) []OpeningInterval {
	if h == nil {
		return nil
	}
	return h[WeekdayKeys[day]]
}

// Value marshals opening hours to JSON for persistence.
func (h OpeningHours) Value() (driver.Value, error) {
	if h == nil {
		h = OpeningHours{}
	}
	data, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("marshal opening hours: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB payload into the map, rejecting malformed shapes.
func (h *OpeningHours) Scan(value interface{}) error {
	data, err := jsonbBytes(value)
	if err != nil {
		return fmt.Errorf("opening hours: %w", err)
	}
	if len(data) == 0 {
		*h = OpeningHours{}
		return nil
	}
	if err := json.Unmarshal(data, h); err != nil {
		return fmt.Errorf("unmarshal opening hours: %w", err)
	}
	return nil
}

// BookingRules are the slot generation knobs, stored as JSONB.
// BufferMinutes is accepted from the admin UI but does not participate in
// slot generation yet.
type BookingRules struct {
	SlotMinutes      int `json:"slot_minutes"`
	BufferMinutes    int `json:"buffer_minutes"`
	MinNoticeMinutes int `json:"min_notice_minutes"`
}

// Validate enforces positive granularity and non-negative policies.
func (r BookingRules) Validate() error {
	if r.SlotMinutes <= 0 {
		return fmt.Errorf("slot_minutes must be positive, got %d", r.SlotMinutes)
	}
	if r.BufferMinutes < 0 {
		return fmt.Errorf("buffer_minutes must not be negative, got %d", r.BufferMinutes)
	}
	if r.MinNoticeMinutes < 0 {
		return fmt.Errorf("min_notice_minutes must not be negative, got %d", r.MinNoticeMinutes)
	}
	return nil
}

// Value marshals booking rules to JSON for persistence.
func (r BookingRules) Value() (driver.Value, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal booking rules: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB payload into the struct.
func (r *BookingRules) Scan(value interface{}) error {
	data, err := jsonbBytes(value)
	if err != nil {
		return fmt.Errorf("booking rules: %w", err)
	}
	if len(data) == 0 {
		*r = BookingRules{}
		return nil
	}
	if err := json.Unmarshal(data, r); err != nil {
		return fmt.Errorf("unmarshal booking rules: %w", err)
	}
	return nil
}

// BusinessSettings is the single-row business calendar configuration.
type BusinessSettings struct {
	ID           string       `db:"id" json:"id"`
	OpeningHours OpeningHours `db:"opening_hours" json:"opening_hours"`
	BookingRules BookingRules `db:"booking_rules" json:"booking_rules"`
	Timezone     string       `db:"timezone" json:"timezone"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// Location resolves the configured timezone, defaulting to UTC.
func (s BusinessSettings) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

func jsonbBytes(value interface{}) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}
