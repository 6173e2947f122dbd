package models

import "time"

// Slot is a candidate bookable interval of one service duration. Slots are
// computed per request and never persisted.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}
