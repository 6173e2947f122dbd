package dto

import "time"

// SlotView is one candidate slot in the availability response.
type SlotView struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// AvailabilityResponse is the public availability payload. The shape is kept
// byte-compatible with the legacy booking API consumed by the wizard.
type AvailabilityResponse struct {
	Timezone string     `json:"timezone"`
	Slots    []SlotView `json:"slots"`
}
