package models

import "time"

// RolloutStage identifies where the migration off the legacy booking
// backend currently stands.
type RolloutStage string

const (
	RolloutStageLegacy RolloutStage = "legacy"
	RolloutStageShadow RolloutStage = "shadow"
	RolloutStageCanary RolloutStage = "canary"
	RolloutStageFull   RolloutStage = "full"
)

// RolloutHeaders carries the response headers announcing which backend
// served a request and which client segment it fell into.
type RolloutHeaders struct {
	BackendHeader string
	Stage         RolloutStage
	SegmentHeader string
	Segment       string
}

// BackendProbe is the outcome of a health probe against one backend.
type BackendProbe struct {
	Target     string        `json:"target"`
	Reachable  bool          `json:"reachable"`
	StatusCode int           `json:"status_code,omitempty"`
	Latency    time.Duration `json:"latency_ms"`
	Error      string        `json:"error,omitempty"`
}

// RolloutHealth aggregates the probe results for both backends.
type RolloutHealth struct {
	Stage      RolloutStage `json:"stage"`
	RouteToGo  bool         `json:"route_to_go"`
	Shadow     bool         `json:"shadow_traffic"`
	CanaryPct  int          `json:"canary_percentage"`
	Legacy     BackendProbe `json:"legacy"`
	Self       BackendProbe `json:"self"`
	ObservedAt time.Time    `json:"observed_at"`
}
