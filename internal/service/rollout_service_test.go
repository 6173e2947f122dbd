package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermaplan/booking-api/internal/models"
	"github.com/dermaplan/booking-api/pkg/config"
)

func TestRolloutStageFromFlags(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.RolloutConfig
		want models.RolloutStage
	}{
		{"default legacy", config.RolloutConfig{}, models.RolloutStageLegacy},
		{"shadow traffic", config.RolloutConfig{ShadowTraffic: true}, models.RolloutStageShadow},
		{"canary", config.RolloutConfig{RouteToGo: true, CanaryPercentage: 25}, models.RolloutStageCanary},
		{"full by percentage", config.RolloutConfig{RouteToGo: true, CanaryPercentage: 100}, models.RolloutStageFull},
		{"full by lock", config.RolloutConfig{RouteToGo: true, LegacyReadOnly: true}, models.RolloutStageFull},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewRolloutService(tc.cfg, nil)
			assert.Equal(t, tc.want, svc.Stage())
		})
	}
}

func TestRolloutSegmentStable(t *testing.T) {
	svc := NewRolloutService(config.RolloutConfig{}, nil)

	first, _ := http.NewRequest(http.MethodGet, "/availability", nil)
	first.RemoteAddr = "203.0.113.7:51000"
	second, _ := http.NewRequest(http.MethodGet, "/appointments", nil)
	second.RemoteAddr = "203.0.113.7:51999"

	a := svc.HeadersForRequest(first)
	b := svc.HeadersForRequest(second)
	assert.Equal(t, a.Segment, b.Segment)
	assert.Contains(t, a.Segment, "segment-")
}

func TestRolloutSegmentHeaderWins(t *testing.T) {
	svc := NewRolloutService(config.RolloutConfig{SegmentHeader: "X-Booking-Segment"}, nil)
	req, _ := http.NewRequest(http.MethodGet, "/availability", nil)
	req.Header.Set("X-Booking-Segment", "pilot-clinic")

	headers := svc.HeadersForRequest(req)
	assert.Equal(t, "pilot-clinic", headers.Segment)
}

func TestRolloutHealthProbes(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	svc := NewRolloutService(config.RolloutConfig{
		RouteToGo:        true,
		CanaryPercentage: 100,
		LegacyHealthURL:  upstream.URL,
		SelfHealthURL:    upstream.URL,
	}, nil)

	health := svc.Health(context.Background())
	require.True(t, health.Legacy.Reachable)
	require.True(t, health.Self.Reachable)
	assert.Equal(t, models.RolloutStageFull, health.Stage)
	assert.Equal(t, http.StatusOK, health.Legacy.StatusCode)
}

func TestRolloutHealthMissingURL(t *testing.T) {
	svc := NewRolloutService(config.RolloutConfig{}, nil)
	health := svc.Health(context.Background())
	assert.False(t, health.Legacy.Reachable)
	assert.Equal(t, "health URL not configured", health.Legacy.Error)
}
