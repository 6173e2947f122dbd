package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dermaplan/booking-api/internal/models"
	"github.com/dermaplan/booking-api/pkg/config"
)

const segmentCookieName = "booking_segment"

// RolloutService derives the current migration stage from feature flags
// and probes both booking backends for the operations dashboard.
type RolloutService struct {
	cfg     config.RolloutConfig
	metrics *MetricsService
	client  *http.Client
}

// NewRolloutService constructs a RolloutService.
func NewRolloutService(cfg config.RolloutConfig, metrics *MetricsService) *RolloutService {
	timeout := cfg.HealthCheckTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &RolloutService{
		cfg:     cfg,
		metrics: metrics,
		client:  &http.Client{Timeout: timeout},
	}
}

// Stage maps the flag combination to a rollout stage.
func (s *RolloutService) Stage() models.RolloutStage {
	if s == nil {
		return models.RolloutStageLegacy
	}
	switch {
	case s.cfg.RouteToGo && (s.cfg.LegacyReadOnly || s.cfg.CanaryPercentage >= 100):
		return models.RolloutStageFull
	case s.cfg.RouteToGo:
		return models.RolloutStageCanary
	case s.cfg.ShadowTraffic:
		return models.RolloutStageShadow
	default:
		return models.RolloutStageLegacy
	}
}

// HeadersForRequest returns the backend/segment headers for a request.
func (s *RolloutService) HeadersForRequest(r *http.Request) models.RolloutHeaders {
	if s == nil {
		return models.RolloutHeaders{}
	}
	backendHeader := s.cfg.BackendHeader
	if backendHeader == "" {
		backendHeader = "X-Booking-Backend"
	}
	segmentHeader := s.cfg.SegmentHeader
	if segmentHeader == "" {
		segmentHeader = "X-Booking-Segment"
	}
	return models.RolloutHeaders{
		BackendHeader: backendHeader,
		Stage:         s.Stage(),
		SegmentHeader: segmentHeader,
		Segment:       s.segmentForRequest(r, segmentHeader),
	}
}

// segmentForRequest buckets a client into one of 100 stable segments so the
// canary percentage applies to the same clients across requests. An explicit
// header or cookie wins over the derived bucket.
func (s *RolloutService) segmentForRequest(r *http.Request, headerName string) string {
	if r == nil {
		return "unknown"
	}
	if value := strings.TrimSpace(r.Header.Get(headerName)); value != "" {
		return value
	}
	if cookie, err := r.Cookie(segmentCookieName); err == nil {
		if trimmed := strings.TrimSpace(cookie.Value); trimmed != "" {
			return trimmed
		}
	}

	source := clientAddress(r)
	if source == "" {
		source = r.UserAgent()
	}
	if source == "" {
		source = "fallback"
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(source))
	return fmt.Sprintf("segment-%02d", h.Sum32()%100)
}

func clientAddress(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return strings.TrimSpace(host)
}

// Health probes the legacy backend and this API and reports both results.
// Probe failures are reported in the payload rather than as an error so the
// dashboard can always render the comparison.
func (s *RolloutService) Health(ctx context.Context) models.RolloutHealth {
	return models.RolloutHealth{
		Stage:      s.Stage(),
		RouteToGo:  s.cfg.RouteToGo,
		Shadow:     s.cfg.ShadowTraffic,
		CanaryPct:  s.cfg.CanaryPercentage,
		Legacy:     s.probe(ctx, "legacy", s.cfg.LegacyHealthURL),
		Self:       s.probe(ctx, "go", s.cfg.SelfHealthURL),
		ObservedAt: time.Now().UTC(),
	}
}

func (s *RolloutService) probe(ctx context.Context, target, url string) models.BackendProbe {
	result := models.BackendProbe{Target: target}
	if url == "" {
		result.Error = "health URL not configured"
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	result.Latency = time.Since(start)

	statusCode := http.StatusServiceUnavailable
	if err != nil {
		result.Error = err.Error()
	} else {
		defer resp.Body.Close()
		statusCode = resp.StatusCode
		result.StatusCode = resp.StatusCode
		result.Reachable = resp.StatusCode < http.StatusInternalServerError
		if !result.Reachable {
			result.Error = fmt.Sprintf("received status %d", resp.StatusCode)
		}
	}

	if s.metrics != nil {
		s.metrics.ObserveHTTPRequest(http.MethodGet, fmt.Sprintf("rollout_%s_health", target), statusCode, result.Latency)
	}
	return result
}
