package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermaplan/booking-api/internal/dto"
	"github.com/dermaplan/booking-api/internal/models"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
)

type dashboardServiceMock struct {
	summary  *dto.DashboardSummary
	cacheHit bool
	err      error
	metrics  models.SystemMetrics
}

func (m *dashboardServiceMock) Summary(ctx context.Context) (*dto.DashboardSummary, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return m.summary, m.cacheHit, nil
}

func (m *dashboardServiceMock) SystemMetrics() models.SystemMetrics {
	return m.metrics
}

func dashboardRequest(t *testing.T, path string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	c.Request = req
	return w, c
}

func TestDashboardHandlerSummary(t *testing.T) {
	mock := &dashboardServiceMock{
		summary: &dto.DashboardSummary{
			Date:            "2026-03-10",
			TodayTotal:      12,
			TodayCompleted:  4,
			UpcomingCount:   31,
			StatusBreakdown: map[string]int{"confirmed": 8, "completed": 4},
			TopServices: []dto.ServiceBookingRow{
				{ServiceID: "svc-1", ServiceName: "Consultation", Bookings: 7},
			},
			GeneratedAt: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		},
		cacheHit: true,
	}
	handler := NewDashboardHandler(mock)
	w, c := dashboardRequest(t, "/admin/dashboard")

	handler.Summary(c)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.DashboardSummary   `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 12, envelope.Data.TodayTotal)
	assert.Equal(t, 31, envelope.Data.UpcomingCount)
	require.Len(t, envelope.Data.TopServices, 1)
	assert.Equal(t, "svc-1", envelope.Data.TopServices[0].ServiceID)
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")
}

func TestDashboardHandlerSummaryError(t *testing.T) {
	mock := &dashboardServiceMock{err: appErrors.ErrInternal}
	handler := NewDashboardHandler(mock)
	w, c := dashboardRequest(t, "/admin/dashboard")

	handler.Summary(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrInternal.Code, envelope.Error.Code)
}

func TestDashboardHandlerSystemMetrics(t *testing.T) {
	mock := &dashboardServiceMock{metrics: models.SystemMetrics{
		RequestsTotal:      120,
		BookingsBooked:     15,
		BookingsConflicted: 2,
		CacheHitRatio:      0.75,
	}}
	handler := NewDashboardHandler(mock)
	w, c := dashboardRequest(t, "/admin/dashboard/system")

	handler.SystemMetrics(c)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.SystemMetrics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, uint64(120), envelope.Data.RequestsTotal)
	assert.Equal(t, uint64(15), envelope.Data.BookingsBooked)
	assert.InDelta(t, 0.75, envelope.Data.CacheHitRatio, 0.0001)
}
