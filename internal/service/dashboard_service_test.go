package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermaplan/booking-api/internal/models"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
)

type dashboardRepoStub struct {
	counts   []models.StatusCount
	upcoming int
	top      []models.ServiceBookingCount
	err      error

	statusCalls int
}

func (s *dashboardRepoStub) StatusCountsBetween(ctx context.Context, from, to time.Time) ([]models.StatusCount, error) {
	s.statusCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.counts, nil
}

func (s *dashboardRepoStub) CountConfirmedAfter(ctx context.Context, after time.Time) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.upcoming, nil
}

func (s *dashboardRepoStub) TopServicesBetween(ctx context.Context, from, to time.Time, limit int) ([]models.ServiceBookingCount, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.top, nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = map[string][]byte{}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.entries = map[string][]byte{}
	return nil
}

func TestDashboardSummaryComposesAggregates(t *testing.T) {
	repo := &dashboardRepoStub{
		counts: []models.StatusCount{
			{Status: models.AppointmentStatusConfirmed, Count: 4},
			{Status: models.AppointmentStatusCompleted, Count: 2},
			{Status: models.AppointmentStatusCancelled, Count: 1},
		},
		upcoming: 3,
		top: []models.ServiceBookingCount{
			{ServiceID: "svc-1", ServiceName: "Skin Consultation", Bookings: 9},
		},
	}
	settings := &settingsRepoStub{settings: testBusinessSettings()}
	svc := NewDashboardService(repo, settings, nil, nil, nil, DashboardServiceConfig{})

	summary, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 7, summary.TodayTotal)
	assert.Equal(t, 2, summary.TodayCompleted)
	assert.Equal(t, 3, summary.UpcomingCount)
	assert.Equal(t, 4, summary.StatusBreakdown["confirmed"])
	require.Len(t, summary.TopServices, 1)
	assert.Equal(t, "Skin Consultation", summary.TopServices[0].ServiceName)
}

func TestDashboardSummaryServesFromCache(t *testing.T) {
	repo := &dashboardRepoStub{upcoming: 1}
	cache := NewCacheService(&memoryCacheRepo{}, nil, time.Minute, nil, true)
	svc := NewDashboardService(repo, &settingsRepoStub{settings: testBusinessSettings()}, nil, cache, nil, DashboardServiceConfig{})

	_, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	_, cached, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, repo.statusCalls)
}

func TestDashboardSummaryPropagatesRepoFailure(t *testing.T) {
	repo := &dashboardRepoStub{err: errors.New("db down")}
	svc := NewDashboardService(repo, &settingsRepoStub{settings: testBusinessSettings()}, nil, nil, nil, DashboardServiceConfig{})

	_, _, err := svc.Summary(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
