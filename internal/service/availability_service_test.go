package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermaplan/booking-api/internal/models"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
)

type settingsRepoStub struct {
	settings *models.BusinessSettings
	err      error
}

func (s *settingsRepoStub) Get(ctx context.Context) (*models.BusinessSettings, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.settings, nil
}

type serviceRepoStub struct {
	services map[string]models.Service
	err      error
}

func (s *serviceRepoStub) GetByID(ctx context.Context, id string) (*models.Service, error) {
	if s.err != nil {
		return nil, s.err
	}
	if svc, ok := s.services[id]; ok {
		return &svc, nil
	}
	return nil, sql.ErrNoRows
}

type appointmentWindowStub struct {
	windows []models.TimeWindow
	err     error
}

func (s *appointmentWindowStub) ListConfirmedBetween(ctx context.Context, from, to time.Time) ([]models.TimeWindow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.windows, nil
}

func istanbulDay(t *testing.T, date string) (time.Time, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	require.NoError(t, err)
	return day, loc
}

func defaultRules() models.BookingRules {
	return models.BookingRules{SlotMinutes: 15, BufferMinutes: 10, MinNoticeMinutes: 120}
}

func TestComputeDaySlotsWalksGranularityGrid(t *testing.T) {
	day, _ := istanbulDay(t, "2026-03-10")
	intervals := []models.OpeningInterval{{Start: "09:00", End: "12:00"}}
	now := day.Add(-24 * time.Hour)

	slots, err := ComputeDaySlots(day, intervals, defaultRules(), 60*time.Minute, nil, now)
	require.NoError(t, err)

	// Last 60-minute slot that still fits before 12:00 starts at 11:00.
	require.Len(t, slots, 9)
	assert.Equal(t, day.Add(9*time.Hour), slots[0].Start)
	assert.Equal(t, day.Add(10*time.Hour), slots[0].End)
	assert.Equal(t, day.Add(11*time.Hour), slots[8].Start)
	for i, slot := range slots {
		assert.Equal(t, 60*time.Minute, slot.End.Sub(slot.Start), "slot %d span", i)
		assert.True(t, slot.Available, "slot %d availability", i)
	}
	for i := 1; i < len(slots); i++ {
		assert.Equal(t, 15*time.Minute, slots[i].Start.Sub(slots[i-1].Start))
	}
}

func TestComputeDaySlotsDropsPartialTrailingSlot(t *testing.T) {
	day, _ := istanbulDay(t, "2026-03-10")
	intervals := []models.OpeningInterval{{Start: "09:00", End: "09:50"}}
	rules := models.BookingRules{SlotMinutes: 30, MinNoticeMinutes: 0}
	now := day.Add(-24 * time.Hour)

	slots, err := ComputeDaySlots(day, intervals, rules, 30*time.Minute, nil, now)
	require.NoError(t, err)

	// 09:30+30m would end at 10:00, past the 09:50 close, so only one slot.
	require.Len(t, slots, 1)
	assert.Equal(t, day.Add(9*time.Hour), slots[0].Start)
}

func TestComputeDaySlotsMarksOverlapsUnavailable(t *testing.T) {
	day, _ := istanbulDay(t, "2026-03-10")
	intervals := []models.OpeningInterval{{Start: "09:00", End: "12:00"}}
	now := day.Add(-24 * time.Hour)
	existing := []models.TimeWindow{{StartAt: day.Add(10 * time.Hour), EndAt: day.Add(11 * time.Hour)}}

	slots, err := ComputeDaySlots(day, intervals, defaultRules(), 60*time.Minute, existing, now)
	require.NoError(t, err)
	require.Len(t, slots, 9)

	byStart := map[string]bool{}
	for _, slot := range slots {
		byStart[slot.Start.Format("15:04")] = slot.Available
	}
	// Any 60-minute candidate intersecting [10:00, 11:00) is blocked.
	assert.False(t, byStart["09:15"])
	assert.False(t, byStart["09:30"])
	assert.False(t, byStart["09:45"])
	assert.False(t, byStart["10:00"])
	assert.False(t, byStart["10:15"])
	assert.False(t, byStart["10:30"])
	assert.False(t, byStart["10:45"])
	// Touching the booking boundary is allowed on both sides.
	assert.True(t, byStart["09:00"])
	assert.True(t, byStart["11:00"])
}

func TestComputeDaySlotsAppliesMinimumNotice(t *testing.T) {
	day, _ := istanbulDay(t, "2026-03-10")
	intervals := []models.OpeningInterval{{Start: "09:00", End: "12:00"}}
	// now = 08:00, minNotice = 120m, so slots before 10:00 are out.
	now := day.Add(8 * time.Hour)

	slots, err := ComputeDaySlots(day, intervals, defaultRules(), 60*time.Minute, nil, now)
	require.NoError(t, err)
	for _, slot := range slots {
		if slot.Start.Before(day.Add(10 * time.Hour)) {
			assert.False(t, slot.Available, "slot %s should be below notice", slot.Start)
		} else {
			assert.True(t, slot.Available, "slot %s should be bookable", slot.Start)
		}
	}
}

func TestComputeDaySlotsClosedDayYieldsNoSlots(t *testing.T) {
	day, _ := istanbulDay(t, "2026-03-08")
	slots, err := ComputeDaySlots(day, nil, defaultRules(), 30*time.Minute, nil, day)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeDaySlotsSpansMultipleIntervals(t *testing.T) {
	day, _ := istanbulDay(t, "2026-03-10")
	intervals := []models.OpeningInterval{
		{Start: "09:00", End: "12:00"},
		{Start: "13:00", End: "18:00"},
	}
	rules := models.BookingRules{SlotMinutes: 60, MinNoticeMinutes: 0}
	now := day.Add(-24 * time.Hour)

	slots, err := ComputeDaySlots(day, intervals, rules, 60*time.Minute, nil, now)
	require.NoError(t, err)
	require.Len(t, slots, 8)
	// Nothing lands inside the midday break.
	assert.Equal(t, day.Add(11*time.Hour), slots[2].Start)
	assert.Equal(t, day.Add(13*time.Hour), slots[3].Start)
}

func TestComputeDaySlotsRejectsZeroGranularity(t *testing.T) {
	day, _ := istanbulDay(t, "2026-03-10")
	_, err := ComputeDaySlots(day, nil, models.BookingRules{SlotMinutes: 0}, 30*time.Minute, nil, day)
	require.Error(t, err)
}

func TestComputeDaySlotsRejectsMalformedInterval(t *testing.T) {
	day, _ := istanbulDay(t, "2026-03-10")
	intervals := []models.OpeningInterval{{Start: "9am", End: "12:00"}}
	_, err := ComputeDaySlots(day, intervals, defaultRules(), 30*time.Minute, nil, day)
	require.Error(t, err)
}

func testBusinessSettings() *models.BusinessSettings {
	return &models.BusinessSettings{
		OpeningHours: models.OpeningHours{
			"tue": {{Start: "09:00", End: "12:00"}},
		},
		BookingRules: defaultRules(),
		Timezone:     "Europe/Istanbul",
	}
}

func TestAvailabilitySlotsHappyPath(t *testing.T) {
	day, _ := istanbulDay(t, "2026-03-10") // a Tuesday
	settings := &settingsRepoStub{settings: testBusinessSettings()}
	services := &serviceRepoStub{services: map[string]models.Service{
		"svc-1": {ID: "svc-1", Name: "Skin Consultation", DurationMin: 60, Active: true},
	}}
	appointments := &appointmentWindowStub{windows: []models.TimeWindow{
		{StartAt: day.Add(10 * time.Hour), EndAt: day.Add(11 * time.Hour)},
	}}
	svc := NewAvailabilityService(settings, services, appointments, nil, nil)
	svc.now = func() time.Time { return day.Add(-24 * time.Hour) }

	resp, err := svc.Slots(context.Background(), "2026-03-10", "svc-1", "")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Istanbul", resp.Timezone)
	require.Len(t, resp.Slots, 9)
	available := 0
	for _, slot := range resp.Slots {
		if slot.Available {
			available++
		}
	}
	assert.Equal(t, 2, available)
}

func TestAvailabilitySlotsIgnoresStaffFilter(t *testing.T) {
	day, _ := istanbulDay(t, "2026-03-10")
	settings := &settingsRepoStub{settings: testBusinessSettings()}
	services := &serviceRepoStub{services: map[string]models.Service{
		"svc-1": {ID: "svc-1", DurationMin: 60, Active: true},
	}}
	appointments := &appointmentWindowStub{windows: []models.TimeWindow{
		{StartAt: day.Add(10 * time.Hour), EndAt: day.Add(11 * time.Hour)},
	}}
	svc := NewAvailabilityService(settings, services, appointments, nil, nil)
	svc.now = func() time.Time { return day.Add(-24 * time.Hour) }

	withStaff, err := svc.Slots(context.Background(), "2026-03-10", "svc-1", "staff-9")
	require.NoError(t, err)
	withoutStaff, err := svc.Slots(context.Background(), "2026-03-10", "svc-1", "")
	require.NoError(t, err)
	assert.Equal(t, withoutStaff, withStaff)
}

func TestAvailabilitySlotsRequiresDateAndService(t *testing.T) {
	svc := NewAvailabilityService(&settingsRepoStub{}, &serviceRepoStub{}, &appointmentWindowStub{}, nil, nil)
	_, err := svc.Slots(context.Background(), "", "svc-1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Slots(context.Background(), "2026-03-10", "", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAvailabilitySlotsRejectsBadDate(t *testing.T) {
	svc := NewAvailabilityService(&settingsRepoStub{settings: testBusinessSettings()}, &serviceRepoStub{}, &appointmentWindowStub{}, nil, nil)
	_, err := svc.Slots(context.Background(), "10-03-2026", "svc-1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAvailabilitySlotsUnknownService(t *testing.T) {
	svc := NewAvailabilityService(&settingsRepoStub{settings: testBusinessSettings()}, &serviceRepoStub{}, &appointmentWindowStub{}, nil, nil)
	_, err := svc.Slots(context.Background(), "2026-03-10", "missing", "")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "service not found", appErr.Message)
}

func TestAvailabilitySlotsSettingsMissing(t *testing.T) {
	svc := NewAvailabilityService(&settingsRepoStub{err: sql.ErrNoRows}, &serviceRepoStub{}, &appointmentWindowStub{}, nil, nil)
	_, err := svc.Slots(context.Background(), "2026-03-10", "svc-1", "")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "business settings not configured", appErr.Message)
}

func TestAvailabilitySlotsRepoFailure(t *testing.T) {
	services := &serviceRepoStub{services: map[string]models.Service{
		"svc-1": {ID: "svc-1", DurationMin: 30, Active: true},
	}}
	appointments := &appointmentWindowStub{err: errors.New("db down")}
	svc := NewAvailabilityService(&settingsRepoStub{settings: testBusinessSettings()}, services, appointments, nil, nil)
	_, err := svc.Slots(context.Background(), "2026-03-10", "svc-1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
