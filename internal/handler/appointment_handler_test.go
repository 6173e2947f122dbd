package handler

import (
	"bytes"
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
	"github.com/dermaplan/booking-api/internal/middleware"
	"github.com/dermaplan/booking-api/internal/models"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
)

type bookingServiceMock struct {
	appt   *models.Appointment
	err    error
	gotReq dto.BookAppointmentRequest
}

func (m *bookingServiceMock) Book(ctx context.Context, req dto.BookAppointmentRequest) (*models.Appointment, error) {
	m.gotReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.appt, nil
}

type appointmentAdminMock struct {
	appts      []models.Appointment
	pagination *models.Pagination
	appt       *models.Appointment
	err        error
	gotFilter  models.AppointmentFilter
	gotTarget  models.AppointmentStatus
}

func (m *appointmentAdminMock) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, *models.Pagination, error) {
	m.gotFilter = filter
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.appts, m.pagination, nil
}

func (m *appointmentAdminMock) Get(ctx context.Context, id string) (*models.Appointment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.appt, nil
}

func (m *appointmentAdminMock) UpdateStatus(ctx context.Context, id string, target models.AppointmentStatus, actor *models.JWTClaims) (*models.Appointment, error) {
	m.gotTarget = target
	if m.err != nil {
		return nil, m.err
	}
	return m.appt, nil
}

func bookingBody(t *testing.T) []byte {
	t.Helper()
	payload := dto.BookAppointmentRequest{
		ServiceID: "svc-1",
		StartAt:   time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		Customer: dto.CustomerInput{
			FullName: "Ayse Yilmaz",
			Email:    "ayse@example.com",
			Phone:    "+905551234567",
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func postJSON(t *testing.T, path string, body []byte) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return w, c
}

func TestAppointmentHandlerBook(t *testing.T) {
	mock := &bookingServiceMock{appt: &models.Appointment{
		ID:        "appt-1",
		ServiceID: "svc-1",
		StartAt:   time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		EndAt:     time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
		Status:    models.AppointmentStatusConfirmed,
	}}
	handler := NewAppointmentHandler(mock, nil)
	w, c := postJSON(t, "/appointments", bookingBody(t))

	handler.Book(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var body dto.BookAppointmentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.NotNil(t, body.Appointment)
	assert.Equal(t, "appt-1", body.Appointment.ID)
	assert.Equal(t, "svc-1", mock.gotReq.ServiceID)
}

func TestAppointmentHandlerBookMalformedBody(t *testing.T) {
	mock := &bookingServiceMock{}
	handler := NewAppointmentHandler(mock, nil)
	w, c := postJSON(t, "/appointments", []byte(`{not json`))

	handler.Book(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestAppointmentHandlerBookSlotTaken(t *testing.T) {
	mock := &bookingServiceMock{err: appErrors.ErrSlotUnavailable}
	handler := NewAppointmentHandler(mock, nil)
	w, c := postJSON(t, "/appointments", bookingBody(t))

	handler.Book(c)

	require.Equal(t, http.StatusConflict, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "the selected time slot is no longer available", body["error"])
}

func TestAppointmentHandlerBookUnknownService(t *testing.T) {
	mock := &bookingServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "service not found")}
	handler := NewAppointmentHandler(mock, nil)
	w, c := postJSON(t, "/appointments", bookingBody(t))

	handler.Book(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAppointmentHandlerListParsesFilter(t *testing.T) {
	mock := &appointmentAdminMock{pagination: &models.Pagination{Page: 1, PageSize: 20, TotalCount: 0}}
	handler := NewAppointmentHandler(nil, mock)
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/admin/appointments?from=2026-03-10T00:00:00Z&to=2026-03-11T00:00:00Z&status=confirmed&page=2&pageSize=10", nil)
	require.NoError(t, err)
	c.Request = req

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.gotFilter.From)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), mock.gotFilter.From.UTC())
	require.NotNil(t, mock.gotFilter.Status)
	assert.Equal(t, models.AppointmentStatusConfirmed, *mock.gotFilter.Status)
	assert.Equal(t, 2, mock.gotFilter.Page)
	assert.Equal(t, 10, mock.gotFilter.PageSize)
}

func TestAppointmentHandlerListBadFrom(t *testing.T) {
	mock := &appointmentAdminMock{}
	handler := NewAppointmentHandler(nil, mock)
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/admin/appointments?from=yesterday", nil)
	require.NoError(t, err)
	c.Request = req

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAppointmentHandlerUpdateStatus(t *testing.T) {
	mock := &appointmentAdminMock{appt: &models.Appointment{ID: "appt-1", Status: models.AppointmentStatusCompleted}}
	handler := NewAppointmentHandler(nil, mock)
	body, err := json.Marshal(dto.UpdateAppointmentStatusRequest{Status: models.AppointmentStatusCompleted})
	require.NoError(t, err)
	w, c := postJSON(t, "/admin/appointments/appt-1/status", body)
	c.Params = gin.Params{{Key: "id", Value: "appt-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.UpdateStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AppointmentStatusCompleted, mock.gotTarget)
}

func TestAppointmentHandlerUpdateStatusConflict(t *testing.T) {
	mock := &appointmentAdminMock{err: appErrors.Clone(appErrors.ErrConflict, "cannot move appointment from cancelled to completed")}
	handler := NewAppointmentHandler(nil, mock)
	body, err := json.Marshal(dto.UpdateAppointmentStatusRequest{Status: models.AppointmentStatusCompleted})
	require.NoError(t, err)
	w, c := postJSON(t, "/admin/appointments/appt-1/status", body)
	c.Params = gin.Params{{Key: "id", Value: "appt-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}
