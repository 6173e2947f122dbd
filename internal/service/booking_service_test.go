package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermaplan/booking-api/internal/dto"
	"github.com/dermaplan/booking-api/internal/models"
	"github.com/dermaplan/booking-api/internal/repository"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
)

type staffRepoStub struct {
	staff map[string]models.Staff
	err   error
}

func (s *staffRepoStub) GetByID(ctx context.Context, id string) (*models.Staff, error) {
	if s.err != nil {
		return nil, s.err
	}
	if st, ok := s.staff[id]; ok {
		return &st, nil
	}
	return nil, sql.ErrNoRows
}

type bookingStoreStub struct {
	err      error
	customer *models.Customer
	appt     *models.Appointment
}

func (s *bookingStoreStub) Book(ctx context.Context, customer *models.Customer, appt *models.Appointment) error {
	if s.err != nil {
		return s.err
	}
	s.customer = customer
	s.appt = appt
	appt.ID = "appt-1"
	return nil
}

func validBookingRequest() dto.BookAppointmentRequest {
	return dto.BookAppointmentRequest{
		ServiceID: "svc-1",
		StartAt:   time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		Customer: dto.CustomerInput{
			FullName: "Ayse Yilmaz",
			Email:    "ayse@example.com",
			Phone:    "+90 555 000 0000",
		},
	}
}

func newBookingServiceForTest(store *bookingStoreStub) (*BookingService, *serviceRepoStub) {
	services := &serviceRepoStub{services: map[string]models.Service{
		"svc-1": {ID: "svc-1", Name: "Skin Consultation", DurationMin: 60, Active: true},
	}}
	return NewBookingService(services, &staffRepoStub{staff: map[string]models.Staff{
		"staff-1": {ID: "staff-1", FullName: "Dr. Demir"},
	}}, store, nil, nil, nil), services
}

func TestBookingBookDerivesWindowFromServiceDuration(t *testing.T) {
	store := &bookingStoreStub{}
	svc, _ := newBookingServiceForTest(store)

	appt, err := svc.Book(context.Background(), validBookingRequest())
	require.NoError(t, err)
	require.NotNil(t, appt)
	assert.Equal(t, "appt-1", appt.ID)
	assert.Equal(t, models.AppointmentStatusConfirmed, appt.Status)
	assert.Equal(t, 60*time.Minute, appt.EndAt.Sub(appt.StartAt))
	require.NotNil(t, store.customer)
	assert.Equal(t, "ayse@example.com", store.customer.Email)
}

func TestBookingBookMapsOverlapToSlotUnavailable(t *testing.T) {
	store := &bookingStoreStub{err: repository.ErrAppointmentOverlap}
	svc, _ := newBookingServiceForTest(store)

	_, err := svc.Book(context.Background(), validBookingRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSlotUnavailable.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
}

func TestBookingBookRejectsMissingCustomerFields(t *testing.T) {
	svc, _ := newBookingServiceForTest(&bookingStoreStub{})
	req := validBookingRequest()
	req.Customer.Email = "not-an-email"

	_, err := svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingBookRejectsZeroStart(t *testing.T) {
	svc, _ := newBookingServiceForTest(&bookingStoreStub{})
	req := validBookingRequest()
	req.StartAt = time.Time{}

	_, err := svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingBookUnknownService(t *testing.T) {
	svc, _ := newBookingServiceForTest(&bookingStoreStub{})
	req := validBookingRequest()
	req.ServiceID = "missing"

	_, err := svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingBookInactiveServiceHiddenAsNotFound(t *testing.T) {
	store := &bookingStoreStub{}
	services := &serviceRepoStub{services: map[string]models.Service{
		"svc-1": {ID: "svc-1", DurationMin: 60, Active: false},
	}}
	svc := NewBookingService(services, &staffRepoStub{}, store, nil, nil, nil)

	_, err := svc.Book(context.Background(), validBookingRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingBookUnknownStaff(t *testing.T) {
	svc, _ := newBookingServiceForTest(&bookingStoreStub{})
	req := validBookingRequest()
	staffID := "nope"
	req.StaffID = &staffID

	_, err := svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingBookNormalizesStartToUTC(t *testing.T) {
	store := &bookingStoreStub{}
	svc, _ := newBookingServiceForTest(store)
	loc, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)
	req := validBookingRequest()
	req.StartAt = time.Date(2026, 3, 10, 13, 0, 0, 0, loc)

	appt, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, appt.StartAt.Location())
	assert.True(t, appt.StartAt.Equal(req.StartAt))
}

func TestBookingBookWrapsStorageFailure(t *testing.T) {
	store := &bookingStoreStub{err: errors.New("db down")}
	svc, _ := newBookingServiceForTest(store)

	_, err := svc.Book(context.Background(), validBookingRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
