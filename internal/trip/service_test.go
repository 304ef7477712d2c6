package trip_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-tripbooking/internal/access"
	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/inventory"
	"ms-tripbooking/internal/logger"
	"ms-tripbooking/internal/models"
	"ms-tripbooking/internal/trip"
)

type MockTripDB struct {
	mock.Mock
}

func (m *MockTripDB) CreateTrip(ctx context.Context, t models.Trip) error {
	args := m.Called(t)
	return args.Error(0)
}

func (m *MockTripDB) GetTripByID(ctx context.Context, id string) (*models.Trip, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Trip), args.Error(1)
}

func (m *MockTripDB) UpdateTrip(ctx context.Context, t models.Trip) error {
	args := m.Called(t)
	return args.Error(0)
}

func (m *MockTripDB) SetApproved(ctx context.Context, id string, approved bool) error {
	args := m.Called(id, approved)
	return args.Error(0)
}

func (m *MockTripDB) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(id, active)
	return args.Error(0)
}

func (m *MockTripDB) ListApproved(ctx context.Context) ([]models.Trip, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Trip), args.Error(1)
}

func (m *MockTripDB) ListByVendor(ctx context.Context, vendorID string) ([]models.Trip, error) {
	args := m.Called(vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Trip), args.Error(1)
}

// stubChecker grants a fixed capability set per principal.
type stubChecker struct {
	grants map[string]access.CapabilitySet
}

func (s *stubChecker) Require(ctx context.Context, principalID string, capability access.Capability) error {
	if s.grants[principalID].Has(capability) {
		return nil
	}
	return apperr.ErrForbidden
}

func newChecker(grants map[string][]access.Capability) *stubChecker {
	out := &stubChecker{grants: make(map[string]access.CapabilitySet)}
	for principal, caps := range grants {
		out.grants[principal] = access.NewSet(caps...)
	}
	return out
}

func listedTrip(vendorID string) *models.Trip {
	return &models.Trip{
		TripID:         "trip-1",
		VendorID:       vendorID,
		Title:          "Knuckles Trek",
		Destination:    "Knuckles Range",
		PricePerPerson: 75,
		MaxGroupSize:   6,
		Approved:       true,
		Active:         true,
		CreatedAt:      time.Now(),
	}
}

func validRequest() models.TripRequest {
	return models.TripRequest{
		Title:          "Knuckles Trek",
		Destination:    "Knuckles Range",
		PricePerPerson: 75,
		MaxGroupSize:   6,
	}
}

func TestCreateTripStartsUnapproved(t *testing.T) {
	db := new(MockTripDB)
	checker := newChecker(map[string][]access.Capability{
		"vendor-1": {access.CapabilityUser, access.CapabilityVendor},
	})
	db.On("CreateTrip", mock.AnythingOfType("models.Trip")).Return(nil)

	svc := trip.NewService(db, inventory.NewMemoryStore(), checker, logger.NewLogger())

	created, err := svc.CreateTrip(context.Background(), "vendor-1", validRequest())
	require.NoError(t, err)
	assert.False(t, created.Approved)
	assert.True(t, created.Active)
	assert.Equal(t, "vendor-1", created.VendorID)
}

func TestCreateTripRequiresVendorCapability(t *testing.T) {
	db := new(MockTripDB)
	checker := newChecker(map[string][]access.Capability{
		"user-1": {access.CapabilityUser},
	})

	svc := trip.NewService(db, inventory.NewMemoryStore(), checker, logger.NewLogger())

	_, err := svc.CreateTrip(context.Background(), "user-1", validRequest())
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	db.AssertNotCalled(t, "CreateTrip", mock.Anything)
}

func TestCreateTripValidation(t *testing.T) {
	db := new(MockTripDB)
	checker := newChecker(map[string][]access.Capability{
		"vendor-1": {access.CapabilityUser, access.CapabilityVendor},
	})
	svc := trip.NewService(db, inventory.NewMemoryStore(), checker, logger.NewLogger())
	ctx := context.Background()

	bad := validRequest()
	bad.Title = ""
	_, err := svc.CreateTrip(ctx, "vendor-1", bad)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	bad = validRequest()
	bad.PricePerPerson = 0
	_, err = svc.CreateTrip(ctx, "vendor-1", bad)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	bad = validRequest()
	bad.MaxGroupSize = 0
	_, err = svc.CreateTrip(ctx, "vendor-1", bad)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestUpdateTripOwnershipEnforced(t *testing.T) {
	db := new(MockTripDB)
	checker := newChecker(map[string][]access.Capability{
		"vendor-2": {access.CapabilityUser, access.CapabilityVendor},
	})
	db.On("GetTripByID", "trip-1").Return(listedTrip("vendor-1"), nil)

	svc := trip.NewService(db, inventory.NewMemoryStore(), checker, logger.NewLogger())

	_, err := svc.UpdateTrip(context.Background(), "vendor-2", "trip-1", validRequest())
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	db.AssertNotCalled(t, "UpdateTrip", mock.Anything)
}

func TestGetTripHidesUnapproved(t *testing.T) {
	db := new(MockTripDB)
	checker := newChecker(nil)

	unapproved := listedTrip("vendor-1")
	unapproved.Approved = false
	db.On("GetTripByID", "trip-1").Return(unapproved, nil)

	svc := trip.NewService(db, inventory.NewMemoryStore(), checker, logger.NewLogger())

	_, err := svc.GetTrip(context.Background(), "trip-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestApproveTripAdminOnly(t *testing.T) {
	db := new(MockTripDB)
	checker := newChecker(map[string][]access.Capability{
		"admin-1":  {access.CapabilityUser, access.CapabilityAdmin},
		"vendor-1": {access.CapabilityUser, access.CapabilityVendor},
	})
	db.On("SetApproved", "trip-1", true).Return(nil)

	svc := trip.NewService(db, inventory.NewMemoryStore(), checker, logger.NewLogger())
	ctx := context.Background()

	require.NoError(t, svc.ApproveTrip(ctx, "admin-1", "trip-1"))

	err := svc.ApproveTrip(ctx, "vendor-1", "trip-1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDeactivateTripOwnerOrAdmin(t *testing.T) {
	db := new(MockTripDB)
	checker := newChecker(map[string][]access.Capability{
		"vendor-1": {access.CapabilityUser, access.CapabilityVendor},
		"admin-1":  {access.CapabilityUser, access.CapabilityAdmin},
		"user-1":   {access.CapabilityUser},
	})
	db.On("GetTripByID", "trip-1").Return(listedTrip("vendor-1"), nil)
	db.On("SetActive", "trip-1", false).Return(nil)

	svc := trip.NewService(db, inventory.NewMemoryStore(), checker, logger.NewLogger())
	ctx := context.Background()

	require.NoError(t, svc.DeactivateTrip(ctx, "vendor-1", "trip-1"))
	require.NoError(t, svc.DeactivateTrip(ctx, "admin-1", "trip-1"))
	assert.ErrorIs(t, svc.DeactivateTrip(ctx, "user-1", "trip-1"), apperr.ErrForbidden)
}

func TestCreateScheduleSeedsSeats(t *testing.T) {
	db := new(MockTripDB)
	checker := newChecker(map[string][]access.Capability{
		"vendor-1": {access.CapabilityUser, access.CapabilityVendor},
	})
	db.On("GetTripByID", "trip-1").Return(listedTrip("vendor-1"), nil)

	seats := inventory.NewMemoryStore()
	svc := trip.NewService(db, seats, checker, logger.NewLogger())

	schedule, err := svc.CreateSchedule(context.Background(), "vendor-1", models.ScheduleRequest{
		TripID:     "trip-1",
		StartDate:  "2026-10-01",
		EndDate:    "2026-10-04",
		TotalSeats: 10,
	})
	require.NoError(t, err)

	availability, err := seats.GetAvailability(context.Background(), schedule.ScheduleID)
	require.NoError(t, err)
	assert.Equal(t, 10, availability.AvailableSeats)
	assert.True(t, availability.Active)
}

func TestCreateScheduleRejectsBadDates(t *testing.T) {
	db := new(MockTripDB)
	checker := newChecker(map[string][]access.Capability{
		"vendor-1": {access.CapabilityUser, access.CapabilityVendor},
	})
	db.On("GetTripByID", "trip-1").Return(listedTrip("vendor-1"), nil)

	svc := trip.NewService(db, inventory.NewMemoryStore(), checker, logger.NewLogger())
	ctx := context.Background()

	_, err := svc.CreateSchedule(ctx, "vendor-1", models.ScheduleRequest{
		TripID: "trip-1", StartDate: "2026-10-04", EndDate: "2026-10-01", TotalSeats: 10,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.CreateSchedule(ctx, "vendor-1", models.ScheduleRequest{
		TripID: "trip-1", StartDate: "not-a-date", EndDate: "2026-10-01", TotalSeats: 10,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.CreateSchedule(ctx, "vendor-1", models.ScheduleRequest{
		TripID: "trip-1", StartDate: "2026-10-01", EndDate: "2026-10-04", TotalSeats: 0,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
