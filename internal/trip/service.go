package trip

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-tripbooking/internal/access"
	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/logger"
	"ms-tripbooking/internal/models"
)

type DBLayer interface {
	CreateTrip(ctx context.Context, trip models.Trip) error
	GetTripByID(ctx context.Context, id string) (*models.Trip, error)
	UpdateTrip(ctx context.Context, trip models.Trip) error
	SetApproved(ctx context.Context, id string, approved bool) error
	SetActive(ctx context.Context, id string, active bool) error
	ListApproved(ctx context.Context) ([]models.Trip, error)
	ListByVendor(ctx context.Context, vendorID string) ([]models.Trip, error)
}

type ScheduleStore interface {
	CreateSchedule(ctx context.Context, schedule *models.Schedule) error
	DeactivateSchedule(ctx context.Context, scheduleID string) error
	ListSchedulesByTrip(ctx context.Context, tripID string) ([]models.Schedule, error)
}

type AccessChecker interface {
	Require(ctx context.Context, principalID string, capability access.Capability) error
}

// Service owns trip listings and their schedules. Capability checks happen
// here, before any write, so a handler can never skip them.
type Service struct {
	DB        DBLayer
	Schedules ScheduleStore
	Access    AccessChecker
	logger    *logger.Logger
}

func NewService(db DBLayer, schedules ScheduleStore, checker AccessChecker, log *logger.Logger) *Service {
	return &Service{DB: db, Schedules: schedules, Access: checker, logger: log}
}

// GetTrip returns a trip visible to travelers: approved and active. This is
// also what the reservation coordinator books against.
func (s *Service) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip, err := s.DB.GetTripByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !trip.Approved || !trip.Active {
		return nil, fmt.Errorf("trip %s is not listed: %w", tripID, apperr.ErrNotFound)
	}
	return trip, nil
}

func (s *Service) ListTrips(ctx context.Context) ([]models.Trip, error) {
	return s.DB.ListApproved(ctx)
}

func (s *Service) ListVendorTrips(ctx context.Context, vendorID string) ([]models.Trip, error) {
	if err := s.Access.Require(ctx, vendorID, access.CapabilityVendor); err != nil {
		return nil, err
	}
	return s.DB.ListByVendor(ctx, vendorID)
}

// CreateTrip lists a new trip for a vendor. New trips start unapproved and
// stay off the public catalog until an admin signs off.
func (s *Service) CreateTrip(ctx context.Context, vendorID string, req models.TripRequest) (*models.Trip, error) {
	if err := s.Access.Require(ctx, vendorID, access.CapabilityVendor); err != nil {
		return nil, err
	}
	if err := validateTripRequest(req); err != nil {
		return nil, err
	}

	trip := models.Trip{
		TripID:         uuid.NewString(),
		VendorID:       vendorID,
		Title:          req.Title,
		Destination:    req.Destination,
		Description:    req.Description,
		PricePerPerson: req.PricePerPerson,
		MaxGroupSize:   req.MaxGroupSize,
		ImageRef:       req.ImageRef,
		Approved:       false,
		Active:         true,
		CreatedAt:      time.Now(),
	}
	if err := s.DB.CreateTrip(ctx, trip); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrOperationFailed, err)
	}
	s.logger.Info("TRIP", fmt.Sprintf("vendor %s listed trip %s (%s)", vendorID, trip.TripID, trip.Title))
	return &trip, nil
}

// UpdateTrip lets a vendor edit their own listing.
func (s *Service) UpdateTrip(ctx context.Context, vendorID, tripID string, req models.TripRequest) (*models.Trip, error) {
	if err := s.Access.Require(ctx, vendorID, access.CapabilityVendor); err != nil {
		return nil, err
	}
	if err := validateTripRequest(req); err != nil {
		return nil, err
	}

	trip, err := s.DB.GetTripByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.VendorID != vendorID {
		return nil, fmt.Errorf("trip %s belongs to another vendor: %w", tripID, apperr.ErrForbidden)
	}

	trip.Title = req.Title
	trip.Destination = req.Destination
	trip.Description = req.Description
	trip.PricePerPerson = req.PricePerPerson
	trip.MaxGroupSize = req.MaxGroupSize
	trip.ImageRef = req.ImageRef

	if err := s.DB.UpdateTrip(ctx, *trip); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrOperationFailed, err)
	}
	return trip, nil
}

// ApproveTrip puts a listing on the public catalog. Admin only.
func (s *Service) ApproveTrip(ctx context.Context, adminID, tripID string) error {
	if err := s.Access.Require(ctx, adminID, access.CapabilityAdmin); err != nil {
		return err
	}
	if err := s.DB.SetApproved(ctx, tripID, true); err != nil {
		return err
	}
	s.logger.Info("TRIP", fmt.Sprintf("admin %s approved trip %s", adminID, tripID))
	return nil
}

// DeactivateTrip pulls a listing. The vendor who owns it or an admin may do
// this; existing bookings are untouched.
func (s *Service) DeactivateTrip(ctx context.Context, principalID, tripID string) error {
	trip, err := s.DB.GetTripByID(ctx, tripID)
	if err != nil {
		return err
	}

	if trip.VendorID != principalID {
		if err := s.Access.Require(ctx, principalID, access.CapabilityAdmin); err != nil {
			return err
		}
	} else if err := s.Access.Require(ctx, principalID, access.CapabilityVendor); err != nil {
		return err
	}

	return s.DB.SetActive(ctx, tripID, false)
}

// CreateSchedule defines a bookable date range on a trip. Seats seed at full
// capacity in the inventory store.
func (s *Service) CreateSchedule(ctx context.Context, principalID string, req models.ScheduleRequest) (*models.Schedule, error) {
	trip, err := s.DB.GetTripByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	if trip.VendorID != principalID {
		if err := s.Access.Require(ctx, principalID, access.CapabilityAdmin); err != nil {
			return nil, err
		}
	} else if err := s.Access.Require(ctx, principalID, access.CapabilityVendor); err != nil {
		return nil, err
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("bad start date %q: %w", req.StartDate, apperr.ErrInvalidInput)
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("bad end date %q: %w", req.EndDate, apperr.ErrInvalidInput)
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("end date before start date: %w", apperr.ErrInvalidInput)
	}
	if req.TotalSeats < 1 {
		return nil, fmt.Errorf("total seats must be >= 1: %w", apperr.ErrInvalidInput)
	}

	schedule := &models.Schedule{
		ScheduleID: uuid.NewString(),
		TripID:     req.TripID,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalSeats: req.TotalSeats,
		CreatedAt:  time.Now(),
	}
	if err := s.Schedules.CreateSchedule(ctx, schedule); err != nil {
		return nil, err
	}
	s.logger.Info("TRIP", fmt.Sprintf("schedule %s created on trip %s (%d seats)", schedule.ScheduleID, req.TripID, req.TotalSeats))
	return schedule, nil
}

// DeactivateSchedule retires a schedule so no new bookings land on it.
func (s *Service) DeactivateSchedule(ctx context.Context, principalID, tripID, scheduleID string) error {
	trip, err := s.DB.GetTripByID(ctx, tripID)
	if err != nil {
		return err
	}

	if trip.VendorID != principalID {
		if err := s.Access.Require(ctx, principalID, access.CapabilityAdmin); err != nil {
			return err
		}
	} else if err := s.Access.Require(ctx, principalID, access.CapabilityVendor); err != nil {
		return err
	}

	return s.Schedules.DeactivateSchedule(ctx, scheduleID)
}

func (s *Service) ListSchedules(ctx context.Context, tripID string) ([]models.Schedule, error) {
	return s.Schedules.ListSchedulesByTrip(ctx, tripID)
}

func validateTripRequest(req models.TripRequest) error {
	if req.Title == "" {
		return fmt.Errorf("title is required: %w", apperr.ErrInvalidInput)
	}
	if req.Destination == "" {
		return fmt.Errorf("destination is required: %w", apperr.ErrInvalidInput)
	}
	if req.PricePerPerson <= 0 {
		return fmt.Errorf("price per person must be positive: %w", apperr.ErrInvalidInput)
	}
	if req.MaxGroupSize < 1 {
		return fmt.Errorf("max group size must be >= 1: %w", apperr.ErrInvalidInput)
	}
	return nil
}
