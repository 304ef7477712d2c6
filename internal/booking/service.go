package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/logger"
	"ms-tripbooking/internal/metrics"
	"ms-tripbooking/internal/models"
)

type DBLayer interface {
	CreateBooking(ctx context.Context, booking models.Booking) error
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
	GetBookingByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error
	SetPaymentIntentID(ctx context.Context, id string, paymentIntentID string) error
	GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error)
	GetBookingsBySchedule(ctx context.Context, scheduleID string) ([]models.Booking, error)
}

type SeatStore interface {
	GetAvailability(ctx context.Context, scheduleID string) (*models.Schedule, error)
	Reserve(ctx context.Context, scheduleID string, count int) error
	Release(ctx context.Context, scheduleID string, count int) error
}

type TripStore interface {
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)
}

type EventPublisher interface {
	PublishBookingCreated(booking models.Booking) error
	PublishBookingCancelled(booking models.Booking) error
	PublishPaymentEvent(booking models.Booking) error
}

type VoucherGenerator interface {
	GenerateEncryptedQR(booking models.Booking) ([]byte, error)
}

// Service is the reservation coordinator: it turns a booking request into a
// consistent booking + seat-counter change, or fails with no partial effect.
// Seats only ever move through the seat store; the compensation paths here
// are what keep a failed booking from leaking a decrement.
type Service struct {
	DB      DBLayer
	Seats   SeatStore
	Trips   TripStore
	Events  EventPublisher
	Voucher VoucherGenerator
	// WebhookSecret validates Stripe webhook signatures.
	WebhookSecret string
	logger        *logger.Logger
}

func NewService(db DBLayer, seats SeatStore, trips TripStore, events EventPublisher, voucher VoucherGenerator, log *logger.Logger) *Service {
	return &Service{
		DB:      db,
		Seats:   seats,
		Trips:   trips,
		Events:  events,
		Voucher: voucher,
		logger:  log,
	}
}

// CreateBooking reserves seats and writes the ledger entry. A reservation
// that succeeds confirms the booking regardless of payment timing; payment
// completion is tracked separately on payment_status.
func (s *Service) CreateBooking(ctx context.Context, userID string, req models.BookingRequest) (*models.Booking, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", apperr.ErrInvalidInput)
	}
	if req.PartySize < 1 {
		return nil, fmt.Errorf("party size must be >= 1: %w", apperr.ErrInvalidInput)
	}
	method := models.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		return nil, fmt.Errorf("unknown payment method %q: %w", req.PaymentMethod, apperr.ErrInvalidInput)
	}

	trip, err := s.Trips.GetTrip(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	if req.PartySize > trip.MaxGroupSize {
		return nil, fmt.Errorf("party size %d exceeds trip maximum %d: %w", req.PartySize, trip.MaxGroupSize, apperr.ErrInvalidInput)
	}

	schedule, err := s.Seats.GetAvailability(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.TripID != req.TripID {
		return nil, fmt.Errorf("schedule %s does not belong to trip %s: %w", req.ScheduleID, req.TripID, apperr.ErrInvalidInput)
	}

	// Step 1: reserve seats. The conditional decrement in the seat store is
	// the only thing standing between concurrent bookings and an oversell.
	if err := s.retryOnce("reserve", func() error {
		return s.Seats.Reserve(ctx, req.ScheduleID, req.PartySize)
	}); err != nil {
		if errors.Is(err, apperr.ErrInsufficientSeats) {
			metrics.ReservationsTotal.WithLabelValues("rejected").Inc()
			s.logger.LogBooking("REJECT", req.ScheduleID, fmt.Sprintf("no capacity for party of %d", req.PartySize))
			return nil, err
		}
		if !apperr.Retryable(err) {
			return nil, err
		}
		metrics.ReservationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", apperr.ErrBookingFailed, err)
	}
	metrics.ReservationsTotal.WithLabelValues("reserved").Inc()

	booking := models.Booking{
		BookingID:     uuid.NewString(),
		UserID:        userID,
		TripID:        req.TripID,
		ScheduleID:    req.ScheduleID,
		PartySize:     req.PartySize,
		TotalAmount:   trip.PricePerPerson * float64(req.PartySize),
		PaymentMethod: method,
		PaymentStatus: models.PaymentPending,
		BookingStatus: models.BookingConfirmed,
		CreatedAt:     time.Now(),
	}

	// Step 2: write the ledger entry. If this fails the reservation must be
	// handed back before the failure is surfaced.
	if err := s.retryOnce("create booking", func() error {
		return s.DB.CreateBooking(ctx, booking)
	}); err != nil {
		s.logger.Error("BOOKING", fmt.Sprintf("ledger write failed for %s, releasing %d seats on %s: %v",
			booking.BookingID, booking.PartySize, booking.ScheduleID, err))
		s.compensateRelease(ctx, booking.ScheduleID, booking.PartySize)
		metrics.BookingsTotal.WithLabelValues("create", "error").Inc()
		return nil, fmt.Errorf("%w: %v", apperr.ErrBookingFailed, err)
	}

	metrics.BookingsTotal.WithLabelValues("create", "ok").Inc()
	s.logger.LogBooking("CREATE", booking.BookingID,
		fmt.Sprintf("user=%s schedule=%s party=%d method=%s", userID, req.ScheduleID, req.PartySize, method))

	if s.Events != nil {
		if err := s.Events.PublishBookingCreated(booking); err != nil {
			s.logger.LogKafka("ERROR", "booking-created", err.Error())
		}
	}

	return &booking, nil
}

// CancelBooking releases the booking's seats. Cancelling an already-cancelled
// booking is a no-op, so retries never double-release.
func (s *Service) CancelBooking(ctx context.Context, bookingID string) error {
	booking, err := s.DB.GetBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if booking.BookingStatus == models.BookingCancelled {
		s.logger.LogBooking("CANCEL", bookingID, "already cancelled, nothing to do")
		return nil
	}
	if !booking.BookingStatus.CanTransition(models.BookingCancelled) {
		return fmt.Errorf("cannot cancel booking in status %s: %w", booking.BookingStatus, apperr.ErrInvalidTransition)
	}

	if err := s.retryOnce("cancel status write", func() error {
		return s.DB.UpdateBookingStatus(ctx, bookingID, models.BookingCancelled)
	}); err != nil {
		metrics.BookingsTotal.WithLabelValues("cancel", "error").Inc()
		return fmt.Errorf("%w: %v", apperr.ErrOperationFailed, err)
	}

	if err := s.retryOnce("seat release", func() error {
		return s.Seats.Release(ctx, booking.ScheduleID, booking.PartySize)
	}); err != nil {
		// The booking is cancelled but the seats are still held. Surface the
		// failure so an operator reconciles the counter.
		s.logger.Error("BOOKING", fmt.Sprintf("seat release failed for cancelled booking %s (schedule %s, %d seats): %v",
			bookingID, booking.ScheduleID, booking.PartySize, err))
		metrics.BookingsTotal.WithLabelValues("cancel", "error").Inc()
		return fmt.Errorf("%w: %v", apperr.ErrOperationFailed, err)
	}

	metrics.BookingsTotal.WithLabelValues("cancel", "ok").Inc()
	s.logger.LogBooking("CANCEL", bookingID, fmt.Sprintf("released %d seats on %s", booking.PartySize, booking.ScheduleID))

	booking.BookingStatus = models.BookingCancelled
	if s.Events != nil {
		if err := s.Events.PublishBookingCancelled(*booking); err != nil {
			s.logger.LogKafka("ERROR", "booking-cancelled", err.Error())
		}
	}
	return nil
}

// ConfirmPayment records a successful payment for a booking.
func (s *Service) ConfirmPayment(ctx context.Context, bookingID string) error {
	return s.transitionPayment(ctx, bookingID, models.PaymentConfirmed)
}

// FailPayment records a failed online payment and cancels the booking so its
// seats go back on sale.
func (s *Service) FailPayment(ctx context.Context, bookingID string) error {
	if err := s.transitionPayment(ctx, bookingID, models.PaymentFailed); err != nil {
		return err
	}
	return s.CancelBooking(ctx, bookingID)
}

func (s *Service) transitionPayment(ctx context.Context, bookingID string, to models.PaymentStatus) error {
	booking, err := s.DB.GetBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.PaymentStatus == to {
		return nil
	}
	if !booking.PaymentStatus.CanTransition(to) {
		return fmt.Errorf("payment %s -> %s on booking %s: %w", booking.PaymentStatus, to, bookingID, apperr.ErrInvalidTransition)
	}
	if err := s.retryOnce("payment status write", func() error {
		return s.DB.UpdatePaymentStatus(ctx, bookingID, to)
	}); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrOperationFailed, err)
	}
	s.logger.LogBooking("PAYMENT", bookingID, fmt.Sprintf("payment status -> %s", to))

	booking.PaymentStatus = to
	if s.Events != nil {
		if err := s.Events.PublishPaymentEvent(*booking); err != nil {
			s.logger.LogKafka("ERROR", "payment-events", err.Error())
		}
	}
	return nil
}

// SetBookingStatus is the administrative transition path; it enforces the
// same lifecycle table as every other caller.
func (s *Service) SetBookingStatus(ctx context.Context, bookingID string, to models.BookingStatus) error {
	if !to.Valid() {
		return fmt.Errorf("unknown booking status %q: %w", to, apperr.ErrInvalidInput)
	}
	if to == models.BookingCancelled {
		return s.CancelBooking(ctx, bookingID)
	}

	booking, err := s.DB.GetBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.BookingStatus == to {
		return nil
	}
	if !booking.BookingStatus.CanTransition(to) {
		return fmt.Errorf("booking %s -> %s on %s: %w", booking.BookingStatus, to, bookingID, apperr.ErrInvalidTransition)
	}
	if err := s.DB.UpdateBookingStatus(ctx, bookingID, to); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrOperationFailed, err)
	}
	s.logger.LogBooking("STATUS", bookingID, fmt.Sprintf("booking status -> %s", to))
	return nil
}

func (s *Service) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.DB.GetBookingByID(ctx, bookingID)
}

func (s *Service) GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.DB.GetBookingsByUser(ctx, userID)
}

// GetVoucher issues the QR voucher for a confirmed booking.
func (s *Service) GetVoucher(ctx context.Context, bookingID string) ([]byte, error) {
	booking, err := s.DB.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BookingStatus != models.BookingConfirmed {
		return nil, fmt.Errorf("no voucher for booking in status %s: %w", booking.BookingStatus, apperr.ErrInvalidTransition)
	}
	return s.Voucher.GenerateEncryptedQR(*booking)
}

// retryOnce runs op, retrying a single time on transient faults. Business
// rejections pass through untouched.
func (s *Service) retryOnce(what string, op func() error) error {
	err := op()
	if !apperr.Retryable(err) {
		return err
	}
	s.logger.Warn("BOOKING", fmt.Sprintf("%s failed, retrying once: %v", what, err))
	return op()
}

func (s *Service) compensateRelease(ctx context.Context, scheduleID string, count int) {
	if err := s.retryOnce("compensating release", func() error {
		return s.Seats.Release(ctx, scheduleID, count)
	}); err != nil {
		// Both attempts failed; the counter is off until reconciled.
		s.logger.Error("BOOKING", fmt.Sprintf("compensating release of %d seats on %s failed: %v", count, scheduleID, err))
	}
}
