package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/models"
)

// InitStripe initializes the Stripe API with the secret key
func InitStripe(secretKey string) {
	stripe.Key = secretKey
}

// CreatePaymentIntent creates a Stripe payment intent for an online booking.
// Re-requesting the intent for the same booking returns the existing one.
func (s *Service) CreatePaymentIntent(ctx context.Context, bookingID string) (*stripe.PaymentIntent, error) {
	booking, err := s.DB.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.PaymentMethod != models.PaymentMethodOnline {
		return nil, fmt.Errorf("booking %s is not an online payment: %w", bookingID, apperr.ErrInvalidInput)
	}
	if booking.PaymentStatus != models.PaymentPending {
		return nil, fmt.Errorf("payment for booking %s already settled as %s: %w", bookingID, booking.PaymentStatus, apperr.ErrInvalidTransition)
	}

	if booking.PaymentIntentID != "" {
		s.logger.Info("PAYMENT", fmt.Sprintf("Booking %s already has payment intent %s, retrieving it", bookingID, booking.PaymentIntentID))
		intent, err := paymentintent.Get(booking.PaymentIntentID, nil)
		if err == nil {
			return intent, nil
		}
		s.logger.Warn("PAYMENT", fmt.Sprintf("Failed to retrieve payment intent %s, creating a new one: %v", booking.PaymentIntentID, err))
	}

	params := &stripe.PaymentIntentParams{
		// Stripe amounts are in the smallest currency unit
		Amount:   stripe.Int64(int64(booking.TotalAmount * 100)),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
	}
	params.AddMetadata("booking_id", booking.BookingID)
	params.AddMetadata("schedule_id", booking.ScheduleID)

	intent, err := paymentintent.New(params)
	if err != nil {
		s.logger.Error("PAYMENT", fmt.Sprintf("Failed to create payment intent for booking %s: %v", bookingID, err))
		return nil, fmt.Errorf("%w: %v", apperr.ErrOperationFailed, err)
	}

	if err := s.DB.SetPaymentIntentID(ctx, bookingID, intent.ID); err != nil {
		s.logger.Error("PAYMENT", fmt.Sprintf("Failed to record payment intent %s on booking %s: %v", intent.ID, bookingID, err))
		return nil, fmt.Errorf("%w: %v", apperr.ErrOperationFailed, err)
	}

	s.logger.Info("PAYMENT", fmt.Sprintf("Created payment intent %s for booking %s", intent.ID, bookingID))
	return intent, nil
}

// HandlePaymentSucceeded settles the payment for the booking tied to a
// payment intent. Called from the Stripe webhook.
func (s *Service) HandlePaymentSucceeded(ctx context.Context, paymentIntentID string) error {
	booking, err := s.DB.GetBookingByPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.logger.Warn("PAYMENT", fmt.Sprintf("No booking for payment intent %s", paymentIntentID))
		}
		return err
	}
	return s.ConfirmPayment(ctx, booking.BookingID)
}

// HandlePaymentFailed marks the payment failed and cancels the booking so its
// seats return to the schedule.
func (s *Service) HandlePaymentFailed(ctx context.Context, paymentIntentID string) error {
	booking, err := s.DB.GetBookingByPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return err
	}
	return s.FailPayment(ctx, booking.BookingID)
}
