package booking

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// WebhookError carries a safe public message alongside the detailed one.
type WebhookError struct {
	Category      string // "configuration", "validation", "processing"
	StatusCode    int
	PublicError   string
	InternalError string
	OriginalErr   error
}

func (e *WebhookError) Error() string {
	return e.InternalError
}

// HandleStripeWebhook verifies and processes a Stripe webhook event. Payment
// outcomes are resolved back to bookings through the payment intent ID, with
// the booking_id metadata as a cross-check only.
func (s *Service) HandleStripeWebhook(r *http.Request) error {
	if s.WebhookSecret == "" {
		s.logger.Error("WEBHOOK", "Stripe webhook secret is not configured")
		return &WebhookError{
			Category:      "configuration",
			StatusCode:    http.StatusInternalServerError,
			PublicError:   "Webhook processing error",
			InternalError: "Stripe webhook secret is not configured",
		}
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error("WEBHOOK", fmt.Sprintf("Failed to read webhook payload: %v", err))
		return &WebhookError{
			Category:      "validation",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid webhook payload",
			InternalError: fmt.Sprintf("Failed to read webhook payload: %v", err),
			OriginalErr:   err,
		}
	}

	opts := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), s.WebhookSecret, opts)
	if err != nil {
		s.logger.Error("WEBHOOK", fmt.Sprintf("Webhook signature verification failed: %v", err))
		return &WebhookError{
			Category:      "validation",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Webhook signature verification failed",
			InternalError: fmt.Sprintf("Webhook signature verification failed: %v", err),
			OriginalErr:   err,
		}
	}

	s.logger.Info("WEBHOOK", fmt.Sprintf("Processing Stripe webhook event: %s", event.Type))

	switch event.Type {
	case "payment_intent.succeeded":
		intent, werr := unmarshalIntent(event.Data.Raw)
		if werr != nil {
			s.logger.Error("WEBHOOK", werr.InternalError)
			return werr
		}
		if err := s.HandlePaymentSucceeded(r.Context(), intent.ID); err != nil {
			s.logger.Error("WEBHOOK", fmt.Sprintf("Failed to settle payment intent %s: %v", intent.ID, err))
			return &WebhookError{
				Category:      "processing",
				StatusCode:    http.StatusInternalServerError,
				PublicError:   "Failed to process payment",
				InternalError: fmt.Sprintf("Failed to settle payment intent %s: %v", intent.ID, err),
				OriginalErr:   err,
			}
		}
		s.logger.Info("WEBHOOK", fmt.Sprintf("Payment intent %s settled (booking %s)", intent.ID, intent.Metadata["booking_id"]))

	case "payment_intent.payment_failed":
		intent, werr := unmarshalIntent(event.Data.Raw)
		if werr != nil {
			s.logger.Error("WEBHOOK", werr.InternalError)
			return werr
		}
		if err := s.HandlePaymentFailed(r.Context(), intent.ID); err != nil {
			s.logger.Error("WEBHOOK", fmt.Sprintf("Failed to fail payment intent %s: %v", intent.ID, err))
			return &WebhookError{
				Category:      "processing",
				StatusCode:    http.StatusInternalServerError,
				PublicError:   "Failed to cancel booking after payment failure",
				InternalError: fmt.Sprintf("Failed to fail payment intent %s: %v", intent.ID, err),
				OriginalErr:   err,
			}
		}
		s.logger.Info("WEBHOOK", fmt.Sprintf("Payment intent %s failed, booking cancelled", intent.ID))

	default:
		s.logger.Info("WEBHOOK", fmt.Sprintf("Ignoring event type: %s", event.Type))
	}

	return nil
}

func unmarshalIntent(raw json.RawMessage) (*stripe.PaymentIntent, *WebhookError) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(raw, &intent); err != nil {
		return nil, &WebhookError{
			Category:      "processing",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid event data",
			InternalError: fmt.Sprintf("Failed to unmarshal payment intent: %v", err),
			OriginalErr:   err,
		}
	}
	return &intent, nil
}
