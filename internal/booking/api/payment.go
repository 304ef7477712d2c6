package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/booking"
)

// CreatePaymentIntent creates or retrieves the Stripe payment intent for an
// online booking.
func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")
	h.Logger.Info("API", fmt.Sprintf("CreatePaymentIntent: bookingId=%s", bookingID))

	found, err := h.BookingService.GetBooking(r.Context(), bookingID)
	if err != nil {
		http.Error(w, "Booking not found", apperr.HTTPStatus(err))
		return
	}
	if err := h.requireOwnerOrAdmin(r, found.UserID); err != nil {
		http.Error(w, "Forbidden", apperr.HTTPStatus(err))
		return
	}

	intent, err := h.BookingService.CreatePaymentIntent(r.Context(), bookingID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreatePaymentIntent: %v", err))
		http.Error(w, "Failed to create payment intent: "+err.Error(), apperr.HTTPStatus(err))
		return
	}

	response := struct {
		ClientSecret    string `json:"clientSecret"`
		PaymentIntentID string `json:"paymentIntentId"`
	}{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// StripeWebhook handles payment events from Stripe.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("API", "StripeWebhook: received webhook event")

	if err := h.BookingService.HandleStripeWebhook(r); err != nil {
		h.Logger.Error("API", fmt.Sprintf("StripeWebhook: %v", err))

		var webhookErr *booking.WebhookError
		if errors.As(err, &webhookErr) {
			http.Error(w, webhookErr.PublicError, webhookErr.StatusCode)
			return
		}
		http.Error(w, "Webhook processing error", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
}
