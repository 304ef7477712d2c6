package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-tripbooking/internal/access"
	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/auth"
	"ms-tripbooking/internal/booking"
	"ms-tripbooking/internal/logger"
	"ms-tripbooking/internal/models"
)

type Handler struct {
	BookingService *booking.Service
	Access         *access.Checker
	Logger         *logger.Logger
}

func NewHandler(bookingService *booking.Service, checker *access.Checker) *Handler {
	return &Handler{
		BookingService: bookingService,
		Access:         checker,
		Logger:         logger.NewLogger(),
	}
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateBooking: user=%s schedule=%s party=%d", principalID, req.ScheduleID, req.PartySize))

	created, err := h.BookingService.CreateBooking(r.Context(), principalID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateBooking: %v", err))
		http.Error(w, "Could not create booking: "+err.Error(), apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")
	h.Logger.Info("API", fmt.Sprintf("GetBooking: bookingId=%s", bookingID))

	found, err := h.BookingService.GetBooking(r.Context(), bookingID)
	if err != nil {
		http.Error(w, "Booking not found", apperr.HTTPStatus(err))
		return
	}

	if err := h.requireOwnerOrAdmin(r, found.UserID); err != nil {
		http.Error(w, "Forbidden", apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(found)
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")
	h.Logger.Info("API", fmt.Sprintf("CancelBooking: bookingId=%s", bookingID))

	found, err := h.BookingService.GetBooking(r.Context(), bookingID)
	if err != nil {
		http.Error(w, "Booking not found", apperr.HTTPStatus(err))
		return
	}
	if err := h.requireOwnerOrAdmin(r, found.UserID); err != nil {
		http.Error(w, "Forbidden", apperr.HTTPStatus(err))
		return
	}

	if err := h.BookingService.CancelBooking(r.Context(), bookingID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CancelBooking: %v", err))
		http.Error(w, "Could not cancel booking: "+err.Error(), apperr.HTTPStatus(err))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"cancelled"}`))
}

// GetMyBookings returns the caller's own bookings, newest first.
func (h *Handler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bookings, err := h.BookingService.GetBookingsByUser(r.Context(), principalID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetMyBookings: %v", err))
		http.Error(w, "Could not fetch bookings", apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bookings)
}

// GetVoucher returns the booking voucher as a PNG QR image.
func (h *Handler) GetVoucher(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	found, err := h.BookingService.GetBooking(r.Context(), bookingID)
	if err != nil {
		http.Error(w, "Booking not found", apperr.HTTPStatus(err))
		return
	}
	if err := h.requireOwnerOrAdmin(r, found.UserID); err != nil {
		http.Error(w, "Forbidden", apperr.HTTPStatus(err))
		return
	}

	png, err := h.BookingService.GetVoucher(r.Context(), bookingID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetVoucher: %v", err))
		http.Error(w, "Could not generate voucher: "+err.Error(), apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// SetBookingStatus is the admin transition endpoint.
func (h *Handler) SetBookingStatus(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.BookingService.SetBookingStatus(r.Context(), bookingID, models.BookingStatus(req.Status)); err != nil {
		h.Logger.Error("API", fmt.Sprintf("SetBookingStatus: %v", err))
		http.Error(w, "Could not update booking status: "+err.Error(), apperr.HTTPStatus(err))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"updated"}`))
}

func (h *Handler) requireOwnerOrAdmin(r *http.Request, ownerID string) error {
	principalID, ok := auth.PrincipalID(r.Context())
	if !ok {
		return apperr.ErrForbidden
	}
	if principalID == ownerID {
		return nil
	}
	return h.Access.Require(r.Context(), principalID, access.CapabilityAdmin)
}
