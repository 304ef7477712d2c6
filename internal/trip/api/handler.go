package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/auth"
	"ms-tripbooking/internal/inventory"
	"ms-tripbooking/internal/logger"
	"ms-tripbooking/internal/models"
	"ms-tripbooking/internal/trip"
)

type Handler struct {
	TripService *trip.Service
	Seats       *inventory.Store
	Logger      *logger.Logger
}

func NewHandler(tripService *trip.Service, seats *inventory.Store) *Handler {
	return &Handler{
		TripService: tripService,
		Seats:       seats,
		Logger:      logger.NewLogger(),
	}
}

// ListTrips returns the public catalog: approved, active trips.
func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.TripService.ListTrips(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListTrips: %v", err))
		http.Error(w, "Could not list trips", apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trips)
}

func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")

	found, err := h.TripService.GetTrip(r.Context(), tripID)
	if err != nil {
		http.Error(w, "Trip not found", apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(found)
}

func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.TripService.CreateTrip(r.Context(), principalID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateTrip: %v", err))
		http.Error(w, "Could not create trip: "+err.Error(), apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *Handler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	tripID := chi.URLParam(r, "tripId")

	var req models.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.TripService.UpdateTrip(r.Context(), principalID, tripID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateTrip: %v", err))
		http.Error(w, "Could not update trip: "+err.Error(), apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *Handler) ApproveTrip(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	tripID := chi.URLParam(r, "tripId")

	if err := h.TripService.ApproveTrip(r.Context(), principalID, tripID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ApproveTrip: %v", err))
		http.Error(w, "Could not approve trip: "+err.Error(), apperr.HTTPStatus(err))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"approved"}`))
}

func (h *Handler) DeactivateTrip(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	tripID := chi.URLParam(r, "tripId")

	if err := h.TripService.DeactivateTrip(r.Context(), principalID, tripID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeactivateTrip: %v", err))
		http.Error(w, "Could not deactivate trip: "+err.Error(), apperr.HTTPStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListVendorTrips(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	trips, err := h.TripService.ListVendorTrips(r.Context(), principalID)
	if err != nil {
		http.Error(w, "Could not list vendor trips", apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trips)
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.TripID = chi.URLParam(r, "tripId")

	created, err := h.TripService.CreateSchedule(r.Context(), principalID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateSchedule: %v", err))
		http.Error(w, "Could not create schedule: "+err.Error(), apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")

	schedules, err := h.TripService.ListSchedules(r.Context(), tripID)
	if err != nil {
		http.Error(w, "Could not list schedules", apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(schedules)
}

func (h *Handler) DeactivateSchedule(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	tripID := chi.URLParam(r, "tripId")
	scheduleID := chi.URLParam(r, "scheduleId")

	if err := h.TripService.DeactivateSchedule(r.Context(), principalID, tripID, scheduleID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeactivateSchedule: %v", err))
		http.Error(w, "Could not deactivate schedule: "+err.Error(), apperr.HTTPStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetAvailability reports the live seat counter for a schedule.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "scheduleId")

	schedule, err := h.Seats.GetAvailability(r.Context(), scheduleID)
	if err != nil {
		http.Error(w, "Schedule not found", apperr.HTTPStatus(err))
		return
	}

	response := models.AvailabilityResponse{
		ScheduleID:     schedule.ScheduleID,
		TotalSeats:     schedule.TotalSeats,
		AvailableSeats: schedule.AvailableSeats,
		Active:         schedule.Active,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
