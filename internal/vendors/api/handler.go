package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/auth"
	"ms-tripbooking/internal/logger"
	"ms-tripbooking/internal/models"
	"ms-tripbooking/internal/vendors"
)

type Handler struct {
	VendorService *vendor.Service
	Logger        *logger.Logger
}

func NewHandler(vendorService *vendor.Service) *Handler {
	return &Handler{
		VendorService: vendorService,
		Logger:        logger.NewLogger(),
	}
}

// SubmitApplication files a vendor application for the caller.
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.VendorApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	app, err := h.VendorService.Submit(r.Context(), principalID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SubmitApplication: %v", err))
		http.Error(w, "Could not submit application: "+err.Error(), apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(app)
}

// ReviewApplication resolves a pending application to approved or rejected.
func (h *Handler) ReviewApplication(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	applicationID := chi.URLParam(r, "applicationId")

	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	app, err := h.VendorService.Review(r.Context(), applicationID, principalID, req.Decision)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ReviewApplication: %v", err))
		http.Error(w, "Could not review application: "+err.Error(), apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(app)
}

// ListPendingApplications returns the admin review queue.
func (h *Handler) ListPendingApplications(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	apps, err := h.VendorService.ListPending(r.Context(), principalID)
	if err != nil {
		http.Error(w, "Could not list applications", apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apps)
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	applicationID := chi.URLParam(r, "applicationId")

	app, err := h.VendorService.GetApplication(r.Context(), principalID, applicationID)
	if err != nil {
		http.Error(w, "Application not found", apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(app)
}
