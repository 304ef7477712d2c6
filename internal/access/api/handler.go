package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-tripbooking/internal/access"
	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/auth"
	"ms-tripbooking/internal/logger"
	"ms-tripbooking/internal/models"
)

type Handler struct {
	Checker *access.Checker
	Logger  *logger.Logger
}

func NewHandler(checker *access.Checker) *Handler {
	return &Handler{
		Checker: checker,
		Logger:  logger.NewLogger(),
	}
}

// GetCapabilities returns a principal's capability set. Principals can read
// their own; admins can read anyone's.
func (h *Handler) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.PrincipalID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	principalID := chi.URLParam(r, "principalId")

	if principalID != callerID {
		if err := h.Checker.Require(r.Context(), callerID, access.CapabilityAdmin); err != nil {
			http.Error(w, "Forbidden", apperr.HTTPStatus(err))
			return
		}
	}

	set, err := h.Checker.Capabilities(r.Context(), principalID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetCapabilities: %v", err))
		http.Error(w, "Could not fetch capabilities", apperr.HTTPStatus(err))
		return
	}

	response := struct {
		PrincipalID  string   `json:"principal_id"`
		Capabilities []string `json:"capabilities"`
	}{
		PrincipalID:  principalID,
		Capabilities: set.Strings(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// SetCapabilities replaces a principal's capability set. Admin only.
func (h *Handler) SetCapabilities(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.PrincipalID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	principalID := chi.URLParam(r, "principalId")

	if err := h.Checker.Require(r.Context(), callerID, access.CapabilityAdmin); err != nil {
		http.Error(w, "Forbidden", apperr.HTTPStatus(err))
		return
	}

	var req models.SetCapabilitiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	set := access.SetFromStrings(req.Capabilities)
	if err := h.Checker.SetCapabilities(r.Context(), principalID, set); err != nil {
		h.Logger.Error("API", fmt.Sprintf("SetCapabilities: %v", err))
		http.Error(w, "Could not set capabilities: "+err.Error(), apperr.HTTPStatus(err))
		return
	}

	h.Logger.LogSecurity("ROLES", fmt.Sprintf("admin %s set capabilities for %s: %v", callerID, principalID, set.Strings()))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"updated"}`))
}
