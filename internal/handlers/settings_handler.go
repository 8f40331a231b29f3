package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"workdesk-backend/internal/models"
	"workdesk-backend/internal/services"
	"workdesk-backend/pkg/httputil"
)

// SettingsHandler exposes per-org assistant settings.
type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsSvc *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsSvc}
}

// HandleGetSettings handles GET /v1/assistant-settings.
func (h *SettingsHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	resp, err := h.settingsService.GetSettings(r.Context(), orgID)
	if err != nil {
		log.Printf("GetSettings handler failed for org %s: %v", orgID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to get assistant settings")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleUpdateSettings handles PUT /v1/assistant-settings.
func (h *SettingsHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.UpdateAssistantSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	resp, err := h.settingsService.UpdateSettings(r.Context(), orgID, req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("UpdateSettings handler failed for org %s: %v", orgID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to update assistant settings")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}
