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

// ChannelHandler exposes chat-surface channel bindings.
type ChannelHandler struct {
	channelsService *services.ChannelsService
}

func NewChannelHandler(channelsSvc *services.ChannelsService) *ChannelHandler {
	return &ChannelHandler{channelsService: channelsSvc}
}

// HandleCreateChannel handles POST /v1/channels.
func (h *ChannelHandler) HandleCreateChannel(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	resp, err := h.channelsService.CreateChannel(r.Context(), orgID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChannelValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrChannelBadCredential):
			httputil.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			log.Printf("CreateChannel handler failed: %v", err)
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to create channel")
		}
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, resp)
}

// HandleListChannels handles GET /v1/channels.
func (h *ChannelHandler) HandleListChannels(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	resp, err := h.channelsService.ListChannels(r.Context(), orgID)
	if err != nil {
		log.Printf("ListChannels handler failed: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list channels")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleGetChannel handles GET /v1/channels/{channelID}.
func (h *ChannelHandler) HandleGetChannel(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	channelID, ok := parseUUIDParam(w, r, "channelID")
	if !ok {
		return
	}

	resp, err := h.channelsService.GetChannel(r.Context(), channelID, orgID)
	if err != nil {
		if errors.Is(err, services.ErrChannelNotFound) {
			httputil.RespondError(w, http.StatusNotFound, "Channel not found")
			return
		}
		log.Printf("GetChannel handler failed for %s: %v", channelID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to get channel")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleDeleteChannel handles DELETE /v1/channels/{channelID}.
func (h *ChannelHandler) HandleDeleteChannel(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	channelID, ok := parseUUIDParam(w, r, "channelID")
	if !ok {
		return
	}

	if err := h.channelsService.DeleteChannel(r.Context(), channelID, orgID); err != nil {
		if errors.Is(err, services.ErrChannelNotFound) {
			httputil.RespondError(w, http.StatusNotFound, "Channel not found")
			return
		}
		log.Printf("DeleteChannel handler failed for %s: %v", channelID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to delete channel")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
