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

// ConversationHandler exposes conversation CRUD and message persistence.
type ConversationHandler struct {
	convService *services.ConversationsService
}

func NewConversationHandler(convSvc *services.ConversationsService) *ConversationHandler {
	return &ConversationHandler{convService: convSvc}
}

// HandleListConversations handles GET /v1/conversations.
func (h *ConversationHandler) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	resp, err := h.convService.ListConversations(r.Context(), userID, orgID)
	if err != nil {
		log.Printf("ListConversations handler failed: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list conversations")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleCreateConversation handles POST /v1/conversations.
func (h *ConversationHandler) HandleCreateConversation(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.CreateConversationRequest
	if r.Body != nil {
		// An empty body means "untitled conversation".
		_ = json.NewDecoder(r.Body).Decode(&req)
		defer r.Body.Close()
	}

	resp, err := h.convService.CreateConversation(r.Context(), orgID, userID, req)
	if err != nil {
		log.Printf("CreateConversation handler failed: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to create conversation")
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, resp)
}

// HandleGetActiveConversation handles POST /v1/conversations/active
// (get-or-create semantics).
func (h *ConversationHandler) HandleGetActiveConversation(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	resp, err := h.convService.GetActiveConversation(r.Context(), userID, orgID)
	if err != nil {
		log.Printf("GetActiveConversation handler failed: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to resolve active conversation")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleGetConversation handles GET /v1/conversations/{conversationID}.
func (h *ConversationHandler) HandleGetConversation(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	convID, ok := parseUUIDParam(w, r, "conversationID")
	if !ok {
		return
	}

	resp, err := h.convService.GetConversation(r.Context(), convID, orgID)
	if err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			httputil.RespondError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		log.Printf("GetConversation handler failed for %s: %v", convID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to get conversation")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleUpdateConversation handles PATCH /v1/conversations/{conversationID}.
func (h *ConversationHandler) HandleUpdateConversation(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	convID, ok := parseUUIDParam(w, r, "conversationID")
	if !ok {
		return
	}

	var req models.UpdateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.convService.UpdateTitle(r.Context(), convID, orgID, req.Title); err != nil {
		switch {
		case errors.Is(err, services.ErrConversationNotFound):
			httputil.RespondError(w, http.StatusNotFound, "Conversation not found")
		case errors.Is(err, services.ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("UpdateConversation handler failed for %s: %v", convID, err)
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to update conversation")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteConversation handles DELETE /v1/conversations/{conversationID}.
func (h *ConversationHandler) HandleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	convID, ok := parseUUIDParam(w, r, "conversationID")
	if !ok {
		return
	}

	if err := h.convService.DeleteConversation(r.Context(), convID, orgID); err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			httputil.RespondError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		log.Printf("DeleteConversation handler failed for %s: %v", convID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to delete conversation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMessages handles GET /v1/conversations/{conversationID}/messages.
func (h *ConversationHandler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	convID, ok := parseUUIDParam(w, r, "conversationID")
	if !ok {
		return
	}

	resp, err := h.convService.ListMessages(r.Context(), convID, orgID)
	if err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			httputil.RespondError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		log.Printf("ListMessages handler failed for %s: %v", convID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list messages")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleCreateMessage handles POST /v1/conversations/{conversationID}/messages.
// Used for persisting either role's turn directly.
func (h *ConversationHandler) HandleCreateMessage(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	convID, ok := parseUUIDParam(w, r, "conversationID")
	if !ok {
		return
	}

	var req models.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	resp, err := h.convService.AppendMessage(r.Context(), convID, orgID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrConversationNotFound):
			httputil.RespondError(w, http.StatusNotFound, "Conversation not found")
		case errors.Is(err, services.ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("CreateMessage handler failed for %s: %v", convID, err)
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to create message")
		}
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, resp)
}
