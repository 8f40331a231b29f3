package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"workdesk-backend/internal/assist"
	"workdesk-backend/internal/models"
	"workdesk-backend/internal/services"
	"workdesk-backend/pkg/httputil"
)

// AssistantHandler exposes the assistant lifecycle: send, switch, new
// conversation, transcript, and the pure render endpoint.
type AssistantHandler struct {
	assistantService *services.AssistantService
}

func NewAssistantHandler(assistSvc *services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistantService: assistSvc}
}

// sendResponse pairs the send outcome with the rendered display model so a
// client can show the reply without a second round trip.
type sendResponse struct {
	ConversationID uuid.UUID                `json:"conversation_id"`
	Reply          models.TranscriptMessage `json:"reply"`
	Appended       bool                     `json:"appended"`
	Rendered       assist.RenderResult      `json:"rendered"`
}

// HandleSend handles POST /v1/assist/send.
func (h *AssistantHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	res, err := h.assistantService.Send(r.Context(), userID, orgID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("Send handler failed for user %s: %v", userID, err)
			httputil.RespondError(w, http.StatusBadGateway, "The assistant could not respond")
		}
		return
	}

	resp := sendResponse{
		ConversationID: res.ConversationID,
		Reply:          res.Reply,
		Appended:       res.Appended,
		Rendered:       assist.Render(res.Reply.Content, res.Reply.Sources),
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleResolve handles POST /v1/assist/resolve: bind to the active
// conversation, creating one when none exists.
func (h *AssistantHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	conv, err := h.assistantService.Resolve(r.Context(), userID, orgID)
	if err != nil {
		log.Printf("Resolve handler failed for user %s: %v", userID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to resolve active conversation")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, conv)
}

// HandleSwitch handles POST /v1/assist/switch.
func (h *AssistantHandler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.SwitchConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if req.ConversationID == uuid.Nil {
		httputil.RespondError(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	if err := h.assistantService.Switch(r.Context(), userID, orgID, req.ConversationID); err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			httputil.RespondError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		log.Printf("Switch handler failed for user %s: %v", userID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to switch conversation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleNewConversation handles POST /v1/assist/conversations.
func (h *AssistantHandler) HandleNewConversation(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	conv, err := h.assistantService.NewConversation(r.Context(), userID, orgID)
	if err != nil {
		log.Printf("NewConversation handler failed for user %s: %v", userID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to create conversation")
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, conv)
}

// HandleDeleteConversation handles DELETE /v1/assist/conversations/{conversationID}.
func (h *AssistantHandler) HandleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	convID, ok := parseUUIDParam(w, r, "conversationID")
	if !ok {
		return
	}

	if err := h.assistantService.DeleteConversation(r.Context(), userID, orgID, convID); err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			httputil.RespondError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		log.Printf("DeleteConversation handler failed for user %s: %v", userID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to delete conversation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// transcriptResponse carries the locally held transcript and its binding.
type transcriptResponse struct {
	ConversationID uuid.UUID                  `json:"conversation_id"`
	Messages       []models.TranscriptMessage `json:"messages"`
}

// HandleTranscript handles GET /v1/assist/transcript.
func (h *AssistantHandler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	convID, msgs := h.assistantService.Transcript(userID)
	httputil.RespondJSON(w, http.StatusOK, transcriptResponse{
		ConversationID: convID,
		Messages:       msgs,
	})
}

// HandleRender handles POST /v1/assist/render: the pure render function.
// It never fails on malformed content; bad input degrades to plain text.
func (h *AssistantHandler) HandleRender(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := requestIdentity(w, r); !ok {
		return
	}

	var req models.RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	httputil.RespondJSON(w, http.StatusOK, assist.Render(req.Content, req.Sources))
}
