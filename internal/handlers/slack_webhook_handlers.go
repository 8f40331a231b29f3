package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/slack-go/slack"

	"workdesk-backend/internal/assist"
	slacksender "workdesk-backend/internal/integrations/slack"
	"workdesk-backend/internal/models"
	integration_models "workdesk-backend/internal/models/integrations"
	"workdesk-backend/internal/services"
	"workdesk-backend/pkg/httputil"
)

// SlackWebhookHandlers handles incoming Slack webhook events. Inbound events
// act as the user the channel is bound to; there is no authenticated request
// context on this path.
type SlackWebhookHandlers struct {
	channelsService  *services.ChannelsService
	credService      services.CredentialsService
	assistantService *services.AssistantService
}

// NewSlackWebhookHandlers creates a new SlackWebhookHandlers instance.
func NewSlackWebhookHandlers(chSvc *services.ChannelsService, credSvc services.CredentialsService, assistSvc *services.AssistantService) *SlackWebhookHandlers {
	return &SlackWebhookHandlers{
		channelsService:  chSvc,
		credService:      credSvc,
		assistantService: assistSvc,
	}
}

// HandleSlackEvent handles POST /slack-events/{channelID}.
func (h *SlackWebhookHandlers) HandleSlackEvent(w http.ResponseWriter, r *http.Request) {
	channelID, ok := parseUUIDParam(w, r, "channelID")
	if !ok {
		return
	}

	channel, err := h.channelsService.GetChannelForWebhook(r.Context(), channelID)
	if err != nil {
		log.Printf("WARN [SlackWebhook] Unknown channel %s: %v", channelID, err)
		httputil.RespondError(w, http.StatusNotFound, "Unknown channel")
		return
	}
	if !channel.IsActive {
		httputil.RespondError(w, http.StatusGone, "Channel is inactive")
		return
	}

	creds, err := h.credService.GetDecryptedCredentials(r.Context(), channel.CredentialID, channel.OrganizationID)
	if err != nil {
		log.Printf("ERROR [SlackWebhook] Failed to load credentials for channel %s: %v", channelID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Channel credentials unavailable")
		return
	}

	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	if !h.verifySignature(r.Header, bodyBytes, creds["signing_secret"]) {
		httputil.RespondError(w, http.StatusUnauthorized, "Invalid Slack signature")
		return
	}

	var typeFinder struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(bodyBytes, &typeFinder); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Could not determine payload type")
		return
	}

	switch typeFinder.Type {
	case "url_verification":
		var challengeReq models.SlackChallengeRequest
		if err := json.Unmarshal(bodyBytes, &challengeReq); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid Slack challenge request")
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challengeReq.Challenge))

	case "event_callback":
		var payload models.SlackEventPayload
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid Slack event payload")
			return
		}
		h.handleEventCallback(w, r, channel, creds, payload)

	default:
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "payload type ignored"})
	}
}

func (h *SlackWebhookHandlers) handleEventCallback(w http.ResponseWriter, r *http.Request, channel *models.Channel, creds integration_models.DecryptedCredentials, payload models.SlackEventPayload) {
	event := payload.Event

	if event.Type != "message" && event.Type != "app_mention" {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "event type ignored"})
		return
	}
	// Ignore the bot's own messages to avoid reply loops.
	if event.BotID != "" || event.User == "" {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "bot message ignored"})
		return
	}

	var cfg integration_models.SlackChannelConfig
	if len(channel.Configuration) > 0 {
		if err := json.Unmarshal(channel.Configuration, &cfg); err != nil {
			log.Printf("WARN [SlackWebhook] Bad configuration on channel %s: %v", channel.ID, err)
		}
	}
	if cfg.SlackTeamID != "" && cfg.SlackTeamID != payload.TeamID {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "foreign workspace ignored"})
		return
	}
	if cfg.AllowedUserID != "" && cfg.AllowedUserID != event.User {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "user not allowed"})
		return
	}

	res, err := h.assistantService.Send(r.Context(), channel.UserID, channel.OrganizationID, event.Text)
	if err != nil {
		log.Printf("ERROR [SlackWebhook] Send failed for channel %s: %v", channel.ID, err)
		httputil.RespondError(w, http.StatusBadGateway, "Assistant failed to respond")
		return
	}

	threadTs := event.ThreadTs
	if threadTs == "" && cfg.DefaultThread {
		threadTs = event.Timestamp
	}

	// Slack gets a plain-text rendering: the structured block is stripped
	// and inline styling flattened before the reply is posted.
	replyText := assist.PlainText(res.Reply.Content)
	if err := slacksender.SendMessageToChannel(r.Context(), creds["bot_token"], event.Channel, replyText, threadTs); err != nil {
		log.Printf("ERROR [SlackWebhook] Failed to post reply for channel %s: %v", channel.ID, err)
		httputil.RespondError(w, http.StatusBadGateway, "Failed to deliver reply to Slack")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// verifySignature checks Slack's request signature. A missing signing secret
// fails closed.
func (h *SlackWebhookHandlers) verifySignature(header http.Header, body []byte, signingSecret string) bool {
	if signingSecret == "" {
		log.Printf("WARN [SlackWebhook] No signing secret configured; rejecting request")
		return false
	}

	verifier, err := slack.NewSecretsVerifier(header, signingSecret)
	if err != nil {
		log.Printf("WARN [SlackWebhook] Failed to init signature verifier: %v", err)
		return false
	}
	if _, err := verifier.Write(body); err != nil {
		return false
	}
	if err := verifier.Ensure(); err != nil {
		log.Printf("WARN [SlackWebhook] Signature mismatch: %v", err)
		return false
	}
	return true
}
