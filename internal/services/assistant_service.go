package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"workdesk-backend/internal/completion"
	"workdesk-backend/internal/config"
	"workdesk-backend/internal/models"
	"workdesk-backend/internal/store"
)

// ErrEmptyMessage is returned when a send carries no content.
var ErrEmptyMessage = errors.New("message cannot be empty")

// Notifier surfaces user-visible failure notifications. Parse failures never
// reach it; only remote-call failures do.
type Notifier interface {
	Notify(userID uuid.UUID, message string)
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(userID uuid.UUID, message string) {
	log.Printf("[Notify] user=%s: %s", userID, message)
}

// session is the per-user conversation state: the active conversation id and
// the local transcript. The local list is append-only between refetches and
// is always ahead of the store during a send.
type session struct {
	mu       sync.Mutex
	activeID uuid.UUID
	messages []models.TranscriptMessage
}

// AssistantService owns the active conversation and the send lifecycle:
// optimistic local append, user-turn persistence, completion, assistant-turn
// persistence, and first-exchange title derivation.
type AssistantService struct {
	store     store.Store
	completer completion.Client
	notifier  Notifier
	cfg       *config.Config

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// NewAssistantService creates a new AssistantService.
func NewAssistantService(s store.Store, c completion.Client, n Notifier, cfg *config.Config) *AssistantService {
	if n == nil {
		n = LogNotifier{}
	}
	return &AssistantService{
		store:     s,
		completer: c,
		notifier:  n,
		cfg:       cfg,
		sessions:  make(map[uuid.UUID]*session),
	}
}

func (s *AssistantService) session(userID uuid.UUID) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{}
		s.sessions[userID] = sess
	}
	return sess
}

// SendResult describes the outcome of one send.
type SendResult struct {
	ConversationID uuid.UUID                `json:"conversation_id"`
	Reply          models.TranscriptMessage `json:"reply"`
	// Appended reports whether the reply was added to the local transcript.
	// It is false when the user switched conversations mid-send; the reply
	// is still persisted to its originating conversation.
	Appended bool `json:"appended"`
}

// Resolve binds the user to their active conversation, creating one if none
// exists, and replaces the local transcript with the persisted one.
func (s *AssistantService) Resolve(ctx context.Context, userID, orgID uuid.UUID) (*models.ConversationResponse, error) {
	sess := s.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	conv, err := s.store.GetOrCreateActiveConversation(ctx, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active conversation: %w", err)
	}

	transcript, err := s.loadTranscript(ctx, conv.ID, orgID)
	if err != nil {
		return nil, err
	}

	sess.activeID = conv.ID
	sess.messages = transcript
	return mapConversationToResponse(conv), nil
}

// Switch sets the active conversation immediately and refetches its
// transcript. The switch never blocks on an in-flight send.
func (s *AssistantService) Switch(ctx context.Context, userID, orgID, convID uuid.UUID) error {
	conv, err := s.store.GetConversationByID(ctx, convID, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrConversationNotFound
		}
		return fmt.Errorf("failed to get conversation: %w", err)
	}

	sess := s.session(userID)
	sess.mu.Lock()
	sess.activeID = conv.ID
	sess.messages = nil
	sess.mu.Unlock()

	// Refetch replaces the local list wholesale.
	transcript, err := s.loadTranscript(ctx, conv.ID, orgID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.activeID == conv.ID {
		sess.messages = transcript
	}
	sess.mu.Unlock()
	return nil
}

// NewConversation creates a conversation remotely, makes it active, and
// clears the local transcript.
func (s *AssistantService) NewConversation(ctx context.Context, userID, orgID uuid.UUID) (*models.ConversationResponse, error) {
	conv, err := s.store.CreateConversation(ctx, store.CreateConversationParams{
		ID:             uuid.New(),
		OrganizationID: orgID,
		UserID:         userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	sess := s.session(userID)
	sess.mu.Lock()
	sess.activeID = conv.ID
	sess.messages = nil
	sess.mu.Unlock()

	log.Printf("[AssistantService] User %s started conversation %s", userID, conv.ID)
	return mapConversationToResponse(conv), nil
}

// DeleteConversation removes a conversation. Deleting the active one clears
// the active id and transcript without auto-creating a replacement.
func (s *AssistantService) DeleteConversation(ctx context.Context, userID, orgID, convID uuid.UUID) error {
	if err := s.store.DeleteConversation(ctx, convID, orgID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrConversationNotFound
		}
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	sess := s.session(userID)
	sess.mu.Lock()
	if sess.activeID == convID {
		sess.activeID = uuid.Nil
		sess.messages = nil
	}
	sess.mu.Unlock()
	return nil
}

// Transcript returns a copy of the user's local transcript.
func (s *AssistantService) Transcript(userID uuid.UUID) (uuid.UUID, []models.TranscriptMessage) {
	sess := s.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	out := make([]models.TranscriptMessage, len(sess.messages))
	copy(out, sess.messages)
	return sess.activeID, out
}

// Send runs one full exchange: optimistic local append of the user turn,
// user-turn persistence, completion with a bounded history window, assistant
// persistence, and first-exchange title derivation. The local transcript is
// always ahead of the store; the store observes user-then-assistant order.
func (s *AssistantService) Send(ctx context.Context, userID, orgID uuid.UUID, text string) (*SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	sess := s.session(userID)

	sess.mu.Lock()
	if sess.activeID == uuid.Nil {
		conv, err := s.store.GetOrCreateActiveConversation(ctx, userID, orgID)
		if err != nil {
			sess.mu.Unlock()
			return nil, fmt.Errorf("failed to resolve active conversation: %w", err)
		}
		sess.activeID = conv.ID
	}
	// Each send is tagged with its originating conversation; replies landing
	// after a switch are persisted there but not appended locally.
	originID := sess.activeID
	priorCount := len(sess.messages)
	prior := make([]models.TranscriptMessage, priorCount)
	copy(prior, sess.messages)

	// Optimistic append before any network call.
	sess.messages = append(sess.messages, models.TranscriptMessage{
		Role:      "user",
		Content:   text,
		CreatedAt: time.Now(),
	})
	sess.mu.Unlock()

	// Rollback removes the optimistic user turn, but only if this send's
	// conversation is still the active one; after a switch the local
	// transcript belongs to another conversation and must not be touched.
	rollback := func() {
		sess.mu.Lock()
		if sess.activeID == originID {
			if n := len(sess.messages); n > 0 {
				last := sess.messages[n-1]
				if last.Role == "user" && last.Content == text {
					sess.messages = sess.messages[:n-1]
				}
			}
		}
		sess.mu.Unlock()
	}

	// Persist the user turn before requesting the reply; a save failure is
	// reported the same way as a completion failure.
	_, err := s.store.CreateMessage(ctx, store.CreateMessageParams{
		ID:             uuid.New(),
		ConversationID: originID,
		OrganizationID: orgID,
		Role:           "user",
		Content:        text,
	})
	if err != nil {
		log.Printf("ERROR [AssistantService] Send: failed to persist user message for conv %s: %v", originID, err)
		s.notifier.Notify(userID, "Failed to send message. Please try again.")
		rollback()
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}

	req := completion.Request{
		Message: text,
		Model:   s.cfg.CompletionModel,
	}
	window := s.cfg.HistoryWindow
	if settings, serr := s.store.GetAssistantSettings(ctx, orgID); serr == nil {
		if settings.SystemPrompt != nil {
			req.SystemPrompt = *settings.SystemPrompt
		}
		if settings.LLMModel != nil && *settings.LLMModel != "" {
			req.Model = *settings.LLMModel
		}
		if settings.HistoryWindow != nil && *settings.HistoryWindow >= 0 {
			window = *settings.HistoryWindow
		}
	}
	req.History = historyWindow(prior, window)

	result, err := s.completer.Complete(ctx, req)
	if err != nil {
		log.Printf("ERROR [AssistantService] Send: completion failed for conv %s: %v", originID, err)
		s.notifier.Notify(userID, "The assistant could not respond. Please try again.")
		rollback()
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	reply := models.TranscriptMessage{
		Role:      "assistant",
		Content:   result.Content,
		Sources:   result.Sources,
		CreatedAt: time.Now(),
	}

	// Append locally only if the originating conversation is still active.
	sess.mu.Lock()
	appended := sess.activeID == originID
	if appended {
		sess.messages = append(sess.messages, reply)
	}
	sess.mu.Unlock()

	var sourcesJSON json.RawMessage
	if len(result.Sources) > 0 {
		if b, merr := json.Marshal(result.Sources); merr == nil {
			sourcesJSON = b
		} else {
			log.Printf("WARN [AssistantService] Send: failed to marshal sources for conv %s: %v", originID, merr)
		}
	}

	// The reply is persisted to its originating conversation regardless of
	// any switch. A failure here leaves local state ahead of the store until
	// the next refetch.
	_, err = s.store.CreateMessage(ctx, store.CreateMessageParams{
		ID:             uuid.New(),
		ConversationID: originID,
		OrganizationID: orgID,
		Role:           "assistant",
		Content:        result.Content,
		Sources:        sourcesJSON,
	})
	if err != nil {
		log.Printf("WARN [AssistantService] Send: failed to persist assistant message for conv %s: %v", originID, err)
	}

	// First exchange only: derive a title from the first user message.
	if priorCount <= 1 {
		title := deriveTitle(text, s.cfg.TitleMaxLen)
		if terr := s.store.UpdateConversationTitle(ctx, originID, orgID, title); terr != nil {
			// Title patching is non-fatal and never surfaced.
			log.Printf("WARN [AssistantService] Send: title patch failed for conv %s: %v", originID, terr)
		}
	}

	return &SendResult{
		ConversationID: originID,
		Reply:          reply,
		Appended:       appended,
	}, nil
}

// historyWindow returns the most recent bounded window of prior turns,
// oldest-first, excluding any message whose role is neither user nor
// assistant.
func historyWindow(msgs []models.TranscriptMessage, limit int) []completion.Turn {
	turns := make([]completion.Turn, 0, len(msgs))
	for _, m := range msgs {
		if m.Role != "user" && m.Role != "assistant" {
			continue
		}
		turns = append(turns, completion.Turn{Role: m.Role, Content: m.Content})
	}
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns
}

func (s *AssistantService) loadTranscript(ctx context.Context, convID, orgID uuid.UUID) ([]models.TranscriptMessage, error) {
	msgs, err := s.store.ListMessagesByConversation(ctx, convID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}

	out := make([]models.TranscriptMessage, 0, len(msgs))
	for i := range msgs {
		tm := models.TranscriptMessage{
			Role:      msgs[i].Role,
			Content:   msgs[i].Content,
			CreatedAt: msgs[i].CreatedAt,
		}
		if len(msgs[i].Sources) > 0 && string(msgs[i].Sources) != "null" {
			if err := json.Unmarshal(msgs[i].Sources, &tm.Sources); err != nil {
				log.Printf("WARN [AssistantService] loadTranscript: bad sources on message %s: %v", msgs[i].ID, err)
			}
		}
		out = append(out, tm)
	}
	return out, nil
}

// deriveTitle caps the first user message at max characters, marking the cut
// with an ellipsis.
func deriveTitle(text string, max int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max]) + "…"
}
