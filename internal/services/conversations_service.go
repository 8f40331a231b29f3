package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"workdesk-backend/internal/models"
	"workdesk-backend/internal/store"
)

// ErrConversationNotFound is returned when a conversation does not exist or
// belongs to another organization.
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationsService handles conversation CRUD and message persistence.
type ConversationsService struct {
	store store.Store
}

// NewConversationsService creates a new ConversationsService.
func NewConversationsService(s store.Store) *ConversationsService {
	return &ConversationsService{store: s}
}

func mapConversationToResponse(c *models.Conversation) *models.ConversationResponse {
	return &models.ConversationResponse{
		ID:             c.ID,
		OrganizationID: c.OrganizationID,
		UserID:         c.UserID,
		Title:          c.Title,
		Archived:       c.Archived,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func mapMessageToResponse(m *models.Message) (*models.MessageResponse, error) {
	resp := &models.MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
	if len(m.Sources) > 0 && string(m.Sources) != "null" {
		if err := json.Unmarshal(m.Sources, &resp.Sources); err != nil {
			return nil, fmt.Errorf("failed to parse message sources: %w", err)
		}
	}
	return resp, nil
}

// CreateConversation starts a new conversation for the user.
func (s *ConversationsService) CreateConversation(ctx context.Context, orgID, userID uuid.UUID, req models.CreateConversationRequest) (*models.ConversationResponse, error) {
	params := store.CreateConversationParams{
		ID:             uuid.New(),
		OrganizationID: orgID,
		UserID:         userID,
		Title:          req.Title,
	}

	conv, err := s.store.CreateConversation(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	log.Printf("[ConvService] Created conversation %s for user %s", conv.ID, userID)
	return mapConversationToResponse(conv), nil
}

// GetConversation retrieves a single conversation by ID.
func (s *ConversationsService) GetConversation(ctx context.Context, id, orgID uuid.UUID) (*models.ConversationResponse, error) {
	conv, err := s.store.GetConversationByID(ctx, id, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return mapConversationToResponse(conv), nil
}

// GetActiveConversation returns the user's most recent conversation,
// creating one when none exists.
func (s *ConversationsService) GetActiveConversation(ctx context.Context, userID, orgID uuid.UUID) (*models.ConversationResponse, error) {
	conv, err := s.store.GetOrCreateActiveConversation(ctx, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active conversation: %w", err)
	}
	return mapConversationToResponse(conv), nil
}

// ListConversations returns the user's conversations, most recent first.
func (s *ConversationsService) ListConversations(ctx context.Context, userID, orgID uuid.UUID) (*models.ListConversationsResponse, error) {
	convs, err := s.store.ListConversationsByUser(ctx, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	resp := make([]models.ConversationResponse, len(convs))
	for i := range convs {
		resp[i] = *mapConversationToResponse(&convs[i])
	}
	return &models.ListConversationsResponse{Conversations: resp}, nil
}

// UpdateTitle renames a conversation.
func (s *ConversationsService) UpdateTitle(ctx context.Context, id, orgID uuid.UUID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}

	if err := s.store.UpdateConversationTitle(ctx, id, orgID, title); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrConversationNotFound
		}
		return fmt.Errorf("failed to update conversation title: %w", err)
	}
	return nil
}

// DeleteConversation removes a conversation and its messages.
func (s *ConversationsService) DeleteConversation(ctx context.Context, id, orgID uuid.UUID) error {
	if err := s.store.DeleteConversation(ctx, id, orgID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrConversationNotFound
		}
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	log.Printf("[ConvService] Deleted conversation %s", id)
	return nil
}

// AppendMessage persists one turn to a conversation.
func (s *ConversationsService) AppendMessage(ctx context.Context, convID, orgID uuid.UUID, req models.CreateMessageRequest) (*models.MessageResponse, error) {
	if req.Role != "user" && req.Role != "assistant" {
		return nil, fmt.Errorf("%w: role must be 'user' or 'assistant'", ErrValidation)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content cannot be empty", ErrValidation)
	}

	var sourcesJSON json.RawMessage
	if len(req.Sources) > 0 {
		b, err := json.Marshal(req.Sources)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal sources: %w", err)
		}
		sourcesJSON = b
	}

	params := store.CreateMessageParams{
		ID:             uuid.New(),
		ConversationID: convID,
		OrganizationID: orgID,
		Role:           req.Role,
		Content:        req.Content,
		Sources:        sourcesJSON,
		Metadata:       req.Metadata,
	}

	msg, err := s.store.CreateMessage(ctx, params)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	return mapMessageToResponse(msg)
}

// ListMessages returns the full ordered transcript of a conversation.
func (s *ConversationsService) ListMessages(ctx context.Context, convID, orgID uuid.UUID) (*models.ListMessagesResponse, error) {
	// Reject unknown conversations explicitly; an empty transcript and a
	// missing conversation are different answers.
	if _, err := s.store.GetConversationByID(ctx, convID, orgID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	msgs, err := s.store.ListMessagesByConversation(ctx, convID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	resp := make([]models.MessageResponse, 0, len(msgs))
	for i := range msgs {
		m, err := mapMessageToResponse(&msgs[i])
		if err != nil {
			return nil, fmt.Errorf("failed to map message at index %d: %w", i, err)
		}
		resp = append(resp, *m)
	}
	return &models.ListMessagesResponse{Messages: resp}, nil
}
