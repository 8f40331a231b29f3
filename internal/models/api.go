package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// --- Request Structs ---

// SignupRequest defines the expected body for the signup endpoint.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest defines the expected body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// --- Response Structs ---

// UserResponse defines the user information returned by the API.
// Never returns sensitive info like HashedPassword.
type UserResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	OrganizationID uuid.UUID `json:"organization_id"`
}

// AuthResponse defines the response body for successful authentication.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// --- Conversation DTOs ---

// CreateConversationRequest defines the body for creating a conversation.
// Title is optional; it is normally derived after the first exchange.
type CreateConversationRequest struct {
	Title *string `json:"title,omitempty"`
}

// UpdateConversationRequest defines the PATCH body for a conversation.
type UpdateConversationRequest struct {
	Title string `json:"title"`
}

// ConversationResponse defines the data returned for a conversation.
type ConversationResponse struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	UserID         uuid.UUID `json:"user_id"`
	Title          *string   `json:"title"`
	Archived       bool      `json:"archived"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ListConversationsResponse wraps the conversation list.
type ListConversationsResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
}

// --- Message DTOs ---

// Source is a citation supplied alongside an assistant answer: a reference
// to an underlying record used to build trust and navigation. ID may be
// empty, or carry the literal placeholder "undefined", both meaning absent.
type Source struct {
	ID       string                 `json:"id,omitempty"`
	Kind     string                 `json:"kind"`
	Title    string                 `json:"title"`
	Snippet  string                 `json:"snippet,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// CreateMessageRequest defines the body for persisting a message turn.
// Used for both user and assistant roles.
type CreateMessageRequest struct {
	Role     string          `json:"role"`
	Content  string          `json:"content"`
	Sources  []Source        `json:"sources,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// MessageResponse defines the data returned for a persisted message.
type MessageResponse struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Sources        []Source  `json:"sources,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListMessagesResponse wraps the message list for one conversation.
type ListMessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}

// TranscriptMessage is one locally held turn of the active transcript.
// Local (optimistic) turns exist before their remote copy is confirmed;
// the local list is append-only and replaced wholesale on refetch.
type TranscriptMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Sources   []Source  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Assistant DTOs ---

// SendMessageRequest defines the body for the assistant send operation.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// SwitchConversationRequest defines the body for switching the active
// conversation.
type SwitchConversationRequest struct {
	ConversationID uuid.UUID `json:"conversation_id"`
}

// RenderRequest defines the body for the pure render endpoint: message
// content plus the optional citation list that arrived with it.
type RenderRequest struct {
	Content string   `json:"content"`
	Sources []Source `json:"sources,omitempty"`
}

// --- Integration Credentials DTOs ---

// ServiceType defines the types of external services we can integrate with.
type ServiceType string

const (
	ServiceTypeSlack  ServiceType = "SLACK"
	ServiceTypeOpenAI ServiceType = "OPENAI"
)

// CreateCredentialRequest defines the body for creating a new integration
// credential. The Credentials map contains the raw secrets and is ONLY used
// for this request. It is never stored directly or returned in responses.
type CreateCredentialRequest struct {
	ServiceType    ServiceType       `json:"service_type"` // e.g. "SLACK", "OPENAI"
	CredentialName *string           `json:"credential_name,omitempty"`
	Credentials    map[string]string `json:"credentials"`
}

// CredentialResponse defines the data returned when fetching integration
// credentials. It EXCLUDES the actual encrypted or raw secrets.
type CredentialResponse struct {
	ID             uuid.UUID   `json:"id"`
	OrganizationID uuid.UUID   `json:"organization_id"`
	ServiceType    ServiceType `json:"service_type"`
	CredentialName string      `json:"credential_name"`
	Status         string      `json:"status"` // e.g. "ACTIVE", "INVALID"
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// ListCredentialsResponse wraps the credential list.
type ListCredentialsResponse struct {
	Credentials []CredentialResponse `json:"credentials"`
}

// TestCredentialResponse defines the response for testing a credential.
type TestCredentialResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Channel DTOs ---

// CreateChannelRequest defines the body for binding a chat surface.
type CreateChannelRequest struct {
	Name          string          `json:"name"`
	CredentialID  uuid.UUID       `json:"credential_id"` // must be a SLACK credential
	Configuration json.RawMessage `json:"configuration,omitempty"`
}

// ChannelResponse defines the data returned for a channel.
type ChannelResponse struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	UserID         uuid.UUID       `json:"user_id"`
	CredentialID   uuid.UUID       `json:"credential_id"`
	ServiceType    ServiceType     `json:"service_type"`
	Name           string          `json:"name"`
	Configuration  json.RawMessage `json:"configuration,omitempty"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ListChannelsResponse wraps the channel list.
type ListChannelsResponse struct {
	Channels []ChannelResponse `json:"channels"`
}

// --- Assistant Settings DTOs ---

// AssistantSettingsResponse defines the per-org assistant configuration.
type AssistantSettingsResponse struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	SystemPrompt   *string   `json:"system_prompt,omitempty"`
	LLMModel       *string   `json:"llm_model,omitempty"`
	HistoryWindow  *int      `json:"history_window,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UpdateAssistantSettingsRequest defines the PUT body for settings.
// Pointers allow partial updates.
type UpdateAssistantSettingsRequest struct {
	SystemPrompt  *string `json:"system_prompt,omitempty"`
	LLMModel      *string `json:"llm_model,omitempty"`
	HistoryWindow *int    `json:"history_window,omitempty"`
}
