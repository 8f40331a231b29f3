package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"workdesk-backend/internal/models"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// ErrCredentialInUse is returned when deleting a credential that a channel
// still references.
var ErrCredentialInUse = errors.New("credential is referenced by a channel")

// CreateConversationParams contains parameters for creating a conversation.
type CreateConversationParams struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	Title          *string // nullable; titles are usually derived later
}

// CreateMessageParams contains parameters for appending a message to a
// conversation. Sources and Metadata are JSON marshaled bytes for JSONB.
type CreateMessageParams struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	OrganizationID uuid.UUID
	Role           string
	Content        string
	Sources        json.RawMessage
	Metadata       json.RawMessage
}

// CreateIntegrationCredentialParams contains parameters for creating a credential.
type CreateIntegrationCredentialParams struct {
	ID                   uuid.UUID
	OrganizationID       uuid.UUID
	ServiceType          string
	CredentialName       string
	EncryptedCredentials []byte // raw encrypted bytes
	Status               string
}

// CreateChannelParams contains parameters for creating a channel binding.
type CreateChannelParams struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	CredentialID   uuid.UUID
	ServiceType    string
	Name           string
	Configuration  []byte // JSON marshaled bytes
	IsActive       bool
}

// UpsertAssistantSettingsParams contains parameters for the per-org
// assistant settings row. Pointers allow partial updates.
type UpsertAssistantSettingsParams struct {
	OrganizationID uuid.UUID
	SystemPrompt   *string
	LLMModel       *string
	HistoryWindow  *int
}

// Store defines the interface for database operations.
// This allows for mocking in tests and potential DB backend switching.
type Store interface {
	// User operations
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	// Organization operations
	CreateOrganization(ctx context.Context, org *models.Organization) error

	// Conversation operations
	CreateConversation(ctx context.Context, arg CreateConversationParams) (*models.Conversation, error)
	GetConversationByID(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (*models.Conversation, error)
	// GetOrCreateActiveConversation returns the user's most recent
	// non-archived conversation, creating one when none exists.
	GetOrCreateActiveConversation(ctx context.Context, userID uuid.UUID, orgID uuid.UUID) (*models.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID uuid.UUID, orgID uuid.UUID) ([]models.Conversation, error)
	UpdateConversationTitle(ctx context.Context, id uuid.UUID, orgID uuid.UUID, title string) error
	DeleteConversation(ctx context.Context, id uuid.UUID, orgID uuid.UUID) error

	// Message operations
	CreateMessage(ctx context.Context, arg CreateMessageParams) (*models.Message, error)
	ListMessagesByConversation(ctx context.Context, conversationID uuid.UUID, orgID uuid.UUID) ([]models.Message, error)

	// Integration Credentials operations
	CreateIntegrationCredential(ctx context.Context, arg CreateIntegrationCredentialParams) (*models.IntegrationCredential, error)
	GetIntegrationCredentialByID(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (*models.IntegrationCredential, error)
	ListIntegrationCredentialsByOrg(ctx context.Context, orgID uuid.UUID, serviceType *string) ([]models.IntegrationCredential, error)
	UpdateIntegrationCredentialStatus(ctx context.Context, id uuid.UUID, orgID uuid.UUID, status string) error
	DeleteIntegrationCredential(ctx context.Context, id uuid.UUID, orgID uuid.UUID) error

	// Channel operations
	CreateChannel(ctx context.Context, arg CreateChannelParams) (*models.Channel, error)
	GetChannelByID(ctx context.Context, id uuid.UUID) (*models.Channel, error)
	ListChannelsByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Channel, error)
	DeleteChannel(ctx context.Context, id uuid.UUID, orgID uuid.UUID) error

	// Assistant settings operations
	GetAssistantSettings(ctx context.Context, orgID uuid.UUID) (*models.AssistantSettings, error)
	UpsertAssistantSettings(ctx context.Context, arg UpsertAssistantSettingsParams) (*models.AssistantSettings, error)
}
