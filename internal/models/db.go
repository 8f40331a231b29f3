package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents a user in the database.
type User struct {
	ID             uuid.UUID `db:"id"`
	OrganizationID uuid.UUID `db:"organization_id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Organization represents a workspace in the database.
type Organization struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Conversation is one assistant conversation owned by a user.
// Title is derived after the first exchange, so it is nullable.
type Conversation struct {
	ID             uuid.UUID `db:"id"`
	OrganizationID uuid.UUID `db:"organization_id"`
	UserID         uuid.UUID `db:"user_id"`
	Title          *string   `db:"title"`
	Archived       bool      `db:"archived"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Message is one persisted turn of a conversation. Messages are append-only:
// never edited or reordered after creation, only appended or refetched.
type Message struct {
	ID             uuid.UUID       `db:"id"`
	ConversationID uuid.UUID       `db:"conversation_id"`
	Role           string          `db:"role"` // "user" | "assistant"
	Content        string          `db:"content"`
	Sources        json.RawMessage `db:"sources"`  // JSONB, nullable; []Source when set
	Metadata       json.RawMessage `db:"metadata"` // JSONB, nullable
	CreatedAt      time.Time       `db:"created_at"`
}

// IntegrationCredential represents stored credentials for external services
// (the Slack surface and the completion provider).
type IntegrationCredential struct {
	ID                   uuid.UUID   `db:"id"`
	OrganizationID       uuid.UUID   `db:"organization_id"`
	ServiceType          ServiceType `db:"service_type"`
	CredentialName       string      `db:"credential_name"`
	EncryptedCredentials []byte      `db:"encrypted_credentials"` // AES-GCM sealed JSON
	Status               string      `db:"status"`
	CreatedAt            time.Time   `db:"created_at"`
	UpdatedAt            time.Time   `db:"updated_at"`
}

// Channel is a configured chat surface the assistant answers through
// (currently Slack). Inbound events on a channel act as the bound user.
type Channel struct {
	ID             uuid.UUID       `db:"id"`
	OrganizationID uuid.UUID       `db:"organization_id"`
	UserID         uuid.UUID       `db:"user_id"`
	CredentialID   uuid.UUID       `db:"credential_id"`
	ServiceType    ServiceType     `db:"service_type"` // SLACK
	Name           string          `db:"name"`
	Configuration  json.RawMessage `db:"configuration"` // JSONB
	IsActive       bool            `db:"is_active"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// AssistantSettings holds the per-organization assistant configuration
// consumed by the completion client. One row per organization.
type AssistantSettings struct {
	OrganizationID uuid.UUID `db:"organization_id"`
	SystemPrompt   *string   `db:"system_prompt"`
	LLMModel       *string   `db:"llm_model"`
	HistoryWindow  *int      `db:"history_window"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
