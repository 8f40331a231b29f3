package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"workdesk-backend/internal/models"
	"workdesk-backend/internal/store"
)

const conversationColumns = `id, organization_id, user_id, title, archived, created_at, updated_at`

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	var c models.Conversation
	err := row.Scan(
		&c.ID,
		&c.OrganizationID,
		&c.UserID,
		&c.Title,
		&c.Archived,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateConversation inserts a new conversation record.
func (s *PostgresStore) CreateConversation(ctx context.Context, arg store.CreateConversationParams) (*models.Conversation, error) {
	query := `
		INSERT INTO conversations (id, organization_id, user_id, title)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + conversationColumns

	conv, err := scanConversation(s.db.QueryRow(ctx, query,
		arg.ID,
		arg.OrganizationID,
		arg.UserID,
		arg.Title, // pgx handles *string to NULL automatically
	))
	if err != nil {
		log.Printf("ERROR [PostgresStore] CreateConversation: insert failed for user %s: %v", arg.UserID, err)
		return nil, fmt.Errorf("database error creating conversation: %w", err)
	}

	log.Printf("[PostgresStore] CreateConversation: Created conversation %s for user %s", conv.ID, conv.UserID)
	return conv, nil
}

// GetConversationByID retrieves a conversation scoped to an organization.
// Returns store.ErrNotFound if it does not exist.
func (s *PostgresStore) GetConversationByID(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (*models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE id = $1 AND organization_id = $2`

	conv, err := scanConversation(s.db.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Printf("ERROR [PostgresStore] GetConversationByID: query failed for %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching conversation: %w", err)
	}
	return conv, nil
}

// GetOrCreateActiveConversation returns the user's most recently updated
// non-archived conversation, creating a fresh untitled one when none exists.
func (s *PostgresStore) GetOrCreateActiveConversation(ctx context.Context, userID uuid.UUID, orgID uuid.UUID) (*models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE user_id = $1 AND organization_id = $2 AND archived = FALSE
		ORDER BY updated_at DESC
		LIMIT 1`

	conv, err := scanConversation(s.db.QueryRow(ctx, query, userID, orgID))
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR [PostgresStore] GetOrCreateActiveConversation: query failed for user %s: %v", userID, err)
		return nil, fmt.Errorf("database error fetching active conversation: %w", err)
	}

	return s.CreateConversation(ctx, store.CreateConversationParams{
		ID:             uuid.New(),
		OrganizationID: orgID,
		UserID:         userID,
	})
}

// ListConversationsByUser retrieves the user's non-archived conversations,
// most recently updated first.
func (s *PostgresStore) ListConversationsByUser(ctx context.Context, userID uuid.UUID, orgID uuid.UUID) ([]models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE user_id = $1 AND organization_id = $2 AND archived = FALSE
		ORDER BY updated_at DESC`

	rows, err := s.db.Query(ctx, query, userID, orgID)
	if err != nil {
		log.Printf("ERROR [PostgresStore] ListConversationsByUser: query failed for user %s: %v", userID, err)
		return nil, fmt.Errorf("database error listing conversations: %w", err)
	}
	defer rows.Close()

	var conversations []models.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("database error scanning conversation row: %w", err)
		}
		conversations = append(conversations, *conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating conversations: %w", err)
	}
	return conversations, nil
}

// UpdateConversationTitle sets a conversation's title.
// Returns store.ErrNotFound if the conversation does not exist.
func (s *PostgresStore) UpdateConversationTitle(ctx context.Context, id uuid.UUID, orgID uuid.UUID, title string) error {
	query := `
		UPDATE conversations
		SET title = $3, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2`

	tag, err := s.db.Exec(ctx, query, id, orgID, title)
	if err != nil {
		log.Printf("ERROR [PostgresStore] UpdateConversationTitle: update failed for %s: %v", id, err)
		return fmt.Errorf("database error updating conversation title: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteConversation removes a conversation and (via ON DELETE CASCADE) its
// messages. Returns store.ErrNotFound if nothing was deleted.
func (s *PostgresStore) DeleteConversation(ctx context.Context, id uuid.UUID, orgID uuid.UUID) error {
	query := `DELETE FROM conversations WHERE id = $1 AND organization_id = $2`

	tag, err := s.db.Exec(ctx, query, id, orgID)
	if err != nil {
		log.Printf("ERROR [PostgresStore] DeleteConversation: delete failed for %s: %v", id, err)
		return fmt.Errorf("database error deleting conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	log.Printf("[PostgresStore] DeleteConversation: Deleted conversation %s", id)
	return nil
}
