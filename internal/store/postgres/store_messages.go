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

// CreateMessage appends a message to a conversation. The conversation's
// updated_at is bumped in the same round trip so "most recent" ordering in
// the conversation list follows activity.
func (s *PostgresStore) CreateMessage(ctx context.Context, arg store.CreateMessageParams) (*models.Message, error) {
	query := `
		INSERT INTO messages (id, conversation_id, role, content, sources, metadata)
		SELECT $1, c.id, $3, $4, $5, $6
		FROM conversations c
		WHERE c.id = $2 AND c.organization_id = $7
		RETURNING id, conversation_id, role, content, sources, metadata, created_at`

	var m models.Message
	err := s.db.QueryRow(ctx, query,
		arg.ID,
		arg.ConversationID,
		arg.Role,
		arg.Content,
		arg.Sources,  // pgx maps json.RawMessage to JSONB, nil to NULL
		arg.Metadata,
		arg.OrganizationID,
	).Scan(
		&m.ID,
		&m.ConversationID,
		&m.Role,
		&m.Content,
		&m.Sources,
		&m.Metadata,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Conversation missing or owned by another organization.
			return nil, store.ErrNotFound
		}
		log.Printf("ERROR [PostgresStore] CreateMessage: insert failed for conversation %s: %v", arg.ConversationID, err)
		return nil, fmt.Errorf("database error creating message: %w", err)
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE conversations SET updated_at = NOW() WHERE id = $1`, arg.ConversationID); err != nil {
		// Ordering hint only; the message itself is already stored.
		log.Printf("WARN [PostgresStore] CreateMessage: failed to bump conversation %s updated_at: %v", arg.ConversationID, err)
	}

	return &m, nil
}

// ListMessagesByConversation retrieves a conversation's messages in send
// order (creation time ascending).
func (s *PostgresStore) ListMessagesByConversation(ctx context.Context, conversationID uuid.UUID, orgID uuid.UUID) ([]models.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.role, m.content, m.sources, m.metadata, m.created_at
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE m.conversation_id = $1 AND c.organization_id = $2
		ORDER BY m.created_at ASC, m.id ASC`

	rows, err := s.db.Query(ctx, query, conversationID, orgID)
	if err != nil {
		log.Printf("ERROR [PostgresStore] ListMessagesByConversation: query failed for %s: %v", conversationID, err)
		return nil, fmt.Errorf("database error listing messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&m.Role,
			&m.Content,
			&m.Sources,
			&m.Metadata,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("database error scanning message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating messages: %w", err)
	}
	return messages, nil
}
