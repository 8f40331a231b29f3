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

const channelColumns = `id, organization_id, user_id, credential_id, service_type, name, configuration, is_active, created_at, updated_at`

func scanChannel(row pgx.Row) (*models.Channel, error) {
	ch := &models.Channel{}
	err := row.Scan(
		&ch.ID,
		&ch.OrganizationID,
		&ch.UserID,
		&ch.CredentialID,
		&ch.ServiceType,
		&ch.Name,
		&ch.Configuration,
		&ch.IsActive,
		&ch.CreatedAt,
		&ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// CreateChannel inserts a new channel binding.
func (s *PostgresStore) CreateChannel(ctx context.Context, arg store.CreateChannelParams) (*models.Channel, error) {
	query := `
		INSERT INTO channels (id, organization_id, user_id, credential_id, service_type, name, configuration, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + channelColumns

	ch, err := scanChannel(s.db.QueryRow(ctx, query,
		arg.ID,
		arg.OrganizationID,
		arg.UserID,
		arg.CredentialID,
		arg.ServiceType,
		arg.Name,
		arg.Configuration,
		arg.IsActive,
	))
	if err != nil {
		log.Printf("ERROR [PostgresStore] CreateChannel: insert failed for OrgID %s: %v", arg.OrganizationID, err)
		return nil, fmt.Errorf("database error creating channel: %w", err)
	}

	log.Printf("[PostgresStore] CreateChannel: Created channel %s (%s) for OrgID %s", ch.ID, ch.Name, ch.OrganizationID)
	return ch, nil
}

// GetChannelByID retrieves a channel by id alone. The webhook path has no
// authenticated org context, so scoping happens via the channel row itself.
func (s *PostgresStore) GetChannelByID(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	query := `
		SELECT ` + channelColumns + `
		FROM channels
		WHERE id = $1`

	ch, err := scanChannel(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Printf("ERROR [PostgresStore] GetChannelByID: query failed for %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching channel: %w", err)
	}
	return ch, nil
}

// ListChannelsByOrg lists an organization's channels.
func (s *PostgresStore) ListChannelsByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Channel, error) {
	query := `
		SELECT ` + channelColumns + `
		FROM channels
		WHERE organization_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, orgID)
	if err != nil {
		log.Printf("ERROR [PostgresStore] ListChannelsByOrg: query failed for OrgID %s: %v", orgID, err)
		return nil, fmt.Errorf("database error listing channels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("database error scanning channel row: %w", err)
		}
		channels = append(channels, *ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating channels: %w", err)
	}
	return channels, nil
}

// DeleteChannel removes a channel binding.
func (s *PostgresStore) DeleteChannel(ctx context.Context, id uuid.UUID, orgID uuid.UUID) error {
	query := `DELETE FROM channels WHERE id = $1 AND organization_id = $2`

	tag, err := s.db.Exec(ctx, query, id, orgID)
	if err != nil {
		log.Printf("ERROR [PostgresStore] DeleteChannel: delete failed for %s: %v", id, err)
		return fmt.Errorf("database error deleting channel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
