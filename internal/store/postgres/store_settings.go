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

const settingsColumns = `organization_id, system_prompt, llm_model, history_window, created_at, updated_at`

func scanSettings(row pgx.Row) (*models.AssistantSettings, error) {
	st := &models.AssistantSettings{}
	err := row.Scan(
		&st.OrganizationID,
		&st.SystemPrompt,
		&st.LLMModel,
		&st.HistoryWindow,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// GetAssistantSettings retrieves the per-org assistant settings row.
// Returns store.ErrNotFound when the org has never saved settings.
func (s *PostgresStore) GetAssistantSettings(ctx context.Context, orgID uuid.UUID) (*models.AssistantSettings, error) {
	query := `
		SELECT ` + settingsColumns + `
		FROM assistant_settings
		WHERE organization_id = $1`

	st, err := scanSettings(s.db.QueryRow(ctx, query, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Printf("ERROR [PostgresStore] GetAssistantSettings: query failed for OrgID %s: %v", orgID, err)
		return nil, fmt.Errorf("database error fetching assistant settings: %w", err)
	}
	return st, nil
}

// UpsertAssistantSettings writes the per-org settings row, preserving any
// field the caller left nil.
func (s *PostgresStore) UpsertAssistantSettings(ctx context.Context, arg store.UpsertAssistantSettingsParams) (*models.AssistantSettings, error) {
	query := `
		INSERT INTO assistant_settings (organization_id, system_prompt, llm_model, history_window)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (organization_id) DO UPDATE SET
			system_prompt  = COALESCE($2, assistant_settings.system_prompt),
			llm_model      = COALESCE($3, assistant_settings.llm_model),
			history_window = COALESCE($4, assistant_settings.history_window),
			updated_at     = NOW()
		RETURNING ` + settingsColumns

	st, err := scanSettings(s.db.QueryRow(ctx, query,
		arg.OrganizationID,
		arg.SystemPrompt,
		arg.LLMModel,
		arg.HistoryWindow,
	))
	if err != nil {
		log.Printf("ERROR [PostgresStore] UpsertAssistantSettings: upsert failed for OrgID %s: %v", arg.OrganizationID, err)
		return nil, fmt.Errorf("database error saving assistant settings: %w", err)
	}
	return st, nil
}
