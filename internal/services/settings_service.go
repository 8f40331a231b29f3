package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"workdesk-backend/internal/models"
	"workdesk-backend/internal/store"
)

// SettingsService manages per-org assistant configuration.
type SettingsService struct {
	store store.Store
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(s store.Store) *SettingsService {
	return &SettingsService{store: s}
}

func mapSettingsToResponse(st *models.AssistantSettings) *models.AssistantSettingsResponse {
	return &models.AssistantSettingsResponse{
		OrganizationID: st.OrganizationID,
		SystemPrompt:   st.SystemPrompt,
		LLMModel:       st.LLMModel,
		HistoryWindow:  st.HistoryWindow,
		UpdatedAt:      st.UpdatedAt,
	}
}

// GetSettings returns the org's assistant settings. An org that has never
// saved settings gets an empty response rather than an error; defaults apply
// at completion time.
func (s *SettingsService) GetSettings(ctx context.Context, orgID uuid.UUID) (*models.AssistantSettingsResponse, error) {
	st, err := s.store.GetAssistantSettings(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &models.AssistantSettingsResponse{OrganizationID: orgID}, nil
		}
		return nil, fmt.Errorf("failed to get assistant settings: %w", err)
	}
	return mapSettingsToResponse(st), nil
}

// UpdateSettings applies a partial update to the org's assistant settings.
func (s *SettingsService) UpdateSettings(ctx context.Context, orgID uuid.UUID, req models.UpdateAssistantSettingsRequest) (*models.AssistantSettingsResponse, error) {
	if req.HistoryWindow != nil && *req.HistoryWindow < 0 {
		return nil, fmt.Errorf("%w: history_window cannot be negative", ErrValidation)
	}

	st, err := s.store.UpsertAssistantSettings(ctx, store.UpsertAssistantSettingsParams{
		OrganizationID: orgID,
		SystemPrompt:   req.SystemPrompt,
		LLMModel:       req.LLMModel,
		HistoryWindow:  req.HistoryWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save assistant settings: %w", err)
	}
	return mapSettingsToResponse(st), nil
}
