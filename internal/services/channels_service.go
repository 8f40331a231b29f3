package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"workdesk-backend/internal/integrations"
	"workdesk-backend/internal/models"
	"workdesk-backend/internal/store"
)

// Custom errors for the channels service
var (
	ErrChannelNotFound      = errors.New("channel not found")
	ErrChannelValidation    = errors.New("channel validation failed")
	ErrChannelBadCredential = errors.New("channel credential is missing or of the wrong service type")
)

// ChannelsService manages bound chat surfaces (Slack channels).
type ChannelsService struct {
	store    store.Store
	registry *integrations.Registry
}

// NewChannelsService creates a new ChannelsService.
func NewChannelsService(s store.Store, reg *integrations.Registry) *ChannelsService {
	return &ChannelsService{store: s, registry: reg}
}

func mapChannelToResponse(ch *models.Channel) *models.ChannelResponse {
	return &models.ChannelResponse{
		ID:             ch.ID,
		OrganizationID: ch.OrganizationID,
		UserID:         ch.UserID,
		CredentialID:   ch.CredentialID,
		ServiceType:    ch.ServiceType,
		Name:           ch.Name,
		Configuration:  ch.Configuration,
		IsActive:       ch.IsActive,
		CreatedAt:      ch.CreatedAt,
		UpdatedAt:      ch.UpdatedAt,
	}
}

// CreateChannel binds a chat surface to the calling user via a Slack credential.
func (s *ChannelsService) CreateChannel(ctx context.Context, orgID, userID uuid.UUID, req models.CreateChannelRequest) (*models.ChannelResponse, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrChannelValidation)
	}
	if req.CredentialID == uuid.Nil {
		return nil, fmt.Errorf("%w: credential_id is required", ErrChannelValidation)
	}

	cred, err := s.store.GetIntegrationCredentialByID(ctx, req.CredentialID, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrChannelBadCredential
		}
		return nil, fmt.Errorf("failed to verify credential: %w", err)
	}
	if cred.ServiceType != models.ServiceTypeSlack {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrChannelBadCredential, models.ServiceTypeSlack, cred.ServiceType)
	}

	integration, err := s.registry.Get(string(models.ServiceTypeSlack))
	if err != nil {
		return nil, fmt.Errorf("internal configuration error for Slack service: %w", err)
	}
	if err := integration.ValidateConfig(req.Configuration); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChannelValidation, err)
	}

	params := store.CreateChannelParams{
		ID:             uuid.New(),
		OrganizationID: orgID,
		UserID:         userID,
		CredentialID:   req.CredentialID,
		ServiceType:    string(models.ServiceTypeSlack),
		Name:           req.Name,
		Configuration:  req.Configuration,
		IsActive:       true,
	}

	ch, err := s.store.CreateChannel(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	log.Printf("[ChannelsService] Created channel %s ('%s') for user %s", ch.ID, ch.Name, userID)
	return mapChannelToResponse(ch), nil
}

// GetChannel retrieves a channel by ID, scoped to the organization.
func (s *ChannelsService) GetChannel(ctx context.Context, id, orgID uuid.UUID) (*models.ChannelResponse, error) {
	ch, err := s.store.GetChannelByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	// GetChannelByID is unscoped for the webhook path; enforce org here.
	if ch.OrganizationID != orgID {
		return nil, ErrChannelNotFound
	}
	return mapChannelToResponse(ch), nil
}

// GetChannelForWebhook retrieves a channel by ID alone. Inbound webhooks
// carry no authenticated org context; the channel row supplies it.
func (s *ChannelsService) GetChannelForWebhook(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	ch, err := s.store.GetChannelByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return ch, nil
}

// ListChannels returns the organization's channels.
func (s *ChannelsService) ListChannels(ctx context.Context, orgID uuid.UUID) (*models.ListChannelsResponse, error) {
	chans, err := s.store.ListChannelsByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	resp := make([]models.ChannelResponse, len(chans))
	for i := range chans {
		resp[i] = *mapChannelToResponse(&chans[i])
	}
	return &models.ListChannelsResponse{Channels: resp}, nil
}

// DeleteChannel removes a channel binding.
func (s *ChannelsService) DeleteChannel(ctx context.Context, id, orgID uuid.UUID) error {
	if err := s.store.DeleteChannel(ctx, id, orgID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrChannelNotFound
		}
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	log.Printf("[ChannelsService] Deleted channel %s", id)
	return nil
}
