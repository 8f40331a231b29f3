package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/slack-go/slack"

	integration_models "workdesk-backend/internal/models/integrations"
)

// Ensure SlackIntegration implements the Integration interface.
var _ Integration = (*SlackIntegration)(nil)

// SlackIntegration handles Slack-specific logic.
type SlackIntegration struct{}

// NewSlackIntegration creates a new Slack integration handler.
func NewSlackIntegration() *SlackIntegration {
	return &SlackIntegration{}
}

// ValidateConfig checks if the provided JSON conforms to the SlackChannelConfig structure.
func (s *SlackIntegration) ValidateConfig(configJSON json.RawMessage) error {
	var config integration_models.SlackChannelConfig

	if len(configJSON) == 0 || string(configJSON) == "null" {
		// Empty config is acceptable; team scoping is optional.
		return nil
	}

	if err := json.Unmarshal(configJSON, &config); err != nil {
		return fmt.Errorf("invalid JSON format for Slack configuration: %w", err)
	}

	return nil
}

// TestConnection tests the connection to Slack using the bot token.
func (s *SlackIntegration) TestConnection(ctx context.Context, decryptedCreds integration_models.DecryptedCredentials) (*integration_models.TestConnectionResult, error) {
	botToken, tokenOk := decryptedCreds["bot_token"]
	_, secretOk := decryptedCreds["signing_secret"]

	if !tokenOk || botToken == "" {
		return &integration_models.TestConnectionResult{
			Success: false,
			Message: "Missing or empty 'bot_token' in Slack credentials",
		}, nil
	}
	if !secretOk {
		// auth.test only needs the token, but webhooks will not verify without the secret.
		log.Println("WARN [SlackIntegration] TestConnection: Missing 'signing_secret' in provided credentials. Webhooks will fail.")
	}

	client := slack.New(botToken)

	authTestResponse, err := client.AuthTestContext(ctx)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "invalid_auth") {
			return &integration_models.TestConnectionResult{
				Success: false,
				Message: "Slack API Error: Invalid authentication token (bot_token).",
			}, nil
		} else if strings.Contains(errStr, "not_authed") {
			return &integration_models.TestConnectionResult{
				Success: false,
				Message: "Slack API Error: Not authenticated (check token scopes?).",
			}, nil
		}

		log.Printf("ERROR [SlackIntegration] TestConnection: Unhandled Slack API error or system error: %v", err)
		return nil, fmt.Errorf("failed during Slack connection test (AuthTest): %w", err)
	}

	return &integration_models.TestConnectionResult{
		Success: true,
		Message: fmt.Sprintf("Successfully connected to Slack workspace '%s' and verified token for Bot '%s' (ID: %s)", authTestResponse.Team, authTestResponse.User, authTestResponse.UserID),
		Details: map[string]interface{}{
			"bot_name":    authTestResponse.User,
			"bot_user_id": authTestResponse.UserID,
			"team_id":     authTestResponse.TeamID,
		},
	}, nil
}

// GetCredentialSchema returns an empty SlackCredentials struct to define the expected credential keys.
func (s *SlackIntegration) GetCredentialSchema() interface{} {
	return integration_models.SlackCredentials{}
}
