package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	integration_models "workdesk-backend/internal/models/integrations"
)

// Ensure OpenAIIntegration implements the Integration interface.
var _ Integration = (*OpenAIIntegration)(nil)

// OpenAIIntegration verifies completion-provider credentials against an
// OpenAI-compatible API.
type OpenAIIntegration struct {
	defaultBaseURL string
	httpClient     *http.Client
}

// NewOpenAIIntegration creates a new OpenAI integration handler. The base URL
// is used when the stored credentials do not carry their own.
func NewOpenAIIntegration(defaultBaseURL string) *OpenAIIntegration {
	return &OpenAIIntegration{
		defaultBaseURL: strings.TrimSuffix(defaultBaseURL, "/"),
		httpClient:     &http.Client{},
	}
}

// ValidateConfig accepts any well-formed JSON; the completion provider has no
// per-channel configuration.
func (o *OpenAIIntegration) ValidateConfig(configJSON json.RawMessage) error {
	if len(configJSON) == 0 || string(configJSON) == "null" {
		return nil
	}
	if !json.Valid(configJSON) {
		return fmt.Errorf("invalid JSON format for OpenAI configuration")
	}
	return nil
}

// TestConnection probes the models listing endpoint to verify the API key.
func (o *OpenAIIntegration) TestConnection(ctx context.Context, decryptedCreds integration_models.DecryptedCredentials) (*integration_models.TestConnectionResult, error) {
	apiKey, keyOk := decryptedCreds["api_key"]
	if !keyOk || apiKey == "" {
		return &integration_models.TestConnectionResult{
			Success: false,
			Message: "Missing or empty 'api_key' in OpenAI credentials",
		}, nil
	}

	baseURL := o.defaultBaseURL
	if custom, ok := decryptedCreds["base_url"]; ok && custom != "" {
		baseURL = strings.TrimSuffix(custom, "/")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/v1/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build OpenAI connection test request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		log.Printf("ERROR [OpenAIIntegration] TestConnection: request failed: %v", err)
		return nil, fmt.Errorf("failed during OpenAI connection test: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return &integration_models.TestConnectionResult{
			Success: true,
			Message: fmt.Sprintf("Successfully connected to completion API at %s", baseURL),
		}, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return &integration_models.TestConnectionResult{
			Success: false,
			Message: "OpenAI API Error: Invalid API key.",
		}, nil
	default:
		return &integration_models.TestConnectionResult{
			Success: false,
			Message: fmt.Sprintf("OpenAI API returned unexpected status %d", resp.StatusCode),
		}, nil
	}
}

// GetCredentialSchema returns an empty CompletionCredentials struct to define the expected credential keys.
func (o *OpenAIIntegration) GetCredentialSchema() interface{} {
	return integration_models.CompletionCredentials{}
}
