package integrations

// SlackChannelConfig is the expected configuration structure for a Slack
// channel binding.
type SlackChannelConfig struct {
	SlackTeamID   string `json:"slack_team_id"`             // the Slack workspace/team ID
	DefaultThread bool   `json:"default_thread,omitempty"`  // reply in-thread when set
	AllowedUserID string `json:"allowed_user_id,omitempty"` // restrict intake to one Slack user
}

// SlackCredentials is the expected structure for Slack API credentials
// (stored encrypted).
type SlackCredentials struct {
	BotToken      string `json:"bot_token"`      // xoxb-... token
	SigningSecret string `json:"signing_secret"` // used for webhook verification
}

// CompletionCredentials is the expected structure for completion-provider
// credentials (stored encrypted).
type CompletionCredentials struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url,omitempty"` // optional override, without trailing /v1
}

// TestConnectionResult is the standard structure for testing an
// integration's connection.
type TestConnectionResult struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// DecryptedCredentials is the helper type for decrypted credential maps.
type DecryptedCredentials map[string]string
