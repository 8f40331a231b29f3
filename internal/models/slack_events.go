package models

// SlackEventPayload represents an event callback from Slack.
type SlackEventPayload struct {
	Token     string     `json:"token"`
	TeamID    string     `json:"team_id"`
	APIAppID  string     `json:"api_app_id"`
	Event     SlackEvent `json:"event"`
	Type      string     `json:"type"` // e.g. "event_callback"
	EventID   string     `json:"event_id"`
	EventTime int64      `json:"event_time"`
}

// SlackEvent represents the actual event details within the payload.
type SlackEvent struct {
	User        string `json:"user"` // user ID of the sender
	BotID       string `json:"bot_id,omitempty"`
	Type        string `json:"type"` // e.g. "message", "app_mention"
	Text        string `json:"text"`
	Timestamp   string `json:"ts"`
	ThreadTs    string `json:"thread_ts,omitempty"`
	Channel     string `json:"channel"`
	ChannelType string `json:"channel_type"`
	EventTs     string `json:"event_ts"`
}

// SlackChallengeRequest is used for Slack's URL verification handshake.
type SlackChallengeRequest struct {
	Token     string `json:"token"`
	Challenge string `json:"challenge"`
	Type      string `json:"type"` // "url_verification"
}
