package slack

import (
	"context"
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// SendMessageToChannel sends a message to a specified Slack channel using a bot token.
// If threadTs is provided, the message will be sent as a reply in a thread.
func SendMessageToChannel(ctx context.Context, botToken string, channelID string, text string, threadTs string) error {
	if botToken == "" {
		return fmt.Errorf("SendMessageToChannel: empty bot token provided")
	}

	apiClient := slack.New(botToken)

	msgOptions := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if threadTs != "" {
		msgOptions = append(msgOptions, slack.MsgOptionTS(threadTs))
	}

	_, _, err := apiClient.PostMessageContext(ctx, channelID, msgOptions...)
	if err != nil {
		log.Printf("ERROR [SlackSender] Failed to post message to channel %s: %v", channelID, err)
		return fmt.Errorf("failed to post message to Slack channel %s: %w", channelID, err)
	}

	return nil
}
