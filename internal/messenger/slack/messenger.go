package slack

import (
	"context"
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/complyra/complyra/internal/messenger"
)

// SlackAPI abstracts the subset of the Slack client used by SlackMessenger.
// This allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessage(channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// SlackMessenger delivers notifications to a fixed Slack channel.
type SlackMessenger struct {
	api       SlackAPI
	channelID string
}

// Compile-time interface check.
var _ messenger.Messenger = (*SlackMessenger)(nil) //nolint:gochecknoglobals // compile-time check

// NewSlackMessenger creates a SlackMessenger posting to channelID.
func NewSlackMessenger(api SlackAPI, channelID string) *SlackMessenger {
	return &SlackMessenger{api: api, channelID: channelID}
}

// Send posts the subject as a bold header line followed by the body.
func (m *SlackMessenger) Send(_ context.Context, subject, body string) error {
	text := fmt.Sprintf("*%s*\n%s", subject, body)
	_, _, err := m.api.PostMessage(m.channelID, slacklib.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack.SlackMessenger.Send: %w", err)
	}

	return nil
}

func (m *SlackMessenger) Channel() string {
	return "slack"
}
