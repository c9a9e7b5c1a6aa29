package slack_test

import (
	"context"
	"errors"
	"testing"

	slacklib "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyra/complyra/internal/messenger/slack"
)

type fakeSlackAPI struct {
	channelID string
	calls     int
	err       error
}

func (f *fakeSlackAPI) PostMessage(channelID string, _ ...slacklib.MsgOption) (string, string, error) {
	f.channelID = channelID
	f.calls++
	if f.err != nil {
		return "", "", f.err
	}
	return channelID, "1700000000.000100", nil
}

func TestSlackMessenger_Send(t *testing.T) {
	t.Parallel()

	api := &fakeSlackAPI{}
	m := slack.NewSlackMessenger(api, "C012AB3CD")

	err := m.Send(context.Background(), "[Incident] New incident opened", "details")
	require.NoError(t, err)
	assert.Equal(t, "C012AB3CD", api.channelID)
	assert.Equal(t, 1, api.calls)
}

func TestSlackMessenger_SendError(t *testing.T) {
	t.Parallel()

	api := &fakeSlackAPI{err: errors.New("channel_not_found")}
	m := slack.NewSlackMessenger(api, "C012AB3CD")

	err := m.Send(context.Background(), "subject", "body")
	require.Error(t, err)
	assert.ErrorContains(t, err, "channel_not_found")
}

func TestSlackMessenger_Channel(t *testing.T) {
	t.Parallel()

	m := slack.NewSlackMessenger(&fakeSlackAPI{}, "C1")
	assert.Equal(t, "slack", m.Channel())
}
