package messenger

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogMessenger writes notifications to the structured log. It is the default
// channel and the fallback when no external channel is configured.
type LogMessenger struct{}

var _ Messenger = (*LogMessenger)(nil) //nolint:gochecknoglobals // compile-time check

func NewLogMessenger() *LogMessenger {
	return &LogMessenger{}
}

func (m *LogMessenger) Send(_ context.Context, subject, body string) error {
	log.Info().Str("subject", subject).Str("body", body).Msg("notification")
	return nil
}

func (m *LogMessenger) Channel() string {
	return "log"
}
