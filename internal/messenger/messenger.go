// Package messenger abstracts outbound notification channels.
package messenger

import "context"

// Messenger delivers a rendered notification over one channel (Slack, log,
// later email). Implementations handle channel-specific API calls.
type Messenger interface {
	// Send delivers a subject/body pair.
	Send(ctx context.Context, subject, body string) error

	// Channel returns the channel identifier (e.g. "slack", "log").
	Channel() string
}
