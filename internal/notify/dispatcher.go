package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/complyra/complyra/internal/domain"
)

// Dispatcher drains queued notifications and delivers them through the
// registered messenger for each row's channel. Rows on an unregistered
// channel fall back to "log" so they are never stuck in the queue.
type Dispatcher struct {
	notifications domain.NotificationRepository
	registry      *Registry
}

func NewDispatcher(notifications domain.NotificationRepository, registry *Registry) *Dispatcher {
	return &Dispatcher{notifications: notifications, registry: registry}
}

// DispatchQueued delivers up to limit queued notifications, marking each row
// sent or failed. A delivery failure marks the row failed and moves on; only
// queue-level errors abort the batch.
func (d *Dispatcher) DispatchQueued(ctx context.Context, limit int) (sent, failed int, err error) {
	queued, err := d.notifications.ListQueued(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("notify.Dispatcher.DispatchQueued: %w", err)
	}

	for _, n := range queued {
		subject, body := n.Subject, n.Body
		if subject == "" {
			subject, body = RenderMessage(n.Type, n.Payload)
		}

		m, ok := d.registry.Get(n.Channel)
		if !ok {
			log.Warn().Str("channel", n.Channel).Str("notification_id", n.ID.String()).Msg("notify: unregistered channel, falling back to log")
			m, ok = d.registry.Get("log")
			if !ok {
				failed++
				d.markFailed(ctx, n, fmt.Sprintf("no messenger for channel %q", n.Channel))
				continue
			}
		}

		if sendErr := m.Send(ctx, subject, body); sendErr != nil {
			failed++
			d.markFailed(ctx, n, sendErr.Error())
			continue
		}

		sent++
		if markErr := d.notifications.MarkSent(ctx, n.ID, time.Now()); markErr != nil {
			log.Warn().Err(markErr).Str("notification_id", n.ID.String()).Msg("notify: failed to mark sent")
		}
	}

	return sent, failed, nil
}

// Run drains the queue on every tick and on every wakeup until ctx is
// cancelled. wakeups may be nil when no pub/sub fanout is wired.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration, batch int, wakeups <-chan []byte) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case _, ok := <-wakeups:
			if !ok {
				wakeups = nil
				continue
			}
		}

		sent, failed, err := d.DispatchQueued(ctx, batch)
		if err != nil {
			log.Error().Err(err).Msg("notify: dispatch batch failed")
			continue
		}
		if sent > 0 || failed > 0 {
			log.Info().Int("sent", sent).Int("failed", failed).Msg("notify: dispatched batch")
		}
	}
}

func (d *Dispatcher) markFailed(ctx context.Context, n *domain.Notification, reason string) {
	if err := d.notifications.MarkFailed(ctx, n.ID, reason); err != nil {
		log.Warn().Err(err).Str("notification_id", n.ID.String()).Msg("notify: failed to mark failed")
	}
}
