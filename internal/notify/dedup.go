// Package notify produces, deduplicates, and dispatches queued notifications
// derived from compliance events.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/complyra/complyra/internal/domain"
)

// Default trailing windows for the duplicate guard.
const (
	// DefaultEventWindow suppresses repeats of event-style notifications
	// (incident created, status changed) under retries or concurrent writers.
	DefaultEventWindow = 6 * time.Hour

	// TaskReminderWindow suppresses repeat due-soon reminders; one per task
	// and assignee per day.
	TaskReminderWindow = 24 * time.Hour
)

// Deduplicator answers "was an equivalent notification already queued
// recently". It is best-effort: a duplicate slipping through under a race is
// acceptable, suppressing a genuinely new event is not — which is why every
// query key includes the concrete entity id, never just the type.
type Deduplicator struct {
	notifications domain.NotificationRepository
}

func NewDeduplicator(notifications domain.NotificationRepository) *Deduplicator {
	return &Deduplicator{notifications: notifications}
}

// WouldDuplicate reports whether a notification matching q was queued within
// q.Window before now. A zero window falls back to DefaultEventWindow.
func (d *Deduplicator) WouldDuplicate(ctx context.Context, q domain.DedupQuery, now time.Time) (bool, error) {
	if q.Window <= 0 {
		q.Window = DefaultEventWindow
	}

	dup, err := d.notifications.RecentMatch(ctx, q, now)
	if err != nil {
		return false, fmt.Errorf("notify.Deduplicator.WouldDuplicate: %w", err)
	}
	return dup, nil
}

// WouldDuplicateTaskReminder reports whether a due-soon reminder for
// (taskID, userID) was queued within the daily window before now.
func (d *Deduplicator) WouldDuplicateTaskReminder(ctx context.Context, taskID uuid.UUID, userID *uuid.UUID, now time.Time) (bool, error) {
	dup, err := d.notifications.RecentForTask(ctx, taskID, userID, TaskReminderWindow, now)
	if err != nil {
		return false, fmt.Errorf("notify.Deduplicator.WouldDuplicateTaskReminder: %w", err)
	}
	return dup, nil
}
