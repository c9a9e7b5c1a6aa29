package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/complyra/complyra/internal/domain"
	redisstore "github.com/complyra/complyra/internal/store/redis"
)

// Publisher fans out a wakeup when a notification is queued so the dispatcher
// can drain promptly. Implemented by the redis pub/sub store; nil disables
// fanout.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// QueueChannel is the pub/sub channel carrying queued-notification wakeups.
const QueueChannel = "notifications:queued"

// Producer enqueues derived notifications with a duplicate guard. Dedup-check
// failures are logged and treated as "not a duplicate": losing the guard must
// never lose the notification.
type Producer struct {
	notifications domain.NotificationRepository
	systems       domain.AISystemRepository
	tasks         domain.TaskRepository
	dedup         *Deduplicator
	publisher     Publisher
	channel       string // default delivery channel for new rows
}

func NewProducer(
	notifications domain.NotificationRepository,
	systems domain.AISystemRepository,
	tasks domain.TaskRepository,
	publisher Publisher,
	channel string,
) *Producer {
	if channel == "" {
		channel = "log"
	}
	return &Producer{
		notifications: notifications,
		systems:       systems,
		tasks:         tasks,
		dedup:         NewDeduplicator(notifications),
		publisher:     publisher,
		channel:       channel,
	}
}

// IncidentCreated enqueues an incident_created notification. Returns false
// when the duplicate guard suppressed it.
func (p *Producer) IncidentCreated(ctx context.Context, incident *domain.Incident) (bool, error) {
	dup := p.checkDup(ctx, domain.DedupQuery{
		Type:       domain.NotifIncidentCreated,
		CompanyID:  incident.CompanyID,
		AISystemID: &incident.AISystemID,
		PayloadKey: "incident_id",
		PayloadVal: incident.ID.String(),
		Window:     DefaultEventWindow,
	})
	if dup {
		return false, nil
	}

	payload := map[string]any{
		"incident_id":    incident.ID.String(),
		"ai_system_id":   incident.AISystemID.String(),
		"ai_system_name": p.systemName(ctx, incident.AISystemID),
		"severity":       incident.Severity,
		"type":           incident.IncidentType,
		"status":         string(incident.Status),
		"summary":        incident.Summary,
		"reason":         domain.NotifIncidentCreated,
	}

	err := p.enqueue(ctx, &domain.Notification{
		CompanyID:  incident.CompanyID,
		AISystemID: &incident.AISystemID,
		Type:       domain.NotifIncidentCreated,
		Payload:    payload,
	})
	if err != nil {
		return false, fmt.Errorf("notify.Producer.IncidentCreated: %w", err)
	}
	return true, nil
}

// IncidentStatusChanged enqueues an incident_status_changed notification.
func (p *Producer) IncidentStatusChanged(ctx context.Context, incident *domain.Incident, oldStatus domain.IncidentStatus) (bool, error) {
	dup := p.checkDup(ctx, domain.DedupQuery{
		Type:       domain.NotifIncidentStatusChanged,
		CompanyID:  incident.CompanyID,
		AISystemID: &incident.AISystemID,
		PayloadKey: "incident_id",
		PayloadVal: incident.ID.String(),
		Window:     DefaultEventWindow,
	})
	if dup {
		return false, nil
	}

	payload := map[string]any{
		"incident_id":    incident.ID.String(),
		"ai_system_id":   incident.AISystemID.String(),
		"ai_system_name": p.systemName(ctx, incident.AISystemID),
		"old_status":     string(oldStatus),
		"new_status":     string(incident.Status),
		"severity":       incident.Severity,
		"type":           incident.IncidentType,
		"reason":         domain.NotifIncidentStatusChanged,
	}

	err := p.enqueue(ctx, &domain.Notification{
		CompanyID:  incident.CompanyID,
		AISystemID: &incident.AISystemID,
		Type:       domain.NotifIncidentStatusChanged,
		Payload:    payload,
	})
	if err != nil {
		return false, fmt.Errorf("notify.Producer.IncidentStatusChanged: %w", err)
	}
	return true, nil
}

// RunDueSoonCycle scans open tasks inside their reminder lead time and
// enqueues one task_due_soon reminder per (task, owner) per day. Returns the
// number of reminders enqueued. Per-task failures are logged and skipped so
// one bad row cannot starve the rest of the cycle.
func (p *Producer) RunDueSoonCycle(ctx context.Context, now time.Time) (int, error) {
	due, err := p.tasks.ListDueSoon(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("notify.Producer.RunDueSoonCycle: %w", err)
	}

	created := 0
	for _, task := range due {
		dup, dedupErr := p.dedup.WouldDuplicateTaskReminder(ctx, task.ID, task.OwnerUserID, now)
		if dedupErr != nil {
			log.Warn().Err(dedupErr).Str("task_id", task.ID.String()).Msg("notify: reminder dedup check failed, proceeding without guard")
		}
		if dup {
			continue
		}

		var dueStr string
		if task.DueDate != nil {
			dueStr = task.DueDate.Format("2006-01-02")
		}

		payload := map[string]any{
			"task_id":        task.ID.String(),
			"title":          task.Title,
			"due_date":       dueStr,
			"ai_system_id":   task.AISystemID.String(),
			"ai_system_name": p.systemName(ctx, task.AISystemID),
			"reason":         domain.NotifTaskDueSoon,
		}

		n := &domain.Notification{
			CompanyID:  task.CompanyID,
			AISystemID: &task.AISystemID,
			TaskID:     &task.ID,
			UserID:     task.OwnerUserID,
			Type:       domain.NotifTaskDueSoon,
			Payload:    payload,
		}
		if enqErr := p.enqueue(ctx, n); enqErr != nil {
			log.Warn().Err(enqErr).Str("task_id", task.ID.String()).Msg("notify: failed to enqueue reminder")
			continue
		}
		created++
	}

	return created, nil
}

// checkDup runs the duplicate guard, treating a guard failure as "no
// duplicate" per the best-effort contract.
func (p *Producer) checkDup(ctx context.Context, q domain.DedupQuery) bool {
	dup, err := p.dedup.WouldDuplicate(ctx, q, time.Now())
	if err != nil {
		log.Warn().Err(err).Str("type", q.Type).Msg("notify: dedup check failed, proceeding without guard")
		return false
	}
	return dup
}

func (p *Producer) enqueue(ctx context.Context, n *domain.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Channel == "" {
		n.Channel = p.channel
	}
	if n.Status == "" {
		n.Status = domain.NotificationStatusQueued
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Subject == "" {
		n.Subject, n.Body = RenderMessage(n.Type, n.Payload)
	}

	if err := p.notifications.Enqueue(ctx, n); err != nil {
		return err
	}

	// Wakeup fanout is best-effort; the dispatcher also polls.
	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, QueueChannel, []byte(n.ID.String())); err != nil {
			log.Warn().Err(err).Msg("notify: queue wakeup publish failed")
		}
		p.fanoutScoped(ctx, n)
	}

	return nil
}

// fanoutScoped mirrors the queued row onto the company and system event
// channels so live subscribers see new notifications without polling.
func (p *Producer) fanoutScoped(ctx context.Context, n *domain.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		log.Warn().Err(err).Str("notification_id", n.ID.String()).Msg("notify: scoped fanout marshal failed")
		return
	}

	if err := p.publisher.Publish(ctx, redisstore.CompanyChannel(n.CompanyID), payload); err != nil {
		log.Warn().Err(err).Msg("notify: company fanout publish failed")
	}
	if n.AISystemID != nil {
		if err := p.publisher.Publish(ctx, redisstore.SystemChannel(n.CompanyID, *n.AISystemID), payload); err != nil {
			log.Warn().Err(err).Msg("notify: system fanout publish failed")
		}
	}
}

func (p *Producer) systemName(ctx context.Context, systemID uuid.UUID) string {
	system, err := p.systems.GetByID(ctx, systemID)
	if err != nil {
		return ""
	}
	return system.Name
}
