package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusQueued NotificationStatus = "queued"
	NotificationStatusSent   NotificationStatus = "sent"
	NotificationStatusFailed NotificationStatus = "failed"
)

// Notification type codes produced by this service.
const (
	NotifTaskDueSoon           = "task_due_soon"
	NotifIncidentCreated       = "incident_created"
	NotifIncidentStatusChanged = "incident_status_changed"
	NotifStaleEvidence         = "stale_evidence"
)

// Notification is a queued side-effect created by producers and drained by
// the dispatcher (queued -> sent | failed).
type Notification struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	AISystemID   *uuid.UUID
	TaskID       *uuid.UUID
	UserID       *uuid.UUID
	Type         string
	Channel      string // "log", "slack", "email"
	Subject      string
	Body         string
	Payload      map[string]any
	Status       NotificationStatus
	ErrorText    string
	ScheduledFor *time.Time
	SentAt       *time.Time
	CreatedAt    time.Time
}

// DedupQuery describes an equivalence class of notifications for the
// duplicate guard: same type and scope, a payload key/value match, inside a
// trailing window ending now.
type DedupQuery struct {
	Type       string
	CompanyID  uuid.UUID
	AISystemID *uuid.UUID // nil matches rows with no system scope
	PayloadKey string
	PayloadVal string
	Window     time.Duration
}

type NotificationRepository interface {
	Enqueue(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*Notification, error)
	ListQueued(ctx context.Context, limit int) ([]*Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorText string) error

	// RecentMatch reports whether a notification matching q was created
	// within q.Window before now.
	RecentMatch(ctx context.Context, q DedupQuery, now time.Time) (bool, error)

	// RecentForTask reports whether a task reminder for (taskID, userID) was
	// created within the window before now. A nil userID only matches rows
	// with no user scope.
	RecentForTask(ctx context.Context, taskID uuid.UUID, userID *uuid.UUID, window time.Duration, now time.Time) (bool, error)
}
