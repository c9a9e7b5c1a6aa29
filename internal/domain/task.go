package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusPostponed  TaskStatus = "postponed"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// OpenLike reports whether the status counts as unfinished work for
// compliance derivation.
func (s TaskStatus) OpenLike() bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusBlocked, TaskStatusPostponed:
		return true
	default:
		return false
	}
}

// Task is a remediation task tracked against a regulatory obligation.
type Task struct {
	ID                 uuid.UUID
	CompanyID          uuid.UUID
	AISystemID         uuid.UUID
	Title              string
	Description        string
	Reference          string // regulation article / clause reference
	Status             TaskStatus
	Severity           string
	Mandatory          bool
	OwnerUserID        *uuid.UUID
	DueDate            *time.Time
	CompletedAt        *time.Time
	EvidenceURL        string
	Notes              string
	ReminderDaysBefore *int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	Status      TaskStatus
	Severity    string
	OwnerUserID *uuid.UUID
	Limit       int
	Offset      int
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	Update(ctx context.Context, t *Task) error
	ListBySystem(ctx context.Context, systemID uuid.UUID, filter TaskFilter) ([]*Task, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ListDueSoon returns open-like tasks whose due date falls within the
	// task's own reminder lead time as of now. Used by the reminder cycle.
	ListDueSoon(ctx context.Context, now time.Time) ([]*Task, error)
}
