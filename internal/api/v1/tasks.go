package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/complyra/complyra/internal/audit"
	"github.com/complyra/complyra/internal/authz"
	"github.com/complyra/complyra/internal/domain"
)

type CreateTaskInput struct {
	SystemID uuid.UUID `path:"systemID" doc:"Owning system ID"`
	Body     struct {
		Title              string     `json:"title" minLength:"1" maxLength:"500" doc:"Task title"`
		Description        string     `json:"description,omitempty" doc:"Task description"`
		Reference          string     `json:"reference,omitempty" maxLength:"255" doc:"Regulation reference"`
		Severity           string     `json:"severity,omitempty" maxLength:"32" doc:"Severity"`
		Mandatory          bool       `json:"mandatory,omitempty" doc:"Counts toward compliance status"`
		OwnerUserID        *uuid.UUID `json:"owner_user_id,omitempty" doc:"Owner actor ID"`
		DueDate            *time.Time `json:"due_date,omitempty" doc:"Due date"`
		ReminderDaysBefore *int       `json:"reminder_days_before,omitempty" minimum:"0" doc:"Reminder lead time in days"`
	}
}

type CreateTaskOutput struct {
	Body *domain.Task
}

type ListTasksInput struct {
	SystemID uuid.UUID `path:"systemID" doc:"System ID"`
	Status   string    `query:"status" doc:"Filter by status"`
	Severity string    `query:"severity" doc:"Filter by severity"`
	Limit    int       `query:"limit" minimum:"0" maximum:"500" doc:"Page size"`
	Offset   int       `query:"offset" minimum:"0" doc:"Page offset"`
}

type ListTasksOutput struct {
	Body []*domain.Task
}

type GetTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type GetTaskOutput struct {
	Body *domain.Task
}

type UpdateTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Title              *string    `json:"title,omitempty" maxLength:"500" doc:"Task title"`
		Description        *string    `json:"description,omitempty" doc:"Task description"`
		Reference          *string    `json:"reference,omitempty" maxLength:"255" doc:"Regulation reference"`
		Status             *string    `json:"status,omitempty" doc:"Task status"`
		Severity           *string    `json:"severity,omitempty" maxLength:"32" doc:"Severity"`
		Mandatory          *bool      `json:"mandatory,omitempty" doc:"Counts toward compliance status"`
		OwnerUserID        *uuid.UUID `json:"owner_user_id,omitempty" doc:"Owner actor ID"`
		DueDate            *time.Time `json:"due_date,omitempty" doc:"Due date"`
		CompletedAt        *time.Time `json:"completed_at,omitempty" doc:"Completion timestamp"`
		EvidenceURL        *string    `json:"evidence_url,omitempty" maxLength:"2048" doc:"Evidence link"`
		Notes              *string    `json:"notes,omitempty" doc:"Free-form notes"`
		ReminderDaysBefore *int       `json:"reminder_days_before,omitempty" minimum:"0" doc:"Reminder lead time in days"`
	}
}

type UpdateTaskOutput struct {
	Body *domain.Task
}

type DeleteTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

func validTaskStatus(raw string) (domain.TaskStatus, bool) {
	switch status := domain.TaskStatus(raw); status {
	case domain.TaskStatusOpen, domain.TaskStatusInProgress, domain.TaskStatusBlocked,
		domain.TaskStatusPostponed, domain.TaskStatusDone, domain.TaskStatusCancelled:
		return status, true
	default:
		return "", false
	}
}

func RegisterTaskRoutes(api huma.API, deps *Deps) {
	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/systems/{systemID}/tasks",
		Summary:     "Create a remediation task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		system, err := deps.Guard.EnsureSystemWriteFull(ctx, actor, input.SystemID)
		if err != nil {
			return nil, guardError(err, "system")
		}

		now := time.Now()
		t := &domain.Task{
			ID:                 uuid.New(),
			CompanyID:          system.CompanyID,
			AISystemID:         system.ID,
			Title:              input.Body.Title,
			Description:        input.Body.Description,
			Reference:          input.Body.Reference,
			Status:             domain.TaskStatusOpen,
			Severity:           input.Body.Severity,
			Mandatory:          input.Body.Mandatory,
			OwnerUserID:        input.Body.OwnerUserID,
			DueDate:            input.Body.DueDate,
			ReminderDaysBefore: input.Body.ReminderDaysBefore,
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		if err := deps.Store.Tasks().Create(ctx, t); err != nil {
			return nil, huma.Error500InternalServerError("failed to create task", err)
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &t.CompanyID,
			ActorID:    &actor.ID,
			Action:     domain.AuditTaskCreated,
			EntityType: "task",
			EntityID:   &t.ID,
			Metadata:   map[string]any{"title": t.Title, "mandatory": t.Mandatory},
		})

		recomputeCompliance(ctx, deps, actor, system)

		return &CreateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/systems/{systemID}/tasks",
		Summary:     "List tasks for a system",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ListTasksInput) (*ListTasksOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := deps.Guard.EnsureSystemRead(ctx, actor, input.SystemID); err != nil {
			return nil, guardError(err, "system")
		}

		filter := domain.TaskFilter{
			Severity: input.Severity,
			Limit:    input.Limit,
			Offset:   input.Offset,
		}
		if input.Status != "" {
			status, ok := validTaskStatus(input.Status)
			if !ok {
				return nil, huma.Error400BadRequest("unknown task status: " + input.Status)
			}
			filter.Status = status
		}

		tasks, err := deps.Store.Tasks().ListBySystem(ctx, input.SystemID, filter)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		return &ListTasksOutput{Body: tasks}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get a task by ID",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *GetTaskInput) (*GetTaskOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		task, err := deps.Guard.EnsureTaskRead(ctx, actor, input.ID)
		if err != nil {
			return nil, guardError(err, "task")
		}

		return &GetTaskOutput{Body: task}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}",
		Summary:     "Update a task",
		Description: "Full-write callers may change any field. Limited-tier callers (system members) are restricted to the progress fields.",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*UpdateTaskOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		changed := changedTaskFields(input)
		if len(changed) == 0 {
			return nil, huma.Error400BadRequest("no fields to update")
		}

		task, err := deps.Guard.EnsureTaskWriteFull(ctx, actor, input.ID)
		if err != nil {
			if !errors.Is(err, domain.ErrForbidden) {
				return nil, guardError(err, "task")
			}
			// Fall back to the limited tier, which only admits the fixed
			// field allow-list.
			task, err = deps.Guard.EnsureTaskWriteLimited(ctx, actor, input.ID)
			if err != nil {
				return nil, guardError(err, "task")
			}
			if err := authz.CheckLimitedTaskFields(changed); err != nil {
				return nil, huma.Error403Forbidden(err.Error())
			}
		}

		if input.Body.Status != nil {
			status, ok := validTaskStatus(*input.Body.Status)
			if !ok {
				return nil, huma.Error400BadRequest("unknown task status: " + *input.Body.Status)
			}
			task.Status = status
			if status == domain.TaskStatusDone && task.CompletedAt == nil && input.Body.CompletedAt == nil {
				now := time.Now()
				task.CompletedAt = &now
			}
		}
		if input.Body.Title != nil {
			task.Title = *input.Body.Title
		}
		if input.Body.Description != nil {
			task.Description = *input.Body.Description
		}
		if input.Body.Reference != nil {
			task.Reference = *input.Body.Reference
		}
		if input.Body.Severity != nil {
			task.Severity = *input.Body.Severity
		}
		if input.Body.Mandatory != nil {
			task.Mandatory = *input.Body.Mandatory
		}
		if input.Body.OwnerUserID != nil {
			task.OwnerUserID = input.Body.OwnerUserID
		}
		if input.Body.DueDate != nil {
			task.DueDate = input.Body.DueDate
		}
		if input.Body.CompletedAt != nil {
			task.CompletedAt = input.Body.CompletedAt
		}
		if input.Body.EvidenceURL != nil {
			task.EvidenceURL = *input.Body.EvidenceURL
		}
		if input.Body.Notes != nil {
			task.Notes = *input.Body.Notes
		}
		if input.Body.ReminderDaysBefore != nil {
			task.ReminderDaysBefore = input.Body.ReminderDaysBefore
		}
		task.UpdatedAt = time.Now()

		if err := deps.Store.Tasks().Update(ctx, task); err != nil {
			return nil, huma.Error500InternalServerError("failed to update task", err)
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &task.CompanyID,
			ActorID:    &actor.ID,
			Action:     domain.AuditTaskUpdated,
			EntityType: "task",
			EntityID:   &task.ID,
			Metadata:   map[string]any{"fields": changed},
		})

		if system, err := deps.Store.Systems().GetByID(ctx, task.AISystemID); err == nil {
			recomputeCompliance(ctx, deps, actor, system)
		}

		return &UpdateTaskOutput{Body: task}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*struct{}, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		task, err := deps.Guard.EnsureTaskWriteFull(ctx, actor, input.ID)
		if err != nil {
			return nil, guardError(err, "task")
		}

		if err := deps.Store.Tasks().Delete(ctx, input.ID); err != nil {
			return nil, guardError(err, "task")
		}

		// The deletion row goes first; a derived status change follows as a
		// second row, causally ordered but not atomic as a pair.
		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &task.CompanyID,
			ActorID:    &actor.ID,
			Action:     domain.AuditTaskDeleted,
			EntityType: "task",
			EntityID:   &task.ID,
			Metadata:   map[string]any{"title": task.Title},
		})

		if system, err := deps.Store.Systems().GetByID(ctx, task.AISystemID); err == nil {
			recomputeCompliance(ctx, deps, actor, system)
		}

		return nil, nil
	})
}

// changedTaskFields names the fields present in the patch body. The names
// match the limited-tier allow-list keys.
func changedTaskFields(input *UpdateTaskInput) []string {
	var changed []string
	add := func(name string, set bool) {
		if set {
			changed = append(changed, name)
		}
	}
	add("title", input.Body.Title != nil)
	add("description", input.Body.Description != nil)
	add("reference", input.Body.Reference != nil)
	add("status", input.Body.Status != nil)
	add("severity", input.Body.Severity != nil)
	add("mandatory", input.Body.Mandatory != nil)
	add("owner_user_id", input.Body.OwnerUserID != nil)
	add("due_date", input.Body.DueDate != nil)
	add("completed_at", input.Body.CompletedAt != nil)
	add("evidence_url", input.Body.EvidenceURL != nil)
	add("notes", input.Body.Notes != nil)
	add("reminder_days_before", input.Body.ReminderDaysBefore != nil)
	return changed
}

// recomputeCompliance re-derives the system's compliance status from its
// mandatory tasks and, when it moved, persists it and appends a
// COMPLIANCE_STATUS_CHANGED row. The whole recompute is isolated: the task
// mutation that triggered it has already succeeded.
func recomputeCompliance(ctx context.Context, deps *Deps, actor *domain.Actor, system *domain.AISystem) {
	audit.Isolate(ctx, "compliance.recompute", func(ctx context.Context) error {
		tasks, err := deps.Store.Tasks().ListBySystem(ctx, system.ID, domain.TaskFilter{})
		if err != nil {
			return err
		}

		derived := domain.DeriveComplianceStatus(tasks, time.Now())
		if derived == system.ComplianceStatus {
			return nil
		}

		if err := deps.Store.Systems().UpdateComplianceStatus(ctx, system.ID, derived); err != nil {
			return err
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &system.CompanyID,
			ActorID:    &actor.ID,
			Action:     domain.AuditComplianceStatusChanged,
			EntityType: "ai_system",
			EntityID:   &system.ID,
			Metadata:   map[string]any{"from": string(system.ComplianceStatus), "to": string(derived)},
		})
		system.ComplianceStatus = derived
		return nil
	})
}
