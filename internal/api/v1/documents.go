package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/complyra/complyra/internal/domain"
)

type CreateDocumentInput struct {
	Body struct {
		AISystemID  *uuid.UUID `json:"ai_system_id,omitempty" doc:"Owning system ID (direct scope)"`
		TaskID      *uuid.UUID `json:"task_id,omitempty" doc:"Linked task ID (transitive scope)"`
		Name        string     `json:"name" minLength:"1" maxLength:"255" doc:"Document name"`
		DocType     string     `json:"doc_type,omitempty" maxLength:"64" doc:"Document type"`
		URL         string     `json:"url" minLength:"1" maxLength:"2048" doc:"Storage URL"`
		ReviewDueAt *time.Time `json:"review_due_at,omitempty" doc:"Next review date"`
	}
}

type CreateDocumentOutput struct {
	Body *domain.Document
}

type GetDocumentInput struct {
	ID uuid.UUID `path:"id" doc:"Document ID"`
}

type GetDocumentOutput struct {
	Body *domain.Document
}

type ListSystemDocumentsInput struct {
	SystemID uuid.UUID `path:"systemID" doc:"System ID"`
}

type ListTaskDocumentsInput struct {
	TaskID uuid.UUID `path:"taskID" doc:"Task ID"`
}

type ListDocumentsOutput struct {
	Body []*domain.Document
}

type UpdateDocumentInput struct {
	ID   uuid.UUID `path:"id" doc:"Document ID"`
	Body struct {
		Name        string     `json:"name,omitempty" maxLength:"255" doc:"Document name"`
		DocType     string     `json:"doc_type,omitempty" maxLength:"64" doc:"Document type"`
		URL         string     `json:"url,omitempty" maxLength:"2048" doc:"Storage URL"`
		ReviewDueAt *time.Time `json:"review_due_at,omitempty" doc:"Next review date"`
	}
}

type UpdateDocumentOutput struct {
	Body *domain.Document
}

type DeleteDocumentInput struct {
	ID uuid.UUID `path:"id" doc:"Document ID"`
}

func RegisterDocumentRoutes(api huma.API, deps *Deps) {
	huma.Register(api, huma.Operation{
		OperationID: "create-document",
		Method:      http.MethodPost,
		Path:        "/documents",
		Summary:     "Attach a compliance document",
		Description: "The document must reference a system directly or through a task; the company scope is derived from the owning system, never from the client.",
		Tags:        []string{"Documents"},
	}, func(ctx context.Context, input *CreateDocumentInput) (*CreateDocumentOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		if input.Body.AISystemID == nil && input.Body.TaskID == nil {
			return nil, huma.Error422UnprocessableEntity("document must reference a system or a task")
		}

		// Evidence upload is a limited-tier write: system members may attach
		// documents to their systems.
		var system *domain.AISystem
		if input.Body.AISystemID != nil {
			system, err = deps.Guard.EnsureSystemWriteLimited(ctx, actor, *input.Body.AISystemID)
			if err != nil {
				return nil, guardError(err, "system")
			}
		} else {
			task, err := deps.Guard.EnsureTaskWriteLimited(ctx, actor, *input.Body.TaskID)
			if err != nil {
				return nil, guardError(err, "task")
			}
			system, err = deps.Store.Systems().GetByID(ctx, task.AISystemID)
			if err != nil {
				return nil, guardError(err, "system")
			}
		}

		now := time.Now()
		d := &domain.Document{
			ID:          uuid.New(),
			CompanyID:   system.CompanyID,
			AISystemID:  input.Body.AISystemID,
			TaskID:      input.Body.TaskID,
			Name:        input.Body.Name,
			DocType:     input.Body.DocType,
			URL:         input.Body.URL,
			UploadedBy:  &actor.ID,
			ReviewDueAt: input.Body.ReviewDueAt,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := deps.Store.Documents().Create(ctx, d); err != nil {
			return nil, huma.Error500InternalServerError("failed to create document", err)
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &d.CompanyID,
			ActorID:    &actor.ID,
			Action:     domain.AuditDocumentCreated,
			EntityType: "document",
			EntityID:   &d.ID,
			Metadata:   map[string]any{"name": d.Name},
		})

		return &CreateDocumentOutput{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-document",
		Method:      http.MethodGet,
		Path:        "/documents/{id}",
		Summary:     "Get a document by ID",
		Tags:        []string{"Documents"},
	}, func(ctx context.Context, input *GetDocumentInput) (*GetDocumentOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		doc, err := deps.Guard.EnsureDocumentRead(ctx, actor, input.ID)
		if err != nil {
			return nil, guardError(err, "document")
		}

		return &GetDocumentOutput{Body: doc}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-system-documents",
		Method:      http.MethodGet,
		Path:        "/systems/{systemID}/documents",
		Summary:     "List documents attached to a system",
		Tags:        []string{"Documents"},
	}, func(ctx context.Context, input *ListSystemDocumentsInput) (*ListDocumentsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := deps.Guard.EnsureSystemRead(ctx, actor, input.SystemID); err != nil {
			return nil, guardError(err, "system")
		}

		docs, err := deps.Store.Documents().ListBySystem(ctx, input.SystemID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list documents", err)
		}

		return &ListDocumentsOutput{Body: docs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-task-documents",
		Method:      http.MethodGet,
		Path:        "/tasks/{taskID}/documents",
		Summary:     "List documents attached to a task",
		Tags:        []string{"Documents"},
	}, func(ctx context.Context, input *ListTaskDocumentsInput) (*ListDocumentsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := deps.Guard.EnsureTaskRead(ctx, actor, input.TaskID); err != nil {
			return nil, guardError(err, "task")
		}

		docs, err := deps.Store.Documents().ListByTask(ctx, input.TaskID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list documents", err)
		}

		return &ListDocumentsOutput{Body: docs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-document",
		Method:      http.MethodPut,
		Path:        "/documents/{id}",
		Summary:     "Update a document",
		Tags:        []string{"Documents"},
	}, func(ctx context.Context, input *UpdateDocumentInput) (*UpdateDocumentOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		doc, err := deps.Guard.EnsureDocumentWriteLimited(ctx, actor, input.ID)
		if err != nil {
			return nil, guardError(err, "document")
		}

		if input.Body.Name != "" {
			doc.Name = input.Body.Name
		}
		if input.Body.DocType != "" {
			doc.DocType = input.Body.DocType
		}
		if input.Body.URL != "" {
			doc.URL = input.Body.URL
		}
		if input.Body.ReviewDueAt != nil {
			doc.ReviewDueAt = input.Body.ReviewDueAt
		}
		doc.UpdatedAt = time.Now()

		if err := deps.Store.Documents().Update(ctx, doc); err != nil {
			return nil, huma.Error500InternalServerError("failed to update document", err)
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &doc.CompanyID,
			ActorID:    &actor.ID,
			Action:     domain.AuditDocumentUpdated,
			EntityType: "document",
			EntityID:   &doc.ID,
		})

		return &UpdateDocumentOutput{Body: doc}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-document",
		Method:      http.MethodDelete,
		Path:        "/documents/{id}",
		Summary:     "Delete a document",
		Tags:        []string{"Documents"},
	}, func(ctx context.Context, input *DeleteDocumentInput) (*struct{}, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		doc, err := deps.Guard.EnsureDocumentWriteFull(ctx, actor, input.ID)
		if err != nil {
			return nil, guardError(err, "document")
		}

		if err := deps.Store.Documents().Delete(ctx, input.ID); err != nil {
			return nil, guardError(err, "document")
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &doc.CompanyID,
			ActorID:    &actor.ID,
			Action:     domain.AuditDocumentDeleted,
			EntityType: "document",
			EntityID:   &doc.ID,
			Metadata:   map[string]any{"name": doc.Name},
		})

		return nil, nil
	})
}
