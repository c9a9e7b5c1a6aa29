package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Document is a piece of compliance evidence. It always carries a company
// scope; the system scope may be direct (AISystemID) or transitive through
// the linked task. A document with neither is an orphan and is rejected by
// the guard layer.
type Document struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	AISystemID  *uuid.UUID
	TaskID      *uuid.UUID
	Name        string
	DocType     string
	URL         string
	UploadedBy  *uuid.UUID
	ReviewDueAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type DocumentRepository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	Update(ctx context.Context, d *Document) error
	ListBySystem(ctx context.Context, systemID uuid.UUID) ([]*Document, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
