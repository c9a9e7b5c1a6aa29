package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CalendarPin marks a date on a company's compliance calendar. The system
// reference is optional; company-only pins are valid.
type CalendarPin struct {
	ID         uuid.UUID
	CompanyID  uuid.UUID
	AISystemID *uuid.UUID
	Title      string
	Note       string
	PinnedDate time.Time
	CreatedBy  *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CalendarPinRepository interface {
	Create(ctx context.Context, p *CalendarPin) error
	GetByID(ctx context.Context, id uuid.UUID) (*CalendarPin, error)
	Update(ctx context.Context, p *CalendarPin) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]*CalendarPin, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
