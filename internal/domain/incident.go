package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type IncidentStatus string

const (
	IncidentStatusOpen          IncidentStatus = "open"
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusResolved      IncidentStatus = "resolved"
	IncidentStatusClosed        IncidentStatus = "closed"
)

// Incident is a reported malfunction or harm event for an AI system.
type Incident struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	AISystemID   uuid.UUID
	ReportedBy   *uuid.UUID
	Severity     string
	IncidentType string
	Summary      string
	Details      string
	Status       IncidentStatus
	OccurredAt   *time.Time
	ResolvedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type IncidentRepository interface {
	Create(ctx context.Context, i *Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*Incident, error)
	Update(ctx context.Context, i *Incident) error
	ListBySystem(ctx context.Context, systemID uuid.UUID) ([]*Incident, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*Incident, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
