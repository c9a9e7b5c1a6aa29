package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type RiskLevel string

const (
	RiskLevelMinimal  RiskLevel = "minimal"
	RiskLevelLimited  RiskLevel = "limited"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelProhibit RiskLevel = "prohibited"
)

// AISystem is a tracked system owned by exactly one company. CompanyID is
// immutable after creation.
type AISystem struct {
	ID               uuid.UUID
	CompanyID        uuid.UUID
	Name             string
	Description      string
	RiskLevel        RiskLevel
	ComplianceStatus ComplianceStatus
	OwnerUserID      *uuid.UUID // optional owner actor
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type AISystemRepository interface {
	Create(ctx context.Context, s *AISystem) error
	GetByID(ctx context.Context, id uuid.UUID) (*AISystem, error)
	Update(ctx context.Context, s *AISystem) error
	UpdateComplianceStatus(ctx context.Context, id uuid.UUID, status ComplianceStatus) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*AISystem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
