package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CompanyStatus string

const (
	CompanyStatusActive    CompanyStatus = "active"
	CompanyStatusSuspended CompanyStatus = "suspended"
	CompanyStatusArchived  CompanyStatus = "archived"
)

// Company is the tenant boundary. Every resource in the platform is rooted in
// exactly one company.
type Company struct {
	ID        uuid.UUID
	Name      string
	Status    CompanyStatus
	Country   string
	Industry  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CompanyRepository interface {
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
	Update(ctx context.Context, c *Company) error
	List(ctx context.Context) ([]*Company, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Company, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
