package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actor is an authenticated user. The raw Role string is classified into a
// canonical role by the authz package; it is never compared directly.
type Actor struct {
	ID           uuid.UUID
	CompanyID    *uuid.UUID // home company; nil for platform-level staff
	Email        string
	PasswordHash string // argon2id
	FullName     string
	Role         string
	IsActive     bool

	// Login lockout counters, maintained by the auth service.
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLoginAt         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HomeCompanyIs reports whether the actor's home company matches companyID.
func (a *Actor) HomeCompanyIs(companyID uuid.UUID) bool {
	return a.CompanyID != nil && *a.CompanyID == companyID
}

type ActorRepository interface {
	Create(ctx context.Context, a *Actor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Actor, error)
	GetByEmail(ctx context.Context, email string) (*Actor, error)
	Update(ctx context.Context, a *Actor) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*Actor, error)

	// UpdateLoginState persists the lockout counters and last-login timestamp.
	UpdateLoginState(ctx context.Context, id uuid.UUID, failedAttempts int, lockedUntil, lastLoginAt *time.Time) error
}
