package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AdminAssignment grants a staff admin authority over a client company.
// The (AdminID, CompanyID) pair is unique; creation is idempotent.
type AdminAssignment struct {
	ID        uuid.UUID
	AdminID   uuid.UUID
	CompanyID uuid.UUID
	CreatedAt time.Time
}

// SystemMember grants a contributor explicit membership in an AI system.
// The (UserID, AISystemID) pair is unique; creation is idempotent. Two
// physical tables back this relation (a current one and a legacy one);
// repositories expose them as a single union and never double-count.
type SystemMember struct {
	ID         uuid.UUID
	AISystemID uuid.UUID
	UserID     uuid.UUID
	MemberRole string
	CreatedAt  time.Time
}

type AdminAssignmentRepository interface {
	// Create returns the existing row when the pair already exists.
	Create(ctx context.Context, adminID, companyID uuid.UUID) (*AdminAssignment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*AdminAssignment, error)
	ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]*AdminAssignment, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*AdminAssignment, error)
	Exists(ctx context.Context, adminID, companyID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SystemMemberRepository interface {
	// Create returns the existing row when the pair already exists.
	Create(ctx context.Context, userID, systemID uuid.UUID, memberRole string) (*SystemMember, error)
	GetByID(ctx context.Context, id uuid.UUID) (*SystemMember, error)
	ListBySystem(ctx context.Context, systemID uuid.UUID) ([]*SystemMember, error)
	// SystemIDsForUser unions both physical membership tables.
	SystemIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Exists(ctx context.Context, userID, systemID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
