package authz

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/complyra/complyra/internal/domain"
)

// AssignmentSource provides the read-only queries over the two assignment
// relations. Implemented by the postgres store; callers never learn how many
// physical tables back system membership.
type AssignmentSource interface {
	IsAdminAssigned(ctx context.Context, adminID, companyID uuid.UUID) (bool, error)
	IsSystemMember(ctx context.Context, userID, systemID uuid.UUID) (bool, error)
}

// Rules combines role classification and assignment lookups into the access
// predicates. All methods are read-only. Super admins short-circuit to true
// before any assignment query is issued.
type Rules struct {
	assignments AssignmentSource
}

func NewRules(assignments AssignmentSource) *Rules {
	return &Rules{assignments: assignments}
}

// CanReadCompany: super admin always; client admins and contributors read
// their home company; staff admins read companies they are assigned to.
// A staff admin's home company grants nothing — the assignment branch wins
// for dual-role actors.
func (r *Rules) CanReadCompany(ctx context.Context, actor *domain.Actor, companyID uuid.UUID) (bool, error) {
	switch Classify(actor.Role) {
	case RoleSuperAdmin:
		return true, nil
	case RoleStaffAdmin:
		ok, err := r.assignments.IsAdminAssigned(ctx, actor.ID, companyID)
		if err != nil {
			return false, fmt.Errorf("authz.Rules.CanReadCompany: %w", err)
		}
		return ok, nil
	case RoleClientAdmin, RoleContributor:
		return actor.HomeCompanyIs(companyID), nil
	default:
		return false, nil
	}
}

// CanWriteCompany: super admin always; client admins write their home
// company; staff admins write assigned companies. Contributors never get
// company-level write.
func (r *Rules) CanWriteCompany(ctx context.Context, actor *domain.Actor, companyID uuid.UUID) (bool, error) {
	switch Classify(actor.Role) {
	case RoleSuperAdmin:
		return true, nil
	case RoleStaffAdmin:
		ok, err := r.assignments.IsAdminAssigned(ctx, actor.ID, companyID)
		if err != nil {
			return false, fmt.Errorf("authz.Rules.CanWriteCompany: %w", err)
		}
		return ok, nil
	case RoleClientAdmin:
		return actor.HomeCompanyIs(companyID), nil
	default:
		return false, nil
	}
}

// CanReadSystem: super admin always; client admins read systems of their home
// company; staff admins read systems of assigned companies; contributors read
// systems they are explicit members of. A contributor's membership is not
// required to stay within the actor's home company — cross-company
// memberships are honored.
func (r *Rules) CanReadSystem(ctx context.Context, actor *domain.Actor, system *domain.AISystem) (bool, error) {
	switch Classify(actor.Role) {
	case RoleSuperAdmin:
		return true, nil
	case RoleStaffAdmin:
		ok, err := r.assignments.IsAdminAssigned(ctx, actor.ID, system.CompanyID)
		if err != nil {
			return false, fmt.Errorf("authz.Rules.CanReadSystem: %w", err)
		}
		return ok, nil
	case RoleClientAdmin:
		return actor.HomeCompanyIs(system.CompanyID), nil
	case RoleContributor:
		ok, err := r.assignments.IsSystemMember(ctx, actor.ID, system.ID)
		if err != nil {
			return false, fmt.Errorf("authz.Rules.CanReadSystem: %w", err)
		}
		return ok, nil
	default:
		return false, nil
	}
}

// CanWriteSystemFull: identical to CanReadSystem minus the contributor
// branch. Contributors never get structural write.
func (r *Rules) CanWriteSystemFull(ctx context.Context, actor *domain.Actor, system *domain.AISystem) (bool, error) {
	switch Classify(actor.Role) {
	case RoleSuperAdmin:
		return true, nil
	case RoleStaffAdmin:
		ok, err := r.assignments.IsAdminAssigned(ctx, actor.ID, system.CompanyID)
		if err != nil {
			return false, fmt.Errorf("authz.Rules.CanWriteSystemFull: %w", err)
		}
		return ok, nil
	case RoleClientAdmin:
		return actor.HomeCompanyIs(system.CompanyID), nil
	default:
		return false, nil
	}
}

// CanWriteSystemLimited: everything full write grants, plus contributors who
// are explicit members. The limited tier permits only the fixed task field
// allow-list (see TaskLimitedFields).
func (r *Rules) CanWriteSystemLimited(ctx context.Context, actor *domain.Actor, system *domain.AISystem) (bool, error) {
	full, err := r.CanWriteSystemFull(ctx, actor, system)
	if err != nil || full {
		return full, err
	}
	if Classify(actor.Role) != RoleContributor {
		return false, nil
	}
	ok, err := r.assignments.IsSystemMember(ctx, actor.ID, system.ID)
	if err != nil {
		return false, fmt.Errorf("authz.Rules.CanWriteSystemLimited: %w", err)
	}
	return ok, nil
}
