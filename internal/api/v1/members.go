package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/complyra/complyra/internal/domain"
)

type ListMembersInput struct {
	SystemID uuid.UUID `path:"systemID" doc:"System ID"`
}

type ListMembersOutput struct {
	Body []*domain.SystemMember
}

type AddMemberInput struct {
	SystemID uuid.UUID `path:"systemID" doc:"System ID"`
	Body     struct {
		UserID     uuid.UUID `json:"user_id" doc:"Actor to add"`
		MemberRole string    `json:"member_role,omitempty" maxLength:"64" doc:"Role within the system"`
	}
}

type AddMemberOutput struct {
	Body *domain.SystemMember
}

type RemoveMemberInput struct {
	ID uuid.UUID `path:"id" doc:"Membership ID"`
}

type CreateAdminAssignmentInput struct {
	Body struct {
		AdminID   uuid.UUID `json:"admin_id" doc:"Staff admin actor ID"`
		CompanyID uuid.UUID `json:"company_id" doc:"Company to assign"`
	}
}

type CreateAdminAssignmentOutput struct {
	Body *domain.AdminAssignment
}

type ListAdminAssignmentsInput struct {
	CompanyID uuid.UUID `path:"companyID" doc:"Company ID"`
}

type ListAdminAssignmentsOutput struct {
	Body []*domain.AdminAssignment
}

type DeleteAdminAssignmentInput struct {
	ID uuid.UUID `path:"id" doc:"Assignment ID"`
}

func RegisterMemberRoutes(api huma.API, deps *Deps) {
	huma.Register(api, huma.Operation{
		OperationID: "list-system-members",
		Method:      http.MethodGet,
		Path:        "/systems/{systemID}/members",
		Summary:     "List a system's members",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *ListMembersInput) (*ListMembersOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := deps.Guard.EnsureSystemRead(ctx, actor, input.SystemID); err != nil {
			return nil, guardError(err, "system")
		}

		members, err := deps.Store.Members().ListBySystem(ctx, input.SystemID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list members", err)
		}

		return &ListMembersOutput{Body: members}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-system-member",
		Method:      http.MethodPost,
		Path:        "/systems/{systemID}/members",
		Summary:     "Add a member to a system",
		Description: "Idempotent: adding an existing (user, system) pair returns the existing membership.",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *AddMemberInput) (*AddMemberOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		system, err := deps.Guard.EnsureSystemWriteFull(ctx, actor, input.SystemID)
		if err != nil {
			return nil, guardError(err, "system")
		}

		member, err := deps.Store.Members().Create(ctx, input.Body.UserID, input.SystemID, input.Body.MemberRole)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to add member", err)
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &system.CompanyID,
			ActorID:    &actor.ID,
			Action:     domain.AuditSystemAssignmentCreated,
			EntityType: "system_member",
			EntityID:   &member.ID,
			Metadata:   map[string]any{"user_id": input.Body.UserID.String(), "system_id": input.SystemID.String()},
		})

		return &AddMemberOutput{Body: member}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-system-member",
		Method:      http.MethodDelete,
		Path:        "/members/{id}",
		Summary:     "Remove a member from a system",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *RemoveMemberInput) (*struct{}, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		member, err := deps.Store.Members().GetByID(ctx, input.ID)
		if err != nil {
			return nil, guardError(err, "membership")
		}

		system, err := deps.Guard.EnsureSystemWriteFull(ctx, actor, member.AISystemID)
		if err != nil {
			return nil, guardError(err, "system")
		}

		if err := deps.Store.Members().Delete(ctx, input.ID); err != nil {
			return nil, guardError(err, "membership")
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &system.CompanyID,
			ActorID:    &actor.ID,
			Action:     domain.AuditSystemAssignmentDeleted,
			EntityType: "system_member",
			EntityID:   &member.ID,
			Metadata:   map[string]any{"user_id": member.UserID.String(), "system_id": member.AISystemID.String()},
		})

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-admin-assignment",
		Method:      http.MethodPost,
		Path:        "/admin-assignments",
		Summary:     "Assign a staff admin to a company",
		Description: "Super admin only. Idempotent: assigning an existing (admin, company) pair returns the existing assignment.",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *CreateAdminAssignmentInput) (*CreateAdminAssignmentOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}
		if err := requireSuperAdmin(actor); err != nil {
			return nil, err
		}

		assignment, err := deps.Store.Assignments().Create(ctx, input.Body.AdminID, input.Body.CompanyID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to create assignment", err)
		}

		return &CreateAdminAssignmentOutput{Body: assignment}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-admin-assignments",
		Method:      http.MethodGet,
		Path:        "/companies/{companyID}/admin-assignments",
		Summary:     "List staff admins assigned to a company",
		Description: "Super admin only. The assignment structure itself is never exposed to the actors it governs.",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *ListAdminAssignmentsInput) (*ListAdminAssignmentsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}
		if err := requireSuperAdmin(actor); err != nil {
			return nil, err
		}

		assignments, err := deps.Store.Assignments().ListByCompany(ctx, input.CompanyID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list assignments", err)
		}

		return &ListAdminAssignmentsOutput{Body: assignments}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-admin-assignment",
		Method:      http.MethodDelete,
		Path:        "/admin-assignments/{id}",
		Summary:     "Revoke a staff admin's company assignment",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *DeleteAdminAssignmentInput) (*struct{}, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}
		if err := requireSuperAdmin(actor); err != nil {
			return nil, err
		}

		if err := deps.Store.Assignments().Delete(ctx, input.ID); err != nil {
			return nil, guardError(err, "assignment")
		}

		return nil, nil
	})
}
