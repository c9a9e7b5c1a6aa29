package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/complyra/complyra/internal/authz"
	"github.com/complyra/complyra/internal/domain"
)

type CreateSystemInput struct {
	CompanyID uuid.UUID `path:"companyID" doc:"Owning company ID"`
	Body      struct {
		Name        string     `json:"name" minLength:"1" maxLength:"255" doc:"System name"`
		Description string     `json:"description,omitempty" doc:"Description"`
		RiskLevel   string     `json:"risk_level" minLength:"1" doc:"Risk level"`
		OwnerUserID *uuid.UUID `json:"owner_user_id,omitempty" doc:"Optional owner actor ID"`
	}
}

type CreateSystemOutput struct {
	Body *domain.AISystem
}

type ListSystemsInput struct {
	CompanyID uuid.UUID `path:"companyID" doc:"Company ID"`
}

type ListSystemsOutput struct {
	Body []*domain.AISystem
}

type GetSystemInput struct {
	ID uuid.UUID `path:"id" doc:"System ID"`
}

type GetSystemOutput struct {
	Body *domain.AISystem
}

type UpdateSystemInput struct {
	ID   uuid.UUID `path:"id" doc:"System ID"`
	Body struct {
		Name        string     `json:"name,omitempty" maxLength:"255" doc:"System name"`
		Description string     `json:"description,omitempty" doc:"Description"`
		RiskLevel   string     `json:"risk_level,omitempty" doc:"Risk level"`
		OwnerUserID *uuid.UUID `json:"owner_user_id,omitempty" doc:"Owner actor ID"`
	}
}

type UpdateSystemOutput struct {
	Body *domain.AISystem
}

type DeleteSystemInput struct {
	ID uuid.UUID `path:"id" doc:"System ID"`
}

func validRiskLevel(raw string) (domain.RiskLevel, bool) {
	switch level := domain.RiskLevel(raw); level {
	case domain.RiskLevelMinimal, domain.RiskLevelLimited, domain.RiskLevelHigh, domain.RiskLevelProhibit:
		return level, true
	default:
		return "", false
	}
}

func RegisterSystemRoutes(api huma.API, deps *Deps) {
	huma.Register(api, huma.Operation{
		OperationID: "create-system",
		Method:      http.MethodPost,
		Path:        "/companies/{companyID}/systems",
		Summary:     "Register an AI system under a company",
		Tags:        []string{"Systems"},
	}, func(ctx context.Context, input *CreateSystemInput) (*CreateSystemOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		company, err := deps.Guard.EnsureCompanyWrite(ctx, actor, input.CompanyID)
		if err != nil {
			return nil, guardError(err, "company")
		}

		level, ok := validRiskLevel(input.Body.RiskLevel)
		if !ok {
			return nil, huma.Error400BadRequest("unknown risk level: " + input.Body.RiskLevel)
		}

		now := time.Now()
		s := &domain.AISystem{
			ID:               uuid.New(),
			CompanyID:        company.ID,
			Name:             input.Body.Name,
			Description:      input.Body.Description,
			RiskLevel:        level,
			ComplianceStatus: domain.ComplianceStatusCompliant,
			OwnerUserID:      input.Body.OwnerUserID,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		if err := deps.Store.Systems().Create(ctx, s); err != nil {
			return nil, huma.Error500InternalServerError("failed to create system", err)
		}

		return &CreateSystemOutput{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-systems",
		Method:      http.MethodGet,
		Path:        "/companies/{companyID}/systems",
		Summary:     "List a company's AI systems",
		Tags:        []string{"Systems"},
	}, func(ctx context.Context, input *ListSystemsInput) (*ListSystemsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := deps.Guard.EnsureCompanyRead(ctx, actor, input.CompanyID); err != nil {
			return nil, guardError(err, "company")
		}

		systems, err := deps.Store.Systems().ListByCompany(ctx, input.CompanyID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list systems", err)
		}

		// Contributors only see systems they are members of, even inside
		// their home company.
		if authz.Classify(actor.Role) == authz.RoleContributor {
			memberIDs, err := deps.Store.Members().SystemIDsForUser(ctx, actor.ID)
			if err != nil {
				return nil, huma.Error500InternalServerError("failed to resolve memberships", err)
			}
			member := make(map[uuid.UUID]struct{}, len(memberIDs))
			for _, id := range memberIDs {
				member[id] = struct{}{}
			}
			filtered := systems[:0]
			for _, s := range systems {
				if _, ok := member[s.ID]; ok {
					filtered = append(filtered, s)
				}
			}
			systems = filtered
		}

		return &ListSystemsOutput{Body: systems}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-system",
		Method:      http.MethodGet,
		Path:        "/systems/{id}",
		Summary:     "Get an AI system by ID",
		Tags:        []string{"Systems"},
	}, func(ctx context.Context, input *GetSystemInput) (*GetSystemOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		system, err := deps.Guard.EnsureSystemRead(ctx, actor, input.ID)
		if err != nil {
			return nil, guardError(err, "system")
		}

		return &GetSystemOutput{Body: system}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-system",
		Method:      http.MethodPut,
		Path:        "/systems/{id}",
		Summary:     "Update an AI system",
		Tags:        []string{"Systems"},
	}, func(ctx context.Context, input *UpdateSystemInput) (*UpdateSystemOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		system, err := deps.Guard.EnsureSystemWriteFull(ctx, actor, input.ID)
		if err != nil {
			return nil, guardError(err, "system")
		}

		if input.Body.Name != "" {
			system.Name = input.Body.Name
		}
		if input.Body.Description != "" {
			system.Description = input.Body.Description
		}
		if input.Body.RiskLevel != "" {
			level, ok := validRiskLevel(input.Body.RiskLevel)
			if !ok {
				return nil, huma.Error400BadRequest("unknown risk level: " + input.Body.RiskLevel)
			}
			system.RiskLevel = level
		}
		if input.Body.OwnerUserID != nil {
			system.OwnerUserID = input.Body.OwnerUserID
		}
		system.UpdatedAt = time.Now()

		if err := deps.Store.Systems().Update(ctx, system); err != nil {
			return nil, huma.Error500InternalServerError("failed to update system", err)
		}

		return &UpdateSystemOutput{Body: system}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-system",
		Method:      http.MethodDelete,
		Path:        "/systems/{id}",
		Summary:     "Delete an AI system",
		Tags:        []string{"Systems"},
	}, func(ctx context.Context, input *DeleteSystemInput) (*struct{}, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := deps.Guard.EnsureSystemWriteFull(ctx, actor, input.ID); err != nil {
			return nil, guardError(err, "system")
		}

		if err := deps.Store.Systems().Delete(ctx, input.ID); err != nil {
			return nil, guardError(err, "system")
		}

		return nil, nil
	})
}
