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

type CreateCompanyInput struct {
	Body struct {
		Name     string `json:"name" minLength:"1" maxLength:"255" doc:"Company name"`
		Country  string `json:"country,omitempty" maxLength:"64" doc:"Country code"`
		Industry string `json:"industry,omitempty" maxLength:"128" doc:"Industry"`
	}
}

type CreateCompanyOutput struct {
	Body *domain.Company
}

type ListCompaniesOutput struct {
	Body []*domain.Company
}

type GetCompanyInput struct {
	ID uuid.UUID `path:"id" doc:"Company ID"`
}

type GetCompanyOutput struct {
	Body *domain.Company
}

type UpdateCompanyInput struct {
	ID   uuid.UUID `path:"id" doc:"Company ID"`
	Body struct {
		Name     string `json:"name,omitempty" maxLength:"255" doc:"Company name"`
		Country  string `json:"country,omitempty" maxLength:"64" doc:"Country code"`
		Industry string `json:"industry,omitempty" maxLength:"128" doc:"Industry"`
		Status   string `json:"status,omitempty" doc:"Company status"`
	}
}

type UpdateCompanyOutput struct {
	Body *domain.Company
}

type DeleteCompanyInput struct {
	ID uuid.UUID `path:"id" doc:"Company ID"`
}

func RegisterCompanyRoutes(api huma.API, deps *Deps) {
	huma.Register(api, huma.Operation{
		OperationID: "create-company",
		Method:      http.MethodPost,
		Path:        "/companies",
		Summary:     "Create a company",
		Tags:        []string{"Companies"},
	}, func(ctx context.Context, input *CreateCompanyInput) (*CreateCompanyOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}
		if err := requireSuperAdmin(actor); err != nil {
			return nil, err
		}

		now := time.Now()
		c := &domain.Company{
			ID:        uuid.New(),
			Name:      input.Body.Name,
			Status:    domain.CompanyStatusActive,
			Country:   input.Body.Country,
			Industry:  input.Body.Industry,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := deps.Store.Companies().Create(ctx, c); err != nil {
			return nil, huma.Error500InternalServerError("failed to create company", err)
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &c.ID,
			ActorID:    &actor.ID,
			Action:     domain.AuditCompanyCreated,
			EntityType: "company",
			EntityID:   &c.ID,
			Metadata:   map[string]any{"name": c.Name},
		})

		return &CreateCompanyOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-companies",
		Method:      http.MethodGet,
		Path:        "/companies",
		Summary:     "List companies visible to the caller",
		Tags:        []string{"Companies"},
	}, func(ctx context.Context, _ *struct{}) (*ListCompaniesOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		companies, err := listVisibleCompanies(ctx, deps, actor)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list companies", err)
		}

		return &ListCompaniesOutput{Body: companies}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-company",
		Method:      http.MethodGet,
		Path:        "/companies/{id}",
		Summary:     "Get a company by ID",
		Tags:        []string{"Companies"},
	}, func(ctx context.Context, input *GetCompanyInput) (*GetCompanyOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		company, err := deps.Guard.EnsureCompanyRead(ctx, actor, input.ID)
		if err != nil {
			return nil, guardError(err, "company")
		}

		return &GetCompanyOutput{Body: company}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-company",
		Method:      http.MethodPut,
		Path:        "/companies/{id}",
		Summary:     "Update a company",
		Tags:        []string{"Companies"},
	}, func(ctx context.Context, input *UpdateCompanyInput) (*UpdateCompanyOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		company, err := deps.Guard.EnsureCompanyWrite(ctx, actor, input.ID)
		if err != nil {
			return nil, guardError(err, "company")
		}

		if input.Body.Name != "" {
			company.Name = input.Body.Name
		}
		if input.Body.Country != "" {
			company.Country = input.Body.Country
		}
		if input.Body.Industry != "" {
			company.Industry = input.Body.Industry
		}
		if input.Body.Status != "" {
			switch status := domain.CompanyStatus(input.Body.Status); status {
			case domain.CompanyStatusActive, domain.CompanyStatusSuspended, domain.CompanyStatusArchived:
				company.Status = status
			default:
				return nil, huma.Error400BadRequest("unknown company status: " + input.Body.Status)
			}
		}
		company.UpdatedAt = time.Now()

		if err := deps.Store.Companies().Update(ctx, company); err != nil {
			return nil, huma.Error500InternalServerError("failed to update company", err)
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &company.ID,
			ActorID:    &actor.ID,
			Action:     domain.AuditCompanyUpdated,
			EntityType: "company",
			EntityID:   &company.ID,
		})

		return &UpdateCompanyOutput{Body: company}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-company",
		Method:      http.MethodDelete,
		Path:        "/companies/{id}",
		Summary:     "Delete a company",
		Tags:        []string{"Companies"},
	}, func(ctx context.Context, input *DeleteCompanyInput) (*struct{}, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}
		if err := requireSuperAdmin(actor); err != nil {
			return nil, err
		}

		if err := deps.Store.Companies().Delete(ctx, input.ID); err != nil {
			return nil, guardError(err, "company")
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &input.ID,
			ActorID:    &actor.ID,
			Action:     domain.AuditCompanyDeleted,
			EntityType: "company",
			EntityID:   &input.ID,
		})

		return nil, nil
	})
}

// listVisibleCompanies scopes the company listing by role: super admins see
// every company, staff admins their assigned set, everyone else their home
// company.
func listVisibleCompanies(ctx context.Context, deps *Deps, actor *domain.Actor) ([]*domain.Company, error) {
	switch authz.Classify(actor.Role) {
	case authz.RoleSuperAdmin:
		return deps.Store.Companies().List(ctx)
	case authz.RoleStaffAdmin:
		assignments, err := deps.Store.Assignments().ListByAdmin(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, 0, len(assignments))
		for _, a := range assignments {
			ids = append(ids, a.CompanyID)
		}
		if len(ids) == 0 {
			return []*domain.Company{}, nil
		}
		return deps.Store.Companies().ListByIDs(ctx, ids)
	default:
		if actor.CompanyID == nil {
			return []*domain.Company{}, nil
		}
		company, err := deps.Store.Companies().GetByID(ctx, *actor.CompanyID)
		if err != nil {
			return nil, err
		}
		return []*domain.Company{company}, nil
	}
}
