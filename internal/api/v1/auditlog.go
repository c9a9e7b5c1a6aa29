package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/complyra/complyra/internal/domain"
)

type ListAuditEventsInput struct {
	CompanyID  uuid.UUID `path:"companyID" doc:"Company ID"`
	Action     string    `query:"action" doc:"Filter by action code"`
	EntityType string    `query:"entity_type" doc:"Filter by entity type"`
	Limit      int       `query:"limit" minimum:"0" maximum:"500" doc:"Page size"`
	Offset     int       `query:"offset" minimum:"0" doc:"Page offset"`
}

type ListAuditEventsOutput struct {
	Body []*domain.AuditEvent
}

type ListEntityAuditInput struct {
	CompanyID  uuid.UUID `path:"companyID" doc:"Company ID"`
	EntityType string    `path:"entityType" doc:"Entity type"`
	EntityID   uuid.UUID `path:"entityID" doc:"Entity ID"`
}

type ExportCompanyInput struct {
	CompanyID uuid.UUID `path:"companyID" doc:"Company ID"`
}

type ExportCompanyOutput struct {
	Body struct {
		Company   *domain.Company    `json:"company"`
		Systems   []*domain.AISystem `json:"systems"`
		Incidents []*domain.Incident `json:"incidents"`
		Counts    map[string]int     `json:"counts"`
	}
}

func RegisterAuditRoutes(api huma.API, deps *Deps) {
	huma.Register(api, huma.Operation{
		OperationID: "list-audit-events",
		Method:      http.MethodGet,
		Path:        "/companies/{companyID}/audit-events",
		Summary:     "List a company's audit trail",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *ListAuditEventsInput) (*ListAuditEventsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := deps.Guard.EnsureCompanyRead(ctx, actor, input.CompanyID); err != nil {
			return nil, guardError(err, "company")
		}

		events, err := deps.Store.Audit().ListByCompany(ctx, input.CompanyID, domain.AuditFilter{
			Action:     input.Action,
			EntityType: input.EntityType,
			Limit:      input.Limit,
			Offset:     input.Offset,
		})
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list audit events", err)
		}

		return &ListAuditEventsOutput{Body: events}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-entity-audit-events",
		Method:      http.MethodGet,
		Path:        "/companies/{companyID}/audit-events/{entityType}/{entityID}",
		Summary:     "List audit events for one entity",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *ListEntityAuditInput) (*ListAuditEventsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := deps.Guard.EnsureCompanyRead(ctx, actor, input.CompanyID); err != nil {
			return nil, guardError(err, "company")
		}

		events, err := deps.Store.Audit().ListByEntity(ctx, input.CompanyID, input.EntityType, input.EntityID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list audit events", err)
		}

		return &ListAuditEventsOutput{Body: events}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "export-company",
		Method:      http.MethodPost,
		Path:        "/companies/{companyID}/export",
		Summary:     "Export a company's compliance snapshot",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *ExportCompanyInput) (*ExportCompanyOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		company, err := deps.Guard.EnsureCompanyRead(ctx, actor, input.CompanyID)
		if err != nil {
			return nil, guardError(err, "company")
		}

		systems, err := deps.Store.Systems().ListByCompany(ctx, input.CompanyID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to export systems", err)
		}
		incidents, err := deps.Store.Incidents().ListByCompany(ctx, input.CompanyID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to export incidents", err)
		}

		counts := map[string]int{
			"systems":   len(systems),
			"incidents": len(incidents),
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &company.ID,
			ActorID:    &actor.ID,
			Action:     domain.AuditExportPerformed,
			EntityType: "company",
			EntityID:   &company.ID,
			Metadata:   map[string]any{"systems": len(systems), "incidents": len(incidents)},
		})

		out := &ExportCompanyOutput{}
		out.Body.Company = company
		out.Body.Systems = systems
		out.Body.Incidents = incidents
		out.Body.Counts = counts
		return out, nil
	})
}
