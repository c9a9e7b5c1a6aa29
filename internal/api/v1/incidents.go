package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/complyra/complyra/internal/domain"
)

type CreateIncidentInput struct {
	SystemID uuid.UUID `path:"systemID" doc:"Affected system ID"`
	Body     struct {
		Severity     string     `json:"severity" minLength:"1" maxLength:"32" doc:"Severity"`
		IncidentType string     `json:"incident_type,omitempty" maxLength:"64" doc:"Incident type"`
		Summary      string     `json:"summary" minLength:"1" maxLength:"500" doc:"One-line summary"`
		Details      string     `json:"details,omitempty" doc:"Full description"`
		OccurredAt   *time.Time `json:"occurred_at,omitempty" doc:"When the incident occurred"`
	}
}

type CreateIncidentOutput struct {
	Body *domain.Incident
}

type GetIncidentInput struct {
	ID uuid.UUID `path:"id" doc:"Incident ID"`
}

type GetIncidentOutput struct {
	Body *domain.Incident
}

type ListSystemIncidentsInput struct {
	SystemID uuid.UUID `path:"systemID" doc:"System ID"`
}

type ListCompanyIncidentsInput struct {
	CompanyID uuid.UUID `path:"companyID" doc:"Company ID"`
}

type ListIncidentsOutput struct {
	Body []*domain.Incident
}

type UpdateIncidentInput struct {
	ID   uuid.UUID `path:"id" doc:"Incident ID"`
	Body struct {
		Severity     *string    `json:"severity,omitempty" maxLength:"32" doc:"Severity"`
		IncidentType *string    `json:"incident_type,omitempty" maxLength:"64" doc:"Incident type"`
		Summary      *string    `json:"summary,omitempty" maxLength:"500" doc:"One-line summary"`
		Details      *string    `json:"details,omitempty" doc:"Full description"`
		Status       *string    `json:"status,omitempty" doc:"Incident status"`
		ResolvedAt   *time.Time `json:"resolved_at,omitempty" doc:"Resolution timestamp"`
	}
}

type UpdateIncidentOutput struct {
	Body *domain.Incident
}

type DeleteIncidentInput struct {
	ID uuid.UUID `path:"id" doc:"Incident ID"`
}

func validIncidentStatus(raw string) (domain.IncidentStatus, bool) {
	switch status := domain.IncidentStatus(raw); status {
	case domain.IncidentStatusOpen, domain.IncidentStatusInvestigating,
		domain.IncidentStatusResolved, domain.IncidentStatusClosed:
		return status, true
	default:
		return "", false
	}
}

func RegisterIncidentRoutes(api huma.API, deps *Deps) {
	huma.Register(api, huma.Operation{
		OperationID: "create-incident",
		Method:      http.MethodPost,
		Path:        "/systems/{systemID}/incidents",
		Summary:     "Report an incident",
		Tags:        []string{"Incidents"},
	}, func(ctx context.Context, input *CreateIncidentInput) (*CreateIncidentOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		// Incident reporting is a limited-tier write: system members may
		// file incidents against their systems.
		system, err := deps.Guard.EnsureSystemWriteLimited(ctx, actor, input.SystemID)
		if err != nil {
			return nil, guardError(err, "system")
		}

		now := time.Now()
		inc := &domain.Incident{
			ID:           uuid.New(),
			CompanyID:    system.CompanyID,
			AISystemID:   system.ID,
			ReportedBy:   &actor.ID,
			Severity:     input.Body.Severity,
			IncidentType: input.Body.IncidentType,
			Summary:      input.Body.Summary,
			Details:      input.Body.Details,
			Status:       domain.IncidentStatusOpen,
			OccurredAt:   input.Body.OccurredAt,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := deps.Store.Incidents().Create(ctx, inc); err != nil {
			return nil, huma.Error500InternalServerError("failed to create incident", err)
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &inc.CompanyID,
			ActorID:    &actor.ID,
			Action:     domain.AuditIncidentCreated,
			EntityType: "incident",
			EntityID:   &inc.ID,
			Metadata:   map[string]any{"severity": inc.Severity, "summary": inc.Summary},
		})

		if _, err := deps.Notifier.IncidentCreated(ctx, inc); err != nil {
			log.Warn().Err(err).Str("incident_id", inc.ID.String()).Msg("incident notification failed")
		}

		return &CreateIncidentOutput{Body: inc}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-incident",
		Method:      http.MethodGet,
		Path:        "/incidents/{id}",
		Summary:     "Get an incident by ID",
		Tags:        []string{"Incidents"},
	}, func(ctx context.Context, input *GetIncidentInput) (*GetIncidentOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		inc, err := deps.Guard.EnsureIncidentRead(ctx, actor, input.ID)
		if err != nil {
			return nil, guardError(err, "incident")
		}

		return &GetIncidentOutput{Body: inc}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-system-incidents",
		Method:      http.MethodGet,
		Path:        "/systems/{systemID}/incidents",
		Summary:     "List incidents for a system",
		Tags:        []string{"Incidents"},
	}, func(ctx context.Context, input *ListSystemIncidentsInput) (*ListIncidentsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := deps.Guard.EnsureSystemRead(ctx, actor, input.SystemID); err != nil {
			return nil, guardError(err, "system")
		}

		incidents, err := deps.Store.Incidents().ListBySystem(ctx, input.SystemID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list incidents", err)
		}

		return &ListIncidentsOutput{Body: incidents}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-company-incidents",
		Method:      http.MethodGet,
		Path:        "/companies/{companyID}/incidents",
		Summary:     "List incidents across a company",
		Tags:        []string{"Incidents"},
	}, func(ctx context.Context, input *ListCompanyIncidentsInput) (*ListIncidentsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := deps.Guard.EnsureCompanyRead(ctx, actor, input.CompanyID); err != nil {
			return nil, guardError(err, "company")
		}

		incidents, err := deps.Store.Incidents().ListByCompany(ctx, input.CompanyID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list incidents", err)
		}

		return &ListIncidentsOutput{Body: incidents}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-incident",
		Method:      http.MethodPatch,
		Path:        "/incidents/{id}",
		Summary:     "Update an incident",
		Description: "Status and resolution changes are a limited-tier write; editing the report itself requires full write.",
		Tags:        []string{"Incidents"},
	}, func(ctx context.Context, input *UpdateIncidentInput) (*UpdateIncidentOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		statusOnly := input.Body.Severity == nil && input.Body.IncidentType == nil &&
			input.Body.Summary == nil && input.Body.Details == nil

		var inc *domain.Incident
		if statusOnly {
			inc, err = deps.Guard.EnsureIncidentWriteLimited(ctx, actor, input.ID)
		} else {
			inc, err = deps.Guard.EnsureIncidentWriteFull(ctx, actor, input.ID)
		}
		if err != nil {
			return nil, guardError(err, "incident")
		}

		oldStatus := inc.Status

		if input.Body.Status != nil {
			status, ok := validIncidentStatus(*input.Body.Status)
			if !ok {
				return nil, huma.Error400BadRequest("unknown incident status: " + *input.Body.Status)
			}
			inc.Status = status
			if status == domain.IncidentStatusResolved && inc.ResolvedAt == nil && input.Body.ResolvedAt == nil {
				now := time.Now()
				inc.ResolvedAt = &now
			}
		}
		if input.Body.ResolvedAt != nil {
			inc.ResolvedAt = input.Body.ResolvedAt
		}
		if input.Body.Severity != nil {
			inc.Severity = *input.Body.Severity
		}
		if input.Body.IncidentType != nil {
			inc.IncidentType = *input.Body.IncidentType
		}
		if input.Body.Summary != nil {
			inc.Summary = *input.Body.Summary
		}
		if input.Body.Details != nil {
			inc.Details = *input.Body.Details
		}
		inc.UpdatedAt = time.Now()

		if err := deps.Store.Incidents().Update(ctx, inc); err != nil {
			return nil, huma.Error500InternalServerError("failed to update incident", err)
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &inc.CompanyID,
			ActorID:    &actor.ID,
			Action:     domain.AuditIncidentUpdated,
			EntityType: "incident",
			EntityID:   &inc.ID,
		})

		if inc.Status != oldStatus {
			if _, err := deps.Notifier.IncidentStatusChanged(ctx, inc, oldStatus); err != nil {
				log.Warn().Err(err).Str("incident_id", inc.ID.String()).Msg("incident status notification failed")
			}
		}

		return &UpdateIncidentOutput{Body: inc}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-incident",
		Method:      http.MethodDelete,
		Path:        "/incidents/{id}",
		Summary:     "Delete an incident",
		Tags:        []string{"Incidents"},
	}, func(ctx context.Context, input *DeleteIncidentInput) (*struct{}, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		inc, err := deps.Guard.EnsureIncidentWriteFull(ctx, actor, input.ID)
		if err != nil {
			return nil, guardError(err, "incident")
		}

		if err := deps.Store.Incidents().Delete(ctx, input.ID); err != nil {
			return nil, guardError(err, "incident")
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &inc.CompanyID,
			ActorID:    &actor.ID,
			Action:     domain.AuditIncidentDeleted,
			EntityType: "incident",
			EntityID:   &inc.ID,
		})

		return nil, nil
	})
}
