package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/complyra/complyra/internal/domain"
)

type CreateCalendarPinInput struct {
	CompanyID uuid.UUID `path:"companyID" doc:"Company ID"`
	Body      struct {
		AISystemID *uuid.UUID `json:"ai_system_id,omitempty" doc:"Optional system scope"`
		Title      string     `json:"title" minLength:"1" maxLength:"255" doc:"Pin title"`
		Note       string     `json:"note,omitempty" doc:"Free-form note"`
		PinnedDate time.Time  `json:"pinned_date" doc:"Calendar date"`
	}
}

type CreateCalendarPinOutput struct {
	Body *domain.CalendarPin
}

type ListCalendarPinsInput struct {
	CompanyID uuid.UUID `path:"companyID" doc:"Company ID"`
	From      time.Time `query:"from" doc:"Range start (defaults to 30 days ago)"`
	To        time.Time `query:"to" doc:"Range end (defaults to one year out)"`
}

type ListCalendarPinsOutput struct {
	Body []*domain.CalendarPin
}

type UpdateCalendarPinInput struct {
	ID   uuid.UUID `path:"id" doc:"Pin ID"`
	Body struct {
		Title      string     `json:"title,omitempty" maxLength:"255" doc:"Pin title"`
		Note       string     `json:"note,omitempty" doc:"Free-form note"`
		PinnedDate *time.Time `json:"pinned_date,omitempty" doc:"Calendar date"`
	}
}

type UpdateCalendarPinOutput struct {
	Body *domain.CalendarPin
}

type DeleteCalendarPinInput struct {
	ID uuid.UUID `path:"id" doc:"Pin ID"`
}

func RegisterCalendarRoutes(api huma.API, deps *Deps) {
	huma.Register(api, huma.Operation{
		OperationID: "create-calendar-pin",
		Method:      http.MethodPost,
		Path:        "/companies/{companyID}/calendar-pins",
		Summary:     "Pin a date on the compliance calendar",
		Tags:        []string{"Calendar"},
	}, func(ctx context.Context, input *CreateCalendarPinInput) (*CreateCalendarPinOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		if input.Body.AISystemID != nil {
			system, err := deps.Guard.EnsureSystemWriteLimited(ctx, actor, *input.Body.AISystemID)
			if err != nil {
				return nil, guardError(err, "system")
			}
			if system.CompanyID != input.CompanyID {
				return nil, huma.Error422UnprocessableEntity("system belongs to a different company")
			}
		} else if _, err := deps.Guard.EnsureCompanyWrite(ctx, actor, input.CompanyID); err != nil {
			return nil, guardError(err, "company")
		}

		now := time.Now()
		pin := &domain.CalendarPin{
			ID:         uuid.New(),
			CompanyID:  input.CompanyID,
			AISystemID: input.Body.AISystemID,
			Title:      input.Body.Title,
			Note:       input.Body.Note,
			PinnedDate: input.Body.PinnedDate,
			CreatedBy:  &actor.ID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := deps.Store.CalendarPins().Create(ctx, pin); err != nil {
			return nil, huma.Error500InternalServerError("failed to create calendar pin", err)
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &pin.CompanyID,
			ActorID:    &actor.ID,
			Action:     domain.AuditCalPinCreated,
			EntityType: "calendar_pin",
			EntityID:   &pin.ID,
			Metadata:   map[string]any{"title": pin.Title},
		})

		return &CreateCalendarPinOutput{Body: pin}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-calendar-pins",
		Method:      http.MethodGet,
		Path:        "/companies/{companyID}/calendar-pins",
		Summary:     "List calendar pins in a date range",
		Tags:        []string{"Calendar"},
	}, func(ctx context.Context, input *ListCalendarPinsInput) (*ListCalendarPinsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := deps.Guard.EnsureCompanyRead(ctx, actor, input.CompanyID); err != nil {
			return nil, guardError(err, "company")
		}

		from, to := input.From, input.To
		if from.IsZero() {
			from = time.Now().AddDate(0, 0, -30)
		}
		if to.IsZero() {
			to = time.Now().AddDate(1, 0, 0)
		}

		pins, err := deps.Store.CalendarPins().ListByCompany(ctx, input.CompanyID, from, to)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list calendar pins", err)
		}

		return &ListCalendarPinsOutput{Body: pins}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-calendar-pin",
		Method:      http.MethodPut,
		Path:        "/calendar-pins/{id}",
		Summary:     "Update a calendar pin",
		Tags:        []string{"Calendar"},
	}, func(ctx context.Context, input *UpdateCalendarPinInput) (*UpdateCalendarPinOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		pin, err := deps.Guard.EnsureCalendarPinWriteFull(ctx, actor, input.ID)
		if err != nil {
			return nil, guardError(err, "calendar pin")
		}

		if input.Body.Title != "" {
			pin.Title = input.Body.Title
		}
		if input.Body.Note != "" {
			pin.Note = input.Body.Note
		}
		if input.Body.PinnedDate != nil {
			pin.PinnedDate = *input.Body.PinnedDate
		}
		pin.UpdatedAt = time.Now()

		if err := deps.Store.CalendarPins().Update(ctx, pin); err != nil {
			return nil, huma.Error500InternalServerError("failed to update calendar pin", err)
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &pin.CompanyID,
			ActorID:    &actor.ID,
			Action:     domain.AuditCalPinUpdated,
			EntityType: "calendar_pin",
			EntityID:   &pin.ID,
		})

		return &UpdateCalendarPinOutput{Body: pin}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-calendar-pin",
		Method:      http.MethodDelete,
		Path:        "/calendar-pins/{id}",
		Summary:     "Delete a calendar pin",
		Tags:        []string{"Calendar"},
	}, func(ctx context.Context, input *DeleteCalendarPinInput) (*struct{}, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		pin, err := deps.Guard.EnsureCalendarPinWriteFull(ctx, actor, input.ID)
		if err != nil {
			return nil, guardError(err, "calendar pin")
		}

		if err := deps.Store.CalendarPins().Delete(ctx, input.ID); err != nil {
			return nil, guardError(err, "calendar pin")
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			CompanyID:  &pin.CompanyID,
			ActorID:    &actor.ID,
			Action:     domain.AuditCalPinDeleted,
			EntityType: "calendar_pin",
			EntityID:   &pin.ID,
			Metadata:   map[string]any{"title": pin.Title},
		})

		return nil, nil
	})
}
