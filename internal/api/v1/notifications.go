package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/complyra/complyra/internal/domain"
)

type ListNotificationsInput struct {
	CompanyID uuid.UUID `path:"companyID" doc:"Company ID"`
	Limit     int       `query:"limit" minimum:"0" maximum:"500" doc:"Page size"`
	Offset    int       `query:"offset" minimum:"0" doc:"Page offset"`
}

type ListNotificationsOutput struct {
	Body []*domain.Notification
}

type RunNotificationCycleOutput struct {
	Body struct {
		Enqueued int `json:"enqueued" doc:"Reminders enqueued this cycle"`
	}
}

func RegisterNotificationRoutes(api huma.API, deps *Deps) {
	huma.Register(api, huma.Operation{
		OperationID: "list-notifications",
		Method:      http.MethodGet,
		Path:        "/companies/{companyID}/notifications",
		Summary:     "List a company's notifications",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, input *ListNotificationsInput) (*ListNotificationsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := deps.Guard.EnsureCompanyRead(ctx, actor, input.CompanyID); err != nil {
			return nil, guardError(err, "company")
		}

		notifications, err := deps.Store.Notifications().ListByCompany(ctx, input.CompanyID, input.Limit, input.Offset)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list notifications", err)
		}

		return &ListNotificationsOutput{Body: notifications}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "run-notification-cycle",
		Method:      http.MethodPost,
		Path:        "/notifications/run-cycle",
		Summary:     "Run the due-soon reminder cycle now",
		Description: "Staff only. The cycle also runs on a schedule; this endpoint forces an immediate pass.",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, _ *struct{}) (*RunNotificationCycleOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}
		if err := requireStaff(actor); err != nil {
			return nil, err
		}

		enqueued, err := deps.Notifier.RunDueSoonCycle(ctx, time.Now())
		if err != nil {
			return nil, huma.Error500InternalServerError("reminder cycle failed", err)
		}

		deps.recordAudit(ctx, &domain.AuditEvent{
			ActorID:    &actor.ID,
			Action:     domain.AuditNotificationsCycleTriggered,
			EntityType: "notification",
			Metadata:   map[string]any{"enqueued": enqueued},
		})

		out := &RunNotificationCycleOutput{}
		out.Body.Enqueued = enqueued
		return out, nil
	})
}
