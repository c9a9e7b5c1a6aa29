package v1

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/complyra/complyra/internal/audit"
	"github.com/complyra/complyra/internal/authz"
	"github.com/complyra/complyra/internal/domain"
	"github.com/complyra/complyra/internal/server/middleware"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Actors() domain.ActorRepository
	Companies() domain.CompanyRepository
	Systems() domain.AISystemRepository
	Tasks() domain.TaskRepository
	Documents() domain.DocumentRepository
	Incidents() domain.IncidentRepository
	CalendarPins() domain.CalendarPinRepository
	Assignments() domain.AdminAssignmentRepository
	Members() domain.SystemMemberRepository
	Audit() domain.AuditRepository
	Notifications() domain.NotificationRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, companyID *uuid.UUID, email, password, fullName, role string) (*domain.Actor, error)
	Login(ctx context.Context, email, password, ip string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// Notifier abstracts the notification producer for handler testing.
// *notify.Producer satisfies this interface.
type Notifier interface {
	IncidentCreated(ctx context.Context, incident *domain.Incident) (bool, error)
	IncidentStatusChanged(ctx context.Context, incident *domain.Incident, oldStatus domain.IncidentStatus) (bool, error)
	RunDueSoonCycle(ctx context.Context, now time.Time) (int, error)
}

// Deps bundles what the authenticated route handlers share: the store, the
// guard built over it, the audit recorder with its write surface, and the
// notification producer.
type Deps struct {
	Store    DataStore
	Guard    *authz.Guard
	Recorder *audit.Recorder
	DB       audit.Execer
	Notifier Notifier
}

// NewDeps wires the guard's rules over the store's assignment relations.
func NewDeps(store DataStore, db audit.Execer, notifier Notifier) *Deps {
	rules := authz.NewRules(&assignmentSource{store: store})
	return &Deps{
		Store:    store,
		Guard:    authz.NewGuard(store, rules),
		Recorder: audit.NewRecorder(),
		DB:       db,
		Notifier: notifier,
	}
}

// recordAudit writes one audit row as an isolated side effect. A broken
// trail never fails the mutation it describes.
func (d *Deps) recordAudit(ctx context.Context, e *domain.AuditEvent) {
	if e.IPAddress == "" {
		e.IPAddress = middleware.ClientIPFromContext(ctx)
	}
	audit.Isolate(ctx, "audit."+strings.ToLower(e.Action), func(ctx context.Context) error {
		return d.Recorder.Record(ctx, d.DB, e)
	})
}

// assignmentSource adapts the store's two assignment repositories to the
// authz predicate surface.
type assignmentSource struct {
	store DataStore
}

func (s *assignmentSource) IsAdminAssigned(ctx context.Context, adminID, companyID uuid.UUID) (bool, error) {
	return s.store.Assignments().Exists(ctx, adminID, companyID)
}

func (s *assignmentSource) IsSystemMember(ctx context.Context, userID, systemID uuid.UUID) (bool, error) {
	return s.store.Members().Exists(ctx, userID, systemID)
}

func clientIP(ctx context.Context) string {
	return middleware.ClientIPFromContext(ctx)
}

// actorFrom extracts the authenticated actor injected by the Auth
// middleware.
func actorFrom(ctx context.Context) (*domain.Actor, error) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("authentication required")
	}
	return actor, nil
}

// guardError maps the domain sentinels to HTTP errors. The guard already
// orders not-found before forbidden, so absence and denial stay
// indistinguishable to probes.
func guardError(err error, noun string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(noun + " not found")
	case errors.Is(err, domain.ErrInvalidScope):
		return huma.Error422UnprocessableEntity(noun + " has an inconsistent scope")
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden("insufficient permissions")
	default:
		return huma.Error500InternalServerError("internal error", err)
	}
}

func requireStaff(actor *domain.Actor) error {
	switch authz.Classify(actor.Role) {
	case authz.RoleSuperAdmin, authz.RoleStaffAdmin:
		return nil
	default:
		return huma.Error403Forbidden("insufficient permissions")
	}
}

func requireSuperAdmin(actor *domain.Actor) error {
	if authz.Classify(actor.Role) != authz.RoleSuperAdmin {
		return huma.Error403Forbidden("insufficient permissions")
	}
	return nil
}
