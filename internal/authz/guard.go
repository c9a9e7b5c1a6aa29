package authz

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/complyra/complyra/internal/domain"
)

// TaskLimitedFields is the fixed allow-list of task fields the limited write
// tier may change. Everything else (title, severity, mandatory, deletion) is
// structural and requires full write.
var TaskLimitedFields = map[string]struct{}{
	"status":               {},
	"evidence_url":         {},
	"notes":                {},
	"completed_at":         {},
	"owner_user_id":        {},
	"due_date":             {},
	"reminder_days_before": {},
}

// FieldPermissionError reports structural fields a limited-tier actor tried
// to change. It unwraps to domain.ErrForbidden.
type FieldPermissionError struct {
	Fields []string
}

func (e *FieldPermissionError) Error() string {
	allowed := make([]string, 0, len(TaskLimitedFields))
	for f := range TaskLimitedFields {
		allowed = append(allowed, f)
	}
	sort.Strings(allowed)
	return fmt.Sprintf("fields not permitted at limited tier: %s (allowed: %s)",
		strings.Join(e.Fields, ", "), strings.Join(allowed, ", "))
}

func (e *FieldPermissionError) Unwrap() error { return domain.ErrForbidden }

// CheckLimitedTaskFields returns a FieldPermissionError when changed contains
// fields outside the limited allow-list, nil otherwise.
func CheckLimitedTaskFields(changed []string) error {
	var illegal []string
	for _, f := range changed {
		if _, ok := TaskLimitedFields[f]; !ok {
			illegal = append(illegal, f)
		}
	}
	if len(illegal) == 0 {
		return nil
	}
	sort.Strings(illegal)
	return &FieldPermissionError{Fields: illegal}
}

// ResourceStore is the loader surface the guard needs. *postgres.Store
// satisfies it.
type ResourceStore interface {
	Companies() domain.CompanyRepository
	Systems() domain.AISystemRepository
	Tasks() domain.TaskRepository
	Documents() domain.DocumentRepository
	Incidents() domain.IncidentRepository
	CalendarPins() domain.CalendarPinRepository
}

// Guard wraps the scoping rules as assertions. Each Ensure method loads the
// resource (not-found before authorization, so denial and absence stay
// indistinguishable to probes), evaluates the matching predicate, and returns
// the loaded resource so callers avoid a second fetch.
type Guard struct {
	store ResourceStore
	rules *Rules
}

func NewGuard(store ResourceStore, rules *Rules) *Guard {
	return &Guard{store: store, rules: rules}
}

type tier int

const (
	tierRead tier = iota
	tierWriteLimited
	tierWriteFull
)

func (g *Guard) systemPredicate(ctx context.Context, actor *domain.Actor, system *domain.AISystem, t tier) (bool, error) {
	switch t {
	case tierWriteFull:
		return g.rules.CanWriteSystemFull(ctx, actor, system)
	case tierWriteLimited:
		return g.rules.CanWriteSystemLimited(ctx, actor, system)
	default:
		return g.rules.CanReadSystem(ctx, actor, system)
	}
}

// --- Company ---------------------------------------------------------------

func (g *Guard) EnsureCompanyRead(ctx context.Context, actor *domain.Actor, companyID uuid.UUID) (*domain.Company, error) {
	return g.ensureCompany(ctx, actor, companyID, tierRead)
}

func (g *Guard) EnsureCompanyWrite(ctx context.Context, actor *domain.Actor, companyID uuid.UUID) (*domain.Company, error) {
	return g.ensureCompany(ctx, actor, companyID, tierWriteFull)
}

func (g *Guard) ensureCompany(ctx context.Context, actor *domain.Actor, companyID uuid.UUID, t tier) (*domain.Company, error) {
	company, err := g.store.Companies().GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("authz.Guard.ensureCompany: %w", err)
	}

	var ok bool
	if t == tierRead {
		ok, err = g.rules.CanReadCompany(ctx, actor, companyID)
	} else {
		ok, err = g.rules.CanWriteCompany(ctx, actor, companyID)
	}
	if err != nil {
		return nil, fmt.Errorf("authz.Guard.ensureCompany: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("authz.Guard.ensureCompany: %w", domain.ErrForbidden)
	}
	return company, nil
}

// --- AI System -------------------------------------------------------------

func (g *Guard) EnsureSystemRead(ctx context.Context, actor *domain.Actor, systemID uuid.UUID) (*domain.AISystem, error) {
	return g.ensureSystem(ctx, actor, systemID, tierRead)
}

func (g *Guard) EnsureSystemWriteLimited(ctx context.Context, actor *domain.Actor, systemID uuid.UUID) (*domain.AISystem, error) {
	return g.ensureSystem(ctx, actor, systemID, tierWriteLimited)
}

func (g *Guard) EnsureSystemWriteFull(ctx context.Context, actor *domain.Actor, systemID uuid.UUID) (*domain.AISystem, error) {
	return g.ensureSystem(ctx, actor, systemID, tierWriteFull)
}

func (g *Guard) ensureSystem(ctx context.Context, actor *domain.Actor, systemID uuid.UUID, t tier) (*domain.AISystem, error) {
	system, err := g.store.Systems().GetByID(ctx, systemID)
	if err != nil {
		return nil, fmt.Errorf("authz.Guard.ensureSystem: %w", err)
	}

	ok, err := g.systemPredicate(ctx, actor, system, t)
	if err != nil {
		return nil, fmt.Errorf("authz.Guard.ensureSystem: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("authz.Guard.ensureSystem: %w", domain.ErrForbidden)
	}
	return system, nil
}

// resolveSystemScope loads the owning system and rejects resources whose
// stored company contradicts the resolved owner. Client-supplied company ids
// are never trusted over the owner's.
func (g *Guard) resolveSystemScope(ctx context.Context, systemID, resourceCompanyID uuid.UUID) (*domain.AISystem, error) {
	system, err := g.store.Systems().GetByID(ctx, systemID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("authz: owning system missing: %w", domain.ErrInvalidScope)
		}
		return nil, err
	}
	if system.CompanyID != resourceCompanyID {
		return nil, fmt.Errorf("authz: company mismatch with owning system: %w", domain.ErrInvalidScope)
	}
	return system, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// --- Task ------------------------------------------------------------------

func (g *Guard) EnsureTaskRead(ctx context.Context, actor *domain.Actor, taskID uuid.UUID) (*domain.Task, error) {
	return g.ensureTask(ctx, actor, taskID, tierRead)
}

func (g *Guard) EnsureTaskWriteLimited(ctx context.Context, actor *domain.Actor, taskID uuid.UUID) (*domain.Task, error) {
	return g.ensureTask(ctx, actor, taskID, tierWriteLimited)
}

func (g *Guard) EnsureTaskWriteFull(ctx context.Context, actor *domain.Actor, taskID uuid.UUID) (*domain.Task, error) {
	return g.ensureTask(ctx, actor, taskID, tierWriteFull)
}

func (g *Guard) ensureTask(ctx context.Context, actor *domain.Actor, taskID uuid.UUID, t tier) (*domain.Task, error) {
	task, err := g.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("authz.Guard.ensureTask: %w", err)
	}

	system, err := g.resolveSystemScope(ctx, task.AISystemID, task.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("authz.Guard.ensureTask: %w", err)
	}

	ok, err := g.systemPredicate(ctx, actor, system, t)
	if err != nil {
		return nil, fmt.Errorf("authz.Guard.ensureTask: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("authz.Guard.ensureTask: %w", domain.ErrForbidden)
	}
	return task, nil
}

// --- Document --------------------------------------------------------------

func (g *Guard) EnsureDocumentRead(ctx context.Context, actor *domain.Actor, docID uuid.UUID) (*domain.Document, error) {
	return g.ensureDocument(ctx, actor, docID, tierRead)
}

func (g *Guard) EnsureDocumentWriteLimited(ctx context.Context, actor *domain.Actor, docID uuid.UUID) (*domain.Document, error) {
	return g.ensureDocument(ctx, actor, docID, tierWriteLimited)
}

func (g *Guard) EnsureDocumentWriteFull(ctx context.Context, actor *domain.Actor, docID uuid.UUID) (*domain.Document, error) {
	return g.ensureDocument(ctx, actor, docID, tierWriteFull)
}

// ensureDocument resolves the owning system transitively: directly via
// AISystemID when present, otherwise through the linked task. An unresolvable
// scope (no system, no task, or a dangling task) is an orphan and denies with
// ErrInvalidScope rather than Forbidden.
func (g *Guard) ensureDocument(ctx context.Context, actor *domain.Actor, docID uuid.UUID, t tier) (*domain.Document, error) {
	doc, err := g.store.Documents().GetByID(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("authz.Guard.ensureDocument: %w", err)
	}

	systemID := doc.AISystemID
	if systemID == nil && doc.TaskID != nil {
		task, taskErr := g.store.Tasks().GetByID(ctx, *doc.TaskID)
		if taskErr != nil {
			if isNotFound(taskErr) {
				return nil, fmt.Errorf("authz.Guard.ensureDocument: linked task missing: %w", domain.ErrInvalidScope)
			}
			return nil, fmt.Errorf("authz.Guard.ensureDocument: %w", taskErr)
		}
		systemID = &task.AISystemID
	}
	if systemID == nil {
		return nil, fmt.Errorf("authz.Guard.ensureDocument: orphaned document: %w", domain.ErrInvalidScope)
	}

	system, err := g.resolveSystemScope(ctx, *systemID, doc.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("authz.Guard.ensureDocument: %w", err)
	}

	ok, err := g.systemPredicate(ctx, actor, system, t)
	if err != nil {
		return nil, fmt.Errorf("authz.Guard.ensureDocument: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("authz.Guard.ensureDocument: %w", domain.ErrForbidden)
	}
	return doc, nil
}

// --- Incident --------------------------------------------------------------

func (g *Guard) EnsureIncidentRead(ctx context.Context, actor *domain.Actor, incidentID uuid.UUID) (*domain.Incident, error) {
	return g.ensureIncident(ctx, actor, incidentID, tierRead)
}

func (g *Guard) EnsureIncidentWriteLimited(ctx context.Context, actor *domain.Actor, incidentID uuid.UUID) (*domain.Incident, error) {
	return g.ensureIncident(ctx, actor, incidentID, tierWriteLimited)
}

func (g *Guard) EnsureIncidentWriteFull(ctx context.Context, actor *domain.Actor, incidentID uuid.UUID) (*domain.Incident, error) {
	return g.ensureIncident(ctx, actor, incidentID, tierWriteFull)
}

func (g *Guard) ensureIncident(ctx context.Context, actor *domain.Actor, incidentID uuid.UUID, t tier) (*domain.Incident, error) {
	incident, err := g.store.Incidents().GetByID(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("authz.Guard.ensureIncident: %w", err)
	}

	system, err := g.resolveSystemScope(ctx, incident.AISystemID, incident.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("authz.Guard.ensureIncident: %w", err)
	}

	ok, err := g.systemPredicate(ctx, actor, system, t)
	if err != nil {
		return nil, fmt.Errorf("authz.Guard.ensureIncident: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("authz.Guard.ensureIncident: %w", domain.ErrForbidden)
	}
	return incident, nil
}

// --- Calendar Pin ----------------------------------------------------------

func (g *Guard) EnsureCalendarPinRead(ctx context.Context, actor *domain.Actor, pinID uuid.UUID) (*domain.CalendarPin, error) {
	return g.ensureCalendarPin(ctx, actor, pinID, tierRead)
}

func (g *Guard) EnsureCalendarPinWriteLimited(ctx context.Context, actor *domain.Actor, pinID uuid.UUID) (*domain.CalendarPin, error) {
	return g.ensureCalendarPin(ctx, actor, pinID, tierWriteLimited)
}

func (g *Guard) EnsureCalendarPinWriteFull(ctx context.Context, actor *domain.Actor, pinID uuid.UUID) (*domain.CalendarPin, error) {
	return g.ensureCalendarPin(ctx, actor, pinID, tierWriteFull)
}

// ensureCalendarPin uses the owning system when the pin has one, and falls
// back to the company predicates for company-only pins.
func (g *Guard) ensureCalendarPin(ctx context.Context, actor *domain.Actor, pinID uuid.UUID, t tier) (*domain.CalendarPin, error) {
	pin, err := g.store.CalendarPins().GetByID(ctx, pinID)
	if err != nil {
		return nil, fmt.Errorf("authz.Guard.ensureCalendarPin: %w", err)
	}

	var ok bool
	if pin.AISystemID != nil {
		system, scopeErr := g.resolveSystemScope(ctx, *pin.AISystemID, pin.CompanyID)
		if scopeErr != nil {
			return nil, fmt.Errorf("authz.Guard.ensureCalendarPin: %w", scopeErr)
		}
		ok, err = g.systemPredicate(ctx, actor, system, t)
	} else if t == tierRead {
		ok, err = g.rules.CanReadCompany(ctx, actor, pin.CompanyID)
	} else {
		ok, err = g.rules.CanWriteCompany(ctx, actor, pin.CompanyID)
	}
	if err != nil {
		return nil, fmt.Errorf("authz.Guard.ensureCalendarPin: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("authz.Guard.ensureCalendarPin: %w", domain.ErrForbidden)
	}
	return pin, nil
}
