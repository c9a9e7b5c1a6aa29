package v1_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	v1 "github.com/complyra/complyra/internal/api/v1"
	"github.com/complyra/complyra/internal/domain"
	"github.com/complyra/complyra/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers — inject the authenticated actor for DoCtx
// ---------------------------------------------------------------------------

func actorCtx(actor *domain.Actor) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, actor.ID)
	ctx = context.WithValue(ctx, middleware.ContextKeyActor, actor)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, actor.Role)
	ctx = context.WithValue(ctx, middleware.ContextKeyClientIP, "198.51.100.7:9999")
	return ctx
}

func superAdmin() *domain.Actor {
	return &domain.Actor{ID: uuid.New(), Email: "root@platform.test", Role: "super_admin", IsActive: true}
}

func staffAdmin() *domain.Actor {
	return &domain.Actor{ID: uuid.New(), Email: "staff@platform.test", Role: "staff_admin", IsActive: true}
}

func clientAdmin(companyID uuid.UUID) *domain.Actor {
	return &domain.Actor{ID: uuid.New(), CompanyID: &companyID, Email: "admin@client.test", Role: "client_admin", IsActive: true}
}

func contributor(companyID uuid.UUID) *domain.Actor {
	return &domain.Actor{ID: uuid.New(), CompanyID: &companyID, Email: "dev@client.test", Role: "contributor", IsActive: true}
}

// ---------------------------------------------------------------------------
// Recording audit sink
// ---------------------------------------------------------------------------

// recordingExec captures audit insert actions in order. The action code is
// the fourth insert parameter.
type recordingExec struct {
	mu      sync.Mutex
	actions []string
}

func (e *recordingExec) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(args) > 3 {
		if action, ok := args[3].(string); ok {
			e.actions = append(e.actions, action)
		}
	}
	return pgconn.CommandTag{}, nil
}

func (e *recordingExec) recorded() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.actions...)
}

// ---------------------------------------------------------------------------
// Mock Notifier
// ---------------------------------------------------------------------------

type mockNotifier struct {
	incidentCreatedFunc       func(ctx context.Context, incident *domain.Incident) (bool, error)
	incidentStatusChangedFunc func(ctx context.Context, incident *domain.Incident, oldStatus domain.IncidentStatus) (bool, error)
	runDueSoonCycleFunc       func(ctx context.Context, now time.Time) (int, error)
}

func (m *mockNotifier) IncidentCreated(ctx context.Context, incident *domain.Incident) (bool, error) {
	if m.incidentCreatedFunc == nil {
		return true, nil
	}
	return m.incidentCreatedFunc(ctx, incident)
}

func (m *mockNotifier) IncidentStatusChanged(ctx context.Context, incident *domain.Incident, oldStatus domain.IncidentStatus) (bool, error) {
	if m.incidentStatusChangedFunc == nil {
		return true, nil
	}
	return m.incidentStatusChangedFunc(ctx, incident, oldStatus)
}

func (m *mockNotifier) RunDueSoonCycle(ctx context.Context, now time.Time) (int, error) {
	if m.runDueSoonCycleFunc == nil {
		return 0, nil
	}
	return m.runDueSoonCycleFunc(ctx, now)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockStore struct {
	actors        domain.ActorRepository
	companies     domain.CompanyRepository
	systems       domain.AISystemRepository
	tasks         domain.TaskRepository
	documents     domain.DocumentRepository
	incidents     domain.IncidentRepository
	calendarPins  domain.CalendarPinRepository
	assignments   domain.AdminAssignmentRepository
	members       domain.SystemMemberRepository
	audit         domain.AuditRepository
	notifications domain.NotificationRepository
}

func (m *mockStore) Actors() domain.ActorRepository                { return m.actors }
func (m *mockStore) Companies() domain.CompanyRepository           { return m.companies }
func (m *mockStore) Systems() domain.AISystemRepository            { return m.systems }
func (m *mockStore) Tasks() domain.TaskRepository                  { return m.tasks }
func (m *mockStore) Documents() domain.DocumentRepository          { return m.documents }
func (m *mockStore) Incidents() domain.IncidentRepository          { return m.incidents }
func (m *mockStore) CalendarPins() domain.CalendarPinRepository    { return m.calendarPins }
func (m *mockStore) Assignments() domain.AdminAssignmentRepository { return m.assignments }
func (m *mockStore) Members() domain.SystemMemberRepository        { return m.members }
func (m *mockStore) Audit() domain.AuditRepository                 { return m.audit }
func (m *mockStore) Notifications() domain.NotificationRepository  { return m.notifications }

// newTestDeps wires a Deps over the mock store with a recording audit sink.
func newTestDeps(store *mockStore) (*v1.Deps, *recordingExec, *mockNotifier) {
	exec := &recordingExec{}
	notifier := &mockNotifier{}
	return v1.NewDeps(store, exec, notifier), exec, notifier
}

// ---------------------------------------------------------------------------
// Mock CompanyRepository
// ---------------------------------------------------------------------------

type mockCompanyRepo struct {
	createFunc    func(ctx context.Context, c *domain.Company) error
	getByIDFunc   func(ctx context.Context, id uuid.UUID) (*domain.Company, error)
	updateFunc    func(ctx context.Context, c *domain.Company) error
	listFunc      func(ctx context.Context) ([]*domain.Company, error)
	listByIDsFunc func(ctx context.Context, ids []uuid.UUID) ([]*domain.Company, error)
	deleteFunc    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCompanyRepo) Create(ctx context.Context, c *domain.Company) error {
	return m.createFunc(ctx, c)
}

func (m *mockCompanyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockCompanyRepo) Update(ctx context.Context, c *domain.Company) error {
	return m.updateFunc(ctx, c)
}

func (m *mockCompanyRepo) List(ctx context.Context) ([]*domain.Company, error) {
	return m.listFunc(ctx)
}

func (m *mockCompanyRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Company, error) {
	return m.listByIDsFunc(ctx, ids)
}

func (m *mockCompanyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock AISystemRepository
// ---------------------------------------------------------------------------

type mockSystemRepo struct {
	createFunc                 func(ctx context.Context, s *domain.AISystem) error
	getByIDFunc                func(ctx context.Context, id uuid.UUID) (*domain.AISystem, error)
	updateFunc                 func(ctx context.Context, s *domain.AISystem) error
	updateComplianceStatusFunc func(ctx context.Context, id uuid.UUID, status domain.ComplianceStatus) error
	listByCompanyFunc          func(ctx context.Context, companyID uuid.UUID) ([]*domain.AISystem, error)
	deleteFunc                 func(ctx context.Context, id uuid.UUID) error
}

func (m *mockSystemRepo) Create(ctx context.Context, s *domain.AISystem) error {
	return m.createFunc(ctx, s)
}

func (m *mockSystemRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AISystem, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockSystemRepo) Update(ctx context.Context, s *domain.AISystem) error {
	return m.updateFunc(ctx, s)
}

func (m *mockSystemRepo) UpdateComplianceStatus(ctx context.Context, id uuid.UUID, status domain.ComplianceStatus) error {
	return m.updateComplianceStatusFunc(ctx, id, status)
}

func (m *mockSystemRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.AISystem, error) {
	return m.listByCompanyFunc(ctx, companyID)
}

func (m *mockSystemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc       func(ctx context.Context, t *domain.Task) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	updateFunc       func(ctx context.Context, t *domain.Task) error
	listBySystemFunc func(ctx context.Context, systemID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error)
	deleteFunc       func(ctx context.Context, id uuid.UUID) error
	listDueSoonFunc  func(ctx context.Context, now time.Time) ([]*domain.Task, error)
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTaskRepo) ListBySystem(ctx context.Context, systemID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error) {
	return m.listBySystemFunc(ctx, systemID, filter)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockTaskRepo) ListDueSoon(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	return m.listDueSoonFunc(ctx, now)
}

// ---------------------------------------------------------------------------
// Mock DocumentRepository
// ---------------------------------------------------------------------------

type mockDocumentRepo struct {
	createFunc       func(ctx context.Context, d *domain.Document) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	updateFunc       func(ctx context.Context, d *domain.Document) error
	listBySystemFunc func(ctx context.Context, systemID uuid.UUID) ([]*domain.Document, error)
	listByTaskFunc   func(ctx context.Context, taskID uuid.UUID) ([]*domain.Document, error)
	deleteFunc       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	return m.createFunc(ctx, d)
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockDocumentRepo) Update(ctx context.Context, d *domain.Document) error {
	return m.updateFunc(ctx, d)
}

func (m *mockDocumentRepo) ListBySystem(ctx context.Context, systemID uuid.UUID) ([]*domain.Document, error) {
	return m.listBySystemFunc(ctx, systemID)
}

func (m *mockDocumentRepo) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Document, error) {
	return m.listByTaskFunc(ctx, taskID)
}

func (m *mockDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock IncidentRepository
// ---------------------------------------------------------------------------

type mockIncidentRepo struct {
	createFunc        func(ctx context.Context, i *domain.Incident) error
	getByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	updateFunc        func(ctx context.Context, i *domain.Incident) error
	listBySystemFunc  func(ctx context.Context, systemID uuid.UUID) ([]*domain.Incident, error)
	listByCompanyFunc func(ctx context.Context, companyID uuid.UUID) ([]*domain.Incident, error)
	deleteFunc        func(ctx context.Context, id uuid.UUID) error
}

func (m *mockIncidentRepo) Create(ctx context.Context, i *domain.Incident) error {
	return m.createFunc(ctx, i)
}

func (m *mockIncidentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockIncidentRepo) Update(ctx context.Context, i *domain.Incident) error {
	return m.updateFunc(ctx, i)
}

func (m *mockIncidentRepo) ListBySystem(ctx context.Context, systemID uuid.UUID) ([]*domain.Incident, error) {
	return m.listBySystemFunc(ctx, systemID)
}

func (m *mockIncidentRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.Incident, error) {
	return m.listByCompanyFunc(ctx, companyID)
}

func (m *mockIncidentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock CalendarPinRepository
// ---------------------------------------------------------------------------

type mockCalendarPinRepo struct {
	createFunc        func(ctx context.Context, p *domain.CalendarPin) error
	getByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.CalendarPin, error)
	updateFunc        func(ctx context.Context, p *domain.CalendarPin) error
	listByCompanyFunc func(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]*domain.CalendarPin, error)
	deleteFunc        func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCalendarPinRepo) Create(ctx context.Context, p *domain.CalendarPin) error {
	return m.createFunc(ctx, p)
}

func (m *mockCalendarPinRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.CalendarPin, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockCalendarPinRepo) Update(ctx context.Context, p *domain.CalendarPin) error {
	return m.updateFunc(ctx, p)
}

func (m *mockCalendarPinRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]*domain.CalendarPin, error) {
	return m.listByCompanyFunc(ctx, companyID, from, to)
}

func (m *mockCalendarPinRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock AdminAssignmentRepository
// ---------------------------------------------------------------------------

type mockAssignmentRepo struct {
	createFunc        func(ctx context.Context, adminID, companyID uuid.UUID) (*domain.AdminAssignment, error)
	getByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.AdminAssignment, error)
	listByAdminFunc   func(ctx context.Context, adminID uuid.UUID) ([]*domain.AdminAssignment, error)
	listByCompanyFunc func(ctx context.Context, companyID uuid.UUID) ([]*domain.AdminAssignment, error)
	existsFunc        func(ctx context.Context, adminID, companyID uuid.UUID) (bool, error)
	deleteFunc        func(ctx context.Context, id uuid.UUID) error
}

func (m *mockAssignmentRepo) Create(ctx context.Context, adminID, companyID uuid.UUID) (*domain.AdminAssignment, error) {
	return m.createFunc(ctx, adminID, companyID)
}

func (m *mockAssignmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminAssignment, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockAssignmentRepo) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]*domain.AdminAssignment, error) {
	return m.listByAdminFunc(ctx, adminID)
}

func (m *mockAssignmentRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.AdminAssignment, error) {
	return m.listByCompanyFunc(ctx, companyID)
}

func (m *mockAssignmentRepo) Exists(ctx context.Context, adminID, companyID uuid.UUID) (bool, error) {
	return m.existsFunc(ctx, adminID, companyID)
}

func (m *mockAssignmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock SystemMemberRepository
// ---------------------------------------------------------------------------

type mockMemberRepo struct {
	createFunc           func(ctx context.Context, userID, systemID uuid.UUID, memberRole string) (*domain.SystemMember, error)
	getByIDFunc          func(ctx context.Context, id uuid.UUID) (*domain.SystemMember, error)
	listBySystemFunc     func(ctx context.Context, systemID uuid.UUID) ([]*domain.SystemMember, error)
	systemIDsForUserFunc func(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	existsFunc           func(ctx context.Context, userID, systemID uuid.UUID) (bool, error)
	deleteFunc           func(ctx context.Context, id uuid.UUID) error
}

func (m *mockMemberRepo) Create(ctx context.Context, userID, systemID uuid.UUID, memberRole string) (*domain.SystemMember, error) {
	return m.createFunc(ctx, userID, systemID, memberRole)
}

func (m *mockMemberRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SystemMember, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockMemberRepo) ListBySystem(ctx context.Context, systemID uuid.UUID) ([]*domain.SystemMember, error) {
	return m.listBySystemFunc(ctx, systemID)
}

func (m *mockMemberRepo) SystemIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return m.systemIDsForUserFunc(ctx, userID)
}

func (m *mockMemberRepo) Exists(ctx context.Context, userID, systemID uuid.UUID) (bool, error) {
	return m.existsFunc(ctx, userID, systemID)
}

func (m *mockMemberRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock AuditRepository (read side)
// ---------------------------------------------------------------------------

type mockAuditRepo struct {
	listByCompanyFunc func(ctx context.Context, companyID uuid.UUID, filter domain.AuditFilter) ([]*domain.AuditEvent, error)
	listByEntityFunc  func(ctx context.Context, companyID uuid.UUID, entityType string, entityID uuid.UUID) ([]*domain.AuditEvent, error)
}

func (m *mockAuditRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, filter domain.AuditFilter) ([]*domain.AuditEvent, error) {
	return m.listByCompanyFunc(ctx, companyID, filter)
}

func (m *mockAuditRepo) ListByEntity(ctx context.Context, companyID uuid.UUID, entityType string, entityID uuid.UUID) ([]*domain.AuditEvent, error) {
	return m.listByEntityFunc(ctx, companyID, entityType, entityID)
}

// ---------------------------------------------------------------------------
// Mock NotificationRepository
// ---------------------------------------------------------------------------

type mockNotificationRepo struct {
	enqueueFunc       func(ctx context.Context, n *domain.Notification) error
	getByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	listByCompanyFunc func(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*domain.Notification, error)
	listQueuedFunc    func(ctx context.Context, limit int) ([]*domain.Notification, error)
	markSentFunc      func(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	markFailedFunc    func(ctx context.Context, id uuid.UUID, errorText string) error
	recentMatchFunc   func(ctx context.Context, q domain.DedupQuery, now time.Time) (bool, error)
	recentForTaskFunc func(ctx context.Context, taskID uuid.UUID, userID *uuid.UUID, window time.Duration, now time.Time) (bool, error)
}

func (m *mockNotificationRepo) Enqueue(ctx context.Context, n *domain.Notification) error {
	return m.enqueueFunc(ctx, n)
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockNotificationRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*domain.Notification, error) {
	return m.listByCompanyFunc(ctx, companyID, limit, offset)
}

func (m *mockNotificationRepo) ListQueued(ctx context.Context, limit int) ([]*domain.Notification, error) {
	return m.listQueuedFunc(ctx, limit)
}

func (m *mockNotificationRepo) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return m.markSentFunc(ctx, id, sentAt)
}

func (m *mockNotificationRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorText string) error {
	return m.markFailedFunc(ctx, id, errorText)
}

func (m *mockNotificationRepo) RecentMatch(ctx context.Context, q domain.DedupQuery, now time.Time) (bool, error) {
	return m.recentMatchFunc(ctx, q, now)
}

func (m *mockNotificationRepo) RecentForTask(ctx context.Context, taskID uuid.UUID, userID *uuid.UUID, window time.Duration, now time.Time) (bool, error) {
	return m.recentForTaskFunc(ctx, taskID, userID, window, now)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc     func(ctx context.Context, companyID *uuid.UUID, email, password, fullName, role string) (*domain.Actor, error)
	loginFunc        func(ctx context.Context, email, password, ip string) (string, string, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, companyID *uuid.UUID, email, password, fullName, role string) (*domain.Actor, error) {
	return m.registerFunc(ctx, companyID, email, password, fullName, role)
}

func (m *mockAuthService) Login(ctx context.Context, email, password, ip string) (string, string, error) {
	return m.loginFunc(ctx, email, password, ip)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}
