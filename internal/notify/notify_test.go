package notify_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/complyra/complyra/internal/domain"
)

// ---------------------------------------------------------------------------
// Shared mocks
// ---------------------------------------------------------------------------

type mockNotificationRepo struct {
	EnqueueFunc       func(ctx context.Context, n *domain.Notification) error
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	ListByCompanyFunc func(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*domain.Notification, error)
	ListQueuedFunc    func(ctx context.Context, limit int) ([]*domain.Notification, error)
	MarkSentFunc      func(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailedFunc    func(ctx context.Context, id uuid.UUID, errorText string) error
	RecentMatchFunc   func(ctx context.Context, q domain.DedupQuery, now time.Time) (bool, error)
	RecentForTaskFunc func(ctx context.Context, taskID uuid.UUID, userID *uuid.UUID, window time.Duration, now time.Time) (bool, error)
}

func (m *mockNotificationRepo) Enqueue(ctx context.Context, n *domain.Notification) error {
	return m.EnqueueFunc(ctx, n)
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockNotificationRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*domain.Notification, error) {
	return m.ListByCompanyFunc(ctx, companyID, limit, offset)
}

func (m *mockNotificationRepo) ListQueued(ctx context.Context, limit int) ([]*domain.Notification, error) {
	return m.ListQueuedFunc(ctx, limit)
}

func (m *mockNotificationRepo) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return m.MarkSentFunc(ctx, id, sentAt)
}

func (m *mockNotificationRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorText string) error {
	return m.MarkFailedFunc(ctx, id, errorText)
}

func (m *mockNotificationRepo) RecentMatch(ctx context.Context, q domain.DedupQuery, now time.Time) (bool, error) {
	return m.RecentMatchFunc(ctx, q, now)
}

func (m *mockNotificationRepo) RecentForTask(ctx context.Context, taskID uuid.UUID, userID *uuid.UUID, window time.Duration, now time.Time) (bool, error) {
	return m.RecentForTaskFunc(ctx, taskID, userID, window, now)
}

type mockSystemRepo struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.AISystem, error)
}

func (m *mockSystemRepo) Create(ctx context.Context, s *domain.AISystem) error { panic("not used") }

func (m *mockSystemRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AISystem, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockSystemRepo) Update(ctx context.Context, s *domain.AISystem) error { panic("not used") }

func (m *mockSystemRepo) UpdateComplianceStatus(ctx context.Context, id uuid.UUID, status domain.ComplianceStatus) error {
	panic("not used")
}

func (m *mockSystemRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.AISystem, error) {
	panic("not used")
}

func (m *mockSystemRepo) Delete(ctx context.Context, id uuid.UUID) error { panic("not used") }

type mockTaskRepo struct {
	ListDueSoonFunc func(ctx context.Context, now time.Time) ([]*domain.Task, error)
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error { panic("not used") }

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	panic("not used")
}

func (m *mockTaskRepo) Update(ctx context.Context, t *domain.Task) error { panic("not used") }

func (m *mockTaskRepo) ListBySystem(ctx context.Context, systemID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error) {
	panic("not used")
}

func (m *mockTaskRepo) ListDueSoon(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	return m.ListDueSoonFunc(ctx, now)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error { panic("not used") }

type recordingPublisher struct {
	channels []string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, payload)
	return p.err
}
