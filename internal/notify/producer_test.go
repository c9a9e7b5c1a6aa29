package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyra/complyra/internal/domain"
	"github.com/complyra/complyra/internal/notify"
	redisstore "github.com/complyra/complyra/internal/store/redis"
)

func testIncident(companyID, systemID uuid.UUID) *domain.Incident {
	return &domain.Incident{
		ID:           uuid.New(),
		CompanyID:    companyID,
		AISystemID:   systemID,
		Severity:     "high",
		IncidentType: "malfunction",
		Summary:      "model produced unsafe output",
		Status:       domain.IncidentStatusOpen,
	}
}

func testSystems(name string) *mockSystemRepo {
	return &mockSystemRepo{
		GetByIDFunc: func(context.Context, uuid.UUID) (*domain.AISystem, error) {
			return &domain.AISystem{Name: name}, nil
		},
	}
}

// ---------------------------------------------------------------------------
// Incident producers
// ---------------------------------------------------------------------------

func TestProducer_IncidentCreated_Enqueues(t *testing.T) {
	t.Parallel()

	companyID, systemID := uuid.New(), uuid.New()
	incident := testIncident(companyID, systemID)

	var enqueued *domain.Notification
	repo := &mockNotificationRepo{
		RecentMatchFunc: func(_ context.Context, q domain.DedupQuery, _ time.Time) (bool, error) {
			assert.Equal(t, domain.NotifIncidentCreated, q.Type)
			assert.Equal(t, "incident_id", q.PayloadKey)
			assert.Equal(t, incident.ID.String(), q.PayloadVal)
			assert.Equal(t, notify.DefaultEventWindow, q.Window)
			return false, nil
		},
		EnqueueFunc: func(_ context.Context, n *domain.Notification) error {
			enqueued = n
			return nil
		},
	}
	pub := &recordingPublisher{}
	p := notify.NewProducer(repo, testSystems("Fraud Scorer"), &mockTaskRepo{}, pub, "slack")

	ok, err := p.IncidentCreated(context.Background(), incident)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NotNil(t, enqueued)
	assert.Equal(t, domain.NotifIncidentCreated, enqueued.Type)
	assert.Equal(t, companyID, enqueued.CompanyID)
	require.NotNil(t, enqueued.AISystemID)
	assert.Equal(t, systemID, *enqueued.AISystemID)
	assert.Equal(t, "slack", enqueued.Channel)
	assert.Equal(t, domain.NotificationStatusQueued, enqueued.Status)
	assert.Equal(t, incident.ID.String(), enqueued.Payload["incident_id"])
	assert.Equal(t, "Fraud Scorer", enqueued.Payload["ai_system_name"])
	assert.NotEmpty(t, enqueued.Subject)
	assert.NotEmpty(t, enqueued.Body)

	// queue wakeup plus company- and system-scoped fanout
	require.Len(t, pub.channels, 3)
	assert.Equal(t, notify.QueueChannel, pub.channels[0])
	assert.Equal(t, redisstore.CompanyChannel(companyID), pub.channels[1])
	assert.Equal(t, redisstore.SystemChannel(companyID, systemID), pub.channels[2])

	var fanned domain.Notification
	require.NoError(t, json.Unmarshal(pub.payloads[1], &fanned))
	assert.Equal(t, enqueued.ID, fanned.ID)
	assert.Equal(t, domain.NotifIncidentCreated, fanned.Type)
}

func TestProducer_IncidentCreated_DuplicateSuppressed(t *testing.T) {
	t.Parallel()

	repo := &mockNotificationRepo{
		RecentMatchFunc: func(context.Context, domain.DedupQuery, time.Time) (bool, error) {
			return true, nil
		},
		EnqueueFunc: func(context.Context, *domain.Notification) error {
			t.Fatal("enqueue must not be called for a duplicate")
			return nil
		},
	}
	p := notify.NewProducer(repo, testSystems("x"), &mockTaskRepo{}, nil, "log")

	ok, err := p.IncidentCreated(context.Background(), testIncident(uuid.New(), uuid.New()))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProducer_IncidentCreated_DedupFailureProceeds(t *testing.T) {
	t.Parallel()

	enqueued := 0
	repo := &mockNotificationRepo{
		RecentMatchFunc: func(context.Context, domain.DedupQuery, time.Time) (bool, error) {
			return false, errors.New("connection reset")
		},
		EnqueueFunc: func(context.Context, *domain.Notification) error {
			enqueued++
			return nil
		},
	}
	p := notify.NewProducer(repo, testSystems("x"), &mockTaskRepo{}, nil, "log")

	ok, err := p.IncidentCreated(context.Background(), testIncident(uuid.New(), uuid.New()))
	require.NoError(t, err)
	assert.True(t, ok, "a broken dedup check must not lose the notification")
	assert.Equal(t, 1, enqueued)
}

func TestProducer_IncidentStatusChanged_CarriesBothStatuses(t *testing.T) {
	t.Parallel()

	incident := testIncident(uuid.New(), uuid.New())
	incident.Status = domain.IncidentStatusResolved

	var enqueued *domain.Notification
	repo := &mockNotificationRepo{
		RecentMatchFunc: func(context.Context, domain.DedupQuery, time.Time) (bool, error) {
			return false, nil
		},
		EnqueueFunc: func(_ context.Context, n *domain.Notification) error {
			enqueued = n
			return nil
		},
	}
	p := notify.NewProducer(repo, testSystems("x"), &mockTaskRepo{}, nil, "log")

	ok, err := p.IncidentStatusChanged(context.Background(), incident, domain.IncidentStatusInvestigating)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NotNil(t, enqueued)
	assert.Equal(t, domain.NotifIncidentStatusChanged, enqueued.Type)
	assert.Equal(t, "investigating", enqueued.Payload["old_status"])
	assert.Equal(t, "resolved", enqueued.Payload["new_status"])
}

func TestProducer_EnqueueFailureSurfaces(t *testing.T) {
	t.Parallel()

	repo := &mockNotificationRepo{
		RecentMatchFunc: func(context.Context, domain.DedupQuery, time.Time) (bool, error) {
			return false, nil
		},
		EnqueueFunc: func(context.Context, *domain.Notification) error {
			return errors.New("insert failed")
		},
	}
	p := notify.NewProducer(repo, testSystems("x"), &mockTaskRepo{}, nil, "log")

	ok, err := p.IncidentCreated(context.Background(), testIncident(uuid.New(), uuid.New()))
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorContains(t, err, "insert failed")
}

func TestProducer_PublishFailureDoesNotFailEnqueue(t *testing.T) {
	t.Parallel()

	repo := &mockNotificationRepo{
		RecentMatchFunc: func(context.Context, domain.DedupQuery, time.Time) (bool, error) {
			return false, nil
		},
		EnqueueFunc: func(context.Context, *domain.Notification) error { return nil },
	}
	pub := &recordingPublisher{err: errors.New("redis down")}
	p := notify.NewProducer(repo, testSystems("x"), &mockTaskRepo{}, pub, "log")

	ok, err := p.IncidentCreated(context.Background(), testIncident(uuid.New(), uuid.New()))
	require.NoError(t, err)
	assert.True(t, ok)
}

// ---------------------------------------------------------------------------
// Due-soon reminder cycle
// ---------------------------------------------------------------------------

func dueTask(owner *uuid.UUID, due time.Time) *domain.Task {
	return &domain.Task{
		ID:          uuid.New(),
		CompanyID:   uuid.New(),
		AISystemID:  uuid.New(),
		Title:       "Complete conformity assessment",
		Status:      domain.TaskStatusOpen,
		OwnerUserID: owner,
		DueDate:     &due,
	}
}

func TestProducer_RunDueSoonCycle_EnqueuesReminders(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	owner := uuid.New()
	taskA := dueTask(&owner, now.Add(48*time.Hour))
	taskB := dueTask(nil, now.Add(24*time.Hour))

	var enqueued []*domain.Notification
	repo := &mockNotificationRepo{
		RecentForTaskFunc: func(_ context.Context, _ uuid.UUID, _ *uuid.UUID, window time.Duration, _ time.Time) (bool, error) {
			assert.Equal(t, notify.TaskReminderWindow, window)
			return false, nil
		},
		EnqueueFunc: func(_ context.Context, n *domain.Notification) error {
			enqueued = append(enqueued, n)
			return nil
		},
	}
	tasks := &mockTaskRepo{
		ListDueSoonFunc: func(_ context.Context, got time.Time) ([]*domain.Task, error) {
			assert.Equal(t, now, got)
			return []*domain.Task{taskA, taskB}, nil
		},
	}
	p := notify.NewProducer(repo, testSystems("Fraud Scorer"), tasks, nil, "log")

	created, err := p.RunDueSoonCycle(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	require.Len(t, enqueued, 2)
	first := enqueued[0]
	assert.Equal(t, domain.NotifTaskDueSoon, first.Type)
	require.NotNil(t, first.TaskID)
	assert.Equal(t, taskA.ID, *first.TaskID)
	require.NotNil(t, first.UserID)
	assert.Equal(t, owner, *first.UserID)
	assert.Equal(t, "2026-03-12", first.Payload["due_date"])
	assert.Nil(t, enqueued[1].UserID, "unowned task gets a user-less reminder")
}

func TestProducer_RunDueSoonCycle_DailyDedup(t *testing.T) {
	t.Parallel()

	now := time.Now()
	taskA := dueTask(nil, now.Add(24*time.Hour))
	taskB := dueTask(nil, now.Add(24*time.Hour))

	enqueued := 0
	repo := &mockNotificationRepo{
		RecentForTaskFunc: func(_ context.Context, taskID uuid.UUID, _ *uuid.UUID, _ time.Duration, _ time.Time) (bool, error) {
			return taskID == taskA.ID, nil // A already reminded today
		},
		EnqueueFunc: func(context.Context, *domain.Notification) error {
			enqueued++
			return nil
		},
	}
	tasks := &mockTaskRepo{
		ListDueSoonFunc: func(context.Context, time.Time) ([]*domain.Task, error) {
			return []*domain.Task{taskA, taskB}, nil
		},
	}
	p := notify.NewProducer(repo, testSystems("x"), tasks, nil, "log")

	created, err := p.RunDueSoonCycle(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, enqueued)
}

func TestProducer_RunDueSoonCycle_SkipsFailedRows(t *testing.T) {
	t.Parallel()

	now := time.Now()
	taskA := dueTask(nil, now.Add(24*time.Hour))
	taskB := dueTask(nil, now.Add(24*time.Hour))

	repo := &mockNotificationRepo{
		RecentForTaskFunc: func(context.Context, uuid.UUID, *uuid.UUID, time.Duration, time.Time) (bool, error) {
			return false, nil
		},
		EnqueueFunc: func(_ context.Context, n *domain.Notification) error {
			if *n.TaskID == taskA.ID {
				return errors.New("insert failed")
			}
			return nil
		},
	}
	tasks := &mockTaskRepo{
		ListDueSoonFunc: func(context.Context, time.Time) ([]*domain.Task, error) {
			return []*domain.Task{taskA, taskB}, nil
		},
	}
	p := notify.NewProducer(repo, testSystems("x"), tasks, nil, "log")

	created, err := p.RunDueSoonCycle(context.Background(), now)
	require.NoError(t, err, "one bad row must not abort the cycle")
	assert.Equal(t, 1, created)
}

func TestProducer_RunDueSoonCycle_ListFailureAborts(t *testing.T) {
	t.Parallel()

	tasks := &mockTaskRepo{
		ListDueSoonFunc: func(context.Context, time.Time) ([]*domain.Task, error) {
			return nil, errors.New("query failed")
		},
	}
	p := notify.NewProducer(&mockNotificationRepo{}, testSystems("x"), tasks, nil, "log")

	created, err := p.RunDueSoonCycle(context.Background(), time.Now())
	require.Error(t, err)
	assert.Zero(t, created)
}
