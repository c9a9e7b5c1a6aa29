package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/complyra/complyra/internal/domain"
)

type Store struct {
	pool          *pgxpool.Pool
	actors        *ActorRepo
	companies     *CompanyRepo
	systems       *AISystemRepo
	tasks         *TaskRepo
	documents     *DocumentRepo
	incidents     *IncidentRepo
	calendarPins  *CalendarPinRepo
	assignments   *AdminAssignmentRepo
	members       *SystemMemberRepo
	audit         *AuditRepo
	notifications *NotificationRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:          pool,
		actors:        NewActorRepo(pool),
		companies:     NewCompanyRepo(pool),
		systems:       NewAISystemRepo(pool),
		tasks:         NewTaskRepo(pool),
		documents:     NewDocumentRepo(pool),
		incidents:     NewIncidentRepo(pool),
		calendarPins:  NewCalendarPinRepo(pool),
		assignments:   NewAdminAssignmentRepo(pool),
		members:       NewSystemMemberRepo(pool),
		audit:         NewAuditRepo(pool),
		notifications: NewNotificationRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Pool exposes the underlying pool for callers that ride an existing
// transaction, such as the audit recorder.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Actors() domain.ActorRepository                { return s.actors }
func (s *Store) Companies() domain.CompanyRepository           { return s.companies }
func (s *Store) Systems() domain.AISystemRepository            { return s.systems }
func (s *Store) Tasks() domain.TaskRepository                  { return s.tasks }
func (s *Store) Documents() domain.DocumentRepository          { return s.documents }
func (s *Store) Incidents() domain.IncidentRepository          { return s.incidents }
func (s *Store) CalendarPins() domain.CalendarPinRepository    { return s.calendarPins }
func (s *Store) Assignments() domain.AdminAssignmentRepository { return s.assignments }
func (s *Store) Members() domain.SystemMemberRepository        { return s.members }
func (s *Store) Audit() domain.AuditRepository                 { return s.audit }
func (s *Store) Notifications() domain.NotificationRepository  { return s.notifications }
