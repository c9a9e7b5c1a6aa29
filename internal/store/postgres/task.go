package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/complyra/complyra/internal/domain"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

const taskColumns = `id, company_id, ai_system_id, title, description, reference, status, severity,
        mandatory, owner_user_id, due_date, completed_at, evidence_url, notes,
        reminder_days_before, created_at, updated_at`

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks (id, company_id, ai_system_id, title, description, reference, status, severity,
		        mandatory, owner_user_id, due_date, completed_at, evidence_url, notes,
		        reminder_days_before, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		t.ID, t.CompanyID, t.AISystemID, t.Title, t.Description, t.Reference, t.Status, t.Severity,
		t.Mandatory, t.OwnerUserID, t.DueDate, t.CompletedAt, t.EvidenceURL, t.Notes,
		t.ReminderDaysBefore, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}

	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var t domain.Task

	err := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id,
	).Scan(
		&t.ID, &t.CompanyID, &t.AISystemID, &t.Title, &t.Description, &t.Reference, &t.Status, &t.Severity,
		&t.Mandatory, &t.OwnerUserID, &t.DueDate, &t.CompletedAt, &t.EvidenceURL, &t.Notes,
		&t.ReminderDaysBefore, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	return &t, nil
}

// Update never touches company_id or ai_system_id; tasks do not move between
// systems.
func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET title = $1, description = $2, reference = $3, status = $4, severity = $5,
		        mandatory = $6, owner_user_id = $7, due_date = $8, completed_at = $9,
		        evidence_url = $10, notes = $11, reminder_days_before = $12, updated_at = now()
		 WHERE id = $13`,
		t.Title, t.Description, t.Reference, t.Status, t.Severity,
		t.Mandatory, t.OwnerUserID, t.DueDate, t.CompletedAt,
		t.EvidenceURL, t.Notes, t.ReminderDaysBefore, t.ID,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) ListBySystem(ctx context.Context, systemID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ai_system_id = $1`
	args := []any{systemID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Severity != "" {
		args = append(args, filter.Severity)
		query += fmt.Sprintf(` AND severity = $%d`, len(args))
	}
	if filter.OwnerUserID != nil {
		args = append(args, *filter.OwnerUserID)
		query += fmt.Sprintf(` AND owner_user_id = $%d`, len(args))
	}

	query += ` ORDER BY due_date NULLS LAST, created_at`

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListBySystem: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows, "taskRepo.ListBySystem")
}

// ListDueSoon returns unfinished tasks whose due date falls within the task's
// own reminder lead time as of now. Tasks without a due date never match.
func (r *TaskRepo) ListDueSoon(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE status IN ('open', 'in_progress', 'blocked', 'postponed')
		   AND due_date IS NOT NULL
		   AND due_date >= $1
		   AND due_date <= $1 + make_interval(days => COALESCE(reminder_days_before, 7))
		 ORDER BY due_date
		 LIMIT 1000`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListDueSoon: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows, "taskRepo.ListDueSoon")
}

func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanTasks(rows pgx.Rows, caller string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID, &t.CompanyID, &t.AISystemID, &t.Title, &t.Description, &t.Reference, &t.Status, &t.Severity,
			&t.Mandatory, &t.OwnerUserID, &t.DueDate, &t.CompletedAt, &t.EvidenceURL, &t.Notes,
			&t.ReminderDaysBefore, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return tasks, nil
}
