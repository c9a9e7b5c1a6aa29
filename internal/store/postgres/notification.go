package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/complyra/complyra/internal/domain"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

const notificationColumns = `id, company_id, ai_system_id, task_id, user_id, type, channel,
        subject, body, payload, status, error_text, scheduled_for, sent_at, created_at`

func (r *NotificationRepo) Enqueue(ctx context.Context, n *domain.Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return fmt.Errorf("notificationRepo.Enqueue: marshal payload: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO notifications (id, company_id, ai_system_id, task_id, user_id, type, channel,
		        subject, body, payload, status, error_text, scheduled_for, sent_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		n.ID, n.CompanyID, n.AISystemID, n.TaskID, n.UserID, n.Type, n.Channel,
		n.Subject, n.Body, payload, n.Status, n.ErrorText, n.ScheduledFor, n.SentAt, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("notificationRepo.Enqueue: %w", err)
	}

	return nil
}

func (r *NotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var n domain.Notification
	var payload []byte

	err := r.pool.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id,
	).Scan(
		&n.ID, &n.CompanyID, &n.AISystemID, &n.TaskID, &n.UserID, &n.Type, &n.Channel,
		&n.Subject, &n.Body, &payload, &n.Status, &n.ErrorText, &n.ScheduledFor, &n.SentAt, &n.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("notificationRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("notificationRepo.GetByID: %w", err)
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &n.Payload); err != nil {
			return nil, fmt.Errorf("notificationRepo.GetByID: unmarshal payload: %w", err)
		}
	}

	return &n, nil
}

func (r *NotificationRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*domain.Notification, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+notificationColumns+`
		 FROM notifications WHERE company_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		companyID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("notificationRepo.ListByCompany: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows, "notificationRepo.ListByCompany")
}

func (r *NotificationRepo) ListQueued(ctx context.Context, limit int) ([]*domain.Notification, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+notificationColumns+`
		 FROM notifications
		 WHERE status = 'queued' AND (scheduled_for IS NULL OR scheduled_for <= now())
		 ORDER BY created_at
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("notificationRepo.ListQueued: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows, "notificationRepo.ListQueued")
}

func (r *NotificationRepo) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET status = 'sent', sent_at = $1, error_text = '' WHERE id = $2`,
		sentAt, id,
	)
	if err != nil {
		return fmt.Errorf("notificationRepo.MarkSent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notificationRepo.MarkSent: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *NotificationRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorText string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET status = 'failed', error_text = $1 WHERE id = $2`,
		errorText, id,
	)
	if err != nil {
		return fmt.Errorf("notificationRepo.MarkFailed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notificationRepo.MarkFailed: %w", domain.ErrNotFound)
	}

	return nil
}

// RecentMatch checks the duplicate-guard equivalence class: same type and
// scope, matching payload key/value, created inside the trailing window.
// A nil system scope only matches rows with no system scope.
func (r *NotificationRepo) RecentMatch(ctx context.Context, q domain.DedupQuery, now time.Time) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM notifications
		   WHERE type = $1
		     AND company_id = $2
		     AND ai_system_id IS NOT DISTINCT FROM $3
		     AND payload ->> $4 = $5
		     AND created_at >= $6
		 )`,
		q.Type, q.CompanyID, q.AISystemID, q.PayloadKey, q.PayloadVal, now.Add(-q.Window),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("notificationRepo.RecentMatch: %w", err)
	}

	return exists, nil
}

// RecentForTask checks the daily reminder guard for (taskID, userID).
func (r *NotificationRepo) RecentForTask(ctx context.Context, taskID uuid.UUID, userID *uuid.UUID, window time.Duration, now time.Time) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM notifications
		   WHERE type = $1
		     AND task_id = $2
		     AND user_id IS NOT DISTINCT FROM $3
		     AND created_at >= $4
		 )`,
		domain.NotifTaskDueSoon, taskID, userID, now.Add(-window),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("notificationRepo.RecentForTask: %w", err)
	}

	return exists, nil
}

func scanNotifications(rows pgx.Rows, caller string) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var payload []byte

		if err := rows.Scan(
			&n.ID, &n.CompanyID, &n.AISystemID, &n.TaskID, &n.UserID, &n.Type, &n.Channel,
			&n.Subject, &n.Body, &payload, &n.Status, &n.ErrorText, &n.ScheduledFor, &n.SentAt, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &n.Payload); err != nil {
				return nil, fmt.Errorf("%s: unmarshal payload: %w", caller, err)
			}
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return notifications, nil
}
