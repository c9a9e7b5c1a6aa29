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

type CalendarPinRepo struct {
	pool *pgxpool.Pool
}

func NewCalendarPinRepo(pool *pgxpool.Pool) *CalendarPinRepo {
	return &CalendarPinRepo{pool: pool}
}

const calendarPinColumns = `id, company_id, ai_system_id, title, note, pinned_date, created_by, created_at, updated_at`

func (r *CalendarPinRepo) Create(ctx context.Context, p *domain.CalendarPin) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO calendar_pins (id, company_id, ai_system_id, title, note, pinned_date, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.CompanyID, p.AISystemID, p.Title, p.Note, p.PinnedDate, p.CreatedBy,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("calendarPinRepo.Create: %w", err)
	}

	return nil
}

func (r *CalendarPinRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.CalendarPin, error) {
	var p domain.CalendarPin

	err := r.pool.QueryRow(ctx,
		`SELECT `+calendarPinColumns+` FROM calendar_pins WHERE id = $1`, id,
	).Scan(
		&p.ID, &p.CompanyID, &p.AISystemID, &p.Title, &p.Note, &p.PinnedDate, &p.CreatedBy,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("calendarPinRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("calendarPinRepo.GetByID: %w", err)
	}

	return &p, nil
}

func (r *CalendarPinRepo) Update(ctx context.Context, p *domain.CalendarPin) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE calendar_pins SET ai_system_id = $1, title = $2, note = $3, pinned_date = $4, updated_at = now()
		 WHERE id = $5`,
		p.AISystemID, p.Title, p.Note, p.PinnedDate, p.ID,
	)
	if err != nil {
		return fmt.Errorf("calendarPinRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("calendarPinRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *CalendarPinRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]*domain.CalendarPin, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+calendarPinColumns+`
		 FROM calendar_pins
		 WHERE company_id = $1 AND pinned_date >= $2 AND pinned_date <= $3
		 ORDER BY pinned_date
		 LIMIT 1000`,
		companyID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("calendarPinRepo.ListByCompany: %w", err)
	}
	defer rows.Close()

	var pins []*domain.CalendarPin
	for rows.Next() {
		var p domain.CalendarPin
		if err := rows.Scan(
			&p.ID, &p.CompanyID, &p.AISystemID, &p.Title, &p.Note, &p.PinnedDate, &p.CreatedBy,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("calendarPinRepo.ListByCompany: scan: %w", err)
		}
		pins = append(pins, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("calendarPinRepo.ListByCompany: rows: %w", err)
	}

	return pins, nil
}

func (r *CalendarPinRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM calendar_pins WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("calendarPinRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("calendarPinRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
