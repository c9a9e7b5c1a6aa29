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

type ActorRepo struct {
	pool *pgxpool.Pool
}

func NewActorRepo(pool *pgxpool.Pool) *ActorRepo {
	return &ActorRepo{pool: pool}
}

const actorColumns = `id, company_id, email, password_hash, full_name, role, is_active,
        failed_login_attempts, locked_until, last_login_at, created_at, updated_at`

func (r *ActorRepo) Create(ctx context.Context, a *domain.Actor) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, company_id, email, password_hash, full_name, role, is_active,
		        failed_login_attempts, locked_until, last_login_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.CompanyID, a.Email, a.PasswordHash, a.FullName, a.Role, a.IsActive,
		a.FailedLoginAttempts, a.LockedUntil, a.LastLoginAt, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("actorRepo.Create: %w", err)
	}

	return nil
}

func (r *ActorRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Actor, error) {
	return r.getBy(ctx, "actorRepo.GetByID", `id = $1`, id)
}

func (r *ActorRepo) GetByEmail(ctx context.Context, email string) (*domain.Actor, error) {
	return r.getBy(ctx, "actorRepo.GetByEmail", `lower(email) = lower($1)`, email)
}

func (r *ActorRepo) getBy(ctx context.Context, caller, where string, arg any) (*domain.Actor, error) {
	var a domain.Actor

	err := r.pool.QueryRow(ctx,
		`SELECT `+actorColumns+` FROM users WHERE `+where, arg,
	).Scan(
		&a.ID, &a.CompanyID, &a.Email, &a.PasswordHash, &a.FullName, &a.Role, &a.IsActive,
		&a.FailedLoginAttempts, &a.LockedUntil, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", caller, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", caller, err)
	}

	return &a, nil
}

func (r *ActorRepo) Update(ctx context.Context, a *domain.Actor) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET company_id = $1, email = $2, password_hash = $3, full_name = $4,
		        role = $5, is_active = $6, updated_at = now()
		 WHERE id = $7`,
		a.CompanyID, a.Email, a.PasswordHash, a.FullName, a.Role, a.IsActive, a.ID,
	)
	if err != nil {
		return fmt.Errorf("actorRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("actorRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ActorRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.Actor, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+actorColumns+` FROM users WHERE company_id = $1 ORDER BY created_at LIMIT 1000`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("actorRepo.ListByCompany: %w", err)
	}
	defer rows.Close()

	var actors []*domain.Actor
	for rows.Next() {
		var a domain.Actor
		if err := rows.Scan(
			&a.ID, &a.CompanyID, &a.Email, &a.PasswordHash, &a.FullName, &a.Role, &a.IsActive,
			&a.FailedLoginAttempts, &a.LockedUntil, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("actorRepo.ListByCompany: scan: %w", err)
		}
		actors = append(actors, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("actorRepo.ListByCompany: rows: %w", err)
	}

	return actors, nil
}

func (r *ActorRepo) UpdateLoginState(ctx context.Context, id uuid.UUID, failedAttempts int, lockedUntil, lastLoginAt *time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET failed_login_attempts = $1, locked_until = $2, last_login_at = $3, updated_at = now()
		 WHERE id = $4`,
		failedAttempts, lockedUntil, lastLoginAt, id,
	)
	if err != nil {
		return fmt.Errorf("actorRepo.UpdateLoginState: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("actorRepo.UpdateLoginState: %w", domain.ErrNotFound)
	}

	return nil
}
