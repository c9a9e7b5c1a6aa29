package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/complyra/complyra/internal/domain"
)

type CompanyRepo struct {
	pool *pgxpool.Pool
}

func NewCompanyRepo(pool *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{pool: pool}
}

func (r *CompanyRepo) Create(ctx context.Context, c *domain.Company) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO companies (id, name, status, country, industry, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Name, c.Status, c.Country, c.Industry, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("companyRepo.Create: %w", err)
	}

	return nil
}

func (r *CompanyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	var c domain.Company

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, status, country, industry, created_at, updated_at
		 FROM companies WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Status, &c.Country, &c.Industry, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("companyRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("companyRepo.GetByID: %w", err)
	}

	return &c, nil
}

func (r *CompanyRepo) Update(ctx context.Context, c *domain.Company) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE companies SET name = $1, status = $2, country = $3, industry = $4, updated_at = now()
		 WHERE id = $5`,
		c.Name, c.Status, c.Country, c.Industry, c.ID,
	)
	if err != nil {
		return fmt.Errorf("companyRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("companyRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *CompanyRepo) List(ctx context.Context) ([]*domain.Company, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, status, country, industry, created_at, updated_at
		 FROM companies ORDER BY name LIMIT 1000`,
	)
	if err != nil {
		return nil, fmt.Errorf("companyRepo.List: %w", err)
	}
	defer rows.Close()

	return scanCompanies(rows, "companyRepo.List")
}

func (r *CompanyRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Company, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, status, country, industry, created_at, updated_at
		 FROM companies WHERE id = ANY($1) ORDER BY name`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("companyRepo.ListByIDs: %w", err)
	}
	defer rows.Close()

	return scanCompanies(rows, "companyRepo.ListByIDs")
}

func (r *CompanyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("companyRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("companyRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanCompanies(rows pgx.Rows, caller string) ([]*domain.Company, error) {
	var companies []*domain.Company
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Status, &c.Country, &c.Industry, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		companies = append(companies, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return companies, nil
}
