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

type AISystemRepo struct {
	pool *pgxpool.Pool
}

func NewAISystemRepo(pool *pgxpool.Pool) *AISystemRepo {
	return &AISystemRepo{pool: pool}
}

const aiSystemColumns = `id, company_id, name, description, risk_level, compliance_status, owner_user_id, created_at, updated_at`

func (r *AISystemRepo) Create(ctx context.Context, s *domain.AISystem) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO ai_systems (id, company_id, name, description, risk_level, compliance_status, owner_user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.CompanyID, s.Name, s.Description, s.RiskLevel, s.ComplianceStatus, s.OwnerUserID,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("aiSystemRepo.Create: %w", err)
	}

	return nil
}

func (r *AISystemRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AISystem, error) {
	var s domain.AISystem

	err := r.pool.QueryRow(ctx,
		`SELECT `+aiSystemColumns+` FROM ai_systems WHERE id = $1`, id,
	).Scan(
		&s.ID, &s.CompanyID, &s.Name, &s.Description, &s.RiskLevel, &s.ComplianceStatus,
		&s.OwnerUserID, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("aiSystemRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("aiSystemRepo.GetByID: %w", err)
	}

	return &s, nil
}

// Update never touches company_id; a system cannot move between companies.
func (r *AISystemRepo) Update(ctx context.Context, s *domain.AISystem) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE ai_systems SET name = $1, description = $2, risk_level = $3,
		        compliance_status = $4, owner_user_id = $5, updated_at = now()
		 WHERE id = $6`,
		s.Name, s.Description, s.RiskLevel, s.ComplianceStatus, s.OwnerUserID, s.ID,
	)
	if err != nil {
		return fmt.Errorf("aiSystemRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("aiSystemRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *AISystemRepo) UpdateComplianceStatus(ctx context.Context, id uuid.UUID, status domain.ComplianceStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE ai_systems SET compliance_status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("aiSystemRepo.UpdateComplianceStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("aiSystemRepo.UpdateComplianceStatus: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *AISystemRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.AISystem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+aiSystemColumns+` FROM ai_systems WHERE company_id = $1 ORDER BY name LIMIT 1000`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("aiSystemRepo.ListByCompany: %w", err)
	}
	defer rows.Close()

	var systems []*domain.AISystem
	for rows.Next() {
		var s domain.AISystem
		if err := rows.Scan(
			&s.ID, &s.CompanyID, &s.Name, &s.Description, &s.RiskLevel, &s.ComplianceStatus,
			&s.OwnerUserID, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("aiSystemRepo.ListByCompany: scan: %w", err)
		}
		systems = append(systems, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aiSystemRepo.ListByCompany: rows: %w", err)
	}

	return systems, nil
}

func (r *AISystemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ai_systems WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("aiSystemRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("aiSystemRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
