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

type IncidentRepo struct {
	pool *pgxpool.Pool
}

func NewIncidentRepo(pool *pgxpool.Pool) *IncidentRepo {
	return &IncidentRepo{pool: pool}
}

const incidentColumns = `id, company_id, ai_system_id, reported_by, severity, incident_type,
        summary, details, status, occurred_at, resolved_at, created_at, updated_at`

func (r *IncidentRepo) Create(ctx context.Context, i *domain.Incident) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO incidents (id, company_id, ai_system_id, reported_by, severity, incident_type,
		        summary, details, status, occurred_at, resolved_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		i.ID, i.CompanyID, i.AISystemID, i.ReportedBy, i.Severity, i.IncidentType,
		i.Summary, i.Details, i.Status, i.OccurredAt, i.ResolvedAt, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("incidentRepo.Create: %w", err)
	}

	return nil
}

func (r *IncidentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	var i domain.Incident

	err := r.pool.QueryRow(ctx,
		`SELECT `+incidentColumns+` FROM incidents WHERE id = $1`, id,
	).Scan(
		&i.ID, &i.CompanyID, &i.AISystemID, &i.ReportedBy, &i.Severity, &i.IncidentType,
		&i.Summary, &i.Details, &i.Status, &i.OccurredAt, &i.ResolvedAt, &i.CreatedAt, &i.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("incidentRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("incidentRepo.GetByID: %w", err)
	}

	return &i, nil
}

func (r *IncidentRepo) Update(ctx context.Context, i *domain.Incident) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE incidents SET severity = $1, incident_type = $2, summary = $3, details = $4,
		        status = $5, occurred_at = $6, resolved_at = $7, updated_at = now()
		 WHERE id = $8`,
		i.Severity, i.IncidentType, i.Summary, i.Details, i.Status, i.OccurredAt, i.ResolvedAt, i.ID,
	)
	if err != nil {
		return fmt.Errorf("incidentRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("incidentRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *IncidentRepo) ListBySystem(ctx context.Context, systemID uuid.UUID) ([]*domain.Incident, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+incidentColumns+` FROM incidents WHERE ai_system_id = $1 ORDER BY created_at DESC LIMIT 1000`,
		systemID,
	)
	if err != nil {
		return nil, fmt.Errorf("incidentRepo.ListBySystem: %w", err)
	}
	defer rows.Close()

	return scanIncidents(rows, "incidentRepo.ListBySystem")
}

func (r *IncidentRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.Incident, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+incidentColumns+` FROM incidents WHERE company_id = $1 ORDER BY created_at DESC LIMIT 1000`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("incidentRepo.ListByCompany: %w", err)
	}
	defer rows.Close()

	return scanIncidents(rows, "incidentRepo.ListByCompany")
}

func (r *IncidentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM incidents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("incidentRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("incidentRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanIncidents(rows pgx.Rows, caller string) ([]*domain.Incident, error) {
	var incidents []*domain.Incident
	for rows.Next() {
		var i domain.Incident
		if err := rows.Scan(
			&i.ID, &i.CompanyID, &i.AISystemID, &i.ReportedBy, &i.Severity, &i.IncidentType,
			&i.Summary, &i.Details, &i.Status, &i.OccurredAt, &i.ResolvedAt, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		incidents = append(incidents, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return incidents, nil
}
