package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/complyra/complyra/internal/domain"
)

// AuditRepo is the read side of the audit trail. Writes go through the audit
// recorder so they can ride the caller's transaction.
type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, filter domain.AuditFilter) ([]*domain.AuditEvent, error) {
	query := `SELECT id, company_id, actor_id, action, entity_type, entity_id, metadata, ip_address, created_at
	          FROM audit_events WHERE company_id = $1`
	args := []any{companyID}

	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(` AND action = $%d`, len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		query += fmt.Sprintf(` AND entity_type = $%d`, len(args))
	}

	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.ListByCompany: %w", err)
	}
	defer rows.Close()

	return scanAuditEvents(rows, "auditRepo.ListByCompany")
}

func (r *AuditRepo) ListByEntity(ctx context.Context, companyID uuid.UUID, entityType string, entityID uuid.UUID) ([]*domain.AuditEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, company_id, actor_id, action, entity_type, entity_id, metadata, ip_address, created_at
		 FROM audit_events WHERE company_id = $1 AND entity_type = $2 AND entity_id = $3
		 ORDER BY created_at DESC
		 LIMIT 500`,
		companyID, entityType, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.ListByEntity: %w", err)
	}
	defer rows.Close()

	return scanAuditEvents(rows, "auditRepo.ListByEntity")
}

func scanAuditEvents(rows pgx.Rows, caller string) ([]*domain.AuditEvent, error) {
	var events []*domain.AuditEvent
	for rows.Next() {
		var e domain.AuditEvent
		var metadata []byte

		if err := rows.Scan(
			&e.ID, &e.CompanyID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID,
			&metadata, &e.IPAddress, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("%s: unmarshal metadata: %w", caller, err)
			}
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return events, nil
}
