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

type DocumentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepo(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

const documentColumns = `id, company_id, ai_system_id, task_id, name, doc_type, url,
        uploaded_by, review_due_at, created_at, updated_at`

func (r *DocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO documents (id, company_id, ai_system_id, task_id, name, doc_type, url,
		        uploaded_by, review_due_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		d.ID, d.CompanyID, d.AISystemID, d.TaskID, d.Name, d.DocType, d.URL,
		d.UploadedBy, d.ReviewDueAt, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}

	return nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var d domain.Document

	err := r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id,
	).Scan(
		&d.ID, &d.CompanyID, &d.AISystemID, &d.TaskID, &d.Name, &d.DocType, &d.URL,
		&d.UploadedBy, &d.ReviewDueAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("documentRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}

	return &d, nil
}

func (r *DocumentRepo) Update(ctx context.Context, d *domain.Document) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents SET ai_system_id = $1, task_id = $2, name = $3, doc_type = $4,
		        url = $5, review_due_at = $6, updated_at = now()
		 WHERE id = $7`,
		d.AISystemID, d.TaskID, d.Name, d.DocType, d.URL, d.ReviewDueAt, d.ID,
	)
	if err != nil {
		return fmt.Errorf("documentRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("documentRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *DocumentRepo) ListBySystem(ctx context.Context, systemID uuid.UUID) ([]*domain.Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE ai_system_id = $1 ORDER BY created_at DESC LIMIT 1000`,
		systemID,
	)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListBySystem: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows, "documentRepo.ListBySystem")
}

func (r *DocumentRepo) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE task_id = $1 ORDER BY created_at DESC LIMIT 1000`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListByTask: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows, "documentRepo.ListByTask")
}

func (r *DocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("documentRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanDocuments(rows pgx.Rows, caller string) ([]*domain.Document, error) {
	var docs []*domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(
			&d.ID, &d.CompanyID, &d.AISystemID, &d.TaskID, &d.Name, &d.DocType, &d.URL,
			&d.UploadedBy, &d.ReviewDueAt, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		docs = append(docs, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return docs, nil
}
