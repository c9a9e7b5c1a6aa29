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

type AdminAssignmentRepo struct {
	pool *pgxpool.Pool
}

func NewAdminAssignmentRepo(pool *pgxpool.Pool) *AdminAssignmentRepo {
	return &AdminAssignmentRepo{pool: pool}
}

// Create is idempotent: a conflicting insert returns the existing row
// unchanged instead of an error.
func (r *AdminAssignmentRepo) Create(ctx context.Context, adminID, companyID uuid.UUID) (*domain.AdminAssignment, error) {
	var a domain.AdminAssignment

	err := r.pool.QueryRow(ctx,
		`INSERT INTO admin_company_assignments (id, admin_id, company_id, created_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (admin_id, company_id) DO UPDATE SET admin_id = EXCLUDED.admin_id
		 RETURNING id, admin_id, company_id, created_at`,
		uuid.New(), adminID, companyID,
	).Scan(&a.ID, &a.AdminID, &a.CompanyID, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("adminAssignmentRepo.Create: %w", err)
	}

	return &a, nil
}

func (r *AdminAssignmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminAssignment, error) {
	var a domain.AdminAssignment

	err := r.pool.QueryRow(ctx,
		`SELECT id, admin_id, company_id, created_at FROM admin_company_assignments WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.AdminID, &a.CompanyID, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("adminAssignmentRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("adminAssignmentRepo.GetByID: %w", err)
	}

	return &a, nil
}

func (r *AdminAssignmentRepo) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]*domain.AdminAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, admin_id, company_id, created_at
		 FROM admin_company_assignments WHERE admin_id = $1 ORDER BY created_at`,
		adminID,
	)
	if err != nil {
		return nil, fmt.Errorf("adminAssignmentRepo.ListByAdmin: %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows, "adminAssignmentRepo.ListByAdmin")
}

func (r *AdminAssignmentRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.AdminAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, admin_id, company_id, created_at
		 FROM admin_company_assignments WHERE company_id = $1 ORDER BY created_at`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("adminAssignmentRepo.ListByCompany: %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows, "adminAssignmentRepo.ListByCompany")
}

func (r *AdminAssignmentRepo) Exists(ctx context.Context, adminID, companyID uuid.UUID) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM admin_company_assignments WHERE admin_id = $1 AND company_id = $2
		 )`,
		adminID, companyID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("adminAssignmentRepo.Exists: %w", err)
	}

	return exists, nil
}

func (r *AdminAssignmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admin_company_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("adminAssignmentRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("adminAssignmentRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanAssignments(rows pgx.Rows, caller string) ([]*domain.AdminAssignment, error) {
	var assignments []*domain.AdminAssignment
	for rows.Next() {
		var a domain.AdminAssignment
		if err := rows.Scan(&a.ID, &a.AdminID, &a.CompanyID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		assignments = append(assignments, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return assignments, nil
}

// SystemMemberRepo reads and writes system membership. Two physical tables
// back the relation: ai_system_members (current) and system_assignments
// (legacy). Writes go to the current table only; reads union both.
type SystemMemberRepo struct {
	pool *pgxpool.Pool
}

func NewSystemMemberRepo(pool *pgxpool.Pool) *SystemMemberRepo {
	return &SystemMemberRepo{pool: pool}
}

// Create is idempotent: a conflicting insert returns the existing row.
func (r *SystemMemberRepo) Create(ctx context.Context, userID, systemID uuid.UUID, memberRole string) (*domain.SystemMember, error) {
	var m domain.SystemMember

	err := r.pool.QueryRow(ctx,
		`INSERT INTO ai_system_members (id, ai_system_id, user_id, member_role, created_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (ai_system_id, user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING id, ai_system_id, user_id, member_role, created_at`,
		uuid.New(), systemID, userID, memberRole,
	).Scan(&m.ID, &m.AISystemID, &m.UserID, &m.MemberRole, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("systemMemberRepo.Create: %w", err)
	}

	return &m, nil
}

func (r *SystemMemberRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SystemMember, error) {
	var m domain.SystemMember

	err := r.pool.QueryRow(ctx,
		`SELECT id, ai_system_id, user_id, member_role, created_at FROM ai_system_members WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.AISystemID, &m.UserID, &m.MemberRole, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("systemMemberRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("systemMemberRepo.GetByID: %w", err)
	}

	return &m, nil
}

func (r *SystemMemberRepo) ListBySystem(ctx context.Context, systemID uuid.UUID) ([]*domain.SystemMember, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, ai_system_id, user_id, member_role, created_at
		 FROM ai_system_members WHERE ai_system_id = $1 ORDER BY created_at`,
		systemID,
	)
	if err != nil {
		return nil, fmt.Errorf("systemMemberRepo.ListBySystem: %w", err)
	}
	defer rows.Close()

	var members []*domain.SystemMember
	for rows.Next() {
		var m domain.SystemMember
		if err := rows.Scan(&m.ID, &m.AISystemID, &m.UserID, &m.MemberRole, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("systemMemberRepo.ListBySystem: scan: %w", err)
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("systemMemberRepo.ListBySystem: rows: %w", err)
	}

	return members, nil
}

// SystemIDsForUser unions both membership tables; UNION deduplicates rows
// present in both.
func (r *SystemMemberRepo) SystemIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ai_system_id FROM ai_system_members WHERE user_id = $1
		 UNION
		 SELECT ai_system_id FROM system_assignments WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("systemMemberRepo.SystemIDsForUser: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("systemMemberRepo.SystemIDsForUser: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("systemMemberRepo.SystemIDsForUser: rows: %w", err)
	}

	return ids, nil
}

func (r *SystemMemberRepo) Exists(ctx context.Context, userID, systemID uuid.UUID) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM ai_system_members WHERE user_id = $1 AND ai_system_id = $2
		   UNION
		   SELECT 1 FROM system_assignments WHERE user_id = $1 AND ai_system_id = $2
		 )`,
		userID, systemID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("systemMemberRepo.Exists: %w", err)
	}

	return exists, nil
}

func (r *SystemMemberRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ai_system_members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("systemMemberRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("systemMemberRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
