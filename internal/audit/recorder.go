// Package audit appends immutable audit events describing actions taken in
// the platform. Writing the trail is best-effort by contract: recording
// failures must never abort the business mutation they describe.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/complyra/complyra/internal/domain"
)

// Field caps. Oversize input is truncated, never rejected.
const (
	maxActionLen     = 64
	maxEntityTypeLen = 64
	maxIPLen         = 64
)

// Execer is the single-statement write surface the recorder needs. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so a Record call rides whatever
// transaction the caller owns; the recorder itself never commits.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Recorder appends audit event rows. One Record call performs exactly one
// insert.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record inserts one audit event row through db. The action code is
// upper-cased and capped; entity type and IP are capped; metadata is
// serialized compactly and degrades to an empty object if it cannot be
// marshalled. Commit timing belongs to the caller.
func (r *Recorder) Record(ctx context.Context, db Execer, e *domain.AuditEvent) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	action := truncate(strings.ToUpper(strings.TrimSpace(e.Action)), maxActionLen)
	entityType := truncate(e.EntityType, maxEntityTypeLen)
	ip := truncate(e.IPAddress, maxIPLen)

	_, err := db.Exec(ctx,
		`INSERT INTO audit_events (id, company_id, actor_id, action, entity_type, entity_id, metadata, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.CompanyID, e.ActorID, action, entityType, e.EntityID,
		marshalMetadata(e.Metadata), ip, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit.Recorder.Record: %w", err)
	}

	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// marshalMetadata serializes to compact JSON, degrading to "{}" rather than
// failing the insert over an unserializable value.
func marshalMetadata(meta map[string]any) []byte {
	if meta == nil {
		return []byte("{}")
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return []byte("{}")
	}
	return b
}
