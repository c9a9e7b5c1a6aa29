package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Audit action codes. The set is a wire contract for downstream audit
// consumers and must remain stable.
const (
	AuditLoginSuccess        = "LOGIN_SUCCESS"
	AuditLoginFailed         = "LOGIN_FAILED"
	AuditLoginBlockedLockout = "LOGIN_BLOCKED_LOCKOUT"
	AuditAccountLocked       = "ACCOUNT_LOCKED"

	AuditCompanyCreated = "COMPANY_CREATED"
	AuditCompanyUpdated = "COMPANY_UPDATED"
	AuditCompanyDeleted = "COMPANY_DELETED"

	AuditTaskCreated             = "TASK_CREATED"
	AuditTaskUpdated             = "TASK_UPDATED"
	AuditTaskDeleted             = "TASK_DELETED"
	AuditComplianceStatusChanged = "COMPLIANCE_STATUS_CHANGED"

	AuditDocumentCreated = "DOCUMENT_CREATED"
	AuditDocumentUpdated = "DOCUMENT_UPDATED"
	AuditDocumentDeleted = "DOCUMENT_DELETED"

	AuditIncidentCreated = "INCIDENT_CREATED"
	AuditIncidentUpdated = "INCIDENT_UPDATED"
	AuditIncidentDeleted = "INCIDENT_DELETED"

	AuditSystemAssignmentCreated = "SYSTEM_ASSIGNMENT_CREATED"
	AuditSystemAssignmentDeleted = "SYSTEM_ASSIGNMENT_DELETED"

	AuditExportPerformed = "EXPORT_PERFORMED"

	AuditCalPinCreated = "CAL_PIN_CREATED"
	AuditCalPinUpdated = "CAL_PIN_UPDATED"
	AuditCalPinDeleted = "CAL_PIN_DELETED"

	AuditNotificationsCycleTriggered = "NOTIFICATIONS_CYCLE_TRIGGERED"
)

// AuditEvent is an immutable record of an action. Rows are append-only;
// application code never updates or deletes them.
type AuditEvent struct {
	ID         uuid.UUID
	CompanyID  *uuid.UUID // nil for platform-level events
	ActorID    *uuid.UUID // nil for anonymous or system events
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	Metadata   map[string]any
	IPAddress  string
	CreatedAt  time.Time
}

// AuditFilter narrows audit listings.
type AuditFilter struct {
	Action     string
	EntityType string
	Limit      int
	Offset     int
}

type AuditRepository interface {
	ListByCompany(ctx context.Context, companyID uuid.UUID, filter AuditFilter) ([]*AuditEvent, error)
	ListByEntity(ctx context.Context, companyID uuid.UUID, entityType string, entityID uuid.UUID) ([]*AuditEvent, error)
}
