package domain_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyra/complyra/internal/domain"
)

// ---------------------------------------------------------------------------
// 1. TaskStatus.OpenLike — full status matrix.
// ---------------------------------------------------------------------------

func TestTaskStatus_OpenLike(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status domain.TaskStatus
		want   bool
	}{
		{domain.TaskStatusOpen, true},
		{domain.TaskStatusInProgress, true},
		{domain.TaskStatusBlocked, true},
		{domain.TaskStatusPostponed, true},
		{domain.TaskStatusDone, false},
		{domain.TaskStatusCancelled, false},
		{domain.TaskStatus("archived"), false},
		{domain.TaskStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.status.OpenLike())
		})
	}
}

// ---------------------------------------------------------------------------
// 2. Actor.HomeCompanyIs.
// ---------------------------------------------------------------------------

func TestActor_HomeCompanyIs(t *testing.T) {
	t.Parallel()

	companyID := uuid.New()
	otherID := uuid.New()

	tests := []struct {
		name   string
		home   *uuid.UUID
		target uuid.UUID
		want   bool
	}{
		{name: "matching home company", home: &companyID, target: companyID, want: true},
		{name: "different company", home: &companyID, target: otherID, want: false},
		{name: "no home company", home: nil, target: companyID, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := &domain.Actor{ID: uuid.New(), CompanyID: tt.home}
			assert.Equal(t, tt.want, a.HomeCompanyIs(tt.target))
		})
	}
}

// ---------------------------------------------------------------------------
// 3. Sentinel errors — identity, distinctness, and wrapping.
// ---------------------------------------------------------------------------

func TestSentinelErrors_Identity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", domain.ErrNotFound},
		{"ErrConflict", domain.ErrConflict},
		{"ErrUnauthorized", domain.ErrUnauthorized},
		{"ErrForbidden", domain.ErrForbidden},
		{"ErrInvalidScope", domain.ErrInvalidScope},
		{"ErrLocked", domain.ErrLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Error(t, tt.err, "sentinel error should not be nil")
			assert.NotEmpty(t, tt.err.Error(), "error message should not be empty")
		})
	}
}

func TestSentinelErrors_Distinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrConflict,
		domain.ErrUnauthorized,
		domain.ErrForbidden,
		domain.ErrInvalidScope,
		domain.ErrLocked,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}

			t.Run(a.Error()+"!="+b.Error(), func(t *testing.T) {
				t.Parallel()

				assert.NotErrorIs(t, a, b, "sentinel errors must be distinct")
			})
		}
	}
}

func TestSentinelErrors_WrappingPreservesIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", domain.ErrNotFound},
		{"ErrForbidden", domain.ErrForbidden},
		{"ErrInvalidScope", domain.ErrInvalidScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wrapped := fmt.Errorf("outer: %w", tt.err)
			require.ErrorIs(t, wrapped, tt.err, "wrapped error should preserve identity")

			doubleWrapped := fmt.Errorf("outer2: %w", wrapped)
			require.ErrorIs(t, doubleWrapped, tt.err, "double-wrapped error should preserve identity")
		})
	}
}

// ---------------------------------------------------------------------------
// 4. Audit action codes — wire-contract regression guards.
// ---------------------------------------------------------------------------

func TestAuditActionCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"login success", domain.AuditLoginSuccess, "LOGIN_SUCCESS"},
		{"login failed", domain.AuditLoginFailed, "LOGIN_FAILED"},
		{"login blocked lockout", domain.AuditLoginBlockedLockout, "LOGIN_BLOCKED_LOCKOUT"},
		{"account locked", domain.AuditAccountLocked, "ACCOUNT_LOCKED"},
		{"company created", domain.AuditCompanyCreated, "COMPANY_CREATED"},
		{"company updated", domain.AuditCompanyUpdated, "COMPANY_UPDATED"},
		{"task created", domain.AuditTaskCreated, "TASK_CREATED"},
		{"task updated", domain.AuditTaskUpdated, "TASK_UPDATED"},
		{"task deleted", domain.AuditTaskDeleted, "TASK_DELETED"},
		{"compliance status changed", domain.AuditComplianceStatusChanged, "COMPLIANCE_STATUS_CHANGED"},
		{"document created", domain.AuditDocumentCreated, "DOCUMENT_CREATED"},
		{"document updated", domain.AuditDocumentUpdated, "DOCUMENT_UPDATED"},
		{"document deleted", domain.AuditDocumentDeleted, "DOCUMENT_DELETED"},
		{"incident created", domain.AuditIncidentCreated, "INCIDENT_CREATED"},
		{"incident updated", domain.AuditIncidentUpdated, "INCIDENT_UPDATED"},
		{"incident deleted", domain.AuditIncidentDeleted, "INCIDENT_DELETED"},
		{"system assignment created", domain.AuditSystemAssignmentCreated, "SYSTEM_ASSIGNMENT_CREATED"},
		{"system assignment deleted", domain.AuditSystemAssignmentDeleted, "SYSTEM_ASSIGNMENT_DELETED"},
		{"export performed", domain.AuditExportPerformed, "EXPORT_PERFORMED"},
		{"cal pin created", domain.AuditCalPinCreated, "CAL_PIN_CREATED"},
		{"cal pin updated", domain.AuditCalPinUpdated, "CAL_PIN_UPDATED"},
		{"cal pin deleted", domain.AuditCalPinDeleted, "CAL_PIN_DELETED"},
		{"notifications cycle", domain.AuditNotificationsCycleTriggered, "NOTIFICATIONS_CYCLE_TRIGGERED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.got)
		})
	}
}
