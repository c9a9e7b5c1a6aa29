package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/complyra/complyra/internal/domain"
)

func taskWith(status domain.TaskStatus, mandatory bool, due *time.Time) *domain.Task {
	return &domain.Task{Status: status, Mandatory: mandatory, DueDate: due}
}

func TestDeriveComplianceStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	tests := []struct {
		name  string
		tasks []*domain.Task
		want  domain.ComplianceStatus
	}{
		{
			name:  "no tasks is compliant",
			tasks: nil,
			want:  domain.ComplianceStatusCompliant,
		},
		{
			name: "all mandatory done",
			tasks: []*domain.Task{
				taskWith(domain.TaskStatusDone, true, nil),
				taskWith(domain.TaskStatusDone, true, &past),
			},
			want: domain.ComplianceStatusCompliant,
		},
		{
			name: "open mandatory without due date",
			tasks: []*domain.Task{
				taskWith(domain.TaskStatusOpen, true, nil),
			},
			want: domain.ComplianceStatusPartiallyCompliant,
		},
		{
			name: "open mandatory due in the future",
			tasks: []*domain.Task{
				taskWith(domain.TaskStatusInProgress, true, &future),
			},
			want: domain.ComplianceStatusPartiallyCompliant,
		},
		{
			name: "blocked mandatory overdue",
			tasks: []*domain.Task{
				taskWith(domain.TaskStatusBlocked, true, &past),
			},
			want: domain.ComplianceStatusNonCompliant,
		},
		{
			name: "overdue wins over merely open",
			tasks: []*domain.Task{
				taskWith(domain.TaskStatusOpen, true, &future),
				taskWith(domain.TaskStatusPostponed, true, &past),
			},
			want: domain.ComplianceStatusNonCompliant,
		},
		{
			name: "optional tasks never count",
			tasks: []*domain.Task{
				taskWith(domain.TaskStatusOpen, false, &past),
				taskWith(domain.TaskStatusBlocked, false, nil),
			},
			want: domain.ComplianceStatusCompliant,
		},
		{
			name: "cancelled mandatory does not count as open",
			tasks: []*domain.Task{
				taskWith(domain.TaskStatusCancelled, true, &past),
			},
			want: domain.ComplianceStatusCompliant,
		},
		{
			name: "nil entries are skipped",
			tasks: []*domain.Task{
				nil,
				taskWith(domain.TaskStatusOpen, true, nil),
			},
			want: domain.ComplianceStatusPartiallyCompliant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := domain.DeriveComplianceStatus(tt.tasks, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Due date exactly at "now" is not overdue; strictly before is.
func TestDeriveComplianceStatus_DueBoundary(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exact := now
	justBefore := now.Add(-time.Second)

	atBoundary := domain.DeriveComplianceStatus(
		[]*domain.Task{taskWith(domain.TaskStatusOpen, true, &exact)}, now)
	assert.Equal(t, domain.ComplianceStatusPartiallyCompliant, atBoundary)

	overdue := domain.DeriveComplianceStatus(
		[]*domain.Task{taskWith(domain.TaskStatusOpen, true, &justBefore)}, now)
	assert.Equal(t, domain.ComplianceStatusNonCompliant, overdue)
}
