package domain

import "time"

type ComplianceStatus string

const (
	ComplianceStatusCompliant          ComplianceStatus = "compliant"
	ComplianceStatusPartiallyCompliant ComplianceStatus = "partially_compliant"
	ComplianceStatusNonCompliant       ComplianceStatus = "non_compliant"
)

// DeriveComplianceStatus computes a system's compliance status from its tasks:
//   - any mandatory open-like task past its due date -> non_compliant
//   - any mandatory open-like task                   -> partially_compliant
//   - otherwise (all mandatory tasks done)           -> compliant
//
// Non-mandatory tasks never influence the result.
func DeriveComplianceStatus(tasks []*Task, now time.Time) ComplianceStatus {
	anyOpenish := false
	anyOverdue := false

	for _, t := range tasks {
		if t == nil || !t.Mandatory {
			continue
		}
		if !t.Status.OpenLike() {
			continue
		}
		anyOpenish = true
		if t.DueDate != nil && t.DueDate.Before(now) {
			anyOverdue = true
		}
	}

	if anyOverdue {
		return ComplianceStatusNonCompliant
	}
	if anyOpenish {
		return ComplianceStatusPartiallyCompliant
	}
	return ComplianceStatusCompliant
}
