// Package authz decides, for every mutating or sensitive read operation,
// whether an authenticated actor may act on a company-scoped or system-scoped
// resource. It reconciles four axes of authority: global role, company-level
// assignment, system-level membership, and resource ownership.
package authz

import "strings"

// Role is the canonical role space. Raw role strings are normalized into it
// exactly once, at the boundary; nothing downstream compares raw strings.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleStaffAdmin  Role = "staff_admin"
	RoleClientAdmin Role = "client_admin"
	RoleContributor Role = "contributor"
	RoleUnknown     Role = "unknown"
)

// roleSynonyms maps stored role spellings to canonical roles. The staff
// entries include legacy spellings still present in production rows; they
// must keep mapping to the same canonical role.
var roleSynonyms = map[string]Role{
	"super_admin": RoleSuperAdmin,

	"staff_admin":            RoleStaffAdmin,
	"administrator_stranice": RoleStaffAdmin, // legacy
	"site_admin":             RoleStaffAdmin, // legacy

	"client_admin": RoleClientAdmin,
	"admin":        RoleClientAdmin,
	"owner":        RoleClientAdmin,

	"contributor": RoleContributor,
	"member":      RoleContributor,
	"viewer":      RoleContributor,
}

// Classify maps a raw stored role string to a canonical role. Comparison is
// trimmed and case-insensitive. Anything unrecognized, including the empty
// string, classifies as RoleUnknown, which denies everything downstream.
func Classify(raw string) Role {
	norm := strings.ToLower(strings.TrimSpace(raw))
	if role, ok := roleSynonyms[norm]; ok {
		return role
	}
	return RoleUnknown
}
