package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/complyra/complyra/internal/authz"
)

// ---------------------------------------------------------------------------
// Classify — canonical mapping, synonyms, normalization.
// ---------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want authz.Role
	}{
		{"super_admin", authz.RoleSuperAdmin},

		{"staff_admin", authz.RoleStaffAdmin},
		{"administrator_stranice", authz.RoleStaffAdmin}, // legacy spelling
		{"site_admin", authz.RoleStaffAdmin},             // legacy spelling

		{"client_admin", authz.RoleClientAdmin},
		{"admin", authz.RoleClientAdmin},
		{"owner", authz.RoleClientAdmin},

		{"contributor", authz.RoleContributor},
		{"member", authz.RoleContributor},
		{"viewer", authz.RoleContributor},

		{"", authz.RoleUnknown},
		{"root", authz.RoleUnknown},
		{"manager", authz.RoleUnknown},
	}

	for _, tt := range tests {
		name := tt.raw
		if name == "" {
			name = "(empty)"
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, authz.Classify(tt.raw))
		})
	}
}

func TestClassify_Normalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want authz.Role
	}{
		{"uppercase", "SUPER_ADMIN", authz.RoleSuperAdmin},
		{"mixed case", "Staff_Admin", authz.RoleStaffAdmin},
		{"surrounding whitespace", "  admin  ", authz.RoleClientAdmin},
		{"tab and case", "\tMEMBER\n", authz.RoleContributor},
		{"whitespace only", "   ", authz.RoleUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, authz.Classify(tt.raw))
		})
	}
}

// Legacy staff spellings must stay synonyms of one canonical role, never
// distinct roles.
func TestClassify_StaffSynonymsConverge(t *testing.T) {
	t.Parallel()

	spellings := []string{"staff_admin", "administrator_stranice", "site_admin"}
	for _, s := range spellings {
		assert.Equal(t, authz.RoleStaffAdmin, authz.Classify(s), "spelling %q", s)
	}
}
