package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/complyra/complyra/internal/api/v1"
	"github.com/complyra/complyra/internal/domain"
)

func TestGetSystem(t *testing.T) {
	t.Parallel()

	f := newTaskFixture()

	t.Run("cross_company_membership_honored", func(t *testing.T) {
		t.Parallel()

		// A contributor from another company with an explicit membership
		// still reads the system.
		actor := contributor(uuid.New())
		store := f.store()
		store.members.(*mockMemberRepo).existsFunc = func(_ context.Context, userID, systemID uuid.UUID) (bool, error) {
			return userID == actor.ID && systemID == f.system.ID, nil
		}

		deps, _, _ := newTestDeps(store)
		_, api := humatest.New(t)
		v1.RegisterSystemRoutes(api, deps)

		resp := api.GetCtx(actorCtx(actor), "/systems/"+f.system.ID.String())

		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("home_company_alone_grants_nothing_to_contributors", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newTestDeps(f.store())
		_, api := humatest.New(t)
		v1.RegisterSystemRoutes(api, deps)

		resp := api.GetCtx(actorCtx(contributor(f.companyID)), "/systems/"+f.system.ID.String())

		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("missing_system_404", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newTestDeps(f.store())
		_, api := humatest.New(t)
		v1.RegisterSystemRoutes(api, deps)

		resp := api.GetCtx(actorCtx(superAdmin()), "/systems/"+uuid.New().String())

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestListSystems(t *testing.T) {
	t.Parallel()

	companyID := uuid.New()
	company := &domain.Company{ID: companyID, Name: "Fleet Corp"}
	memberSystem := &domain.AISystem{ID: uuid.New(), CompanyID: companyID, Name: "visible"}
	otherSystem := &domain.AISystem{ID: uuid.New(), CompanyID: companyID, Name: "hidden"}

	listStore := func() *mockStore {
		store := companyStore(map[uuid.UUID]*domain.Company{companyID: company})
		store.systems = &mockSystemRepo{
			listByCompanyFunc: func(_ context.Context, cid uuid.UUID) ([]*domain.AISystem, error) {
				assert.Equal(t, companyID, cid)
				return []*domain.AISystem{memberSystem, otherSystem}, nil
			},
		}
		return store
	}

	t.Run("contributor_sees_member_systems_only", func(t *testing.T) {
		t.Parallel()

		actor := contributor(companyID)
		store := listStore()
		store.members.(*mockMemberRepo).systemIDsForUserFunc = func(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
			assert.Equal(t, actor.ID, userID)
			return []uuid.UUID{memberSystem.ID}, nil
		}

		deps, _, _ := newTestDeps(store)
		_, api := humatest.New(t)
		v1.RegisterSystemRoutes(api, deps)

		resp := api.GetCtx(actorCtx(actor), "/companies/"+companyID.String()+"/systems")

		require.Equal(t, http.StatusOK, resp.Code)
		var body []*domain.AISystem
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body, 1)
		assert.Equal(t, memberSystem.ID, body[0].ID)
	})

	t.Run("client_admin_sees_all", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newTestDeps(listStore())
		_, api := humatest.New(t)
		v1.RegisterSystemRoutes(api, deps)

		resp := api.GetCtx(actorCtx(clientAdmin(companyID)), "/companies/"+companyID.String()+"/systems")

		require.Equal(t, http.StatusOK, resp.Code)
		var body []*domain.AISystem
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Len(t, body, 2)
	})
}

func TestCreateSystem(t *testing.T) {
	t.Parallel()

	companyID := uuid.New()
	company := &domain.Company{ID: companyID, Name: "Fleet Corp"}

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		store := companyStore(map[uuid.UUID]*domain.Company{companyID: company})
		var created *domain.AISystem
		store.systems = &mockSystemRepo{
			createFunc: func(_ context.Context, s *domain.AISystem) error {
				created = s
				return nil
			},
		}

		deps, _, _ := newTestDeps(store)
		_, api := humatest.New(t)
		v1.RegisterSystemRoutes(api, deps)

		resp := api.PostCtx(actorCtx(clientAdmin(companyID)), "/companies/"+companyID.String()+"/systems", map[string]any{
			"name":       "resume-screener",
			"risk_level": "high",
		})

		require.Equal(t, http.StatusOK, resp.Code)
		require.NotNil(t, created)
		assert.Equal(t, companyID, created.CompanyID)
		assert.Equal(t, domain.RiskLevelHigh, created.RiskLevel)
		assert.Equal(t, domain.ComplianceStatusCompliant, created.ComplianceStatus, "a system with no mandatory tasks starts compliant")
	})

	t.Run("bad_risk_level", func(t *testing.T) {
		t.Parallel()

		store := companyStore(map[uuid.UUID]*domain.Company{companyID: company})
		store.systems = &mockSystemRepo{}

		deps, _, _ := newTestDeps(store)
		_, api := humatest.New(t)
		v1.RegisterSystemRoutes(api, deps)

		resp := api.PostCtx(actorCtx(clientAdmin(companyID)), "/companies/"+companyID.String()+"/systems", map[string]any{
			"name":       "x",
			"risk_level": "apocalyptic",
		})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}
