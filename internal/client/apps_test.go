package client_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	appsBody = `{
		"total_results": 1,
		"total_pages": 3,
		"next_url": "/v2/apps?page=3",
		"resources": [
			{"metadata": {"guid": "app-1"}, "entity": {"name": "web", "state": "STARTED", "space_guid": "space-1", "instances": 2, "memory": 256}}
		]
	}`

	summaryBody = `{
		"guid": "app-1",
		"name": "web",
		"state": "STARTED",
		"running_instances": 2,
		"instances": 2,
		"routes": [{"guid": "route-1", "host": "web", "path": "/api", "domain": {"guid": "d-1", "name": "apps.example.com"}}],
		"services": [
			{"guid": "si-1", "name": "db", "bound_app_count": 1, "service_plan": {"guid": "p-1", "name": "small", "service": {"guid": "s-1", "label": "postgres"}}},
			{"guid": "si-2", "name": "secrets", "bound_app_count": 3}
		]
	}`

	statsBody = `{
		"0": {"state": "RUNNING", "stats": {"name": "web", "uptime": 3600, "mem_quota": 268435456, "usage": {"cpu": 0.05, "mem": 134217728, "disk": 1024}}},
		"1": {"state": "CRASHED"}
	}`

	spacesBody = `{
		"total_results": 1,
		"resources": [{"metadata": {"guid": "space-1"}, "entity": {"name": "dev", "organization_guid": "org-1"}}]
	}`
)

func TestClient_ListApps(t *testing.T) {
	t.Parallel()

	t.Run("queries apps of the organization", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCF(t)
		fake.mux.HandleFunc("/v2/apps", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "organization_guid:org-1", r.URL.Query().Get("q"))
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "50", r.URL.Query().Get("results-per-page"))
			assert.Equal(t, "desc", r.URL.Query().Get("order-direction"))
			assert.Equal(t, "Bearer "+freshToken, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(appsBody))
		})
		fx := newFixture(t, fake)
		fx.loggedIn(t, fake, freshToken)

		apps, err := fx.client.ListApps(context.Background(), "org-1", 2)
		require.NoError(t, err)
		require.Len(t, apps.Resources, 1)
		assert.Equal(t, "web", apps.Resources[0].Entity.Name)
		assert.Equal(t, "STARTED", apps.Resources[0].Entity.State)
		assert.True(t, apps.HasNext())
	})

	t.Run("clamps the page", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCF(t)
		fake.mux.HandleFunc("/v2/apps", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1", r.URL.Query().Get("page"))
			_, _ = w.Write([]byte(appsBody))
		})
		fx := newFixture(t, fake)
		fx.loggedIn(t, fake, freshToken)

		_, err := fx.client.ListApps(context.Background(), "org-1", 0)
		require.NoError(t, err)
	})

	t.Run("requires an organization", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCF(t)
		fx := newFixture(t, fake)
		fx.loggedIn(t, fake, freshToken)

		_, err := fx.client.ListApps(context.Background(), "", 1)
		require.ErrorIs(t, err, constants.ErrNoOrganizationTarget)
		assert.Equal(t, 0, fake.Hits("/v2/apps"))
	})

	t.Run("rejects apps without state", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCF(t)
		fake.requireFreshToken("/v2/apps", `{"resources": [{"metadata": {"guid": "app-1"}, "entity": {"name": "web"}}]}`)
		fx := newFixture(t, fake)
		fx.loggedIn(t, fake, freshToken)

		_, err := fx.client.ListApps(context.Background(), "org-1", 1)
		require.ErrorIs(t, err, capi.ErrParse)
		require.ErrorIs(t, err, capi.ErrMissingField)
	})
}

func TestClient_AppSummary(t *testing.T) {
	t.Parallel()

	fake := newFakeCF(t)
	fake.requireFreshToken("/v2/apps/app-1/summary", summaryBody)
	fx := newFixture(t, fake)
	fx.loggedIn(t, fake, freshToken)

	summary, err := fx.client.AppSummary(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "web", summary.Name)
	require.Len(t, summary.Routes, 1)
	assert.Equal(t, "web.apps.example.com/api", summary.Routes[0].URL())
	require.Len(t, summary.Services, 2)
	assert.Equal(t, "postgres", summary.Services[0].Label())
	assert.Equal(t, "small", summary.Services[0].PlanName())
	assert.Equal(t, "user-provided", summary.Services[1].Label())
	assert.Empty(t, summary.Services[1].PlanName())

	_, err = fx.client.AppSummary(context.Background(), "")
	require.ErrorIs(t, err, constants.ErrAppGUIDRequired)
}

func TestClient_AppStats(t *testing.T) {
	t.Parallel()

	t.Run("decodes instances", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCF(t)
		fake.requireFreshToken("/v2/apps/app-1/stats", statsBody)
		fx := newFixture(t, fake)
		fx.loggedIn(t, fake, freshToken)

		stats, err := fx.client.AppStats(context.Background(), "app-1")
		require.NoError(t, err)
		require.Len(t, stats, 2)
		assert.Equal(t, "RUNNING", stats["0"].State)
		require.NotNil(t, stats["0"].Stats)
		assert.InDelta(t, 0.05, stats["0"].Stats.Usage.CPU, 0.0001)
		assert.Nil(t, stats["1"].Stats)
	})

	t.Run("rejects null body", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCF(t)
		fake.requireFreshToken("/v2/apps/app-1/stats", `null`)
		fx := newFixture(t, fake)
		fx.loggedIn(t, fake, freshToken)

		_, err := fx.client.AppStats(context.Background(), "app-1")
		require.ErrorIs(t, err, capi.ErrParse)
	})

	t.Run("not found is not recovered", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCF(t)
		fake.mux.HandleFunc("/v2/apps/missing/stats", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		fx := newFixture(t, fake)
		fx.loggedIn(t, fake, freshToken)

		_, err := fx.client.AppStats(context.Background(), "missing")
		assert.True(t, capi.IsNotFound(err))
		assert.Equal(t, 0, fake.Hits("/oauth/token"))
	})
}

func TestClient_ListSpaces(t *testing.T) {
	t.Parallel()

	t.Run("looks up spaces by app guid", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCF(t)
		fake.mux.HandleFunc("/v2/spaces", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "app_guid IN app-1,app-2", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(spacesBody))
		})
		fx := newFixture(t, fake)
		fx.loggedIn(t, fake, freshToken)

		spaces, err := fx.client.ListSpaces(context.Background(), []string{"app-1", "app-2"})
		require.NoError(t, err)
		require.Len(t, spaces.Resources, 1)
		assert.Equal(t, "dev", spaces.Resources[0].Entity.Name)
		assert.Equal(t, "org-1", spaces.Resources[0].Entity.OrganizationGUID)
	})

	t.Run("requires app guids", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCF(t)
		fx := newFixture(t, fake)

		_, err := fx.client.ListSpaces(context.Background(), nil)
		require.ErrorIs(t, err, constants.ErrAppGUIDRequired)
		assert.Empty(t, fx.notifier.Signals())
	})
}
