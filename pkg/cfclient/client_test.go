package cfclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fivetwenty-io/cfapps/internal/store"
	"github.com/fivetwenty-io/cfapps/internal/vault"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
	"github.com/fivetwenty-io/cfapps/pkg/cfclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{input: "api.example.com", expected: "https://api.example.com"},
		{input: "https://api.example.com/", expected: "https://api.example.com"},
		{input: "http://localhost:8080", expected: "http://localhost:8080"},
		{input: " api.example.com/ ", expected: "https://api.example.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, cfclient.NormalizeEndpoint(tt.input))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("requires config", func(t *testing.T) {
		_, err := cfclient.New(nil)
		require.ErrorIs(t, err, capi.ErrConfigRequired)
	})

	t.Run("requires API endpoint", func(t *testing.T) {
		_, err := cfclient.NewWithEndpoint("")
		require.ErrorIs(t, err, capi.ErrAPIEndpointRequired)
	})

	t.Run("skip TLS needs dev mode", func(t *testing.T) {
		t.Setenv(cfclient.DevModeEnv, "")

		_, err := cfclient.New(&capi.Config{APIEndpoint: "api.example.com", SkipTLSVerify: true})
		require.ErrorIs(t, err, capi.ErrSkipTLSOnlyInDev)
	})

	t.Run("skip TLS in dev mode", func(t *testing.T) {
		t.Setenv(cfclient.DevModeEnv, "1")

		c, err := cfclient.New(&capi.Config{APIEndpoint: "api.example.com", SkipTLSVerify: true})
		require.NoError(t, err)
		assert.True(t, c.Session().IsEmpty())
	})

	t.Run("does not modify the caller's config", func(t *testing.T) {
		config := &capi.Config{APIEndpoint: "api.example.com/"}

		_, err := cfclient.New(config)
		require.NoError(t, err)
		assert.Equal(t, "api.example.com/", config.APIEndpoint)
	})
}

func TestClient_EndToEnd(t *testing.T) {
	t.Parallel()

	var server *httptest.Server

	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/info":
			_, _ = w.Write([]byte(`{"authorization_endpoint":"` + server.URL + `/uaa/"}`))
		case "/uaa/oauth/token":
			_, _ = w.Write([]byte(`{"access_token":"session-token"}`))
		case "/v2/organizations":
			if r.Header.Get("Authorization") != "Bearer session-token" {
				w.WriteHeader(http.StatusUnauthorized)

				return
			}

			_, _ = w.Write([]byte(`{"resources":[{"metadata":{"guid":"org-1"},"entity":{"name":"alpha"}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	orgStore := store.NewMemoryStore()
	c, err := cfclient.New(&capi.Config{
		APIEndpoint: server.URL,
		Vault:       vault.NewMemoryVault(),
		StateStore:  orgStore,
	})
	require.NoError(t, err)

	require.NoError(t, c.Login(context.Background(), "alice", "s3cret"))

	orgs, err := c.ListOrgs(context.Background())
	require.NoError(t, err)

	c.Session().SetOrg(orgs.Resources[0].GUID())
	assert.False(t, c.Session().IsOrgStale(orgs.GUIDs()))

	stored, err := orgStore.Get("currentOrg")
	require.NoError(t, err)
	assert.Equal(t, "org-1", stored)

	c.Logout()
	assert.True(t, c.Session().IsEmpty())
	assert.True(t, c.Session().IsOrgStale(orgs.GUIDs()))
}
