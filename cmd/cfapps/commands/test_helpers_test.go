package commands

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/fivetwenty-io/cfapps/internal/logging"
	"github.com/fivetwenty-io/cfapps/internal/store"
	"github.com/fivetwenty-io/cfapps/internal/vault"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
	"github.com/fivetwenty-io/cfapps/pkg/cfclient"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const (
	orgOneGUID = "org-1"
	orgTwoGUID = "org-2"
	appGUID    = "app-1"
	spaceGUID  = "space-1"
)

// fakeAPI is a minimal v2 API with a token endpoint.
type fakeAPI struct {
	*httptest.Server

	orgPages    []string
	tokenHits   atomic.Int32
	rejectLogin atomic.Bool
	lastAppsURL atomic.Value
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	fake := &fakeAPI{orgPages: []string{`{"total_results":2,"total_pages":1,"next_url":null,"resources":[
		{"metadata":{"guid":"org-1"},"entity":{"name":"alpha","status":"active"}},
		{"metadata":{"guid":"org-2"},"entity":{"name":"Beta","status":"active"}}]}`}}

	mux := http.NewServeMux()

	mux.HandleFunc("/v2/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"name":"fake","version":2,"api_version":"2.150.0",
			"authorization_endpoint":%q,"doppler_logging_endpoint":"wss://doppler.example.com"}`, fake.URL)
	})

	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		fake.tokenHits.Add(1)

		if fake.rejectLogin.Load() || r.FormValue("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"access_token":%q,"token_type":"bearer","expires_in":599}`,
			signedToken(t, r.FormValue("username")))
	})

	authenticated := func(handler http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
				w.WriteHeader(http.StatusUnauthorized)

				return
			}

			w.Header().Set("Content-Type", "application/json")
			handler(w, r)
		}
	}

	mux.HandleFunc("/v2/organizations", authenticated(func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}

		if page > len(fake.orgPages) {
			_, _ = w.Write([]byte(`{"total_results":0,"total_pages":0,"resources":[]}`))

			return
		}

		_, _ = w.Write([]byte(fake.orgPages[page-1]))
	}))

	mux.HandleFunc("/v2/apps", authenticated(func(w http.ResponseWriter, r *http.Request) {
		fake.lastAppsURL.Store(r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"total_results":1,"total_pages":1,"next_url":null,"resources":[
			{"metadata":{"guid":"app-1"},"entity":{"name":"web","state":"STARTED","space_guid":"space-1","memory":256,"instances":2}}]}`))
	}))

	mux.HandleFunc("/v2/apps/app-1/summary", authenticated(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"guid":"app-1","name":"web","state":"STARTED","memory":256,"disk_quota":1024,
			"instances":2,"running_instances":2,"detected_buildpack":"go_buildpack",
			"routes":[{"guid":"r-1","host":"web","path":"","domain":{"guid":"d-1","name":"apps.example.com"}}],
			"services":[{"guid":"s-1","name":"db","bound_app_count":3,
				"service_plan":{"guid":"p-1","name":"small","service":{"guid":"o-1","label":"postgres"}}}]}`))
	}))

	mux.HandleFunc("/v2/apps/app-1/stats", authenticated(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"1":{"state":"RUNNING","stats":{"host":"10.0.0.2","uptime":60,"usage":{"cpu":0.5,"mem":2097152}}},
			"0":{"state":"RUNNING","stats":{"host":"10.0.0.1","uptime":3600,"usage":{"cpu":0.25,"mem":1048576}}}}`))
	}))

	mux.HandleFunc("/v2/spaces", authenticated(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total_results":1,"total_pages":1,"resources":[
			{"metadata":{"guid":"space-1"},"entity":{"name":"dev","organization_guid":"org-1"}}]}`))
	}))

	fake.Server = httptest.NewServer(mux)
	t.Cleanup(fake.Close)

	return fake
}

// splitOrgs serves org-1 and org-2 on separate pages.
func (f *fakeAPI) splitOrgs() {
	f.orgPages = []string{
		`{"total_results":2,"total_pages":2,"next_url":"/v2/organizations?page=2","resources":[
			{"metadata":{"guid":"org-1"},"entity":{"name":"alpha","status":"active"}}]}`,
		`{"total_results":2,"total_pages":2,"next_url":null,"resources":[
			{"metadata":{"guid":"org-2"},"entity":{"name":"Beta","status":"active"}}]}`,
	}
}

func signedToken(t *testing.T, username string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_name": username,
		"user_id":   "user-guid",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)

	return signed
}

// cliEnv is one test's CLI environment: a client shared by every command
// run, with in-memory credentials and org selection.
type cliEnv struct {
	fake   *fakeAPI
	client capi.Client
	vault  *vault.MemoryVault
	store  *store.MemoryStore
}

// newCLIEnv points viper at fake and replaces the runtime factory. Tests
// using it must not run in parallel.
func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	viper.Reset()
	viper.SetConfigFile(filepath.Join(t.TempDir(), "config.yml"))

	fake := newFakeAPI(t)
	viper.Set(KeyAPI, fake.URL)
	viper.Set(KeyOrgStore, constants.OrgStoreMemory)
	viper.Set(KeyKeyringBackend, constants.VaultMemory)

	env := &cliEnv{
		fake:  fake,
		vault: vault.NewMemoryVault(),
		store: store.NewMemoryStore(),
	}

	client, err := cfclient.New(&capi.Config{
		APIEndpoint: fake.URL,
		Vault:       env.vault,
		StateStore:  env.store,
		Logger:      logging.Nop(),
	})
	require.NoError(t, err)

	env.client = client

	previous := newRuntime
	newRuntime = func(cmd *cobra.Command, apiEndpoint string) (*Runtime, error) {
		return &Runtime{Client: env.client}, nil
	}

	t.Cleanup(func() {
		newRuntime = previous

		viper.Reset()
	})

	return env
}

// login stores credentials the way a successful login would.
func (e *cliEnv) login(t *testing.T) {
	t.Helper()

	_, _, err := runCommand(t, NewLoginCommand(), "", "-u", "admin", "-p", "secret")
	require.NoError(t, err)
}

// runCommand executes cmd with args and input, returning stdout and stderr.
func runCommand(t *testing.T, cmd *cobra.Command, input string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}
