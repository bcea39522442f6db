package client_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fivetwenty-io/cfapps/internal/client"
	"github.com/fivetwenty-io/cfapps/internal/store"
	"github.com/fivetwenty-io/cfapps/internal/vault"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
	"github.com/stretchr/testify/require"
)

const (
	staleToken = "stale-token"
	freshToken = "fresh-token"

	orgsBody = `{
		"total_results": 2,
		"total_pages": 1,
		"prev_url": null,
		"next_url": null,
		"resources": [
			{"metadata": {"guid": "org-1"}, "entity": {"name": "alpha"}},
			{"metadata": {"guid": "org-2"}, "entity": {"name": "beta"}}
		]
	}`
)

// recordingNotifier records every AuthenticationRequired signal.
type recordingNotifier struct {
	mutex   sync.Mutex
	signals []bool
}

func (n *recordingNotifier) AuthenticationRequired(authError bool) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.signals = append(n.signals, authError)
}

func (n *recordingNotifier) Signals() []bool {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	return append([]bool(nil), n.signals...)
}

// logEntry is one record captured by recordingLogger.
type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

// recordingLogger captures every entry logged through capi.Logger.
type recordingLogger struct {
	mutex   sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, msg string, fields map[string]interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {
	l.record("debug", msg, fields)
}
func (l *recordingLogger) Info(msg string, fields map[string]interface{}) {
	l.record("info", msg, fields)
}
func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.record("warn", msg, fields)
}
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.record("error", msg, fields)
}

// Transitions returns the call state entries: those carrying a call_id.
func (l *recordingLogger) Transitions() []logEntry {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	var transitions []logEntry

	for _, entry := range l.entries {
		if _, ok := entry.fields["call_id"]; ok {
			transitions = append(transitions, entry)
		}
	}

	return transitions
}

// States returns the target state of every transition, in order.
func (l *recordingLogger) States() []string {
	var states []string
	for _, entry := range l.Transitions() {
		states = append(states, entry.fields["state"].(string))
	}

	return states
}

// fakeCF is a minimal API and token endpoint. Handlers registered on mux
// see every request; hits counts them per path.
type fakeCF struct {
	server *httptest.Server
	mux    *http.ServeMux
	hits   sync.Map
}

func newFakeCF(t *testing.T) *fakeCF {
	t.Helper()

	fake := &fakeCF{mux: http.NewServeMux()}
	fake.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter, _ := fake.hits.LoadOrStore(r.URL.Path, new(atomic.Int32))
		counter.(*atomic.Int32).Add(1)
		fake.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(fake.server.Close)

	fake.mux.HandleFunc("/v2/info", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"fake","authorization_endpoint":"` + fake.server.URL + `","doppler_logging_endpoint":"wss://doppler.example.com"}`))
	})

	return fake
}

func (f *fakeCF) URL() string {
	return f.server.URL
}

func (f *fakeCF) TokenURL() string {
	return f.server.URL + "/oauth/token"
}

func (f *fakeCF) Hits(path string) int {
	counter, ok := f.hits.Load(path)
	if !ok {
		return 0
	}

	return int(counter.(*atomic.Int32).Load())
}

// grantTokens makes the token endpoint hand out freshToken.
func (f *fakeCF) grantTokens() {
	f.mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"` + freshToken + `","token_type":"bearer","expires_in":600}`))
	})
}

// rejectLogins makes the token endpoint answer 401.
func (f *fakeCF) rejectLogins() {
	f.mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Bad credentials"}`))
	})
}

// requireFreshToken serves body on path only to requests bearing freshToken.
func (f *fakeCF) requireFreshToken(path, body string) {
	f.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+freshToken {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		_, _ = w.Write([]byte(body))
	})
}

type fixture struct {
	client   *client.Client
	vault    *vault.MemoryVault
	store    *store.MemoryStore
	notifier *recordingNotifier
	logger   *recordingLogger
}

func newFixture(t *testing.T, fake *fakeCF) *fixture {
	t.Helper()

	fx := &fixture{
		vault:    vault.NewMemoryVault(),
		store:    store.NewMemoryStore(),
		notifier: &recordingNotifier{},
		logger:   &recordingLogger{},
	}

	c, err := client.New(&capi.Config{
		APIEndpoint: fake.URL(),
		Vault:       fx.vault,
		StateStore:  fx.store,
		Notifier:    fx.notifier,
		Logger:      fx.logger,
	})
	require.NoError(t, err)

	fx.client = c

	return fx
}

// loggedIn seeds a token and vaulted credentials pointing at fake.
func (fx *fixture) loggedIn(t *testing.T, fake *fakeCF, token string) {
	t.Helper()

	fx.client.State().SetToken(token)
	require.NoError(t, fx.vault.Set(capi.Credentials{
		APIURL:   fake.URL(),
		AuthURL:  fake.TokenURL(),
		Username: "alice",
		Password: "s3cret",
	}))
}
