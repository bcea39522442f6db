package capi

import (
	"context"
	"time"
)

// AppsClient lists and inspects applications.
type AppsClient interface {
	ListApps(ctx context.Context, orgGUID string, page int) (*ListResponse[App], error)
	AppSummary(ctx context.Context, appGUID string) (*AppSummary, error)
	AppStats(ctx context.Context, appGUID string) (AppStats, error)
}

// OrganizationsClient lists organizations visible to the session.
type OrganizationsClient interface {
	// ListOrgs returns the first page as the server sizes it.
	ListOrgs(ctx context.Context) (*ListResponse[Organization], error)
	// ListOrgsPage returns one page of fifty organizations.
	ListOrgsPage(ctx context.Context, page int) (*ListResponse[Organization], error)
}

// SpacesClient looks up the spaces owning a set of apps.
type SpacesClient interface {
	ListSpaces(ctx context.Context, appGUIDs []string) (*ListResponse[Space], error)
}

// InfoClient provides access to the unauthenticated info endpoint.
type InfoClient interface {
	Info(ctx context.Context, apiURL string) (*Info, error)
}

// Client is the full API surface. Every authenticated call goes through
// the session recovery protocol: a 401 triggers one re-authentication with
// the vaulted credentials and one replay of the original request.
type Client interface {
	AppsClient
	OrganizationsClient
	SpacesClient
	InfoClient

	// Login discovers the token endpoint, exchanges the credentials for a
	// token and vaults them for later recovery.
	Login(ctx context.Context, username, password string) error
	// Logout resets the session.
	Logout()
	// Session returns the session shared by every call of the client.
	Session() Session
}

// Session is the login state shared by the calls of one client.
type Session interface {
	// IsEmpty reports whether no token is set and no credentials are vaulted.
	IsEmpty() bool
	// Token returns the bearer token and whether one has been set.
	Token() (string, bool)
	SetOrg(id string)
	GetOrg() (string, bool)
	ClearOrg()
	// IsOrgStale reports whether the selected organization is missing or
	// not among validIDs.
	IsOrgStale(validIDs []string) bool
	Reset()
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// CredentialVault is the durable owner of login credentials. The set is
// stored and cleared as a whole; Get reports false when nothing is stored.
type CredentialVault interface {
	Get() (Credentials, bool)
	Set(credentials Credentials) error
	Clear() error
	Has() bool
}

// StateStore is a generic key-value store for UI state such as the
// selected organization. Get returns an error wrapping ErrStateNotFound for
// missing keys.
type StateStore interface {
	Get(key string) (string, error)
	Put(key, value string) error
	Delete(key string) error
}

// AuthNotifier is the presentation collaborator told to bring the user back
// to a login entry point. authError is true when the previous session was
// forcibly invalidated.
type AuthNotifier interface {
	AuthenticationRequired(authError bool)
}

// AuthNotifierFunc adapts a function to AuthNotifier.
type AuthNotifierFunc func(authError bool)

// AuthenticationRequired implements AuthNotifier.
func (f AuthNotifierFunc) AuthenticationRequired(authError bool) {
	f(authError)
}

// Config represents client configuration for building a capi.Client.
//
// # Session
//
// Vault holds the credentials used for recovery logins and counts towards
// session non-emptiness. StateStore persists the selected organization.
// Notifier is told when recovery fails and the session has been reset.
// A nil Vault or StateStore is replaced by an in-memory implementation.
//
// # Timeouts and retries
//
// Per-request timeouts should generally be controlled via context passed to
// client methods. Transport-level retries (5xx, 429 and connection errors)
// can be tuned via RetryMax/RetryWaitMin/RetryWaitMax; a 401 is never
// retried by the transport. SkipTLSVerify is only honored when the
// environment variable CFAPPS_DEV_MODE is set to "true" or "1".
type Config struct {
	// APIEndpoint: base URL for the CF API (e.g., "https://api.example.com").
	// cfclient.New normalizes this value by trimming a trailing slash and
	// adding "https://" if no scheme is present.
	APIEndpoint string

	// Vault: durable credential storage.
	Vault CredentialVault
	// StateStore: UI state storage for the org selection.
	StateStore StateStore
	// Notifier: presentation collaborator for re-login prompts.
	Notifier AuthNotifier

	// HTTPTimeout: default HTTP timeout for a single attempt.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of transport retries for transient failures.
	// If 0, transient failures are not retried.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and the session.
	Logger Logger
	// SkipTLSVerify: if true, TLS verification is skipped, only when
	// CFAPPS_DEV_MODE is set. Intended for local development.
	SkipTLSVerify bool
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
}
