// Package client implements capi.Client on top of the retrying transport,
// the session and the login client. Every authenticated call runs through
// the recovery protocol in recover.go.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/cfapps/internal/auth"
	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/fivetwenty-io/cfapps/internal/http"
	"github.com/fivetwenty-io/cfapps/internal/session"
	"github.com/fivetwenty-io/cfapps/internal/store"
	"github.com/fivetwenty-io/cfapps/internal/vault"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
)

// Client implements the capi.Client interface.
type Client struct {
	httpClient *http.Client
	auth       *auth.Client
	session    *session.State
	notifier   capi.AuthNotifier
	baseURL    string
	logger     capi.Logger
}

var _ capi.Client = (*Client)(nil)

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *capi.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.SkipTLSVerify {
		httpOpts = append(httpOpts, http.WithInsecureSkipVerify())
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a client for config.APIEndpoint. A nil Vault or StateStore
// is replaced by an in-memory one; a nil Notifier discards the signal.
func New(config *capi.Config) (*Client, error) {
	if config == nil {
		return nil, capi.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, capi.ErrAPIEndpointRequired
	}

	credentialVault := config.Vault
	if credentialVault == nil {
		credentialVault = vault.NewMemoryVault()
	}

	stateStore := config.StateStore
	if stateStore == nil {
		stateStore = store.NewMemoryStore()
	}

	state := session.New(credentialVault, stateStore, config.Logger)
	httpClient := http.NewClient(config.APIEndpoint, state, createHTTPClientOptions(config)...)

	return &Client{
		httpClient: httpClient,
		auth:       auth.NewClient(httpClient, state, config.Logger),
		session:    state,
		notifier:   config.Notifier,
		baseURL:    httpClient.BaseURL(),
		logger:     config.Logger,
	}, nil
}

// Session implements capi.Client.Session.
func (c *Client) Session() capi.Session {
	return c.session
}

// State returns the concrete session.
func (c *Client) State() *session.State {
	return c.session
}

// BaseURL returns the API endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login discovers the token endpoint of the API, exchanges the user's
// credentials for a token and, on success, vaults the credential set so
// later calls can recover from an expired token.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if username == "" {
		return constants.ErrUsernameRequired
	}

	info, err := c.Info(ctx, c.baseURL)
	if err != nil {
		return fmt.Errorf("discovering authorization endpoint: %w", err)
	}

	authURL := info.TokenURL()

	token, err := c.auth.Login(ctx, authURL, username, password)
	if err != nil {
		return err
	}

	err = c.session.SaveCredentials(capi.Credentials{
		APIURL:     c.baseURL,
		AuthURL:    authURL,
		LoggingURL: info.DopplerLoggingEndpoint,
		Username:   username,
		Password:   password,
	})
	if err != nil {
		return fmt.Errorf("storing credentials: %w", err)
	}

	c.logInfo("logged in", map[string]interface{}{
		"user":       username,
		"expires_in": (time.Duration(token.ExpiresIn) * time.Second).String(),
	})

	return nil
}

// Logout resets the session.
func (c *Client) Logout() {
	c.session.Reset()
}

func (c *Client) logInfo(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, fields)
	}
}
