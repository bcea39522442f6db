// Package auth implements the UAA password grant used to obtain a bearer
// token, and decoding of the token's claims.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	capihttp "github.com/fivetwenty-io/cfapps/internal/http"
	"github.com/fivetwenty-io/cfapps/internal/session"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
)

// TokenSink receives the token granted by a successful login.
type TokenSink interface {
	SetToken(token string)
}

// Client performs login exchanges against a token endpoint.
type Client struct {
	http   *capihttp.Client
	sink   TokenSink
	logger capi.Logger
}

// NewClient creates a login client. The transport is used with absolute
// token URLs, so its base URL does not matter.
func NewClient(transport *capihttp.Client, sink TokenSink, logger capi.Logger) *Client {
	return &Client{
		http:   transport,
		sink:   sink,
		logger: logger,
	}
}

// Login exchanges username and password for a bearer token at authURL.
// On success the token is handed to the sink. Any failure, including a
// 2xx without an access_token, is returned as a *capi.AuthError and leaves
// the sink untouched.
func (c *Client) Login(ctx context.Context, authURL, username, password string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)
	form.Set("scope", "")

	resp, err := c.http.Do(ctx, &capihttp.Request{
		Method: http.MethodPost,
		Path:   authURL,
		Form:   form,
		Headers: map[string]string{
			"Authorization": "Basic " + session.LoginAuthToken,
		},
		NoAuth: true,
	})
	if err != nil {
		authErr := &capi.AuthError{Err: err}
		if resp != nil {
			authErr.StatusCode = resp.StatusCode
		}

		c.log("login rejected", map[string]interface{}{"user": username, "status": authErr.StatusCode})

		return nil, authErr
	}

	var token Token

	err = json.Unmarshal(resp.Body, &token)
	if err != nil {
		return nil, &capi.AuthError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding token response: %w", err)}
	}

	if token.AccessToken == "" {
		return nil, &capi.AuthError{StatusCode: resp.StatusCode, Err: capi.ErrMissingAccessToken}
	}

	if token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	if c.sink != nil {
		c.sink.SetToken(token.AccessToken)
	}

	return &token, nil
}

// LoginWithCredentials logs in with a vaulted credential set. A set missing
// any field is rejected without contacting the token endpoint.
func (c *Client) LoginWithCredentials(ctx context.Context, credentials capi.Credentials, found bool) (*Token, error) {
	if !found {
		return nil, &capi.AuthError{Err: capi.ErrNoCredentials}
	}

	if !credentials.Complete() {
		return nil, &capi.AuthError{Err: capi.ErrIncompleteCredentials}
	}

	return c.Login(ctx, credentials.AuthURL, credentials.Username, credentials.Password)
}

func (c *Client) log(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, fields)
	}
}
