package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	internalhttp "github.com/fivetwenty-io/cfapps/internal/http"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
	"github.com/google/uuid"
)

type callState int

const (
	stateIdle callState = iota
	stateAwaitingResponse
	stateAwaitingReauth
	stateFailed
)

func (s callState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAwaitingResponse:
		return "awaiting_response"
	case stateAwaitingReauth:
		return "awaiting_reauth"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// call is the state of one logical API call. It is never shared between
// calls: the single re-authentication budget belongs to the call.
type call struct {
	id       string
	op       string
	state    callState
	reauthed bool
	client   *Client
}

func (c *Client) newCall(op string) *call {
	return &call{
		id:     uuid.NewString(),
		op:     op,
		state:  stateIdle,
		client: c,
	}
}

// run issues req and applies the recovery protocol:
//
//   - an empty session recovers before the first attempt, so no request is
//     sent when recovery fails;
//   - a 401 triggers one login with the vaulted credentials and one replay;
//   - a failed login resets the session, signals the notifier and surfaces
//     as a 401 *capi.APIError wrapping the *capi.AuthError;
//   - every other failure is returned as is.
func (c *call) run(ctx context.Context, req *internalhttp.Request) (*internalhttp.Response, error) {
	if c.client.session.IsEmpty() {
		c.transition(stateAwaitingReauth, map[string]interface{}{"reason": "empty session"})

		err := c.reauthenticate(ctx)
		if err != nil {
			return nil, c.fail(err)
		}
	}

	for {
		c.transition(stateAwaitingResponse, nil)

		resp, err := c.client.httpClient.Do(ctx, req)
		if err == nil {
			c.transition(stateIdle, map[string]interface{}{"status": resp.StatusCode})

			return resp, nil
		}

		if !errors.Is(err, capi.ErrUnauthorized) || c.reauthed {
			c.transition(stateIdle, map[string]interface{}{"status": capi.StatusCode(err)})

			return nil, err
		}

		c.transition(stateAwaitingReauth, map[string]interface{}{"status": http.StatusUnauthorized})

		err = c.reauthenticate(ctx)
		if err != nil {
			return nil, c.fail(err)
		}
	}
}

func (c *call) reauthenticate(ctx context.Context) error {
	c.reauthed = true

	credentials, found := c.client.session.Credentials()

	_, err := c.client.auth.LoginWithCredentials(ctx, credentials, found)

	return err
}

func (c *call) fail(authErr error) error {
	c.transition(stateFailed, map[string]interface{}{"error": authErr.Error()})

	c.client.session.Reset()

	if c.client.notifier != nil {
		c.client.notifier.AuthenticationRequired(true)
	}

	return &capi.APIError{StatusCode: http.StatusUnauthorized, Err: authErr}
}

func (c *call) transition(to callState, fields map[string]interface{}) {
	from := c.state
	c.state = to

	logger := c.client.logger
	if logger == nil {
		return
	}

	entry := map[string]interface{}{
		"call_id": c.id,
		"op":      c.op,
		"from":    from.String(),
		"state":   to.String(),
	}

	for key, value := range fields {
		entry[key] = value
	}

	if to == stateFailed {
		logger.Warn("session recovery failed", entry)

		return
	}

	logger.Debug("call state", entry)
}

type validator interface {
	Validate() error
}

// fetch runs req through the recovery protocol and decodes the 2xx body
// into T. A body that does not decode or fails validation is a
// *capi.ParseError.
func fetch[T any](ctx context.Context, c *Client, op, resource string, req *internalhttp.Request) (*T, error) {
	resp, err := c.newCall(op).run(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return decode[T](resource, resp.Body)
}

func decode[T any](resource string, body []byte) (*T, error) {
	var result T

	err := json.Unmarshal(body, &result)
	if err != nil {
		return nil, &capi.ParseError{Resource: resource, Err: err}
	}

	if v, ok := any(&result).(validator); ok {
		err = v.Validate()
		if err != nil {
			return nil, &capi.ParseError{Resource: resource, Err: err}
		}
	}

	return &result, nil
}
