package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	internalhttp "github.com/fivetwenty-io/cfapps/internal/http"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
)

// Info implements capi.InfoClient.Info. The endpoint is public, so the
// call bypasses the session and its recovery protocol. An empty apiURL
// means the client's own endpoint.
func (c *Client) Info(ctx context.Context, apiURL string) (*capi.Info, error) {
	if apiURL == "" {
		apiURL = c.baseURL
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ShortHTTPTimeout)
	defer cancel()

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodGet,
		Path:   strings.TrimSuffix(apiURL, "/") + "/v2/info",
		NoAuth: true,
	})
	if err != nil {
		return nil, fmt.Errorf("getting info: %w", err)
	}

	return decode[capi.Info]("info", resp.Body)
}
