package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	internalhttp "github.com/fivetwenty-io/cfapps/internal/http"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
)

// ListSpaces implements capi.SpacesClient.ListSpaces.
func (c *Client) ListSpaces(ctx context.Context, appGUIDs []string) (*capi.ListResponse[capi.Space], error) {
	if len(appGUIDs) == 0 {
		return nil, fmt.Errorf("listing spaces: %w", constants.ErrAppGUIDRequired)
	}

	query := url.Values{}
	query.Set("q", "app_guid IN "+strings.Join(appGUIDs, ","))

	return fetch[capi.ListResponse[capi.Space]](ctx, c, "listing spaces", "spaces",
		&internalhttp.Request{Method: http.MethodGet, Path: "/v2/spaces", Query: query})
}
