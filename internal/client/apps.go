package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	internalhttp "github.com/fivetwenty-io/cfapps/internal/http"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
)

// ListApps implements capi.AppsClient.ListApps. Pages start at 1; smaller
// values ask for the first page.
func (c *Client) ListApps(ctx context.Context, orgGUID string, page int) (*capi.ListResponse[capi.App], error) {
	if orgGUID == "" {
		return nil, fmt.Errorf("listing apps: %w", constants.ErrNoOrganizationTarget)
	}

	if page < constants.FirstPage {
		page = constants.FirstPage
	}

	query := url.Values{}
	query.Set("q", "organization_guid:"+orgGUID)
	query.Set("page", strconv.Itoa(page))
	query.Set("results-per-page", strconv.Itoa(constants.StandardPageSize))
	query.Set("order-direction", "desc")

	return fetch[capi.ListResponse[capi.App]](ctx, c, "listing apps", "apps",
		&internalhttp.Request{Method: http.MethodGet, Path: "/v2/apps", Query: query})
}

// AppSummary implements capi.AppsClient.AppSummary.
func (c *Client) AppSummary(ctx context.Context, appGUID string) (*capi.AppSummary, error) {
	if appGUID == "" {
		return nil, fmt.Errorf("getting app summary: %w", constants.ErrAppGUIDRequired)
	}

	path := fmt.Sprintf("/v2/apps/%s/summary", url.PathEscape(appGUID))

	return fetch[capi.AppSummary](ctx, c, "getting app summary", "app summary",
		&internalhttp.Request{Method: http.MethodGet, Path: path})
}

// AppStats implements capi.AppsClient.AppStats.
func (c *Client) AppStats(ctx context.Context, appGUID string) (capi.AppStats, error) {
	if appGUID == "" {
		return nil, fmt.Errorf("getting app stats: %w", constants.ErrAppGUIDRequired)
	}

	path := fmt.Sprintf("/v2/apps/%s/stats", url.PathEscape(appGUID))

	stats, err := fetch[capi.AppStats](ctx, c, "getting app stats", "app stats",
		&internalhttp.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return nil, err
	}

	return *stats, nil
}
