package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	internalhttp "github.com/fivetwenty-io/cfapps/internal/http"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
)

// ListOrgs implements capi.OrganizationsClient.ListOrgs.
func (c *Client) ListOrgs(ctx context.Context) (*capi.ListResponse[capi.Organization], error) {
	return fetch[capi.ListResponse[capi.Organization]](ctx, c, "listing organizations", "organizations",
		&internalhttp.Request{Method: http.MethodGet, Path: "/v2/organizations"})
}

// ListOrgsPage implements capi.OrganizationsClient.ListOrgsPage. Pages
// start at 1; smaller values ask for the first page.
func (c *Client) ListOrgsPage(ctx context.Context, page int) (*capi.ListResponse[capi.Organization], error) {
	if page < constants.FirstPage {
		page = constants.FirstPage
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("results-per-page", strconv.Itoa(constants.StandardPageSize))

	return fetch[capi.ListResponse[capi.Organization]](ctx, c, "listing organizations", "organizations",
		&internalhttp.Request{Method: http.MethodGet, Path: "/v2/organizations", Query: query})
}
