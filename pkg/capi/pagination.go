package capi

import (
	"context"
)

// PageFunc fetches one page of a list. Pages start at 1.
type PageFunc[T any] func(ctx context.Context, page int) (*ListResponse[T], error)

// PaginationOptions bounds how many pages are collected.
type PaginationOptions struct {
	// MaxPages stops the walk after this many pages. Zero means no limit.
	MaxPages int
}

// DefaultPaginationOptions returns options without a page limit.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{}
}

// FetchAllPages walks pages from the first until a page has no next_url or
// MaxPages is reached, and returns every resource in order.
func FetchAllPages[T any](ctx context.Context, fetch PageFunc[T], options *PaginationOptions) ([]Resource[T], error) {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	var all []Resource[T]

	for page := 1; options.MaxPages == 0 || page <= options.MaxPages; page++ {
		err := ctx.Err()
		if err != nil {
			return nil, err
		}

		response, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}

		all = append(all, response.Resources...)

		if !response.HasNext() {
			break
		}
	}

	return all, nil
}

// OrgPages binds an organization to ListApps so its pages can be walked
// with FetchAllPages.
func OrgPages(client AppsClient, orgGUID string) PageFunc[App] {
	return func(ctx context.Context, page int) (*ListResponse[App], error) {
		return client.ListApps(ctx, orgGUID, page)
	}
}

// OrganizationPages walks ListOrgsPage with FetchAllPages.
func OrganizationPages(client OrganizationsClient) PageFunc[Organization] {
	return client.ListOrgsPage
}

// OrganizationGUIDs returns the GUIDs of orgs, in order.
func OrganizationGUIDs(orgs []Resource[Organization]) []string {
	guids := make([]string, 0, len(orgs))
	for _, org := range orgs {
		guids = append(guids, org.GUID())
	}

	return guids
}
