package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
	"github.com/spf13/cobra"
)

// OrgView is the rendered form of an organization.
type OrgView struct {
	GUID    string `json:"guid"    yaml:"guid"`
	Name    string `json:"name"    yaml:"name"`
	Status  string `json:"status"  yaml:"status"`
	Current bool   `json:"current" yaml:"current"`
}

// NewOrgsCommand creates the organizations command.
func NewOrgsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "orgs",
		Aliases: []string{"organizations"},
		Short:   "List organizations",
		Long:    "List the organizations visible to the logged in user and mark the targeted one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrgs(cmd)
		},
	}
}

func runOrgs(cmd *cobra.Command) error {
	runtime, err := newRuntime(cmd, "")
	if err != nil {
		return err
	}
	defer runtime.Close()

	orgs, err := listAllOrgs(context.Background(), runtime.Client)
	if err != nil {
		return err
	}

	state := runtime.Client.Session()
	current, targeted := state.GetOrg()

	if targeted && state.IsOrgStale(capi.OrganizationGUIDs(orgs)) {
		warnf(cmd, "targeted organization %s no longer exists, run 'cfapps target -o <org>'", current)
	}

	views := make([]OrgView, 0, len(orgs))
	for _, org := range orgs {
		views = append(views, OrgView{
			GUID:    org.GUID(),
			Name:    org.Entity.Name,
			Status:  org.Entity.Status,
			Current: targeted && org.GUID() == current,
		})
	}

	return render(cmd, views, func(w io.Writer) error {
		return renderOrgTable(w, views)
	})
}

func renderOrgTable(w io.Writer, views []OrgView) error {
	if len(views) == 0 {
		_, _ = io.WriteString(w, "No organizations found\n")

		return nil
	}

	table := newTable(w, "", "Name", "GUID", "Status")

	for _, view := range views {
		marker := ""
		if view.Current {
			marker = constants.CheckMarkSymbol
		}

		status := view.Status
		if status == "" {
			status = constants.NotAvailable
		}

		_ = table.Append(marker, view.Name, view.GUID, status)
	}

	return renderTable(table)
}

// listAllOrgs walks every page of organizations. Staleness and target
// lookups need the complete list.
func listAllOrgs(ctx context.Context, client capi.OrganizationsClient) ([]capi.Resource[capi.Organization], error) {
	orgs, err := capi.FetchAllPages(ctx, capi.OrganizationPages(client), capi.DefaultPaginationOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	return orgs, nil
}

// findOrg matches an organization by GUID, then by case-insensitive name.
func findOrg(orgs []capi.Resource[capi.Organization], value string) (capi.Resource[capi.Organization], bool) {
	for _, org := range orgs {
		if org.GUID() == value {
			return org, true
		}
	}

	for _, org := range orgs {
		if strings.EqualFold(org.Entity.Name, value) {
			return org, true
		}
	}

	return capi.Resource[capi.Organization]{}, false
}
