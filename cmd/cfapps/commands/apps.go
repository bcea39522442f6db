package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
	"github.com/spf13/cobra"
)

// AppView is the rendered form of an application in a listing.
type AppView struct {
	GUID      string `json:"guid"       yaml:"guid"`
	Name      string `json:"name"       yaml:"name"`
	State     string `json:"state"      yaml:"state"`
	Instances int    `json:"instances"  yaml:"instances"`
	Memory    int    `json:"memory"     yaml:"memory"`
	SpaceGUID string `json:"space_guid" yaml:"space_guid"`
	Space     string `json:"space"      yaml:"space"`
}

// AppsPage is one rendered page of applications.
type AppsPage struct {
	Page         int       `json:"page"          yaml:"page"`
	TotalPages   int       `json:"total_pages"   yaml:"total_pages"`
	TotalResults int       `json:"total_results" yaml:"total_results"`
	Apps         []AppView `json:"apps"          yaml:"apps"`
}

// NewAppsCommand creates the apps listing command.
func NewAppsCommand() *cobra.Command {
	var (
		page int
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List apps in the targeted organization",
		Long:  "List the applications of the targeted organization, newest first, fifty per page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApps(cmd, page, all)
		},
	}

	cmd.Flags().IntVar(&page, "page", constants.FirstPage, "page number")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")

	return cmd
}

func runApps(cmd *cobra.Command, page int, all bool) error {
	runtime, err := newRuntime(cmd, "")
	if err != nil {
		return err
	}
	defer runtime.Close()

	ctx := context.Background()
	client := runtime.Client
	state := client.Session()

	orgGUID, ok := state.GetOrg()
	if !ok {
		return constants.ErrNoOrganizationTarget
	}

	orgs, err := listAllOrgs(ctx, client)
	if err != nil {
		return err
	}

	if state.IsOrgStale(capi.OrganizationGUIDs(orgs)) {
		state.ClearOrg()
		warnf(cmd, "targeted organization %s no longer exists", orgGUID)

		return constants.ErrNoOrganizationTarget
	}

	result := AppsPage{Page: page}

	var apps []capi.Resource[capi.App]

	if all {
		apps, err = capi.FetchAllPages(ctx, capi.OrgPages(client, orgGUID), capi.DefaultPaginationOptions())
		if err != nil {
			return fmt.Errorf("failed to list apps: %w", err)
		}

		result.Page = constants.FirstPage
		result.TotalPages = constants.FirstPage
		result.TotalResults = len(apps)
	} else {
		var list *capi.ListResponse[capi.App]

		list, err = client.ListApps(ctx, orgGUID, page)
		if err != nil {
			return fmt.Errorf("failed to list apps: %w", err)
		}

		apps = list.Resources
		result.TotalPages = list.TotalPages
		result.TotalResults = list.TotalResults
	}

	spaceNames := lookupSpaceNames(ctx, cmd, client, apps)

	result.Apps = make([]AppView, 0, len(apps))
	for _, app := range apps {
		result.Apps = append(result.Apps, AppView{
			GUID:      app.GUID(),
			Name:      app.Entity.Name,
			State:     app.Entity.State,
			Instances: app.Entity.Instances,
			Memory:    app.Entity.Memory,
			SpaceGUID: app.Entity.SpaceGUID,
			Space:     spaceNames[app.Entity.SpaceGUID],
		})
	}

	return render(cmd, result, func(w io.Writer) error {
		return renderAppsTable(w, result)
	})
}

// lookupSpaceNames maps space GUIDs to names. A failed lookup only costs
// the space column.
func lookupSpaceNames(ctx context.Context, cmd *cobra.Command, client capi.SpacesClient, apps []capi.Resource[capi.App]) map[string]string {
	names := make(map[string]string)
	if len(apps) == 0 {
		return names
	}

	guids := make([]string, 0, len(apps))
	for _, app := range apps {
		guids = append(guids, app.GUID())
	}

	spaces, err := client.ListSpaces(ctx, guids)
	if err != nil {
		warnf(cmd, "could not resolve spaces: %v", err)

		return names
	}

	for _, space := range spaces.Resources {
		names[space.GUID()] = space.Entity.Name
	}

	return names
}

func renderAppsTable(w io.Writer, result AppsPage) error {
	if len(result.Apps) == 0 {
		_, _ = io.WriteString(w, "No apps found\n")

		return nil
	}

	table := newTable(w, "Name", "State", "Instances", "Memory", "Space", "GUID")

	for _, app := range result.Apps {
		space := app.Space
		if space == "" {
			space = constants.NotAvailable
		}

		_ = table.Append(
			app.Name,
			app.State,
			strconv.Itoa(app.Instances),
			fmt.Sprintf("%dM", app.Memory),
			space,
			app.GUID,
		)
	}

	err := renderTable(table)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "Page %d of %d (%d apps)\n", result.Page, result.TotalPages, result.TotalResults)

	return nil
}
