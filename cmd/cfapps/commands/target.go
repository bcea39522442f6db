package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/spf13/cobra"
)

// NewTargetCommand creates the target command.
func NewTargetCommand() *cobra.Command {
	var org string

	cmd := &cobra.Command{
		Use:   "target",
		Short: "Show or set the targeted organization",
		Long:  "Select the organization whose apps are listed. The organization must exist on the server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTarget(cmd, org)
		},
	}

	cmd.Flags().StringVarP(&org, "org", "o", "", "organization name or GUID")

	return cmd
}

func runTarget(cmd *cobra.Command, org string) error {
	runtime, err := newRuntime(cmd, "")
	if err != nil {
		return err
	}
	defer runtime.Close()

	state := runtime.Client.Session()

	if org == "" {
		current, ok := state.GetOrg()
		if !ok {
			printf(cmd, "No organization targeted\n")

			return nil
		}

		printf(cmd, "Organization: %s\n", current)

		return nil
	}

	orgs, err := listAllOrgs(context.Background(), runtime.Client)
	if err != nil {
		return err
	}

	match, ok := findOrg(orgs, org)
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrOrganizationNotFound, org)
	}

	state.SetOrg(match.GUID())

	printf(cmd, "Targeted organization %s (%s)\n", match.Entity.Name, match.GUID())

	return nil
}
