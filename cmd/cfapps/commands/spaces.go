package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// SpaceView is the rendered form of a space.
type SpaceView struct {
	GUID             string `json:"guid"              yaml:"guid"`
	Name             string `json:"name"              yaml:"name"`
	OrganizationGUID string `json:"organization_guid" yaml:"organization_guid"`
}

// NewSpacesCommand creates the spaces lookup command.
func NewSpacesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "spaces APP_GUID...",
		Short: "Show the spaces owning the given apps",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpaces(cmd, args)
		},
	}
}

func runSpaces(cmd *cobra.Command, appGUIDs []string) error {
	runtime, err := newRuntime(cmd, "")
	if err != nil {
		return err
	}
	defer runtime.Close()

	spaces, err := runtime.Client.ListSpaces(context.Background(), appGUIDs)
	if err != nil {
		return fmt.Errorf("failed to list spaces: %w", err)
	}

	views := make([]SpaceView, 0, len(spaces.Resources))
	for _, space := range spaces.Resources {
		views = append(views, SpaceView{
			GUID:             space.GUID(),
			Name:             space.Entity.Name,
			OrganizationGUID: space.Entity.OrganizationGUID,
		})
	}

	return render(cmd, views, func(w io.Writer) error {
		if len(views) == 0 {
			_, _ = io.WriteString(w, "No spaces found\n")

			return nil
		}

		table := newTable(w, "Name", "GUID", "Organization")
		for _, view := range views {
			_ = table.Append(view.Name, view.GUID, view.OrganizationGUID)
		}

		return renderTable(table)
	})
}
