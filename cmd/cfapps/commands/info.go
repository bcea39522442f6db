package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show API information",
		Long:  "Show the unauthenticated /v2/info document of the API endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := newRuntime(cmd, "")
			if err != nil {
				return err
			}
			defer runtime.Close()

			info, err := runtime.Client.Info(context.Background(), "")
			if err != nil {
				return fmt.Errorf("failed to get API info: %w", err)
			}

			return render(cmd, info, func(w io.Writer) error {
				logging := info.DopplerLoggingEndpoint
				if logging == "" {
					logging = constants.NotAvailable
				}

				table := newTable(w, "Property", "Value")
				_ = table.Append("Name", info.Name)
				_ = table.Append("Version", strconv.Itoa(info.Version))
				_ = table.Append("API Version", info.APIVersion)
				_ = table.Append("Authorization", info.AuthorizationEndpoint)
				_ = table.Append("Token", info.TokenURL())
				_ = table.Append("Logging", logging)

				return renderTable(table)
			})
		},
	}
}
