package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/fivetwenty-io/cfapps/pkg/cfclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Cloud Foundry",
		Long: `Authenticate with a Cloud Foundry API endpoint.

The token endpoint is discovered from the API's /v2/info. On success the
credentials are kept in the system keyring so an expired token can be
renewed without asking again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, username, password)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")

	return cmd
}

func runLogin(cmd *cobra.Command, username, password string) error {
	prompt := newPrompter(cmd)

	apiEndpoint := viper.GetString(KeyAPI)
	if apiEndpoint == "" {
		answer, err := prompt.ask("API endpoint: ")
		if err != nil {
			return err
		}

		apiEndpoint = answer
	}

	if apiEndpoint == "" {
		return constants.ErrAPIEndpointRequired
	}

	apiEndpoint = cfclient.NormalizeEndpoint(apiEndpoint)

	if username == "" {
		answer, err := prompt.ask("Username: ")
		if err != nil {
			return err
		}

		username = answer
	}

	if username == "" {
		return constants.ErrUsernameRequired
	}

	if password == "" {
		answer, err := prompt.askSecret("Password: ")
		if err != nil {
			return err
		}

		password = answer
	}

	runtime, err := newRuntime(cmd, apiEndpoint)
	if err != nil {
		return err
	}
	defer runtime.Close()

	err = runtime.Client.Login(context.Background(), username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	config := loadConfig()
	config.API = apiEndpoint

	err = saveConfigStruct(config)
	if err != nil {
		warnf(cmd, "could not save API endpoint: %v", err)
	}

	printf(cmd, "Logged in to %s as %s\n", apiEndpoint, username)

	return nil
}
