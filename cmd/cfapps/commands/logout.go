package commands

import (
	"github.com/fivetwenty-io/cfapps/internal/session"
	"github.com/spf13/cobra"
)

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget stored credentials",
		Long:  "Clear the stored credentials and the targeted organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd)
		},
	}
}

// runLogout resets the session without needing a reachable API.
func runLogout(cmd *cobra.Command) error {
	config := loadConfig()

	credentialVault, err := openVault(config)
	if err != nil {
		return err
	}

	stateStore, closeStore, err := openStateStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	session.New(credentialVault, stateStore, newLogger(cmd.ErrOrStderr(), config)).Reset()

	printf(cmd, "Logged out\n")

	return nil
}
