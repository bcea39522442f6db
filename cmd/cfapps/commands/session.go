package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fivetwenty-io/cfapps/internal/auth"
	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/spf13/cobra"
)

// SessionView is the rendered session state.
type SessionView struct {
	API          string     `json:"api"                     yaml:"api"`
	Empty        bool       `json:"empty"                   yaml:"empty"`
	Organization string     `json:"organization,omitempty"  yaml:"organization,omitempty"`
	User         string     `json:"user,omitempty"          yaml:"user,omitempty"`
	TokenExpires *time.Time `json:"token_expires,omitempty" yaml:"token_expires,omitempty"`
}

// NewSessionCommand creates the session status command.
func NewSessionCommand() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show the current session",
		Long: `Show whether credentials are stored and which organization is targeted.

With --verify an authenticated call is made, renewing the token from the
stored credentials when it has expired.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, verify)
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "verify the session against the API")

	return cmd
}

func runSession(cmd *cobra.Command, verify bool) error {
	runtime, err := newRuntime(cmd, "")
	if err != nil {
		return err
	}
	defer runtime.Close()

	if verify {
		_, err = runtime.Client.ListOrgs(context.Background())
		if err != nil {
			return fmt.Errorf("session verification failed: %w", err)
		}
	}

	state := runtime.Client.Session()

	view := SessionView{
		API:   loadConfig().API,
		Empty: state.IsEmpty(),
	}

	if org, ok := state.GetOrg(); ok {
		view.Organization = org
	}

	if token, ok := state.Token(); ok {
		claims, parseErr := auth.ParseTokenClaims(token)
		if parseErr != nil {
			warnf(cmd, "could not read token: %v", parseErr)
		} else {
			view.User = claims.UserName
			if !claims.ExpiresAt.IsZero() {
				expires := claims.ExpiresAt
				view.TokenExpires = &expires
			}
		}
	}

	return render(cmd, view, func(w io.Writer) error {
		return renderSession(w, view)
	})
}

func renderSession(w io.Writer, view SessionView) error {
	organization := view.Organization
	if organization == "" {
		organization = constants.None
	}

	table := newTable(w, "Property", "Value")
	_ = table.Append("API", view.API)
	_ = table.Append("Logged In", yesNo(!view.Empty))
	_ = table.Append("Organization", organization)

	if view.User != "" {
		_ = table.Append("User", view.User)
	}

	if view.TokenExpires != nil {
		_ = table.Append("Token Expires", view.TokenExpires.Format(time.RFC3339))
	}

	return renderTable(table)
}
