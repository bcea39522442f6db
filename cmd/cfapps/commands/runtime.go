package commands

import (
	"fmt"
	"io"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/fivetwenty-io/cfapps/internal/logging"
	"github.com/fivetwenty-io/cfapps/internal/store"
	"github.com/fivetwenty-io/cfapps/internal/vault"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
	"github.com/fivetwenty-io/cfapps/pkg/cfclient"
	"github.com/spf13/cobra"
)

// Runtime is what one command invocation works with.
type Runtime struct {
	Client  capi.Client
	closers []func()
}

// Close releases the state store connection, if any.
func (r *Runtime) Close() {
	for _, closer := range r.closers {
		closer()
	}
}

// newRuntime builds the runtime of a command. Tests replace it.
var newRuntime = buildRuntime

// buildRuntime wires a client from the configuration: keyring vault, org
// selection store, zerolog logger and a notifier that prints a re-login hint.
func buildRuntime(cmd *cobra.Command, apiEndpoint string) (*Runtime, error) {
	config := loadConfig()

	if apiEndpoint == "" {
		apiEndpoint = config.API
	}

	if apiEndpoint == "" {
		return nil, fmt.Errorf("%w, run 'cfapps login -a <api>' first", constants.ErrAPIEndpointRequired)
	}

	credentialVault, err := openVault(config)
	if err != nil {
		return nil, err
	}

	stateStore, closeStore, err := openStateStore(config)
	if err != nil {
		return nil, err
	}

	runtime := &Runtime{closers: []func(){closeStore}}

	client, err := cfclient.New(&capi.Config{
		APIEndpoint:   apiEndpoint,
		Vault:         credentialVault,
		StateStore:    stateStore,
		Notifier:      newNotifier(cmd.ErrOrStderr()),
		RetryMax:      config.RetryMax,
		Debug:         config.Verbose,
		Logger:        newLogger(cmd.ErrOrStderr(), config),
		SkipTLSVerify: config.SkipSSLValidation,
	})
	if err != nil {
		runtime.Close()

		return nil, err
	}

	runtime.Client = client

	return runtime, nil
}

func newLogger(w io.Writer, config *Config) *logging.Logger {
	level := config.LogLevel
	if config.Verbose {
		level = "debug"
	}

	return logging.NewConsoleLogger(constants.ServiceName, level, w)
}

// newNotifier tells the user to log in again after the session was reset.
func newNotifier(w io.Writer) capi.AuthNotifier {
	return capi.AuthNotifierFunc(func(authError bool) {
		if authError {
			_, _ = fmt.Fprintln(w, "Your session is no longer valid and has been cleared.")
		}

		_, _ = fmt.Fprintln(w, "Run 'cfapps login' to sign in.")
	})
}

// openVault opens the credential vault selected by keyring-backend.
func openVault(config *Config) (capi.CredentialVault, error) {
	if config.KeyringBackend == constants.VaultMemory {
		return vault.NewMemoryVault(), nil
	}

	credentialVault, err := vault.OpenKeyring(vault.KeyringOptions{
		Backend: config.KeyringBackend,
		FileDir: config.KeyringDir,
	})
	if err != nil {
		return nil, err
	}

	return credentialVault, nil
}

// openStateStore opens the org selection store selected by org-store.
func openStateStore(config *Config) (capi.StateStore, func(), error) {
	noop := func() {}

	switch config.OrgStore {
	case "", constants.OrgStoreFile:
		path := config.StateFile
		if path == "" {
			defaultPath, err := store.DefaultFilePath()
			if err != nil {
				return nil, nil, err
			}

			path = defaultPath
		}

		return store.NewFileStore(path), noop, nil
	case constants.OrgStoreNATS:
		natsStore, err := store.NewNATSStore(&store.NATSConfig{
			URL:    config.NATSURL,
			Bucket: config.NATSBucket,
		})
		if err != nil {
			return nil, nil, err
		}

		return natsStore, natsStore.Close, nil
	case constants.OrgStoreMemory:
		return store.NewMemoryStore(), noop, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", constants.ErrUnknownOrgStore, config.OrgStore)
	}
}
