package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/cfapps/cmd/cfapps/commands"
	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cfapps",
	Short: "Browse Cloud Foundry apps",
	Long: `A command-line browser for the applications of a Cloud Foundry organization.

Log in once; the credentials are kept in the system keyring and an expired
token is renewed transparently.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringP(commands.KeyConfig, "c", "", "config file (default is $HOME/.cfapps/config.yml)")
	flags.StringP(commands.KeyAPI, "a", "", "API endpoint URL")
	flags.String(commands.KeyOutput, constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP(commands.KeyVerbose, "v", false, "verbose output")
	flags.String(commands.KeyLogLevel, "warn", "log level (debug, info, warn, error)")
	flags.String(commands.KeyOrgStore, constants.OrgStoreFile, "where the targeted org is kept (file, nats, memory)")
	flags.String(commands.KeyStateFile, "", "state file for the file org store")
	flags.String(commands.KeyNATSURL, "", "NATS server URL for the nats org store")
	flags.String(commands.KeyNATSBucket, constants.DefaultNATSBucket, "NATS key-value bucket")
	flags.String(commands.KeyKeyringBackend, "", "keyring backend (keychain, secret-service, wincred, file, memory)")
	flags.String(commands.KeyKeyringDir, "", "directory for the file keyring backend")
	flags.Int(commands.KeyRetryMax, constants.LowRetryMax, "retries for server errors")
	flags.Bool(commands.KeySkipSSL, false, "skip SSL certificate validation")

	for _, key := range []string{
		commands.KeyConfig,
		commands.KeyAPI,
		commands.KeyOutput,
		commands.KeyVerbose,
		commands.KeyLogLevel,
		commands.KeyOrgStore,
		commands.KeyStateFile,
		commands.KeyNATSURL,
		commands.KeyNATSBucket,
		commands.KeyKeyringBackend,
		commands.KeyKeyringDir,
		commands.KeyRetryMax,
		commands.KeySkipSSL,
	} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}

	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewLogoutCommand())
	rootCmd.AddCommand(commands.NewInfoCommand())
	rootCmd.AddCommand(commands.NewSessionCommand())
	rootCmd.AddCommand(commands.NewOrgsCommand())
	rootCmd.AddCommand(commands.NewTargetCommand())
	rootCmd.AddCommand(commands.NewAppsCommand())
	rootCmd.AddCommand(commands.NewAppCommand())
	rootCmd.AddCommand(commands.NewSpacesCommand())
}

func initConfig() {
	cfgFile := viper.GetString(commands.KeyConfig)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := commands.ConfigDir()
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error creating config directory: %v\n", err)
		}

		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// CFAPPS_ORG_STORE and friends.
	viper.SetEnvPrefix("CFAPPS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err == nil && viper.GetBool(commands.KeyVerbose) {
		_, _ = fmt.Fprintln(os.Stderr, "Using config file:", filepath.Clean(viper.ConfigFileUsed()))
	}
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
