package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration keys shared by flags, environment variables (CFAPPS_*) and
// the config file.
const (
	KeyConfig         = "config"
	KeyAPI            = "api"
	KeyOutput         = "output"
	KeyVerbose        = "verbose"
	KeyLogLevel       = "log-level"
	KeyOrgStore       = "org-store"
	KeyStateFile      = "state-file"
	KeyNATSURL        = "nats-url"
	KeyNATSBucket     = "nats-bucket"
	KeyKeyringBackend = "keyring-backend"
	KeyKeyringDir     = "keyring-dir"
	KeyRetryMax       = "retry-max"
	KeySkipSSL        = "skip-ssl-validation"
)

// Config is the persisted CLI configuration.
type Config struct {
	API               string `yaml:"api,omitempty"`
	Output            string `yaml:"output,omitempty"`
	LogLevel          string `yaml:"log-level,omitempty"`
	OrgStore          string `yaml:"org-store,omitempty"`
	StateFile         string `yaml:"state-file,omitempty"`
	NATSURL           string `yaml:"nats-url,omitempty"`
	NATSBucket        string `yaml:"nats-bucket,omitempty"`
	KeyringBackend    string `yaml:"keyring-backend,omitempty"`
	KeyringDir        string `yaml:"keyring-dir,omitempty"`
	RetryMax          int    `yaml:"retry-max,omitempty"`
	SkipSSLValidation bool   `yaml:"skip-ssl-validation,omitempty"`
	Verbose           bool   `yaml:"-"`
}

// loadConfig reads the effective configuration from viper.
func loadConfig() *Config {
	return &Config{
		API:               viper.GetString(KeyAPI),
		Output:            viper.GetString(KeyOutput),
		LogLevel:          viper.GetString(KeyLogLevel),
		OrgStore:          viper.GetString(KeyOrgStore),
		StateFile:         viper.GetString(KeyStateFile),
		NATSURL:           viper.GetString(KeyNATSURL),
		NATSBucket:        viper.GetString(KeyNATSBucket),
		KeyringBackend:    viper.GetString(KeyKeyringBackend),
		KeyringDir:        viper.GetString(KeyKeyringDir),
		RetryMax:          viper.GetInt(KeyRetryMax),
		SkipSSLValidation: viper.GetBool(KeySkipSSL),
		Verbose:           viper.GetBool(KeyVerbose),
	}
}

// ConfigDir returns ~/.cfapps.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName), nil
}

// configFilePath returns the config file in use, or the default location.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "config.yml"), nil
}

// saveConfigStruct writes config to the config file.
func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
