// Package cfclient provides the main entry point for creating Cloud Foundry API clients
package cfclient

import (
	"fmt"
	"os"
	"strings"

	"github.com/fivetwenty-io/cfapps/internal/client"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
)

// DevModeEnv must be "true" or "1" for SkipTLSVerify to be honored.
const DevModeEnv = "CFAPPS_DEV_MODE"

// New creates a new Cloud Foundry API client.
func New(config *capi.Config) (capi.Client, error) {
	if config == nil {
		return nil, capi.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, capi.ErrAPIEndpointRequired
	}

	if config.SkipTLSVerify && !isDevelopmentEnvironment() {
		return nil, fmt.Errorf("%w (set %s=true)", capi.ErrSkipTLSOnlyInDev, DevModeEnv)
	}

	normalized := *config
	normalized.APIEndpoint = NormalizeEndpoint(config.APIEndpoint)

	c, err := client.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithEndpoint creates a client with in-memory session storage.
func NewWithEndpoint(endpoint string) (capi.Client, error) {
	return New(&capi.Config{
		APIEndpoint: endpoint,
	})
}

// NormalizeEndpoint trims a trailing slash and defaults the scheme to https.
func NormalizeEndpoint(endpoint string) string {
	apiEndpoint := strings.TrimSuffix(strings.TrimSpace(endpoint), "/")
	if !strings.HasPrefix(apiEndpoint, "http://") && !strings.HasPrefix(apiEndpoint, "https://") {
		apiEndpoint = "https://" + apiEndpoint
	}

	return apiEndpoint
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv(DevModeEnv)

	return devMode == "true" || devMode == "1"
}
