package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and state files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as endpoint discovery.
	ShortHTTPTimeout = 10 * time.Second

	// NATSConnectTimeout bounds the initial connection to a NATS server.
	NATSConnectTimeout = 5 * time.Second
)

// Retry limits.
const (
	// LowRetryMax is the transport retry count used by the CLI.
	LowRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between transport retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between transport retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Pagination.
const (
	// StandardPageSize is the results-per-page requested from list endpoints.
	StandardPageSize = 50

	// FirstPage is the first page number of a v2 list endpoint.
	FirstPage = 1
)

// Storage defaults.
const (
	// ServiceName is the keyring service and config directory name.
	ServiceName = "cfapps"

	// ConfigDirName is the directory under $HOME holding config and UI state.
	ConfigDirName = ".cfapps"

	// StateFileName is the file-backed org selection store.
	StateFileName = "state.yml"

	// DefaultNATSBucket is the JetStream key-value bucket for UI state.
	DefaultNATSBucket = "cfapps_state"
)

// Org selection store backends.
const (
	// OrgStoreFile persists UI state in a YAML file.
	OrgStoreFile = "file"

	// OrgStoreNATS persists UI state in a NATS JetStream key-value bucket.
	OrgStoreNATS = "nats"

	// OrgStoreMemory keeps UI state for the lifetime of the process.
	OrgStoreMemory = "memory"
)

// Credential vault backends besides the keyring ones.
const (
	// VaultMemory keeps credentials for the lifetime of the process.
	VaultMemory = "memory"
)

// UI and display constants.
const (
	// CheckMarkSymbol is used to indicate current/active items.
	CheckMarkSymbol = "✓"

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// None is used when no value is present.
	None = "none"

	// PercentageMultiplier converts CPU ratios to percentages.
	PercentageMultiplier = 100

	// BytesPerMegabyte converts stats byte counts for display.
	BytesPerMegabyte = 1024 * 1024
)

// Format constants.
const (
	// FormatTable for table output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)
