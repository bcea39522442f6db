// Package vault stores the login credentials used for session recovery.
//
// The keyring backend keeps a single JSON item in the OS keychain (or an
// encrypted file where no keychain is available). The memory backend is used
// when no durable storage is wanted, and by tests.
package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
)

const (
	// CredentialsKey is the keyring item holding the credential set.
	CredentialsKey = "cfapps-credentials"
	// KeyringPasswordEnvVarName sets the file keyring passphrase for non-interactive setups.
	KeyringPasswordEnvVarName = "CFAPPS_KEYRING_PASSWORD"
	// DBUSSessionAddressEnvVarName is used to detect Linux headless mode.
	DBUSSessionAddressEnvVarName = "DBUS_SESSION_BUS_ADDRESS"
)

// KeyringProvider defines the keyring operations the vault needs.
type KeyringProvider interface {
	Get(key string) (keyring.Item, error)
	Set(item keyring.Item) error
	Remove(key string) error
}

// KeyringVault implements capi.CredentialVault on top of a keyring.
type KeyringVault struct {
	provider KeyringProvider
	mutex    sync.Mutex
}

// NewKeyringVault wraps an opened keyring.
func NewKeyringVault(provider KeyringProvider) *KeyringVault {
	return &KeyringVault{provider: provider}
}

// KeyringOptions selects and configures the keyring backend.
type KeyringOptions struct {
	// Backend restricts the keyring to one backend ("file", "keychain",
	// "secret-service", "kwallet", "wincred", "pass", "keyctl"). Empty means
	// the first available backend.
	Backend string
	// FileDir is the directory of the encrypted file backend.
	FileDir string
}

// OpenKeyring opens the OS keyring for the cfapps service.
func OpenKeyring(opts KeyringOptions) (*KeyringVault, error) {
	fileDir := opts.FileDir
	if fileDir == "" {
		fileDir = defaultFileDir()
	}

	cfg := keyring.Config{
		ServiceName: constants.ServiceName,
		// macOS Keychain settings
		KeychainTrustApplication:       true,
		KeychainSynchronizable:         false,
		KeychainAccessibleWhenUnlocked: true,
		// File-based fallback (for environments without GUI keyring)
		FileDir:          fileDir,
		FilePasswordFunc: func(_ string) (string, error) { return filePassword(), nil },
	}

	switch {
	case opts.Backend != "":
		backend, err := parseBackend(opts.Backend)
		if err != nil {
			return nil, err
		}

		cfg.AllowedBackends = []keyring.BackendType{backend}
	case runtime.GOOS == "linux" && strings.TrimSpace(os.Getenv(DBUSSessionAddressEnvVarName)) == "":
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}

	return NewKeyringVault(ring), nil
}

func parseBackend(name string) (keyring.BackendType, error) {
	backend := keyring.BackendType(strings.ToLower(strings.TrimSpace(name)))

	switch backend {
	case keyring.FileBackend, keyring.KeychainBackend, keyring.SecretServiceBackend,
		keyring.KWalletBackend, keyring.WinCredBackend, keyring.PassBackend, keyring.KeyCtlBackend:
		return backend, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrUnknownKeyringBackend, name)
	}
}

func defaultFileDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(configDir) == "" {
		configDir = os.Getenv("HOME")
	}

	return filepath.Join(configDir, constants.ServiceName, "keyring")
}

func filePassword() string {
	if password := strings.TrimSpace(os.Getenv(KeyringPasswordEnvVarName)); password != "" {
		return password
	}

	return constants.ServiceName
}

// Get implements capi.CredentialVault. The credential set is stored as one
// item, so it is either present as a whole or absent; unreadable items are
// reported as absent.
func (v *KeyringVault) Get() (capi.Credentials, bool) {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	item, err := v.provider.Get(CredentialsKey)
	if err != nil {
		return capi.Credentials{}, false
	}

	var credentials capi.Credentials

	err = json.Unmarshal(item.Data, &credentials)
	if err != nil {
		return capi.Credentials{}, false
	}

	return credentials, true
}

// Set implements capi.CredentialVault.
func (v *KeyringVault) Set(credentials capi.Credentials) error {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	data, err := json.Marshal(credentials)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	err = v.provider.Set(keyring.Item{
		Key:         CredentialsKey,
		Data:        data,
		Label:       constants.ServiceName + " credentials",
		Description: "Cloud Foundry login for " + credentials.APIURL,
	})
	if err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}

	return nil
}

// Clear implements capi.CredentialVault. Clearing an empty vault is not an error.
func (v *KeyringVault) Clear() error {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	err := v.provider.Remove(CredentialsKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove credentials from keyring: %w", err)
	}

	return nil
}

// Has implements capi.CredentialVault.
func (v *KeyringVault) Has() bool {
	_, ok := v.Get()

	return ok
}

// MemoryVault keeps credentials in process memory.
type MemoryVault struct {
	mutex       sync.RWMutex
	credentials *capi.Credentials
}

// NewMemoryVault creates an empty vault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{}
}

// Get implements capi.CredentialVault.
func (v *MemoryVault) Get() (capi.Credentials, bool) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	if v.credentials == nil {
		return capi.Credentials{}, false
	}

	return *v.credentials, true
}

// Set implements capi.CredentialVault.
func (v *MemoryVault) Set(credentials capi.Credentials) error {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	v.credentials = &credentials

	return nil
}

// Clear implements capi.CredentialVault.
func (v *MemoryVault) Clear() error {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	v.credentials = nil

	return nil
}

// Has implements capi.CredentialVault.
func (v *MemoryVault) Has() bool {
	_, ok := v.Get()

	return ok
}
