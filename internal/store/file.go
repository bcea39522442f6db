package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
	"gopkg.in/yaml.v3"
)

// FileStore persists state as a flat YAML map. Every write rewrites the file.
type FileStore struct {
	path  string
	mutex sync.Mutex
}

// NewFileStore creates a store backed by path. The file and its directory
// are created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath returns $HOME/.cfapps/state.yml.
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.StateFileName), nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get implements capi.StateStore.
func (s *FileStore) Get(key string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}

	value, ok := values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", capi.ErrStateNotFound, key)
	}

	return value, nil
}

// Put implements capi.StateStore.
func (s *FileStore) Put(key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}

	values[key] = value

	return s.save(values)
}

// Delete implements capi.StateStore.
func (s *FileStore) Delete(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := values[key]; !ok {
		return nil
	}

	delete(values, key)

	return s.save(values)
}

func (s *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)

	// s.path is chosen by the process owner, not by remote input
	// #nosec G304
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	err = yaml.Unmarshal(data, &values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if values == nil {
		values = make(map[string]string)
	}

	return values, nil
}

func (s *FileStore) save(values map[string]string) error {
	err := os.MkdirAll(filepath.Dir(s.path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal state to YAML: %w", err)
	}

	err = os.WriteFile(s.path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}
