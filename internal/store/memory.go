// Package store provides StateStore backends for UI state such as the
// selected organization: a YAML file, a NATS JetStream key-value bucket, and
// process memory.
package store

import (
	"fmt"
	"sync"

	"github.com/fivetwenty-io/cfapps/pkg/capi"
)

// MemoryStore keeps state for the lifetime of the process.
type MemoryStore struct {
	mutex  sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements capi.StateStore.
func (s *MemoryStore) Get(key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", capi.ErrStateNotFound, key)
	}

	return value, nil
}

// Put implements capi.StateStore.
func (s *MemoryStore) Put(key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.values[key] = value

	return nil
}

// Delete implements capi.StateStore. Deleting a missing key is not an error.
func (s *MemoryStore) Delete(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.values, key)

	return nil
}
