// Package session holds the process-wide session: the bearer token, the
// selected organization, and the rules that decide whether an authenticated
// call may be attempted.
//
// State is injected into the API client rather than kept in globals. Every
// read and write goes through one RWMutex so a recovery-triggered Reset
// cannot interleave with a concurrent call's emptiness check.
package session

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/fivetwenty-io/cfapps/pkg/capi"
)

const (
	// LoginAuthToken is the HTTP Basic credential of the public "cf" OAuth
	// client (base64 of "cf:"), sent with every login exchange.
	LoginAuthToken = "Y2Y6"

	// OrgKey is the state store key of the selected organization GUID.
	OrgKey = "currentOrg"
)

// State is the session shared by every call of one client.
type State struct {
	mutex  sync.RWMutex
	token  *string
	vault  capi.CredentialVault
	store  capi.StateStore
	logger capi.Logger
}

// New creates an empty session over the given vault and state store.
func New(vault capi.CredentialVault, store capi.StateStore, logger capi.Logger) *State {
	return &State{
		vault:  vault,
		store:  store,
		logger: logger,
	}
}

// IsEmpty reports whether no token is set (or it is empty) and the vault
// holds no credentials. Vaulted credentials alone make the session
// non-empty: they are enough to recover a token.
func (s *State) IsEmpty() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return (s.token == nil || *s.token == "") && !s.vault.Has()
}

// Token returns the bearer token and whether one has been set.
func (s *State) Token() (string, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.token == nil {
		return "", false
	}

	return *s.token, true
}

// SetToken stores the bearer token granted by a login exchange.
func (s *State) SetToken(token string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = &token
}

// GetToken lets the session act as the transport's token provider. An
// unset token yields an empty string: the request goes out without an
// Authorization header and the server answers 401.
func (s *State) GetToken(_ context.Context) (string, error) {
	token, _ := s.Token()

	return token, nil
}

// Credentials returns the vaulted credentials.
func (s *State) Credentials() (capi.Credentials, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.vault.Get()
}

// SaveCredentials stores a credential set in the vault.
func (s *State) SaveCredentials(credentials capi.Credentials) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.vault.Set(credentials)
}

// SetOrg persists the selected organization GUID.
func (s *State) SetOrg(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.store.Put(OrgKey, id)
	if err != nil {
		s.warn("failed to persist organization selection", map[string]interface{}{"org": id, "error": err.Error()})
	}
}

// GetOrg returns the persisted organization GUID, if any.
func (s *State) GetOrg() (string, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.getOrg()
}

func (s *State) getOrg() (string, bool) {
	id, err := s.store.Get(OrgKey)
	if err != nil {
		if !errors.Is(err, capi.ErrStateNotFound) {
			s.warn("failed to read organization selection", map[string]interface{}{"error": err.Error()})
		}

		return "", false
	}

	return id, true
}

// ClearOrg forgets the organization selection and nothing else.
func (s *State) ClearOrg() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.store.Delete(OrgKey)
	if err != nil {
		s.warn("failed to clear organization selection", map[string]interface{}{"error": err.Error()})
	}
}

// IsOrgStale reports whether the selection is missing or no longer among
// validIDs, the organizations the server currently reports.
func (s *State) IsOrgStale(validIDs []string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	id, ok := s.getOrg()
	if !ok {
		return true
	}

	return !slices.Contains(validIDs, id)
}

// Reset clears the token, the organization selection and the vaulted
// credentials under one lock. Afterwards IsEmpty is true and GetOrg reports
// no selection.
func (s *State) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = nil

	err := s.store.Delete(OrgKey)
	if err != nil {
		s.warn("failed to clear organization selection", map[string]interface{}{"error": err.Error()})
	}

	err = s.vault.Clear()
	if err != nil {
		s.warn("failed to clear vaulted credentials", map[string]interface{}{"error": err.Error()})
	}
}

func (s *State) warn(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, fields)
	}
}
