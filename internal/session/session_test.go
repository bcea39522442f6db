package session_test

import (
	"sync"
	"testing"

	"github.com/fivetwenty-io/cfapps/internal/session"
	"github.com/fivetwenty-io/cfapps/internal/store"
	"github.com/fivetwenty-io/cfapps/internal/vault"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState() (*session.State, *vault.MemoryVault, *store.MemoryStore) {
	v := vault.NewMemoryVault()
	s := store.NewMemoryStore()

	return session.New(v, s, nil), v, s
}

func TestConstants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Y2Y6", session.LoginAuthToken)
	assert.Equal(t, "currentOrg", session.OrgKey)
}

func TestState_IsEmpty(t *testing.T) {
	t.Parallel()

	state, v, _ := newState()
	assert.True(t, state.IsEmpty())

	state.SetToken("")
	assert.True(t, state.IsEmpty(), "an empty token does not make the session non-empty")

	require.NoError(t, v.Set(capi.Credentials{}))
	assert.False(t, state.IsEmpty(), "vaulted credentials alone make the session non-empty")

	require.NoError(t, v.Clear())
	state.SetToken("bearer-token")
	assert.False(t, state.IsEmpty())
}

func TestState_Reset(t *testing.T) {
	t.Parallel()

	state, v, _ := newState()
	state.SetToken("")
	state.SetOrg("guid")
	require.NoError(t, v.Set(capi.Credentials{
		APIURL:   "https://api.example.com",
		AuthURL:  "https://login.example.com/oauth/token",
		Username: "admin",
		Password: "secret",
	}))

	state.Reset()

	_, ok := state.GetOrg()
	assert.False(t, ok)

	_, ok = state.Token()
	assert.False(t, ok)
	assert.False(t, v.Has())
	assert.True(t, state.IsEmpty())
}

func TestState_SetOrg(t *testing.T) {
	t.Parallel()

	state, _, backing := newState()
	state.SetOrg("guid")

	guid, err := backing.Get(session.OrgKey)
	require.NoError(t, err)
	assert.Equal(t, "guid", guid)
}

func TestState_GetOrg(t *testing.T) {
	t.Parallel()

	t.Run("never set", func(t *testing.T) {
		t.Parallel()

		state, _, _ := newState()
		_, ok := state.GetOrg()
		assert.False(t, ok)
	})

	t.Run("returns the last value", func(t *testing.T) {
		t.Parallel()

		state, _, _ := newState()
		state.SetOrg("first")
		state.SetOrg("guid")

		guid, ok := state.GetOrg()
		require.True(t, ok)
		assert.Equal(t, "guid", guid)

		guid, ok = state.GetOrg()
		require.True(t, ok)
		assert.Equal(t, "guid", guid)
	})
}

func TestState_ClearOrg(t *testing.T) {
	t.Parallel()

	state, v, _ := newState()
	state.SetToken("bearer-token")
	state.SetOrg("guid")
	require.NoError(t, v.Set(capi.Credentials{Username: "admin"}))

	state.ClearOrg()

	_, ok := state.GetOrg()
	assert.False(t, ok)
	assert.True(t, state.IsOrgStale([]string{"guid"}))
	assert.True(t, v.Has(), "credentials survive")

	token, _ := state.Token()
	assert.Equal(t, "bearer-token", token)
}

func TestState_IsOrgStale(t *testing.T) {
	t.Parallel()

	state, _, _ := newState()
	assert.True(t, state.IsOrgStale([]string{}))
	assert.True(t, state.IsOrgStale([]string{"guid"}), "no selection is stale")

	state.SetOrg("guid")
	assert.True(t, state.IsOrgStale([]string{}))
	assert.True(t, state.IsOrgStale(nil))
	assert.True(t, state.IsOrgStale([]string{"other"}))
	assert.False(t, state.IsOrgStale([]string{"guid"}))
	assert.False(t, state.IsOrgStale([]string{"other", "guid"}))
}

func TestState_ConcurrentResetAndReads(t *testing.T) {
	t.Parallel()

	state, v, _ := newState()
	require.NoError(t, v.Set(capi.Credentials{Username: "admin"}))
	state.SetToken("bearer-token")

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()

			_ = state.IsEmpty()
			_, _ = state.GetOrg()
		}()

		go func() {
			defer wg.Done()

			state.SetOrg("guid")
			state.SetToken("bearer-token")
		}()
	}

	wg.Wait()
	state.Reset()

	assert.True(t, state.IsEmpty())
}
