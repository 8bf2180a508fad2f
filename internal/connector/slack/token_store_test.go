package slack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewTokenStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(Workspace{
		TeamID:      "T123",
		TeamName:    "acme",
		AccessToken: "xoxb-secret",
	}))

	ws, err := store.Load("T123")
	require.NoError(t, err)
	assert.Equal(t, "acme", ws.TeamName)
	assert.Equal(t, "xoxb-secret", ws.AccessToken)
}

func TestWorkspaceStoreDefaultsTeamID(t *testing.T) {
	t.Parallel()

	store, err := NewTokenStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(Workspace{TeamName: "solo", AccessToken: "tok"}))

	ws, err := store.Load("default")
	require.NoError(t, err)
	assert.Equal(t, "solo", ws.TeamName)
}

func TestWorkspaceStoreListOmitsTokens(t *testing.T) {
	t.Parallel()

	store, err := NewTokenStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(Workspace{TeamID: "T1", TeamName: "one", AccessToken: "tok1"}))
	require.NoError(t, store.Save(Workspace{TeamID: "T2", TeamName: "two", AccessToken: "tok2"}))

	workspaces, err := store.List()
	require.NoError(t, err)
	require.Len(t, workspaces, 2)
	for _, ws := range workspaces {
		assert.Empty(t, ws.AccessToken)
	}
}
