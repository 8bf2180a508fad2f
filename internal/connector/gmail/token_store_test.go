package gmail

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewTokenStore(t.TempDir())
	require.NoError(t, err)

	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, store.Save("alice@example.com", token))

	loaded, err := store.Load("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)
}

func TestTokenStoreLoadMissing(t *testing.T) {
	t.Parallel()

	store, err := NewTokenStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nobody@example.com")
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestTokenStoreDelete(t *testing.T) {
	t.Parallel()

	store, err := NewTokenStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("bob@example.com", &oauth2.Token{AccessToken: "x"}))
	require.NoError(t, store.Delete("bob@example.com"))

	_, err = store.Load("bob@example.com")
	assert.ErrorIs(t, err, ErrNoCredential)

	// Deleting again is not an error.
	assert.NoError(t, store.Delete("bob@example.com"))
}

func TestTokenStoreAccounts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewTokenStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("alice@example.com", &oauth2.Token{AccessToken: "a"}))
	require.NoError(t, store.Save("bob@example.com", &oauth2.Token{AccessToken: "b"}))

	// Files other connectors drop in the shared directory are not accounts.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slack_T1.json"), []byte("{}"), 0o600))

	accounts, err := store.Accounts()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice@example.com", "bob@example.com"}, accounts)
}
