package client_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/snipvault/pkg/client"
)

func TestFileTokenStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := client.NewFileTokenStore(dir)

	// Absent file means anonymous, not an error.
	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("my-token"))

	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "my-token", token)

	// The file uses the fixed name and owner-only permissions.
	info, err := os.Stat(filepath.Join(dir, "snipvault_token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}

func TestFileTokenStore_SurvivesNewInstance(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, client.NewFileTokenStore(dir).Save("persisted"))

	token, err := client.NewFileTokenStore(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)
}
