package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.toml")
	want := Credentials{APIURL: "https://todo.example.com", Token: "abc", Email: "ada@example.com", ExpiresAt: testNow}

	require.NoError(t, saveCredentials(path, want))

	got, err := loadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, want.APIURL, got.APIURL)
	assert.Equal(t, want.Token, got.Token)
	assert.Equal(t, want.Email, got.Email)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadCredentials_Missing(t *testing.T) {
	creds, err := loadCredentials(filepath.Join(t.TempDir(), "absent.toml"))

	require.NoError(t, err)
	assert.Equal(t, Credentials{}, creds)
}

func TestLoadCredentials_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.toml")
	require.NoError(t, os.WriteFile(path, []byte("token = "), 0o600))

	_, err := loadCredentials(path)

	assert.ErrorContains(t, err, "failed to parse")
}
