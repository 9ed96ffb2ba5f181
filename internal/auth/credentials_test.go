package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestAccount(t *testing.T) {
	assert.Equal(t, "service@localhost:4200", Account("http://localhost:4200/", "service"))
	assert.Equal(t, "admin@192.168.230.169", Account("http://192.168.230.169/#/login", "admin"))
}

func TestStore_Keyring(t *testing.T) {
	keyring.MockInit()
	s := &Store{dir: t.TempDir()}

	_, err := s.Get("service@host")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("service@host", "pw1"))
	require.NoError(t, s.Set("admin@host", "pw2"))
	require.NoError(t, s.Set("service@host", "pw3"))

	pw, err := s.Get("service@host")
	require.NoError(t, err)
	assert.Equal(t, "pw3", pw)

	accounts, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"admin@host", "service@host"}, accounts)

	require.NoError(t, s.Delete("admin@host"))
	require.NoError(t, s.Delete("admin@host"))
	accounts, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"service@host"}, accounts)
}

func TestStore_File(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "creds")
	s := NewFileStore(dir)

	_, err := s.Get("service@host")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("service@host", "secret"))
	info, err := os.Stat(filepath.Join(dir, fallbackFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	pw, err := NewFileStore(dir).Get("service@host")
	require.NoError(t, err)
	assert.Equal(t, "secret", pw)

	require.NoError(t, s.Delete("service@host"))
	_, err = s.Get("service@host")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolvePassword(t *testing.T) {
	s := NewFileStore(t.TempDir())
	require.NoError(t, s.Set("service@host", "stored"))

	assert.Equal(t, "flag", ResolvePassword(s, "service@host", "flag", true, "service"))
	assert.Equal(t, "stored", ResolvePassword(s, "service@host", "service", false, "service"))
	assert.Equal(t, "service", ResolvePassword(s, "other@host", "service", false, "service"))
	assert.Equal(t, "service", ResolvePassword(nil, "service@host", "", false, "service"))
}
