package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths_HomeOverride(t *testing.T) {
	base := t.TempDir()
	t.Setenv("LEADQUAL_HOME", base)

	p, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, base, p.Base)
	assert.Equal(t, filepath.Join(base, "config.yaml"), p.Config)
	assert.Equal(t, filepath.Join(base, "data"), p.Data)
}

func TestDatabasePath(t *testing.T) {
	p := Paths{Data: "/var/lib/leadqual"}

	cfg := Defaults()
	assert.Equal(t, filepath.Join("/var/lib/leadqual", "leadqual.db"), p.DatabasePath(&cfg))

	cfg.Store.Path = "/tmp/custom.db"
	assert.Equal(t, "/tmp/custom.db", p.DatabasePath(&cfg))
}

func TestEnsureDirs(t *testing.T) {
	base := t.TempDir()
	t.Setenv("LEADQUAL_HOME", filepath.Join(base, "nested"))

	p, err := ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, p.EnsureDirs())
	assert.DirExists(t, p.Data)
	assert.DirExists(t, p.Logs)
}

func TestParseConfigPath(t *testing.T) {
	parts, err := ParseConfigPath("server.tls.enabled")
	require.NoError(t, err)
	assert.Equal(t, []string{"server", "tls", "enabled"}, parts)

	_, err = ParseConfigPath("")
	assert.Error(t, err)

	_, err = ParseConfigPath("server..port")
	assert.Error(t, err)

	_, err = ParseConfigPath("__proto__.polluted")
	assert.Error(t, err)
}

func TestSetGetUnsetValueAtPath(t *testing.T) {
	root := map[string]any{}

	SetValueAtPath(root, []string{"crm", "webhook", "url"}, "https://example.com")
	got, ok := GetValueAtPath(root, []string{"crm", "webhook", "url"})
	require.True(t, ok)
	assert.Equal(t, "https://example.com", got)

	_, ok = GetValueAtPath(root, []string{"crm", "missing"})
	assert.False(t, ok)

	assert.True(t, UnsetValueAtPath(root, []string{"crm", "webhook", "url"}))
	assert.False(t, UnsetValueAtPath(root, []string{"crm", "webhook", "url"}))
}
