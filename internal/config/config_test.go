package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8710, cfg.Server.Port)
	assert.Equal(t, "loopback", cfg.Server.Bind)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
llm:
  provider: ollama
  model: llama3
engine:
  agencyName: Acme Digital
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, "Acme Digital", cfg.Engine.AgencyName)
	// Untouched sections keep their defaults.
	assert.Equal(t, "loopback", cfg.Server.Bind)
	assert.Equal(t, 512, cfg.LLM.MaxTokens)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	_, err := Load(path)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoad_ExpandsEnvVarsInSensitiveFields(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "sk-secret")
	path := writeConfig(t, `
llm:
  apiKey: ${TEST_LLM_KEY}
crm:
  webhook:
    url: https://example.com/leads
    secret: ${UNSET_VAR_XYZ}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", cfg.LLM.APIKey)
	// Unset variables are left as-is.
	assert.Equal(t, "${UNSET_VAR_XYZ}", cfg.CRM.Webhook.Secret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LEADQUAL_PORT", "9999")
	t.Setenv("LEADQUAL_LOG_LEVEL", "DEBUG")
	path := writeConfig(t, "server:\n  port: 9000\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRaw_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	raw, err := LoadRaw(path)
	require.NoError(t, err)
	assert.Empty(t, raw)

	SetValueAtPath(raw, []string{"server", "port"}, 9000)
	require.NoError(t, SaveRaw(path, raw))

	raw, err = LoadRaw(path)
	require.NoError(t, err)
	got, ok := GetValueAtPath(raw, []string{"server", "port"})
	require.True(t, ok)
	assert.Equal(t, 9000, got)
}
