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
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  host: "0.0.0.0"

crm:
  base_url: "https://crm.example.com/api"
  api_key: "test-key"
  client_id: "client-42"
  timeout_seconds: 45

cache:
  ttl_minutes: 15

import:
  max_size_mb: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "https://crm.example.com/api", cfg.CRM.BaseURL)
	assert.Equal(t, "client-42", cfg.CRM.ClientID)
	assert.Equal(t, 45, cfg.CRM.TimeoutSeconds)
	assert.Equal(t, 15, cfg.Cache.TTLMinutes)
	assert.Equal(t, 5, cfg.Import.MaxSizeMB)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
crm:
  base_url: "https://crm.example.com/api"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// The cache TTL and upload limit were hard-coded in the old dashboard;
	// they must stay the defaults when the config omits them.
	assert.Equal(t, 30, cfg.Cache.TTLMinutes)
	assert.Equal(t, 10, cfg.Import.MaxSizeMB)
	assert.Equal(t, int64(10<<20), cfg.Import.MaxSizeBytes())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 60, cfg.CRM.TimeoutSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
crm:
  base_url: "https://crm.example.com/api"
  api_key: "from-file"
`)

	t.Setenv("CRM_API_KEY", "from-env")
	t.Setenv("PORT", "9191")

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.CRM.APIKey)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestLoadFromEnvRequiresBaseURL(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
`)

	_, err := LoadFromEnv(path)
	assert.Error(t, err)
}
