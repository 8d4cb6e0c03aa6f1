package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9091
database:
  host: db.internal
  user: app
  password: pw
storage:
  backend: fs
  base_dir: /tmp/artifacts
providers:
  default: openai
  openai:
    api_key: sk-test
report:
  min_observations: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9091, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "/tmp/artifacts", cfg.Storage.BaseDir)
	assert.Equal(t, "openai", cfg.Providers.Default)
	assert.Equal(t, "sk-test", cfg.Providers.OpenAI.APIKey)
	assert.Equal(t, 2, cfg.Report.MinObservations)

	// Unset fields come back defaulted.
	assert.Equal(t, DefaultDBPort, cfg.Database.Port)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidConfig(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  backend: tape
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9091
`)
	t.Setenv("MEDMUSE_SERVER_PORT", "9099")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9099, cfg.Server.Port)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MEDMUSE_DATABASE_HOST", "env-db")
	t.Setenv("MEDMUSE_LOG_LEVEL", "debug")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env-db", cfg.Database.Host)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}
