package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfig(t, `
database:
  type: sqlite
  dsn: "file::memory:"
gemini:
  api_keys:
    - test-key
port: 9090
debug: true
`)

	cfg, _, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"test-key"}, cfg.Gemini.APIKeys)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  type: sqlite
  dsn: "file::memory:"
gemini:
  api_keys:
    - test-key
`)

	cfg, warning, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.Gemini.Model)
	assert.Equal(t, 14_000_000, cfg.Extraction.MaxPayloadBytes)
	assert.Equal(t, 2*time.Minute, cfg.Extraction.Timeout)
	assert.NotEmpty(t, warning)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  type: sqlite
  dsn: "file::memory:"
gemini:
  api_keys:
    - file-key
port: 9090
`)

	t.Setenv("DOCGATE_PORT", "7070")
	t.Setenv("DOCGATE_DATABASE_TYPE", "postgres")
	t.Setenv("DOCGATE_DATABASE_DSN", "host=localhost")
	t.Setenv("DOCGATE_GEMINI_API_KEY", "env-key")

	cfg, _, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "host=localhost", cfg.Database.DSN)
	assert.Contains(t, cfg.Gemini.APIKeys, "env-key")
}

func TestLoadConfig_MissingDatabase(t *testing.T) {
	path := writeConfig(t, `
gemini:
  api_keys:
    - test-key
`)

	_, _, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MissingGeminiKeys(t *testing.T) {
	path := writeConfig(t, `
database:
  type: sqlite
  dsn: "file::memory:"
`)

	_, _, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("DOCGATE_DATABASE_TYPE", "sqlite")
	t.Setenv("DOCGATE_DATABASE_DSN", "file::memory:")
	t.Setenv("DOCGATE_GEMINI_API_KEY", "env-key")

	cfg, _, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Type)
}

func TestLoadConfig_ParsesRequestTimeout(t *testing.T) {
	path := writeConfig(t, `
database:
  type: sqlite
  dsn: "file::memory:"
gemini:
  api_keys:
    - test-key
extraction:
  request_timeout: 90s
`)

	cfg, _, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Extraction.Timeout)
}

func TestLoadConfig_InvalidRequestTimeout(t *testing.T) {
	path := writeConfig(t, `
database:
  type: sqlite
  dsn: "file::memory:"
gemini:
  api_keys:
    - test-key
extraction:
  request_timeout: soon
`)

	_, _, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_UnparseableFile(t *testing.T) {
	path := writeConfig(t, "{{not yaml")
	_, _, err := LoadConfig(path)
	assert.Error(t, err)
}
