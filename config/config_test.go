package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	t.Setenv(EnvAPIBaseURL, "")
	t.Setenv(EnvSessionDB, "")
	t.Setenv(EnvShareBaseURL, "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/api", cfg.APIBaseURL)
	assert.Equal(t, "cloudshare.db", cfg.SessionDBPath)
	assert.Equal(t, "", cfg.ShareBaseURL)
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	t.Setenv(EnvAPIBaseURL, "https://api.example.com/v1")
	t.Setenv(EnvSessionDB, "/tmp/s.db")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1", cfg.APIBaseURL)
	assert.Equal(t, "/tmp/s.db", cfg.SessionDBPath)
}

func TestLoadConfig_JSONFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"api_base_url": "https://json.example.com/api",
		"share_base_url": "https://share.example.com"
	}`), 0o600))
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvAPIBaseURL, "")
	t.Setenv(EnvSessionDB, "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://json.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, "https://share.example.com", cfg.ShareBaseURL)
	assert.Equal(t, "cloudshare.db", cfg.SessionDBPath, "fields absent from JSON keep their defaults")
}

func TestLoadConfig_EnvWinsOverJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_base_url": "https://json.example.com"}`), 0o600))
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvAPIBaseURL, "https://env.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.APIBaseURL)
}

func TestLoadConfig_MissingJSONFileFails(t *testing.T) {
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "absent.json"))

	_, err := LoadConfig()
	require.Error(t, err)
}
