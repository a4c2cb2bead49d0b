package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BINGO_CONFIG", "PORT", "LOG_LEVEL", "BINGO_STORAGE", "BINGO_DB_PATH",
		"CLIENT_ORIGIN", "REQUEST_TIMEOUT_SECONDS", "PRODUCTION", "NODE_ENV",
		"OPERATOR_PASSWORD_HASH", "JWT_SECRET", "JWT_EXPIRES_DAYS", "COOKIE_NAME",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5175, cfg.Port)
	assert.Equal(t, "sqlite", cfg.Storage)
	assert.Equal(t, "./data/bingo.db", cfg.DBPath)
	assert.False(t, cfg.AuthEnabled())
	assert.False(t, cfg.Production)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("BINGO_STORAGE", "MEMORY")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("OPERATOR_PASSWORD_HASH", "$2a$10$abc")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "memory", cfg.Storage)
	assert.True(t, cfg.Production)
	assert.True(t, cfg.AuthEnabled())
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bingo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7000\nstorage: memory\ncookie_name: from_file\n"), 0o644))
	t.Setenv("BINGO_CONFIG", path)
	t.Setenv("COOKIE_NAME", "from_env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, "from_env", cfg.CookieName)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"unknown storage", map[string]string{"BINGO_STORAGE": "redis"}},
		{"zero timeout", map[string]string{"REQUEST_TIMEOUT_SECONDS": "0"}},
		{"default secret in production", map[string]string{
			"NODE_ENV": "production", "OPERATOR_PASSWORD_HASH": "$2a$10$abc",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("BINGO_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}
