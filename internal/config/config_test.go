package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
storage_path: "postgres://localhost/test"
auth:
  jwt_secret: "secret"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "Asia/Jakarta", cfg.Timezone)
	assert.Equal(t, "id", cfg.Locale)
	assert.Equal(t, "localhost:8080", cfg.Address)
	assert.Equal(t, 4*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 10*time.Second, cfg.Redis.LockTTL)
	assert.Empty(t, cfg.Redis.Address)
	assert.Equal(t, "tutor-portal", cfg.Auth.JWTIssuer)
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
storage_path: "postgres://localhost/test"
timezone: "UTC"
auth:
  jwt_secret: "secret"
`)
	t.Setenv("APP_TIMEZONE", "Europe/Paris")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Paris", cfg.Timezone)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("missing storage path", func(t *testing.T) {
		path := writeConfig(t, `
auth:
  jwt_secret: "secret"
`)
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("bad timezone", func(t *testing.T) {
		path := writeConfig(t, `
storage_path: "postgres://localhost/test"
timezone: "Mars/Olympus"
auth:
  jwt_secret: "secret"
`)
		_, err := Load(path)
		require.Error(t, err)
	})
}
