package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 9090
database:
  host: db.internal
  port: 5432
  user: console
  name: console
jwt:
  secret: from-file
upstream:
  base_url: https://api.travel.example/v1
  timeout: 3s
notifications:
  policy: revert
  retry_attempts: 2
`

func writeConfig(t *testing.T, body string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "revert", cfg.Notifications.Policy)
	assert.Equal(t, 2, cfg.Notifications.RetryAttempts)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CONSOLE_DB_PASSWORD", "s3cret")
	t.Setenv("CONSOLE_JWT_SECRET", "from-env")
	t.Setenv("CONSOLE_PORT", "7070")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "jwt:\n  secret: x\n"))
	assert.ErrorContains(t, err, "upstream.base_url")

	bad := `
jwt:
  secret: x
upstream:
  base_url: http://localhost
notifications:
  policy: retry-forever
`
	_, err = LoadConfig(writeConfig(t, bad))
	assert.ErrorContains(t, err, "notifications.policy")
}
