package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ShippedFile(t *testing.T) {
	cfg, err := loadConfig(newViper(), ".")
	require.NoError(t, err)

	assert.Equal(t, uint(8080), cfg.Http.Port)
	assert.Equal(t, 10, cfg.Http.BuildLogLimit)
	assert.True(t, cfg.Grpc.Enabled)
	assert.Equal(t, 9090, cfg.Grpc.Port)
	assert.True(t, cfg.Grpc.TLS.AutoGenerate)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.Equal(t, 24, cfg.JWT.ExpirationHours)
	assert.Equal(t, 3*time.Second, cfg.Session.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.Session.SettleDelay)
	assert.Equal(t, 15*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, 500, cfg.Session.TerminalLines)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_URL", "postgres://env@db/nati")
	t.Setenv("SESSION_POLL_INTERVAL", "750ms")

	cfg, err := loadConfig(newViper(), ".")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "postgres://env@db/nati", cfg.DB.Url)
	assert.Equal(t, 750*time.Millisecond, cfg.Session.PollInterval)
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	body := "jwt:\n  secret: s\ndb:\n  url: postgres://localhost/nati\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "application.yml"), []byte(body), 0o600))

	cfg, err := loadConfig(newViper(), dir)
	require.NoError(t, err)
	assert.Equal(t, uint(8080), cfg.Http.Port)
	assert.Equal(t, 24, cfg.JWT.ExpirationHours)
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.False(t, cfg.Grpc.Enabled)
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	dir := t.TempDir()
	body := "db:\n  url: postgres://localhost/nati\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "application.yml"), []byte(body), 0o600))

	_, err := loadConfig(newViper(), dir)
	assert.ErrorContains(t, err, "jwt.secret is required")
}

func TestUsageLocation(t *testing.T) {
	assert.Equal(t, time.Local, UsageConfig{}.Location())
	assert.Equal(t, time.Local, UsageConfig{Timezone: "Mars/Olympus"}.Location())
	assert.Equal(t, time.UTC, UsageConfig{Timezone: "UTC"}.Location())
}
