package main

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
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "application.yml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfig_StateFileSession(t *testing.T) {
	dir := writeConfig(t, `
heartbeat:
  user_id: 0b7c8f0e-1d2a-4c55-9d0e-5b1a2f3c4d5e
  apps:
    - name: web
      port: 3000
      build_command: npm run build
`)
	stateFile := filepath.Join(dir, "state", "agent.yml")
	t.Setenv("AGENT_STATE_FILE", stateFile)

	cfg, err := loadConfig(newViper(), dir)
	require.NoError(t, err)

	assert.Equal(t, uint(8181), cfg.Http.Port)
	assert.Equal(t, 10*time.Second, cfg.Heartbeat.Interval)
	assert.True(t, cfg.Agent.PollCommands)
	require.Len(t, cfg.Heartbeat.Apps, 1)
	assert.Equal(t, "npm run build", cfg.Heartbeat.Apps[0].BuildCommand)
	assert.NotEmpty(t, cfg.Heartbeat.SessionID)
	assert.FileExists(t, stateFile)

	again, err := loadConfig(newViper(), dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.Heartbeat.SessionID, again.Heartbeat.SessionID)
}

func TestLoadConfig_ExplicitSession(t *testing.T) {
	dir := writeConfig(t, `
heartbeat:
  session_id: desk-1
  interval: 3s
agent:
  state_file: /nonexistent/never-written.yml
  poll_commands: false
`)
	t.Setenv("NATI_USER_ID", "0b7c8f0e-1d2a-4c55-9d0e-5b1a2f3c4d5e")

	cfg, err := loadConfig(newViper(), dir)
	require.NoError(t, err)
	assert.Equal(t, "0b7c8f0e-1d2a-4c55-9d0e-5b1a2f3c4d5e", cfg.Heartbeat.UserID)
	assert.Equal(t, "desk-1", cfg.Heartbeat.SessionID)
	assert.Equal(t, 3*time.Second, cfg.Heartbeat.Interval)
	assert.False(t, cfg.Agent.PollCommands)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := loadConfig(newViper(), t.TempDir())
	assert.ErrorContains(t, err, "read config")

	dir := writeConfig(t, "http:\n  port: 9000\n")
	_, err = loadConfig(newViper(), dir)
	assert.ErrorContains(t, err, "heartbeat.user_id is required")
}
