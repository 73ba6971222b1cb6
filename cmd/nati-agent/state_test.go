package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateSessionID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "agent.yml")

	first, err := loadOrCreateSessionID(path)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := loadOrCreateSessionID(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadOrCreateSessionID_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yml")
	require.NoError(t, os.WriteFile(path, []byte("session_id: [unterminated"), 0o600))

	_, err := loadOrCreateSessionID(path)
	assert.Error(t, err)
}
