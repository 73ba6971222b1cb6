package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// agentState is persisted between runs so the desktop session keeps its id.
type agentState struct {
	SessionID string `yaml:"session_id"`
}

func loadOrCreateSessionID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		var st agentState
		if err := yaml.Unmarshal(data, &st); err != nil {
			return "", fmt.Errorf("failed to parse state file %s: %w", path, err)
		}
		if st.SessionID != "" {
			return st.SessionID, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	st := agentState{SessionID: uuid.New().String()}
	out, err := yaml.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("failed to encode agent state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return "", fmt.Errorf("failed to write state file %s: %w", path, err)
	}

	slog.Info("Generated new agent session", "session_id", st.SessionID, "state_file", path)
	return st.SessionID, nil
}
