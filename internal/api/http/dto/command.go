package dto

import (
	"time"

	"github.com/nati-dev/nati-console/internal/commands"
)

type SendCommandRequest struct {
	Type    string         `json:"type" binding:"required"`
	Target  string         `json:"target"`
	Payload map[string]any `json:"payload"`
}

type CommandResponse struct {
	ID              string         `json:"id"`
	TargetSessionID string         `json:"target_session_id"`
	Type            string         `json:"type"`
	Payload         map[string]any `json:"payload"`
	CreatedAt       time.Time      `json:"created_at"`
}

func NewCommandResponse(cmd *commands.Command) CommandResponse {
	return CommandResponse{
		ID:              cmd.ID,
		TargetSessionID: cmd.TargetSessionID,
		Type:            string(cmd.Type),
		Payload:         cmd.Payload,
		CreatedAt:       cmd.CreatedAt,
	}
}

type TerminalRequest struct {
	Command string `json:"command" binding:"required"`
	Target  string `json:"target"`
}

type TerminalLine struct {
	Kind string    `json:"kind"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

type TerminalResponse struct {
	Lines []TerminalLine `json:"lines"`
}
