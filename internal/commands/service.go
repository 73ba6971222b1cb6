package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/nati-dev/nati-console/internal/agents"
	"github.com/nati-dev/nati-console/internal/db/sqlc"
)

type Service struct {
	queries *sqlc.Queries
}

func NewService(queries *sqlc.Queries) *Service {
	return &Service{queries: queries}
}

// Insert appends a remote command row.
func (s *Service) Insert(ctx context.Context, cmd Command) (*Command, error) {
	parsedUserID, err := uuid.Parse(cmd.UserID)
	if err != nil {
		return nil, agents.ErrInvalidUserID
	}

	payload := cmd.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode command payload: %w", err)
	}

	row, err := s.queries.InsertRemoteCommand(ctx, sqlc.InsertRemoteCommandParams{
		UserID:          pgtype.UUID{Bytes: parsedUserID, Valid: true},
		TargetSessionID: cmd.TargetSessionID,
		CommandType:     string(cmd.Type),
		CommandData:     data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert remote command: %w", err)
	}

	return toCommand(row), nil
}

// ListForSession returns commands addressed to a session created after since, oldest first.
func (s *Service) ListForSession(ctx context.Context, sessionID string, since time.Time) ([]Command, error) {
	rows, err := s.queries.ListRemoteCommandsBySession(ctx, sqlc.ListRemoteCommandsBySessionParams{
		TargetSessionID: sessionID,
		CreatedAt:       pgtype.Timestamptz{Time: since, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list remote commands: %w", err)
	}

	result := make([]Command, len(rows))
	for i, row := range rows {
		result[i] = *toCommand(row)
	}
	return result, nil
}

func toCommand(row sqlc.RemoteCommand) *Command {
	payload := agents.DecodeLenient[map[string]any](row.CommandData).Or(nil)
	if payload == nil {
		payload = map[string]any{}
	}
	return &Command{
		ID:              uuid.UUID(row.ID.Bytes).String(),
		UserID:          uuid.UUID(row.UserID.Bytes).String(),
		TargetSessionID: row.TargetSessionID,
		Type:            Type(row.CommandType),
		Payload:         payload,
		CreatedAt:       row.CreatedAt.Time,
	}
}
