package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/nati-dev/nati-console/internal/db/sqlc"
)

const DefaultBuildLogLimit = 10

var (
	ErrAgentNotFound  = errors.New("agent not found")
	ErrInvalidAgentID = errors.New("invalid agent ID")
	ErrInvalidUserID  = errors.New("invalid user ID")
)

type Service struct {
	queries *sqlc.Queries
}

func NewService(queries *sqlc.Queries) *Service {
	return &Service{
		queries: queries,
	}
}

// ListByUser returns the user's agents, most recent heartbeat first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]State, error) {
	parsedUserID, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	rows, err := s.queries.ListAgentStatesByUser(ctx, pgtype.UUID{Bytes: parsedUserID, Valid: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list agent states: %w", err)
	}

	result := make([]State, len(rows))
	for i, row := range rows {
		result[i] = toState(row)
	}
	return result, nil
}

// GetByID retrieves a single agent state.
func (s *Service) GetByID(ctx context.Context, agentID string) (*State, error) {
	parsedID, err := uuid.Parse(agentID)
	if err != nil {
		return nil, ErrInvalidAgentID
	}

	row, err := s.queries.GetAgentState(ctx, pgtype.UUID{Bytes: parsedID, Valid: true})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to get agent state: %w", err)
	}

	state := toState(row)
	return &state, nil
}

// ListBuildLogs returns the newest build logs of an agent.
func (s *Service) ListBuildLogs(ctx context.Context, agentID string, limit int) ([]BuildLog, error) {
	parsedID, err := uuid.Parse(agentID)
	if err != nil {
		return nil, ErrInvalidAgentID
	}
	if limit <= 0 {
		limit = DefaultBuildLogLimit
	}

	rows, err := s.queries.ListBuildLogsByAgent(ctx, sqlc.ListBuildLogsByAgentParams{
		AgentID: pgtype.UUID{Bytes: parsedID, Valid: true},
		Limit:   int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list build logs: %w", err)
	}

	result := make([]BuildLog, len(rows))
	for i, l := range rows {
		result[i] = BuildLog{
			ID:          uuid.UUID(l.ID.Bytes).String(),
			AgentID:     uuid.UUID(l.AgentID.Bytes).String(),
			ProjectName: l.ProjectName,
			Status:      BuildStatus(l.Status),
			StartedAt:   l.StartedAt.Time,
			LogText:     l.LogText,
		}
		if l.DurationMs.Valid {
			result[i].Duration = time.Duration(l.DurationMs.Int32) * time.Millisecond
		}
	}
	return result, nil
}

// RecordBuildLog stores one build outcome for an agent.
func (s *Service) RecordBuildLog(ctx context.Context, log BuildLog) (*BuildLog, error) {
	parsedID, err := uuid.Parse(log.AgentID)
	if err != nil {
		return nil, ErrInvalidAgentID
	}
	if log.StartedAt.IsZero() {
		log.StartedAt = time.Now()
	}

	params := sqlc.InsertBuildLogParams{
		AgentID:     pgtype.UUID{Bytes: parsedID, Valid: true},
		ProjectName: log.ProjectName,
		Status:      sqlc.BuildStatus(log.Status),
		StartedAt:   pgtype.Timestamptz{Time: log.StartedAt, Valid: true},
		LogText:     log.LogText,
	}
	if log.Status != BuildRunning {
		params.DurationMs = pgtype.Int4{Int32: int32(log.Duration.Milliseconds()), Valid: true}
	}

	row, err := s.queries.InsertBuildLog(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to record build log: %w", err)
	}
	log.ID = uuid.UUID(row.ID.Bytes).String()
	return &log, nil
}

// RecordHeartbeat upserts the agent row keyed by session id and marks it online.
func (s *Service) RecordHeartbeat(ctx context.Context, hb Heartbeat) (*State, error) {
	parsedUserID, err := uuid.Parse(hb.UserID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	apps := hb.RunningApps
	if apps == nil {
		apps = []RunningApp{}
	}
	appsJSON, err := json.Marshal(apps)
	if err != nil {
		return nil, fmt.Errorf("failed to encode running apps: %w", err)
	}
	infoJSON, err := json.Marshal(hb.SystemInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to encode system info: %w", err)
	}

	at := hb.At
	if at.IsZero() {
		at = time.Now()
	}

	row, err := s.queries.UpsertAgentHeartbeat(ctx, sqlc.UpsertAgentHeartbeatParams{
		UserID:        pgtype.UUID{Bytes: parsedUserID, Valid: true},
		SessionID:     hb.SessionID,
		Name:          hb.Name,
		LastHeartbeat: pgtype.Timestamptz{Time: at, Valid: true},
		RunningApps:   appsJSON,
		SystemInfo:    infoJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record heartbeat: %w", err)
	}

	state := toState(row)
	return &state, nil
}

// MarkOffline clears the online flag of the agent with the given session id.
func (s *Service) MarkOffline(ctx context.Context, sessionID string) error {
	if err := s.queries.MarkAgentOffline(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to mark agent offline: %w", err)
	}
	slog.Info("Agent marked offline", "session_id", sessionID)
	return nil
}

func toState(row sqlc.AgentState) State {
	id := uuid.UUID(row.ID.Bytes).String()

	apps := DecodeLenient[[]RunningApp](row.RunningApps)
	if !apps.OK {
		slog.Warn("Malformed running_apps, using empty list", "agent_id", id, "error", apps.Err)
	}
	info := DecodeLenient[SystemInfo](row.SystemInfo)
	if !info.OK {
		slog.Warn("Malformed system_info, using empty snapshot", "agent_id", id, "error", info.Err)
	}

	runningApps := apps.Or(nil)
	if runningApps == nil {
		runningApps = []RunningApp{}
	}

	state := State{
		ID:          id,
		UserID:      uuid.UUID(row.UserID.Bytes).String(),
		SessionID:   row.SessionID,
		Name:        row.Name,
		Online:      row.IsOnline,
		RunningApps: runningApps,
		SystemInfo:  info.Or(SystemInfo{}),
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
	if row.LastHeartbeat.Valid {
		state.LastHeartbeat = row.LastHeartbeat.Time
	}
	return state
}
