package dto

import (
	"time"

	"github.com/nati-dev/nati-console/internal/agents"
	"github.com/nati-dev/nati-console/internal/registry"
)

type AgentResponse struct {
	ID            string              `json:"id"`
	SessionID     string              `json:"session_id"`
	Name          string              `json:"name"`
	Online        bool                `json:"online"`
	LastHeartbeat *time.Time          `json:"last_heartbeat,omitempty"`
	LastSeen      string              `json:"last_seen,omitempty"`
	RunningApps   []agents.RunningApp `json:"running_apps"`
	SystemInfo    agents.SystemInfo   `json:"system_info"`
}

type BusyCommand struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

type RegistryResponse struct {
	Online          []AgentResponse `json:"online"`
	Offline         []AgentResponse `json:"offline"`
	SelectedID      string          `json:"selected_id,omitempty"`
	Metrics         agents.Metrics  `json:"metrics"`
	RefreshedAt     *time.Time      `json:"refreshed_at,omitempty"`
	RefreshInFlight bool            `json:"refresh_in_flight"`
	Busy            []BusyCommand   `json:"busy"`
}

type SelectAgentRequest struct {
	AgentID string `json:"agent_id" binding:"required"`
}

type BuildLogResponse struct {
	ID          string    `json:"id"`
	ProjectName string    `json:"project_name"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	DurationMs  int64     `json:"duration_ms"`
	LogText     string    `json:"log_text"`
}

type ListBuildLogsResponse struct {
	Logs []BuildLogResponse `json:"logs"`
}

func NewAgentResponse(s agents.State, now time.Time) AgentResponse {
	resp := AgentResponse{
		ID:          s.ID,
		SessionID:   s.SessionID,
		Name:        s.Name,
		Online:      s.Online,
		RunningApps: s.RunningApps,
		SystemInfo:  s.SystemInfo,
	}
	if !s.LastHeartbeat.IsZero() {
		t := s.LastHeartbeat
		resp.LastHeartbeat = &t
	}
	if !s.Online {
		resp.LastSeen = s.LastSeen(now)
	}
	if resp.RunningApps == nil {
		resp.RunningApps = []agents.RunningApp{}
	}
	return resp
}

// NewRegistryResponse renders a poller snapshot with its online/offline split.
func NewRegistryResponse(snap registry.Snapshot, now time.Time) RegistryResponse {
	online, offline := agents.Partition(snap.Agents)

	resp := RegistryResponse{
		Online:     make([]AgentResponse, len(online)),
		Offline:    make([]AgentResponse, len(offline)),
		SelectedID: snap.SelectedID,
		Metrics:    snap.Metrics,
		Busy:       []BusyCommand{},
	}
	for i, a := range online {
		resp.Online[i] = NewAgentResponse(a, now)
	}
	for i, a := range offline {
		resp.Offline[i] = NewAgentResponse(a, now)
	}
	if !snap.RefreshedAt.IsZero() {
		t := snap.RefreshedAt
		resp.RefreshedAt = &t
	}
	return resp
}

func NewListBuildLogsResponse(logs []agents.BuildLog) ListBuildLogsResponse {
	resp := ListBuildLogsResponse{Logs: make([]BuildLogResponse, len(logs))}
	for i, l := range logs {
		resp.Logs[i] = BuildLogResponse{
			ID:          l.ID,
			ProjectName: l.ProjectName,
			Status:      string(l.Status),
			StartedAt:   l.StartedAt,
			DurationMs:  l.Duration.Milliseconds(),
			LogText:     l.LogText,
		}
	}
	return resp
}
