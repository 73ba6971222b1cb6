package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nati-dev/nati-console/internal/agents"
	"github.com/nati-dev/nati-console/internal/api/http/dto"
	"github.com/nati-dev/nati-console/internal/registry"
	"github.com/nati-dev/nati-console/internal/session"
)

const streamKeepalive = 30 * time.Second

type BuildLogSource interface {
	GetByID(ctx context.Context, agentID string) (*agents.State, error)
	ListBuildLogs(ctx context.Context, agentID string, limit int) ([]agents.BuildLog, error)
}

type AgentsHandler struct {
	sessions      *session.Manager
	buildLogs     BuildLogSource
	buildLogLimit int
}

func NewAgentsHandler(sessions *session.Manager, buildLogs BuildLogSource, buildLogLimit int) *AgentsHandler {
	if buildLogLimit <= 0 {
		buildLogLimit = agents.DefaultBuildLogLimit
	}
	return &AgentsHandler{
		sessions:      sessions,
		buildLogs:     buildLogs,
		buildLogLimit: buildLogLimit,
	}
}

// ListAgents returns the session's registry view.
// GET /api/v1/agents
func (h *AgentsHandler) ListAgents(c *gin.Context) {
	s := h.sessions.Get(c.GetString("user_id"))
	c.JSON(http.StatusOK, registryResponse(s))
}

// Refresh reloads the agent list now.
// POST /api/v1/agents/refresh
func (h *AgentsHandler) Refresh(c *gin.Context) {
	userID := c.GetString("user_id")
	s := h.sessions.Get(userID)

	if err := s.Poller.ManualRefresh(c.Request.Context()); err != nil {
		if errors.Is(err, registry.ErrRefreshInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": "refresh already in progress"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to refresh agents"})
		return
	}

	c.JSON(http.StatusOK, registryResponse(s))
}

// Select makes an agent the command target.
// PUT /api/v1/agents/selected
func (h *AgentsHandler) Select(c *gin.Context) {
	var req dto.SelectAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := h.sessions.Get(c.GetString("user_id"))
	if err := s.Poller.Select(req.AgentID); err != nil {
		if errors.Is(err, registry.ErrUnknownAgent) {
			c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to select agent"})
		return
	}

	c.JSON(http.StatusOK, registryResponse(s))
}

// ListBuildLogs returns the newest build logs of one of the user's agents.
// GET /api/v1/agents/:id/build-logs
func (h *AgentsHandler) ListBuildLogs(c *gin.Context) {
	userID := c.GetString("user_id")
	agentID := c.Param("id")

	agent, err := h.buildLogs.GetByID(c.Request.Context(), agentID)
	if err != nil {
		switch {
		case errors.Is(err, agents.ErrInvalidAgentID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid agent id"})
		case errors.Is(err, agents.ErrAgentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
		default:
			slog.Error("Failed to get agent", "error", err, "agent_id", agentID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get agent"})
		}
		return
	}

	if agent.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	limit := h.buildLogLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	logs, err := h.buildLogs.ListBuildLogs(c.Request.Context(), agentID, limit)
	if err != nil {
		slog.Error("Failed to list build logs", "error", err, "agent_id", agentID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list build logs"})
		return
	}

	resp := dto.NewListBuildLogsResponse(logs)
	c.JSON(http.StatusOK, resp)
}

// Stream pushes a registry view after every refresh as server-sent events.
// GET /api/v1/agents/stream
func (h *AgentsHandler) Stream(c *gin.Context) {
	userID := c.GetString("user_id")
	s := h.sessions.Get(userID)
	connID := uuid.New().String()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	updates, unsubscribe := s.Poller.Subscribe()
	defer unsubscribe()

	slog.Debug("Registry stream opened", "user_id", userID, "conn_id", connID)
	defer slog.Debug("Registry stream closed", "user_id", userID, "conn_id", connID)

	writeEvent(c, "connected", gin.H{"id": connID})
	writeEvent(c, "registry", registryResponse(s))

	ticker := time.NewTicker(streamKeepalive)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			h.sessions.Touch(userID)
			resp := dto.NewRegistryResponse(snap, time.Now())
			resp.RefreshInFlight = s.Poller.RefreshInFlight()
			resp.Busy = busyCommands(s)
			writeEvent(c, "registry", resp)

		case <-ticker.C:
			h.sessions.Touch(userID)
			fmt.Fprint(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}

func writeEvent(c *gin.Context, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to encode stream event", "event", event, "error", err)
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data)
	c.Writer.Flush()
}

func registryResponse(s *session.Session) dto.RegistryResponse {
	resp := dto.NewRegistryResponse(s.Poller.Snapshot(), time.Now())
	resp.RefreshInFlight = s.Poller.RefreshInFlight()
	resp.Busy = busyCommands(s)
	return resp
}

func busyCommands(s *session.Session) []dto.BusyCommand {
	keys := s.Dispatcher.Busy()
	busy := make([]dto.BusyCommand, len(keys))
	for i, k := range keys {
		busy[i] = dto.BusyCommand{Type: string(k.Type), Target: k.Target}
	}
	return busy
}
