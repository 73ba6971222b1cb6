package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nati-dev/nati-console/internal/agents"
	"github.com/nati-dev/nati-console/internal/api/http/dto"
)

// addAgent writes a heartbeat for a new desktop session of the user.
func addAgent(t *testing.T, env *Env, userID, name string, at time.Time) *agents.State {
	t.Helper()
	state, err := env.Agents.RecordHeartbeat(context.Background(), agents.Heartbeat{
		UserID:      userID,
		SessionID:   uuid.NewString(),
		Name:        name,
		At:          at,
		RunningApps: []agents.RunningApp{{Name: "web", Status: "running", Port: 3000}},
		SystemInfo:  agents.SystemInfo{CPU: 21.5, Memory: 48, Disk: 63, Uptime: 7200},
	})
	require.NoError(t, err)
	return state
}

func refresh(t *testing.T, env *Env, token string) dto.RegistryResponse {
	t.Helper()
	rr := doJSONWithAuth(env.Router, http.MethodPost, "/api/v1/agents/refresh", nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp dto.RegistryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestAgents(t *testing.T, env *Env) {
	owner := signUp(t, env, "agentowner")
	other := signUp(t, env, "agentother")

	now := time.Now()
	studio := addAgent(t, env, owner.ID, "studio", now)
	laptop := addAgent(t, env, owner.ID, "laptop", now.Add(-time.Hour))
	require.NoError(t, env.Agents.MarkOffline(context.Background(), laptop.SessionID))

	t.Run("partition and auto-select", func(t *testing.T) {
		resp := refresh(t, env, owner.Token)

		require.Len(t, resp.Online, 1)
		require.Len(t, resp.Offline, 1)
		assert.Equal(t, studio.ID, resp.Online[0].ID)
		assert.Equal(t, laptop.ID, resp.Offline[0].ID)
		assert.NotEmpty(t, resp.Offline[0].LastSeen)
		assert.Equal(t, studio.ID, resp.SelectedID)
		assert.Equal(t, 21.5, resp.Metrics.CPU)
		assert.Equal(t, int64(7200), resp.Metrics.Uptime)
	})

	t.Run("agents are per user", func(t *testing.T) {
		resp := refresh(t, env, other.Token)
		assert.Empty(t, resp.Online)
		assert.Empty(t, resp.Offline)
		assert.Empty(t, resp.SelectedID)
	})

	t.Run("select offline agent", func(t *testing.T) {
		rr := doJSONWithAuth(env.Router, http.MethodPut, "/api/v1/agents/selected", dto.SelectAgentRequest{AgentID: laptop.ID}, owner.Token)
		require.Equal(t, http.StatusOK, rr.Code)

		resp := refresh(t, env, owner.Token)
		assert.Equal(t, laptop.ID, resp.SelectedID)
	})

	t.Run("select unknown agent", func(t *testing.T) {
		rr := doJSONWithAuth(env.Router, http.MethodPut, "/api/v1/agents/selected", dto.SelectAgentRequest{AgentID: uuid.NewString()}, owner.Token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("build logs", func(t *testing.T) {
		for i, status := range []agents.BuildStatus{agents.BuildFailed, agents.BuildSuccess} {
			_, err := env.Agents.RecordBuildLog(context.Background(), agents.BuildLog{
				AgentID:     studio.ID,
				ProjectName: "web",
				Status:      status,
				StartedAt:   now.Add(time.Duration(i) * time.Minute),
				Duration:    3 * time.Second,
				LogText:     "done",
			})
			require.NoError(t, err)
		}

		rr := doJSONWithAuth(env.Router, http.MethodGet, "/api/v1/agents/"+studio.ID+"/build-logs", nil, owner.Token)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.ListBuildLogsResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Logs, 2)
		assert.Equal(t, "success", resp.Logs[0].Status, "newest first")
		assert.Equal(t, int64(3000), resp.Logs[0].DurationMs)
	})

	t.Run("build logs of another user's agent", func(t *testing.T) {
		rr := doJSONWithAuth(env.Router, http.MethodGet, "/api/v1/agents/"+studio.ID+"/build-logs", nil, other.Token)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rr := doJSON(env.Router, http.MethodGet, "/api/v1/agents", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
