package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nati-dev/nati-console/internal/api/http/dto"
	"github.com/nati-dev/nati-console/internal/usage"
)

func TestUsage(t *testing.T, env *Env) {
	owner := signUp(t, env, "usageowner")
	ctx := context.Background()
	hourAgo := time.Now().Add(-time.Hour)
	ms := int32(1500)

	events := []usage.RecordParams{
		{UserID: owner.ID, Model: "GPT-4o", PromptTokens: 60, CompletionTokens: 40, TotalTokens: 100, Cost: "0.01", ResponseTimeMs: &ms, Project: "site", CreatedAt: hourAgo},
		{UserID: owner.ID, Model: "claude-3-haiku", TotalTokens: 50, Cost: "0.002", CreatedAt: hourAgo},
		{UserID: owner.ID, Model: "gpt-4o", TotalTokens: 999, Status: "failed", CreatedAt: hourAgo},
		{UserID: owner.ID, Model: "gpt-4o", TotalTokens: 20, CreatedAt: time.Now().AddDate(0, 0, -2)},
	}
	for _, e := range events {
		_, err := env.Usage.Record(ctx, e)
		require.NoError(t, err)
	}

	t.Run("last 24h", func(t *testing.T) {
		rr := doJSONWithAuth(env.Router, http.MethodGet, "/api/v1/usage?preset=24h", nil, owner.Token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var resp dto.UsageResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, resp.Stale)
		assert.Equal(t, "24h", resp.Preset)
		assert.Equal(t, int64(150), resp.TotalTokens)
		assert.Equal(t, 2, resp.TotalRequests)
		assert.InDelta(t, 0.012, resp.TotalCost, 1e-9)
		assert.InDelta(t, 0.75, resp.AvgResponseTime, 1e-9)
		assert.Equal(t, 100, resp.Trends.Tokens, "nothing in the previous 24h")

		require.Len(t, resp.Models, 2)
		assert.Equal(t, "gpt-4o", resp.Models[0].Model)
		assert.Equal(t, usage.ProviderOpenAI, resp.Models[0].Provider)
		assert.Equal(t, usage.ProviderAnthropic, resp.Models[1].Provider)

		require.Len(t, resp.TopProjects, 1)
		assert.Equal(t, "site", resp.TopProjects[0].Name)
	})

	t.Run("7 days", func(t *testing.T) {
		rr := doJSONWithAuth(env.Router, http.MethodGet, "/api/v1/usage?preset=7d", nil, owner.Token)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.UsageResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, int64(170), resp.TotalTokens)
		assert.Equal(t, 3, resp.TotalRequests)
		assert.NotEmpty(t, resp.Daily)
	})

	t.Run("invalid range", func(t *testing.T) {
		rr := doJSONWithAuth(env.Router, http.MethodGet, "/api/v1/usage?start=2024-03-05&end=2024-03-01", nil, owner.Token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("other users see nothing", func(t *testing.T) {
		other := signUp(t, env, "usageother")
		rr := doJSONWithAuth(env.Router, http.MethodGet, "/api/v1/usage?preset=30d", nil, other.Token)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.UsageResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Zero(t, resp.TotalTokens)
		assert.Empty(t, resp.Models)
	})
}
