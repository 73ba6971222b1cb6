package agents

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nati-dev/nati-console/internal/db/sqlc"
)

func TestPartitionKeepsOrder(t *testing.T) {
	states := []State{
		{ID: "a", Online: false},
		{ID: "b", Online: true},
		{ID: "c", Online: false},
		{ID: "d", Online: true},
	}

	online, offline := Partition(states)

	require.Len(t, online, 2)
	require.Len(t, offline, 2)
	assert.Equal(t, "b", online[0].ID)
	assert.Equal(t, "d", online[1].ID)
	assert.Equal(t, "a", offline[0].ID)
	assert.Equal(t, "c", offline[1].ID)
}

func TestPartitionEmpty(t *testing.T) {
	online, offline := Partition(nil)
	assert.Empty(t, online)
	assert.Empty(t, offline)
}

func TestLastSeen(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "never", State{}.LastSeen(now))
	assert.Equal(t, "5 minutes ago", State{LastHeartbeat: now.Add(-5 * time.Minute)}.LastSeen(now))
	assert.Equal(t, "3 hours ago", State{LastHeartbeat: now.Add(-3 * time.Hour)}.LastSeen(now))
}

func TestMetricsDefaultsToZero(t *testing.T) {
	assert.Equal(t, Metrics{}, State{}.Metrics())

	s := State{SystemInfo: SystemInfo{CPU: 10, Memory: 20, Disk: 30, Uptime: 40}}
	assert.Equal(t, Metrics{CPU: 10, Memory: 20, Disk: 30, Uptime: 40}, s.Metrics())
}

func TestApp(t *testing.T) {
	s := State{RunningApps: []RunningApp{{Name: "api", Status: "running"}}}

	app, ok := s.App("api")
	assert.True(t, ok)
	assert.Equal(t, "running", app.Status)

	_, ok = s.App("missing")
	assert.False(t, ok)
}

func TestToStateFallsBackOnMalformedColumns(t *testing.T) {
	row := sqlc.AgentState{
		ID:            pgtype.UUID{Bytes: [16]byte{1}, Valid: true},
		UserID:        pgtype.UUID{Bytes: [16]byte{2}, Valid: true},
		SessionID:     "sess-1",
		Name:          "MacBook",
		IsOnline:      true,
		LastHeartbeat: pgtype.Timestamptz{Time: time.Unix(1700000000, 0), Valid: true},
		RunningApps:   []byte(`{"oops":`),
		SystemInfo:    []byte(`"{\"cpu\":55.5,\"memory\":12}"`),
	}

	s := toState(row)

	assert.Equal(t, "sess-1", s.SessionID)
	assert.True(t, s.Online)
	assert.NotNil(t, s.RunningApps)
	assert.Empty(t, s.RunningApps)
	assert.Equal(t, 55.5, s.SystemInfo.CPU)
	assert.Equal(t, float64(12), s.SystemInfo.Memory)
	assert.Equal(t, time.Unix(1700000000, 0), s.LastHeartbeat)
}

func TestToStateNullHeartbeat(t *testing.T) {
	s := toState(sqlc.AgentState{SessionID: "sess-2"})
	assert.True(t, s.LastHeartbeat.IsZero())
	assert.Equal(t, SystemInfo{}, s.SystemInfo)
	assert.Equal(t, []RunningApp{}, s.RunningApps)
}
