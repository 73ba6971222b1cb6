package agents

import (
	"time"

	"github.com/dustin/go-humanize"
)

// RunningApp is one sub-application reported by a desktop agent.
type RunningApp struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Port   int    `json:"port,omitempty"`
	URL    string `json:"url,omitempty"`
	PID    int    `json:"pid,omitempty"`
}

// SystemInfo is the host snapshot an agent attaches to its heartbeat.
type SystemInfo struct {
	CPU      float64           `json:"cpu"`
	Memory   float64           `json:"memory"`
	Disk     float64           `json:"disk"`
	Uptime   int64             `json:"uptime"`
	Platform string            `json:"platform,omitempty"`
	Versions map[string]string `json:"versions,omitempty"`
}

// State is the last known state of one remote desktop agent.
type State struct {
	ID            string
	UserID        string
	SessionID     string
	Name          string
	Online        bool
	LastHeartbeat time.Time
	RunningApps   []RunningApp
	SystemInfo    SystemInfo
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Metrics is the dashboard gauge view derived from SystemInfo.
type Metrics struct {
	CPU    float64 `json:"cpu"`
	Memory float64 `json:"memory"`
	Disk   float64 `json:"disk"`
	Uptime int64   `json:"uptime"`
}

func (s State) Metrics() Metrics {
	return Metrics{
		CPU:    s.SystemInfo.CPU,
		Memory: s.SystemInfo.Memory,
		Disk:   s.SystemInfo.Disk,
		Uptime: s.SystemInfo.Uptime,
	}
}

// LastSeen renders the heartbeat relative to now, e.g. "5 minutes ago".
func (s State) LastSeen(now time.Time) string {
	if s.LastHeartbeat.IsZero() {
		return "never"
	}
	return humanize.RelTime(s.LastHeartbeat, now, "ago", "from now")
}

// App returns the running app with the given name.
func (s State) App(name string) (RunningApp, bool) {
	for _, app := range s.RunningApps {
		if app.Name == name {
			return app, true
		}
	}
	return RunningApp{}, false
}

// Partition splits states by their online flag and keeps the input order in both halves.
func Partition(states []State) (online, offline []State) {
	online = make([]State, 0, len(states))
	offline = make([]State, 0, len(states))
	for _, s := range states {
		if s.Online {
			online = append(online, s)
		} else {
			offline = append(offline, s)
		}
	}
	return online, offline
}

type BuildStatus string

const (
	BuildSuccess BuildStatus = "success"
	BuildFailed  BuildStatus = "failed"
	BuildRunning BuildStatus = "running"
)

type BuildLog struct {
	ID          string
	AgentID     string
	ProjectName string
	Status      BuildStatus
	StartedAt   time.Time
	Duration    time.Duration
	LogText     string
}

// Heartbeat is what an agent process writes on every report.
type Heartbeat struct {
	UserID      string
	SessionID   string
	Name        string
	At          time.Time
	RunningApps []RunningApp
	SystemInfo  SystemInfo
}
