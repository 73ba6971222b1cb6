package heartbeat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nati-dev/nati-console/internal/agents"
	"github.com/nati-dev/nati-console/internal/commands"
)

const (
	DefaultInterval = 10 * time.Second
	reportTimeout   = 10 * time.Second
)

type Config struct {
	UserID    string        `mapstructure:"user_id"`
	SessionID string        `mapstructure:"session_id"`
	Name      string        `mapstructure:"name"`
	Interval  time.Duration `mapstructure:"interval"`
	Apps      []AppConfig   `mapstructure:"apps"`
	Tools     []string      `mapstructure:"tools"`
}

type Store interface {
	RecordHeartbeat(ctx context.Context, hb agents.Heartbeat) (*agents.State, error)
	RecordBuildLog(ctx context.Context, log agents.BuildLog) (*agents.BuildLog, error)
	MarkOffline(ctx context.Context, sessionID string) error
}

type CommandFeed interface {
	ListForSession(ctx context.Context, sessionID string, since time.Time) ([]commands.Command, error)
}

// Reporter keeps an agent_states row fresh for one desktop session and logs
// the remote commands addressed to it. Build commands for apps with a
// build_command are run locally and their outcome stored as a build log.
type Reporter struct {
	cfg   Config
	store Store
	feed  CommandFeed

	collect  func(ctx context.Context) agents.SystemInfo
	probe    func(ctx context.Context, app AppConfig) agents.RunningApp
	build    func(ctx context.Context, app AppConfig) agents.BuildLog
	versions map[string]string
	now      func() time.Time

	mu      sync.Mutex
	agentID string
	since   time.Time
	handled int
	builds  sync.WaitGroup

	ctx       context.Context
	cancel    context.CancelFunc
	doneCh    chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewReporter builds a reporter. feed may be nil to skip command polling.
func NewReporter(cfg Config, store Store, feed CommandFeed) (*Reporter, error) {
	if cfg.UserID == "" || cfg.SessionID == "" {
		return nil, errors.New("heartbeat requires user_id and session_id")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Name == "" {
		cfg.Name = cfg.SessionID
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Reporter{
		cfg:     cfg,
		store:   store,
		feed:    feed,
		collect: CollectSystemInfo,
		probe:   ProbeApp,
		build:   RunBuild,
		now:     time.Now,
		since:   time.Now(),
		ctx:     ctx,
		cancel:  cancel,
		doneCh:  make(chan struct{}),
	}, nil
}

func (r *Reporter) Start() {
	r.startOnce.Do(func() {
		r.versions = ToolVersions(r.ctx, r.cfg.Tools)
		go r.loop()
	})
}

func (r *Reporter) loop() {
	defer close(r.doneCh)

	r.tick()

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.tick()
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *Reporter) tick() {
	ctx, cancel := context.WithTimeout(r.ctx, reportTimeout)
	defer cancel()

	if err := r.ReportOnce(ctx); err != nil {
		slog.Error("Failed to report heartbeat", "session_id", r.cfg.SessionID, "error", err)
	}
	if err := r.PollCommands(ctx); err != nil {
		slog.Warn("Failed to poll remote commands", "session_id", r.cfg.SessionID, "error", err)
	}
}

// ReportOnce writes one heartbeat.
func (r *Reporter) ReportOnce(ctx context.Context) error {
	info := r.collect(ctx)
	if len(r.versions) > 0 {
		info.Versions = r.versions
	}

	apps := make([]agents.RunningApp, 0, len(r.cfg.Apps))
	for _, app := range r.cfg.Apps {
		apps = append(apps, r.probe(ctx, app))
	}

	state, err := r.store.RecordHeartbeat(ctx, agents.Heartbeat{
		UserID:      r.cfg.UserID,
		SessionID:   r.cfg.SessionID,
		Name:        r.cfg.Name,
		At:          r.now(),
		RunningApps: apps,
		SystemInfo:  info,
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.agentID = state.ID
	r.mu.Unlock()

	slog.Debug("Heartbeat recorded",
		"agent_id", state.ID,
		"session_id", r.cfg.SessionID,
		"cpu", info.CPU,
		"apps", len(apps))
	return nil
}

// PollCommands logs commands that arrived since the last poll. Execution is
// left to the desktop app; nothing is acknowledged.
func (r *Reporter) PollCommands(ctx context.Context) error {
	if r.feed == nil {
		return nil
	}

	r.mu.Lock()
	since := r.since
	r.mu.Unlock()

	cmds, err := r.feed.ListForSession(ctx, r.cfg.SessionID, since)
	if err != nil {
		return err
	}

	r.mu.Lock()
	agentID := r.agentID
	var builds []AppConfig
	for _, cmd := range cmds {
		slog.Info("Remote command received",
			"command_id", cmd.ID,
			"session_id", cmd.TargetSessionID,
			"type", cmd.Type,
			"payload", cmd.Payload)
		if cmd.CreatedAt.After(r.since) {
			r.since = cmd.CreatedAt
		}
		r.handled++

		if cmd.Type == commands.TypeBuild {
			if app, ok := buildTarget(r.cfg.Apps, cmd.Payload); ok {
				builds = append(builds, app)
			}
		}
	}
	r.mu.Unlock()

	for _, app := range builds {
		if agentID == "" {
			slog.Warn("Skipping build before first heartbeat", "app", app.Name)
			continue
		}
		r.builds.Add(1)
		go r.runBuild(agentID, app)
	}
	return nil
}

func (r *Reporter) runBuild(agentID string, app AppConfig) {
	defer r.builds.Done()

	slog.Info("Build started", "app", app.Name)
	log := r.build(r.ctx, app)
	log.AgentID = agentID

	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()
	if _, err := r.store.RecordBuildLog(ctx, log); err != nil {
		slog.Error("Failed to record build log", "app", app.Name, "error", err)
		return
	}
	slog.Info("Build finished", "app", app.Name, "status", log.Status, "duration", log.Duration)
}

// Received is the number of commands seen so far.
func (r *Reporter) Received() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handled
}

// Stop ends the loop and marks the session offline.
func (r *Reporter) Stop(ctx context.Context) error {
	var err error
	r.stopOnce.Do(func() {
		r.cancel()
		started := true
		r.startOnce.Do(func() { started = false })
		if started {
			select {
			case <-r.doneCh:
			case <-ctx.Done():
			}
		}

		buildsDone := make(chan struct{})
		go func() {
			r.builds.Wait()
			close(buildsDone)
		}()
		select {
		case <-buildsDone:
		case <-ctx.Done():
		}

		// The store logs the transition.
		err = r.store.MarkOffline(ctx, r.cfg.SessionID)
	})
	return err
}
