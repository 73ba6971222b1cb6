package session

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nati-dev/nati-console/internal/commands"
	"github.com/nati-dev/nati-console/internal/registry"
	"github.com/nati-dev/nati-console/internal/usage"
)

const (
	DefaultIdleTimeout     = 15 * time.Minute
	defaultCleanupInterval = 30 * time.Second
)

type Config struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	SettleDelay     time.Duration `mapstructure:"settle_delay"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	TerminalLines   int           `mapstructure:"terminal_lines"`
}

// Session is the dashboard state of one signed-in user.
type Session struct {
	UserID     string
	Poller     *registry.Poller
	Dispatcher *commands.Dispatcher
	Terminal   *commands.Terminal

	lastSeen time.Time

	usageMu     sync.Mutex
	usageCache  map[string]usage.Summary
	customUsage string
}

const customUsagePrefix = "custom:"

// CustomUsageKey is the cache key for an explicit start/end range. Only the
// most recent custom range is kept per session.
func CustomUsageKey(start, end string) string {
	return customUsagePrefix + start + ":" + end
}

// CachedUsage returns the last good summary stored under key.
func (s *Session) CachedUsage(key string) (usage.Summary, bool) {
	s.usageMu.Lock()
	defer s.usageMu.Unlock()
	sum, ok := s.usageCache[key]
	return sum, ok
}

func (s *Session) StoreUsage(key string, sum usage.Summary) {
	s.usageMu.Lock()
	defer s.usageMu.Unlock()
	if strings.HasPrefix(key, customUsagePrefix) {
		if s.customUsage != "" && s.customUsage != key {
			delete(s.usageCache, s.customUsage)
		}
		s.customUsage = key
	}
	s.usageCache[key] = sum
}

func (s *Session) close() {
	s.Poller.Stop()
	s.Dispatcher.Close()
}

// Manager owns the per-user sessions. Sessions are created on first use and
// torn down after IdleTimeout without access.
type Manager struct {
	lister registry.Lister
	writer commands.Writer
	cfg    Config

	sessions map[string]*Session
	mu       sync.Mutex
	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

func NewManager(lister registry.Lister, writer commands.Writer, cfg Config) *Manager {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaultCleanupInterval
	}
	m := &Manager{
		lister:   lister,
		writer:   writer,
		cfg:      cfg,
		sessions: make(map[string]*Session),
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
	go m.cleanupIdleSessions()
	return m
}

// Get returns the user's session, starting its poller if it is new.
func (m *Manager) Get(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		s.lastSeen = m.now()
		return s
	}

	poller := registry.NewPoller(userID, m.lister, m.cfg.PollInterval)
	dispatcher := commands.NewDispatcher(userID, m.writer, poller, m.cfg.SettleDelay)
	s := &Session{
		UserID:     userID,
		Poller:     poller,
		Dispatcher: dispatcher,
		Terminal:   commands.NewTerminal(dispatcher, m.cfg.TerminalLines),
		lastSeen:   m.now(),
		usageCache: make(map[string]usage.Summary),
	}
	m.sessions[userID] = s
	poller.Start()

	slog.Info("Dashboard session started",
		"user_id", userID,
		"total_sessions", len(m.sessions))
	return s
}

// Lookup returns an existing session without creating or touching it.
func (m *Manager) Lookup(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

func (m *Manager) Touch(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		s.lastSeen = m.now()
	}
}

func (m *Manager) Remove(userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	if ok {
		s.close()
		slog.Info("Dashboard session closed", "user_id", userID, "total_sessions", remaining)
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)

		m.mu.Lock()
		sessions := m.sessions
		m.sessions = make(map[string]*Session)
		m.mu.Unlock()

		for _, s := range sessions {
			s.close()
		}
	})
}

func (m *Manager) cleanupIdleSessions() {
	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.removeIdleSessions()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Manager) removeIdleSessions() {
	m.mu.Lock()
	now := m.now()
	var idle []*Session
	for userID, s := range m.sessions {
		if now.Sub(s.lastSeen) > m.cfg.IdleTimeout {
			slog.Warn("Removing idle dashboard session",
				"user_id", userID,
				"last_seen", s.lastSeen)
			idle = append(idle, s)
			delete(m.sessions, userID)
		}
	}
	m.mu.Unlock()

	// Poller.Stop waits for an in-progress refresh, so close outside the lock.
	for _, s := range idle {
		s.close()
	}
}
