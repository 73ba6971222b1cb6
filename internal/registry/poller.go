// Package registry keeps a polled, near-real-time view of a user's desktop agents.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nati-dev/nati-console/internal/agents"
)

const (
	DefaultInterval     = 3 * time.Second
	defaultFetchTimeout = 10 * time.Second
	subscriberBuffer    = 8
)

var (
	ErrRefreshInFlight = errors.New("refresh already in progress")
	ErrUnknownAgent    = errors.New("agent is not in the current registry")
)

// Lister fetches agent states for a user, most recent heartbeat first.
type Lister interface {
	ListByUser(ctx context.Context, userID string) ([]agents.State, error)
}

// Snapshot is an immutable copy of the registry view.
type Snapshot struct {
	Agents      []agents.State
	SelectedID  string
	Metrics     agents.Metrics
	RefreshedAt time.Time
}

// Selected returns the selected agent if it is part of the snapshot.
func (s Snapshot) Selected() (agents.State, bool) {
	if s.SelectedID == "" {
		return agents.State{}, false
	}
	for _, a := range s.Agents {
		if a.ID == s.SelectedID {
			return a, true
		}
	}
	return agents.State{}, false
}

type Poller struct {
	userID   string
	lister   Lister
	interval time.Duration

	mu          sync.RWMutex
	agents      []agents.State
	selectedID  string
	metrics     agents.Metrics
	refreshedAt time.Time

	subMu       sync.Mutex
	subscribers map[int]chan Snapshot
	nextSubID   int

	manualInFlight atomic.Bool

	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	stopOnce  sync.Once
	doneCh    chan struct{}
}

func NewPoller(userID string, lister Lister, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		userID:      userID,
		lister:      lister,
		interval:    interval,
		subscribers: make(map[int]chan Snapshot),
		ctx:         ctx,
		cancel:      cancel,
		doneCh:      make(chan struct{}),
	}
}

// Start performs an initial refresh and then refreshes on every tick until Stop.
func (p *Poller) Start() {
	p.startOnce.Do(func() {
		go p.loop()
	})
}

// Stop clears the polling timer and waits for the loop to exit.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		started := true
		p.startOnce.Do(func() { started = false })
		if started {
			<-p.doneCh
		}

		p.subMu.Lock()
		for id, ch := range p.subscribers {
			close(ch)
			delete(p.subscribers, id)
		}
		p.subMu.Unlock()

		slog.Debug("Registry poller stopped", "user_id", p.userID)
	})
}

func (p *Poller) loop() {
	defer close(p.doneCh)

	p.periodicRefresh()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.periodicRefresh()
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Poller) periodicRefresh() {
	ctx, cancel := context.WithTimeout(p.ctx, defaultFetchTimeout)
	defer cancel()
	_ = p.Refresh(ctx)
}

// Refresh fetches the agent list and applies it. On failure the previous
// view is kept and the error is returned after being logged.
func (p *Poller) Refresh(ctx context.Context) error {
	states, err := p.lister.ListByUser(ctx, p.userID)
	if err != nil {
		slog.Error("Failed to refresh agent registry", "user_id", p.userID, "error", err)
		return fmt.Errorf("refresh registry: %w", err)
	}
	p.apply(states)
	return nil
}

// ManualRefresh is Refresh for operator-triggered reloads; a second manual
// refresh is rejected while one is outstanding. Periodic refreshes are not
// affected and may overlap with it.
func (p *Poller) ManualRefresh(ctx context.Context) error {
	if !p.manualInFlight.CompareAndSwap(false, true) {
		return ErrRefreshInFlight
	}
	defer p.manualInFlight.Store(false)
	return p.Refresh(ctx)
}

// RefreshInFlight reports whether a manual refresh is running.
func (p *Poller) RefreshInFlight() bool {
	return p.manualInFlight.Load()
}

func (p *Poller) apply(states []agents.State) {
	if states == nil {
		states = []agents.State{}
	}

	p.mu.Lock()
	p.agents = states
	if p.selectedID == "" {
		for _, a := range states {
			if a.Online {
				p.selectedID = a.ID
				slog.Info("Auto-selected online agent", "user_id", p.userID, "agent_id", a.ID, "name", a.Name)
				break
			}
		}
	}
	p.metrics = p.selectedMetricsLocked()
	p.refreshedAt = time.Now()
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.publish(snap)
}

// Select makes agentID the selected agent.
func (p *Poller) Select(agentID string) error {
	p.mu.Lock()
	found := false
	for _, a := range p.agents {
		if a.ID == agentID {
			found = true
			break
		}
	}
	if !found {
		p.mu.Unlock()
		return ErrUnknownAgent
	}
	p.selectedID = agentID
	p.metrics = p.selectedMetricsLocked()
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.publish(snap)
	return nil
}

func (p *Poller) selectedMetricsLocked() agents.Metrics {
	for _, a := range p.agents {
		if a.ID == p.selectedID {
			return a.Metrics()
		}
	}
	return agents.Metrics{}
}

func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

func (p *Poller) snapshotLocked() Snapshot {
	list := make([]agents.State, len(p.agents))
	copy(list, p.agents)
	return Snapshot{
		Agents:      list,
		SelectedID:  p.selectedID,
		Metrics:     p.metrics,
		RefreshedAt: p.refreshedAt,
	}
}

// Selected returns the currently selected agent, which may be offline.
func (p *Poller) Selected() (agents.State, bool) {
	return p.Snapshot().Selected()
}

// Subscribe returns a channel receiving a snapshot after every change.
// Slow subscribers miss intermediate snapshots rather than blocking refreshes.
func (p *Poller) Subscribe() (<-chan Snapshot, func()) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	ch := make(chan Snapshot, subscriberBuffer)
	if p.ctx.Err() != nil {
		close(ch)
		return ch, func() {}
	}

	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = ch

	return ch, func() {
		p.subMu.Lock()
		defer p.subMu.Unlock()
		if c, ok := p.subscribers[id]; ok {
			close(c)
			delete(p.subscribers, id)
		}
	}
}

func (p *Poller) publish(snap Snapshot) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	for id, ch := range p.subscribers {
		select {
		case ch <- snap:
		default:
			slog.Debug("Registry subscriber full, dropping snapshot", "user_id", p.userID, "subscriber", id)
		}
	}
}
