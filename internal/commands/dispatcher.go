package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/nati-dev/nati-console/internal/agents"
)

const (
	DefaultSettleDelay = 2 * time.Second
	settleFetchTimeout = 10 * time.Second
	targetPayloadKey   = "target"
)

var (
	ErrInFlight         = errors.New("command already in flight")
	ErrNoAgentSelected  = errors.New("no agent selected")
	ErrUnknownType      = errors.New("unknown command type")
	ErrDispatcherClosed = errors.New("dispatcher closed")
)

// Writer persists command rows.
type Writer interface {
	Insert(ctx context.Context, cmd Command) (*Command, error)
}

// Registry is the part of the registry poller the dispatcher relies on.
type Registry interface {
	Selected() (agents.State, bool)
	Refresh(ctx context.Context) error
}

// Dispatcher sends commands to the selected agent. There is no
// acknowledgement channel: after the settle delay the registry is refreshed
// and the effect, if any, shows up in the next agent state.
type Dispatcher struct {
	userID   string
	writer   Writer
	registry Registry
	settle   time.Duration

	mu       sync.Mutex
	inFlight map[Key]struct{}
	closed   bool

	closeCh chan struct{}
	wg      sync.WaitGroup
}

func NewDispatcher(userID string, writer Writer, registry Registry, settle time.Duration) *Dispatcher {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	return &Dispatcher{
		userID:   userID,
		writer:   writer,
		registry: registry,
		settle:   settle,
		inFlight: make(map[Key]struct{}),
		closeCh:  make(chan struct{}),
	}
}

// Send inserts one command addressed to the selected agent's session. While
// the settle delay for the same (type, target) pair is pending, further
// sends for that pair fail with ErrInFlight and write nothing.
func (d *Dispatcher) Send(ctx context.Context, typ Type, target string, payload map[string]any) (*Command, error) {
	if _, ok := knownTypes[typ]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}

	agent, ok := d.registry.Selected()
	if !ok {
		return nil, ErrNoAgentSelected
	}

	key := Key{Type: typ, Target: target}
	if err := d.acquire(key); err != nil {
		return nil, err
	}

	data := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		data[k] = v
	}
	if _, exists := data[targetPayloadKey]; !exists && target != "" {
		data[targetPayloadKey] = target
	}

	cmd, err := d.writer.Insert(ctx, Command{
		UserID:          d.userID,
		TargetSessionID: agent.SessionID,
		Type:            typ,
		Payload:         data,
	})
	if err != nil {
		d.release(key)
		d.wg.Done()
		slog.Error("Failed to dispatch command",
			"user_id", d.userID,
			"session_id", agent.SessionID,
			"type", typ,
			"target", target,
			"error", err)
		return nil, fmt.Errorf("dispatch %s: %w", typ, err)
	}

	slog.Info("Command dispatched",
		"user_id", d.userID,
		"session_id", agent.SessionID,
		"command_id", cmd.ID,
		"type", typ,
		"target", target)

	go d.settleAndRefresh(key)

	return cmd, nil
}

// acquire marks key in flight and registers the send with wg, so Close waits
// for an Insert that is already under way. The caller owes one wg.Done.
func (d *Dispatcher) acquire(key Key) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	if _, busy := d.inFlight[key]; busy {
		return ErrInFlight
	}
	d.inFlight[key] = struct{}{}
	d.wg.Add(1)
	return nil
}

func (d *Dispatcher) release(key Key) {
	d.mu.Lock()
	delete(d.inFlight, key)
	d.mu.Unlock()
}

func (d *Dispatcher) settleAndRefresh(key Key) {
	defer d.wg.Done()
	defer d.release(key)

	timer := time.NewTimer(d.settle)
	defer timer.Stop()

	select {
	case <-timer.C:
		ctx, cancel := context.WithTimeout(context.Background(), settleFetchTimeout)
		defer cancel()
		// Refresh logs its own failures; the flag is cleared either way.
		_ = d.registry.Refresh(ctx)
	case <-d.closeCh:
	}
}

// InFlight reports whether a command for the pair is waiting to settle.
func (d *Dispatcher) InFlight(typ Type, target string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, busy := d.inFlight[Key{Type: typ, Target: target}]
	return busy
}

// Busy lists the pairs currently in flight, sorted for stable output.
func (d *Dispatcher) Busy() []Key {
	d.mu.Lock()
	keys := make([]Key, 0, len(d.inFlight))
	for k := range d.inFlight {
		keys = append(keys, k)
	}
	d.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Target < keys[j].Target
	})
	return keys
}

// Close abandons pending settle timers and rejects further sends.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.closeCh)
	d.mu.Unlock()

	d.wg.Wait()
}
