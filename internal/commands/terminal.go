package commands

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const DefaultTerminalLines = 500

type LineKind string

const (
	LineInput  LineKind = "input"
	LineOutput LineKind = "output"
	LineError  LineKind = "error"
)

type Line struct {
	Kind LineKind  `json:"kind"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Sender dispatches a command; *Dispatcher implements it.
type Sender interface {
	Send(ctx context.Context, typ Type, target string, payload map[string]any) (*Command, error)
}

// Terminal is a line buffer that mimics a shell. Nothing is streamed back
// from the agent; output lines are placeholders.
type Terminal struct {
	sender   Sender
	maxLines int

	mu    sync.Mutex
	lines []Line
}

func NewTerminal(sender Sender, maxLines int) *Terminal {
	if maxLines <= 0 {
		maxLines = DefaultTerminalLines
	}
	return &Terminal{
		sender:   sender,
		maxLines: maxLines,
	}
}

// Submit echoes the input, dispatches it as execute_terminal for target and
// appends either a placeholder output line or an error line. Errors never
// propagate past the buffer.
func (t *Terminal) Submit(ctx context.Context, target, input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	t.append(LineInput, "$ "+input)

	cmd, err := t.sender.Send(ctx, TypeExecuteTerminal, target, map[string]any{"command": input})
	if err != nil {
		t.append(LineError, "Error: "+err.Error())
		return
	}

	t.append(LineOutput, fmt.Sprintf("Command sent to %s (%s). Output appears in the desktop app.", cmd.TargetSessionID, cmd.ID))
}

func (t *Terminal) append(kind LineKind, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lines = append(t.lines, Line{Kind: kind, Text: text, At: time.Now()})
	if over := len(t.lines) - t.maxLines; over > 0 {
		t.lines = append(t.lines[:0:0], t.lines[over:]...)
	}
}

func (t *Terminal) Lines() []Line {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Line, len(t.lines))
	copy(out, t.lines)
	return out
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	t.lines = nil
	t.mu.Unlock()
}
