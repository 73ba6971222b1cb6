package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	err   error
	calls []map[string]any
}

func (s *stubSender) Send(ctx context.Context, typ Type, target string, payload map[string]any) (*Command, error) {
	s.calls = append(s.calls, payload)
	if s.err != nil {
		return nil, s.err
	}
	return &Command{ID: "cmd-1", TargetSessionID: "sess-1", Type: typ}, nil
}

func TestTerminalSubmit(t *testing.T) {
	sender := &stubSender{}
	term := NewTerminal(sender, 0)

	term.Submit(context.Background(), "web", "  npm install  ")

	lines := term.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, LineInput, lines[0].Kind)
	assert.Equal(t, "$ npm install", lines[0].Text)
	assert.Equal(t, LineOutput, lines[1].Kind)
	assert.Contains(t, lines[1].Text, "sess-1")

	require.Len(t, sender.calls, 1)
	assert.Equal(t, "npm install", sender.calls[0]["command"])
}

func TestTerminalSubmitError(t *testing.T) {
	term := NewTerminal(&stubSender{err: errors.New("boom")}, 0)

	term.Submit(context.Background(), "web", "ls")

	lines := term.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, LineError, lines[1].Kind)
	assert.Equal(t, "Error: boom", lines[1].Text)
}

func TestTerminalIgnoresBlankInput(t *testing.T) {
	sender := &stubSender{}
	term := NewTerminal(sender, 0)

	term.Submit(context.Background(), "web", "   ")

	assert.Empty(t, term.Lines())
	assert.Empty(t, sender.calls)
}

func TestTerminalCapsLines(t *testing.T) {
	term := NewTerminal(&stubSender{}, 4)

	for i := 0; i < 3; i++ {
		term.Submit(context.Background(), "web", fmt.Sprintf("echo %d", i))
	}

	lines := term.Lines()
	require.Len(t, lines, 4)
	assert.Equal(t, "$ echo 1", lines[0].Text)
	assert.Equal(t, "$ echo 2", lines[2].Text)
}

func TestTerminalClear(t *testing.T) {
	term := NewTerminal(&stubSender{}, 0)
	term.Submit(context.Background(), "web", "pwd")
	term.Clear()
	assert.Empty(t, term.Lines())
}
