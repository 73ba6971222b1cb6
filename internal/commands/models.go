package commands

import (
	"fmt"
	"time"
)

// Type is the kind of instruction a desktop agent is asked to perform.
type Type string

const (
	TypeBuild           Type = "build"
	TypeStartApp        Type = "start_app"
	TypeStopApp         Type = "stop_app"
	TypeRestartApp      Type = "restart_app"
	TypeExecuteTerminal Type = "execute_terminal"
)

var knownTypes = map[Type]struct{}{
	TypeBuild:           {},
	TypeStartApp:        {},
	TypeStopApp:         {},
	TypeRestartApp:      {},
	TypeExecuteTerminal: {},
}

func ParseType(s string) (Type, error) {
	t := Type(s)
	if _, ok := knownTypes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// Command is one append-only remote command record.
type Command struct {
	ID              string
	UserID          string
	TargetSessionID string
	Type            Type
	Payload         map[string]any
	CreatedAt       time.Time
}

// Key identifies a logical dispatch for in-flight tracking.
type Key struct {
	Type   Type
	Target string
}
