package commands

import (
	"errors"
	"time"
)

// CommandType enumerates the commands operators may queue.
type CommandType string

const (
	TypeStartFan CommandType = "START_FAN"
	TypeStopFan  CommandType = "STOP_FAN"
	TypeReset    CommandType = "RESET"
)

// TargetSystem is the only accepted command target; no individual device
// addressing exists in this system.
const TargetSystem = "SYSTEM"

// Command is a queued operator command. Nothing executes it here; rows are
// consumed by an external actuation layer.
type Command struct {
	ID        string      `json:"id"`
	Type      CommandType `json:"type"`
	Target    string      `json:"target"`
	IssuedBy  string      `json:"issued_by"`
	CreatedAt time.Time   `json:"created_at"`
}

// Valid returns true when the command type is supported.
func (t CommandType) Valid() bool {
	switch t {
	case TypeStartFan, TypeStopFan, TypeReset:
		return true
	default:
		return false
	}
}

// Validate checks command invariants.
func (c Command) Validate() error {
	if c.ID == "" {
		return errors.New("command: empty id")
	}
	if !c.Type.Valid() {
		return errors.New("command: invalid type")
	}
	if c.Target != TargetSystem {
		return errors.New("command: invalid target")
	}
	if c.IssuedBy == "" {
		return errors.New("command: empty issuer")
	}
	return nil
}
