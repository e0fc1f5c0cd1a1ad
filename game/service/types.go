package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrIdentityUnavailable is returned when a move is attempted before the
// server has assigned a player identity.
var ErrIdentityUnavailable = errors.New("player identity not acquired")

// PlayerIdentity is the opaque server-issued player token
type PlayerIdentity string

// SanitizeIdentity strips whitespace and accidental quoting from a token
// returned by the server. The server may answer with a bare token, a JSON
// string literal, or a token wrapped in single quotes.
func SanitizeIdentity(raw string) PlayerIdentity {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var unquoted string
		if err := json.Unmarshal([]byte(s), &unquoted); err == nil {
			s = unquoted
		}
	}
	s = strings.Trim(s, `"'`)
	return PlayerIdentity(strings.TrimSpace(s))
}

// Sanitize returns the identity with quoting artifacts removed
func (id PlayerIdentity) Sanitize() PlayerIdentity {
	return SanitizeIdentity(string(id))
}

// IsSet reports whether an identity has been assigned
func (id PlayerIdentity) IsSet() bool {
	return id.Sanitize() != ""
}

// MapSnapshot is a preformatted text rendering of the whole world
type MapSnapshot string

// Lines splits the snapshot into rows, dropping one trailing newline
func (m MapSnapshot) Lines() []string {
	if m == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(m), "\n"), "\n")
}

// MoveResult is the server's opaque answer to a move attempt
type MoveResult string

// MoveIntent is a unit step on the grid
type MoveIntent struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// Valid reports whether the intent is one of the four unit steps
func (m MoveIntent) Valid() bool {
	switch m {
	case MoveIntent{1, 0}, MoveIntent{-1, 0}, MoveIntent{0, 1}, MoveIntent{0, -1}:
		return true
	}
	return false
}

func (m MoveIntent) String() string {
	return fmt.Sprintf("(%d, %d)", m.DX, m.DY)
}

// LifecycleState is the mount state of a session
type LifecycleState int

const (
	StateUnmounted LifecycleState = iota
	StateInitializing
	StateActive
	StateTearingDown
)

var stateNames = map[LifecycleState]string{
	StateUnmounted:    "unmounted",
	StateInitializing: "initializing",
	StateActive:       "active",
	StateTearingDown:  "tearing-down",
}

func (s LifecycleState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("LifecycleState(%d)", int(s))
}

// MarshalText encodes the state by name
func (s LifecycleState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// View is a point-in-time copy of the observable client state.
// Version increases with every mutation, so renderers receiving views from
// several goroutines can drop stale ones.
type View struct {
	Version    uint64         `json:"version"`
	State      LifecycleState `json:"state"`
	Identity   PlayerIdentity `json:"player_id"`
	Map        MapSnapshot    `json:"current_map"`
	MoveResult MoveResult     `json:"move_result"`
	Notice     string         `json:"notice,omitempty"`
	StreamOpen bool           `json:"stream_open"`
}
