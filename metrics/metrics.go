// Package metrics keeps process-local counters for the client session.
package metrics

import (
	"sync/atomic"
)

// Counters records what the session did on the wire. A nil *Counters is
// valid and ignores every increment.
type Counters struct {
	JoinsRequested    int64 // add_player calls issued
	JoinFailures      int64 // add_player calls that failed
	MovesSent         int64 // move_player calls issued
	MovesRefused      int64 // moves refused locally for lack of identity
	MoveFailures      int64 // move_player calls that failed
	RefreshesSent     int64 // update calls issued
	RefreshFailures   int64 // update calls that failed
	SnapshotsReceived int64 // map snapshots applied to the view
	SnapshotsDropped  int64 // snapshots that arrived for a stale mount
	StreamErrors      int64 // stream dial or read failures
	KeysIgnored       int64 // key presses with no binding
}

// New returns zeroed counters
func New() *Counters {
	return &Counters{}
}

func (c *Counters) IncJoinsRequested() {
	if c != nil {
		atomic.AddInt64(&c.JoinsRequested, 1)
	}
}

func (c *Counters) IncJoinFailures() {
	if c != nil {
		atomic.AddInt64(&c.JoinFailures, 1)
	}
}

func (c *Counters) IncMovesSent() {
	if c != nil {
		atomic.AddInt64(&c.MovesSent, 1)
	}
}

func (c *Counters) IncMovesRefused() {
	if c != nil {
		atomic.AddInt64(&c.MovesRefused, 1)
	}
}

func (c *Counters) IncMoveFailures() {
	if c != nil {
		atomic.AddInt64(&c.MoveFailures, 1)
	}
}

func (c *Counters) IncRefreshesSent() {
	if c != nil {
		atomic.AddInt64(&c.RefreshesSent, 1)
	}
}

func (c *Counters) IncRefreshFailures() {
	if c != nil {
		atomic.AddInt64(&c.RefreshFailures, 1)
	}
}

func (c *Counters) IncSnapshotsReceived() {
	if c != nil {
		atomic.AddInt64(&c.SnapshotsReceived, 1)
	}
}

func (c *Counters) IncSnapshotsDropped() {
	if c != nil {
		atomic.AddInt64(&c.SnapshotsDropped, 1)
	}
}

func (c *Counters) IncStreamErrors() {
	if c != nil {
		atomic.AddInt64(&c.StreamErrors, 1)
	}
}

func (c *Counters) IncKeysIgnored() {
	if c != nil {
		atomic.AddInt64(&c.KeysIgnored, 1)
	}
}

// Snapshot returns a read-only copy keyed for JSON output
func (c *Counters) Snapshot() map[string]any {
	if c == nil {
		return map[string]any{}
	}
	return map[string]any{
		"joins_requested":    atomic.LoadInt64(&c.JoinsRequested),
		"join_failures":      atomic.LoadInt64(&c.JoinFailures),
		"moves_sent":         atomic.LoadInt64(&c.MovesSent),
		"moves_refused":      atomic.LoadInt64(&c.MovesRefused),
		"move_failures":      atomic.LoadInt64(&c.MoveFailures),
		"refreshes_sent":     atomic.LoadInt64(&c.RefreshesSent),
		"refresh_failures":   atomic.LoadInt64(&c.RefreshFailures),
		"snapshots_received": atomic.LoadInt64(&c.SnapshotsReceived),
		"snapshots_dropped":  atomic.LoadInt64(&c.SnapshotsDropped),
		"stream_errors":      atomic.LoadInt64(&c.StreamErrors),
		"keys_ignored":       atomic.LoadInt64(&c.KeysIgnored),
	}
}
