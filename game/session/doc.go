// Package session drives the grid game client.
//
// Two clients live here. Session is the streaming client used by the
// terminal UI: mounting it opens the map stream, attaches a key listener and
// joins the game once. Panel is the polling client: nothing happens until the
// caller asks for it.
//
// Lifecycle:
//
// A Session moves through Unmounted, Initializing, Active and TearingDown.
// It becomes Active once the stream has reported open and the key listener
// is attached. Mount and Unmount are idempotent and serialized. Every mount
// gets a new epoch; callbacks from a previous mount compare their epoch and
// drop their results instead of touching state.
//
// Identity:
//
// The identity is requested at most once at a time. When it arrives the
// session publishes it, sends one world refresh, and only then replaces the
// key listener with one carrying the new identity. Presses handled by the
// old listener are refused with a notification.
//
// Moves:
//
// Each bound key press sends one move request in its own goroutine. Whatever
// the outcome, a world refresh follows. Refreshes are never serialized; the
// map stream is the source of truth for what is displayed.
//
// Observers:
//
// Subscribe delivers a service.View after every change. Views can arrive
// from the stream reader and from request goroutines, so consumers should
// keep the one with the highest Version.
//
// Usage:
//
//	keys := intent.NewBus()
//	sess := session.New(restClient, dialer, keys, screen,
//		session.WithLogger(log),
//		session.WithMetrics(stats),
//	)
//	sess.Subscribe(screen.Render)
//	sess.Mount()
//	defer sess.Unmount()
package session
