package service

import (
	"context"
)

// GameAPI is the request/response surface of the remote game server
type GameAPI interface {
	// AddPlayer asks the server for a new player identity. The returned
	// token may still carry quoting artifacts.
	AddPlayer(ctx context.Context) (PlayerIdentity, error)

	// MovePlayer submits one movement intent for the given player.
	MovePlayer(ctx context.Context, id PlayerIdentity, intent MoveIntent) (MoveResult, error)

	// Update asks the server to advance or reconcile world state.
	Update(ctx context.Context) error

	// CurrentMap fetches one map snapshot.
	CurrentMap(ctx context.Context) (MapSnapshot, error)
}

// StreamDialer opens the persistent map stream
type StreamDialer interface {
	// Subscribe starts connecting in the background and returns immediately.
	// onOpen fires once the connection is established; onSnapshot fires for
	// every inbound message, in arrival order, from a single goroutine.
	Subscribe(onSnapshot func(MapSnapshot), onOpen func()) Subscription
}

// Subscription is a handle on one stream connection
type Subscription interface {
	// Close tears the connection down. It is safe to call more than once and
	// while the opening handshake is still running.
	Close() error
}

// KeySource delivers discrete key presses to registered listeners
type KeySource interface {
	AddKeyListener(fn func(key string)) (remove func())
}

// Notifier shows a blocking notification to the user
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(message string)

// Notify calls f(message)
func (f NotifierFunc) Notify(message string) {
	f(message)
}
