package session

import (
	"context"
	"sync"

	"github.com/wricardo/grid-client/game/intent"
	"github.com/wricardo/grid-client/game/service"
	"github.com/wricardo/grid-client/metrics"
	"go.uber.org/zap"
)

// NoticeAddPlayerFirst is shown when a move is attempted without an identity
const NoticeAddPlayerFirst = "Add a player first!"

// Option configures a Session or a Panel
type Option func(*options)

type options struct {
	log   *zap.SugaredLogger
	stats *metrics.Counters
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMetrics records activity in c
func WithMetrics(c *metrics.Counters) Option {
	return func(o *options) {
		o.stats = c
	}
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Session is the streaming client: it owns one player identity, at most one
// live map stream, and the key listener that turns presses into moves.
type Session struct {
	api    service.GameAPI
	stream service.StreamDialer
	keys   service.KeySource
	notify service.Notifier
	log    *zap.SugaredLogger
	stats  *metrics.Counters

	// lifecycle serializes Mount and Unmount
	lifecycle sync.Mutex

	mu         sync.Mutex
	state      service.LifecycleState
	epoch      uint64 // bumped on every mount and unmount
	keyGen     uint64 // bumped whenever the key listener is replaced
	identity   service.PlayerIdentity
	acquiring  bool
	snapshot   service.MapSnapshot
	moveResult service.MoveResult
	notice     string
	streamOpen bool
	sub        service.Subscription
	removeKeys func()
	version    uint64

	observers observers
	inflight  sync.WaitGroup
}

// New creates an unmounted session
func New(api service.GameAPI, stream service.StreamDialer, keys service.KeySource, notify service.Notifier, opts ...Option) *Session {
	o := buildOptions(opts)
	if notify == nil {
		notify = service.NotifierFunc(func(string) {})
	}
	return &Session{
		api:    api,
		stream: stream,
		keys:   keys,
		notify: notify,
		log:    o.log,
		stats:  o.stats,
	}
}

// Mount opens the map stream, attaches the key listener and, when no
// identity is held yet, starts acquiring one. Mounting a mounted session
// does nothing.
func (s *Session) Mount() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	if s.state != service.StateUnmounted {
		s.mu.Unlock()
		return
	}
	s.epoch++
	epoch := s.epoch
	s.state = service.StateInitializing
	s.streamOpen = false
	acquire := !s.identity.IsSet() && !s.acquiring
	if acquire {
		s.acquiring = true
	}
	view := s.touchLocked()
	s.mu.Unlock()
	s.observers.publish(view)
	s.log.Infow("session mounting", "epoch", epoch, "acquire_identity", acquire)

	sub := s.stream.Subscribe(
		func(m service.MapSnapshot) { s.applySnapshot(epoch, m) },
		func() { s.streamOpened(epoch) },
	)

	s.mu.Lock()
	s.sub = sub
	s.keyGen++
	s.removeKeys = s.keys.AddKeyListener(s.keyListener(epoch, s.keyGen, s.identity))
	s.activateLocked()
	view = s.touchLocked()
	s.mu.Unlock()
	s.observers.publish(view)

	if acquire {
		s.inflight.Add(1)
		go s.acquireIdentity()
	}
}

// Unmount removes the key listener and closes the stream. Results of
// requests still in flight are discarded when they arrive. Unmounting an
// unmounted session does nothing.
func (s *Session) Unmount() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	if s.state == service.StateUnmounted {
		s.mu.Unlock()
		return
	}
	s.state = service.StateTearingDown
	s.epoch++
	s.keyGen++
	remove, sub := s.removeKeys, s.sub
	s.removeKeys, s.sub = nil, nil
	s.streamOpen = false
	view := s.touchLocked()
	s.mu.Unlock()
	s.observers.publish(view)

	if remove != nil {
		remove()
	}
	if sub != nil {
		if err := sub.Close(); err != nil {
			s.log.Warnw("closing map stream", "error", err)
		}
	}

	s.mu.Lock()
	s.state = service.StateUnmounted
	view = s.touchLocked()
	s.mu.Unlock()
	s.observers.publish(view)
	s.log.Infow("session unmounted")
}

// Wait blocks until every request issued so far has completed
func (s *Session) Wait() {
	s.inflight.Wait()
}

// View returns the current state
func (s *Session) View() service.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Subscribe registers fn to receive a View after every state change. Views
// may be delivered from several goroutines; Version orders them.
func (s *Session) Subscribe(fn func(service.View)) (unsubscribe func()) {
	return s.observers.add(fn)
}

// acquireIdentity issues the single join request for this session
func (s *Session) acquireIdentity() {
	defer s.inflight.Done()

	s.stats.IncJoinsRequested()
	id, err := s.api.AddPlayer(context.Background())

	s.mu.Lock()
	s.acquiring = false
	if err != nil {
		s.mu.Unlock()
		s.stats.IncJoinFailures()
		s.log.Errorw("failed to acquire player identity", "error", err)
		return
	}
	if !s.mountedLocked() {
		s.mu.Unlock()
		s.log.Debugw("discarding identity for unmounted session")
		return
	}
	id = id.Sanitize()
	if id == "" {
		s.mu.Unlock()
		s.stats.IncJoinFailures()
		s.log.Errorw("server returned an empty player identity")
		return
	}
	s.identity = id
	epoch := s.epoch
	view := s.touchLocked()
	s.mu.Unlock()
	s.observers.publish(view)
	s.log.Infow("player identity acquired", "player_id", id)

	// The listener still holds the empty identity, so no move can go out
	// with the new one until the join refresh has completed.
	s.sendRefresh()
	s.rebindKeys(epoch)
}

// rebindKeys swaps the key listener for one carrying the current identity
func (s *Session) rebindKeys(epoch uint64) {
	s.mu.Lock()
	if s.epoch != epoch || !s.mountedLocked() || s.removeKeys == nil {
		s.mu.Unlock()
		return
	}
	old := s.removeKeys
	s.keyGen++
	s.removeKeys = s.keys.AddKeyListener(s.keyListener(epoch, s.keyGen, s.identity))
	s.mu.Unlock()
	old()
}

func (s *Session) keyListener(epoch, gen uint64, id service.PlayerIdentity) func(string) {
	return func(key string) {
		s.handleKey(epoch, gen, id, key)
	}
}

// handleKey runs on the goroutine that published the key
func (s *Session) handleKey(epoch, gen uint64, id service.PlayerIdentity, key string) {
	move, ok := intent.Lookup(key)
	if !ok {
		s.stats.IncKeysIgnored()
		return
	}

	s.mu.Lock()
	if s.epoch != epoch || s.keyGen != gen || !s.mountedLocked() {
		// superseded listener
		s.mu.Unlock()
		return
	}
	if !id.IsSet() {
		s.notice = NoticeAddPlayerFirst
		view := s.touchLocked()
		s.mu.Unlock()
		s.stats.IncMovesRefused()
		s.log.Infow("move refused without identity", "key", key)
		s.notify.Notify(NoticeAddPlayerFirst)
		s.observers.publish(view)
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	go s.dispatch(epoch, id.Sanitize(), move)
}

// dispatch sends one move and always follows it with a refresh
func (s *Session) dispatch(epoch uint64, id service.PlayerIdentity, move service.MoveIntent) {
	defer s.inflight.Done()

	s.stats.IncMovesSent()
	result, err := s.api.MovePlayer(context.Background(), id, move)
	if err != nil {
		s.stats.IncMoveFailures()
		s.log.Warnw("move failed", "player_id", id, "move", move, "error", err)
	} else {
		s.mu.Lock()
		if s.epoch == epoch && s.mountedLocked() {
			s.moveResult = result
			view := s.touchLocked()
			s.mu.Unlock()
			s.observers.publish(view)
		} else {
			s.mu.Unlock()
			s.log.Debugw("discarding move result for stale mount", "move", move)
		}
	}

	s.Refresh()
}

// Refresh asks the server to advance the world without waiting for it
func (s *Session) Refresh() {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.sendRefresh()
	}()
}

func (s *Session) sendRefresh() {
	s.stats.IncRefreshesSent()
	if err := s.api.Update(context.Background()); err != nil {
		s.stats.IncRefreshFailures()
		s.log.Warnw("world refresh failed", "error", err)
	}
}

func (s *Session) applySnapshot(epoch uint64, m service.MapSnapshot) {
	s.mu.Lock()
	if s.epoch != epoch || !s.mountedLocked() {
		s.mu.Unlock()
		s.stats.IncSnapshotsDropped()
		return
	}
	s.snapshot = m
	view := s.touchLocked()
	s.mu.Unlock()
	s.stats.IncSnapshotsReceived()
	s.observers.publish(view)
}

func (s *Session) streamOpened(epoch uint64) {
	s.mu.Lock()
	if s.epoch != epoch || !s.mountedLocked() {
		s.mu.Unlock()
		return
	}
	s.streamOpen = true
	s.activateLocked()
	view := s.touchLocked()
	s.mu.Unlock()
	s.observers.publish(view)
}

// activateLocked promotes Initializing to Active once the stream is open
// and the key listener is attached
func (s *Session) activateLocked() {
	if s.state == service.StateInitializing && s.streamOpen && s.removeKeys != nil {
		s.state = service.StateActive
		s.log.Infow("session active", "epoch", s.epoch)
	}
}

func (s *Session) mountedLocked() bool {
	return s.state == service.StateInitializing || s.state == service.StateActive
}

// touchLocked records a mutation and returns the view to publish
func (s *Session) touchLocked() service.View {
	s.version++
	return s.viewLocked()
}

func (s *Session) viewLocked() service.View {
	return service.View{
		Version:    s.version,
		State:      s.state,
		Identity:   s.identity,
		Map:        s.snapshot,
		MoveResult: s.moveResult,
		Notice:     s.notice,
		StreamOpen: s.streamOpen,
	}
}
