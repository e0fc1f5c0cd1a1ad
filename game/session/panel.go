package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wricardo/grid-client/game/service"
	"github.com/wricardo/grid-client/metrics"
	"go.uber.org/zap"
)

// ErrInvalidMove is returned for anything but a unit step
var ErrInvalidMove = errors.New("invalid move")

// Panel is the polling client. Every action is one explicit request; there
// is no stream, no automatic join and no keyboard dispatch.
type Panel struct {
	api    service.GameAPI
	notify service.Notifier
	log    *zap.SugaredLogger
	stats  *metrics.Counters

	mu         sync.Mutex
	identity   service.PlayerIdentity
	snapshot   service.MapSnapshot
	moveResult service.MoveResult
	notice     string
	version    uint64

	observers observers
}

// NewPanel creates a polling client
func NewPanel(api service.GameAPI, notify service.Notifier, opts ...Option) *Panel {
	o := buildOptions(opts)
	if notify == nil {
		notify = service.NotifierFunc(func(string) {})
	}
	return &Panel{
		api:    api,
		notify: notify,
		log:    o.log,
		stats:  o.stats,
	}
}

// FetchCurrentMap replaces the displayed map with the server's current one
func (p *Panel) FetchCurrentMap(ctx context.Context) (service.MapSnapshot, error) {
	m, err := p.api.CurrentMap(ctx)
	if err != nil {
		p.log.Warnw("fetching current map", "error", err)
		return "", fmt.Errorf("fetch current map: %w", err)
	}

	p.update(func() { p.snapshot = m })
	p.stats.IncSnapshotsReceived()
	return m, nil
}

// AddPlayer joins the game and keeps the returned identity
func (p *Panel) AddPlayer(ctx context.Context) (service.PlayerIdentity, error) {
	p.stats.IncJoinsRequested()
	raw, err := p.api.AddPlayer(ctx)
	if err != nil {
		p.stats.IncJoinFailures()
		p.log.Errorw("adding player", "error", err)
		return "", fmt.Errorf("add player: %w", err)
	}

	id := raw.Sanitize()
	if id == "" {
		p.stats.IncJoinFailures()
		p.log.Errorw("server returned an empty player identity")
		return "", fmt.Errorf("add player: %w", service.ErrIdentityUnavailable)
	}

	msg := fmt.Sprintf("Player added with ID: %s", id)
	p.update(func() {
		p.identity = id
		p.notice = msg
	})
	p.notify.Notify(msg)
	return id, nil
}

// MovePlayer submits one move for the held identity
func (p *Panel) MovePlayer(ctx context.Context, move service.MoveIntent) (service.MoveResult, error) {
	if !move.Valid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidMove, move)
	}

	p.mu.Lock()
	id := p.identity
	p.mu.Unlock()

	if !id.IsSet() {
		p.stats.IncMovesRefused()
		p.update(func() { p.notice = NoticeAddPlayerFirst })
		p.notify.Notify(NoticeAddPlayerFirst)
		return "", service.ErrIdentityUnavailable
	}

	p.stats.IncMovesSent()
	result, err := p.api.MovePlayer(ctx, id.Sanitize(), move)
	if err != nil {
		p.stats.IncMoveFailures()
		p.log.Warnw("moving player", "player_id", id, "move", move, "error", err)
		return "", fmt.Errorf("move player: %w", err)
	}

	msg := fmt.Sprintf("Player moved to %s", move)
	p.update(func() {
		p.moveResult = result
		p.notice = msg
	})
	p.notify.Notify(msg)
	return result, nil
}

// UpdateWorld asks the server to advance the world
func (p *Panel) UpdateWorld(ctx context.Context) error {
	p.stats.IncRefreshesSent()
	if err := p.api.Update(ctx); err != nil {
		p.stats.IncRefreshFailures()
		p.log.Warnw("updating world", "error", err)
		return fmt.Errorf("update world: %w", err)
	}

	const msg = "World updated!"
	p.update(func() { p.notice = msg })
	p.notify.Notify(msg)
	return nil
}

// View returns the current state
func (p *Panel) View() service.View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

// Subscribe registers fn to receive a View after every state change
func (p *Panel) Subscribe(fn func(service.View)) (unsubscribe func()) {
	return p.observers.add(fn)
}

func (p *Panel) update(fn func()) {
	p.mu.Lock()
	fn()
	p.version++
	view := p.viewLocked()
	p.mu.Unlock()
	p.observers.publish(view)
}

func (p *Panel) viewLocked() service.View {
	return service.View{
		Version:    p.version,
		State:      service.StateActive,
		Identity:   p.identity,
		Map:        p.snapshot,
		MoveResult: p.moveResult,
		Notice:     p.notice,
	}
}
