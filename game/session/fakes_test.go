package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wricardo/grid-client/game/service"
)

var errServerDown = errors.New("server down")

// fakeAPI records every call in order
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	identity  service.PlayerIdentity
	joinErr   error
	joinGate  chan struct{}
	moveErr   error
	moveGate  chan struct{}
	result    service.MoveResult
	updateErr error
	mapText   service.MapSnapshot
	mapErr    error
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeAPI) count(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakeAPI) AddPlayer(ctx context.Context) (service.PlayerIdentity, error) {
	if f.joinGate != nil {
		<-f.joinGate
	}
	f.record("add_player")
	return f.identity, f.joinErr
}

func (f *fakeAPI) MovePlayer(ctx context.Context, id service.PlayerIdentity, move service.MoveIntent) (service.MoveResult, error) {
	if f.moveGate != nil {
		<-f.moveGate
	}
	f.record(fmt.Sprintf("move_player %s %d %d", id, move.DX, move.DY))
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.moveErr
}

func (f *fakeAPI) Update(ctx context.Context) error {
	f.record("update")
	return f.updateErr
}

func (f *fakeAPI) CurrentMap(ctx context.Context) (service.MapSnapshot, error) {
	f.record("current_map")
	return f.mapText, f.mapErr
}

func (f *fakeAPI) setMoveErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moveErr = err
}

// fakeStream hands control of the stream callbacks to the test
type fakeStream struct {
	mu   sync.Mutex
	subs []*fakeSubscription
}

type fakeSubscription struct {
	onSnapshot func(service.MapSnapshot)
	onOpen     func()

	mu     sync.Mutex
	closes int
}

func (f *fakeStream) Subscribe(onSnapshot func(service.MapSnapshot), onOpen func()) service.Subscription {
	sub := &fakeSubscription{onSnapshot: onSnapshot, onOpen: onOpen}
	f.mu.Lock()
	f.subs = append(f.subs, sub)
	f.mu.Unlock()
	return sub
}

func (s *fakeSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *fakeSubscription) closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes > 0
}

func (f *fakeStream) last() *fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) == 0 {
		return nil
	}
	return f.subs[len(f.subs)-1]
}

// live counts subscriptions that were never closed
func (f *fakeStream) live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.subs {
		if !s.closed() {
			n++
		}
	}
	return n
}

func (f *fakeStream) open() {
	f.last().onOpen()
}

func (f *fakeStream) push(m service.MapSnapshot) {
	f.last().onSnapshot(m)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *fakeNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.messages))
	copy(out, n.messages)
	return out
}
