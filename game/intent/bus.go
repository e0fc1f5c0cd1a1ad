package intent

import (
	"sort"
	"sync"
)

// Bus is a KeySource that the UI event loop and the inspection API publish into
type Bus struct {
	mu        sync.RWMutex
	listeners map[int]func(key string)
	next      int
}

// NewBus creates an empty key bus
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[int]func(key string)),
	}
}

// AddKeyListener registers fn. The returned function removes it; calling the
// remover more than once is a no-op.
func (b *Bus) AddKeyListener(fn func(key string)) (remove func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.listeners[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Press delivers key to every listener in registration order, on the
// calling goroutine.
func (b *Bus) Press(key string) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(string), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.listeners[id])
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(key)
	}
}

// ListenerCount returns the number of registered listeners
func (b *Bus) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
