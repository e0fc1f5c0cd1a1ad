package session

import (
	"sort"
	"sync"

	"github.com/wricardo/grid-client/game/service"
)

// observers fans views out to subscribers in subscription order
type observers struct {
	mu   sync.Mutex
	fns  map[int]func(service.View)
	next int
}

func (o *observers) add(fn func(service.View)) (remove func()) {
	o.mu.Lock()
	if o.fns == nil {
		o.fns = make(map[int]func(service.View))
	}
	id := o.next
	o.next++
	o.fns[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.fns, id)
			o.mu.Unlock()
		})
	}
}

// publish calls every observer on the calling goroutine. It must not be
// called with the owner's state lock held.
func (o *observers) publish(v service.View) {
	o.mu.Lock()
	ids := make([]int, 0, len(o.fns))
	for id := range o.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(service.View), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, o.fns[id])
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
