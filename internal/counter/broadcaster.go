// Package counter fans cart quantity deltas out to interested views so every
// surface showing a cart badge stays consistent without refetching.
package counter

import "sync"

// Broadcaster delivers mutation deltas to subscribers. Subscribers receive
// only the net change; they are expected to track their own running count.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(delta int)
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]func(delta int))}
}

// Subscribe registers fn for future deltas and returns its unsubscribe
// handle. Unsubscribing twice is safe.
func (b *Broadcaster) Subscribe(fn func(delta int)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// NotifyDelta delivers a non-zero delta to every subscriber. Callbacks run
// outside the lock so a subscriber may unsubscribe from within its handler.
func (b *Broadcaster) NotifyDelta(delta int) {
	if delta == 0 {
		return
	}

	b.mu.Lock()
	handlers := make([]func(int), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(delta)
	}
}
