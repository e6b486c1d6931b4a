package eventbus

import (
	"sync"

	"github.com/brightloop/acsd/internal/model"
)

// Bus is a bounded, lagging broadcast channel for model.JobEvent. It is
// safe for concurrent use by many producers and many subscribers.
type Bus struct {
	capacity int

	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
}

// New constructs a Bus where every subscriber gets a ring buffer of the
// given capacity (spec.md's default is 4096, via DaemonConfig.BroadcastCapacity).
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 4096
	}
	return &Bus{
		capacity: capacity,
		subs:     make(map[uint64]*Subscription),
	}
}

// Publish broadcasts event to every current subscriber. It never blocks: a
// subscriber whose buffer is full has its oldest unread event dropped to
// make room, and its lag counter is incremented. If there are no
// subscribers, Publish is a no-op.
func (b *Bus) Publish(event model.JobEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		sub.deliver(event)
	}
}

// Subscribe registers a new subscriber and returns its handle. The caller
// must call Unsubscribe (directly or via defer) when done.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:    b.nextID,
		bus:   b,
		ch:    make(chan model.JobEvent, b.capacity),
		close: make(chan struct{}),
	}
	b.subs[sub.id] = sub
	return sub
}

// SubscriberCount returns the number of currently active subscriptions.
// Exposed for health checks and tests.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	sub, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
	}
	b.mu.Unlock()

	if ok {
		close(sub.close)
	}
}
