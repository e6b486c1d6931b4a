package eventbus

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/brightloop/acsd/internal/model"
)

// Subscription is one subscriber's handle onto a Bus: a bounded channel of
// events plus a lag counter tracking events dropped while the channel was
// full.
type Subscription struct {
	id    uint64
	bus   *Bus
	ch    chan model.JobEvent
	close chan struct{}

	lag atomic.Int64

	unsubOnce sync.Once
}

// deliver attempts a non-blocking send. If the channel is full, it drops
// the oldest queued event to make room for the new one and records the
// drop against the lag counter — this is the "ring buffer" behavior: the
// newest event always wins a race against a slow consumer.
func (s *Subscription) deliver(event model.JobEvent) {
	select {
	case s.ch <- event:
		return
	default:
	}

	select {
	case <-s.ch:
	default:
	}

	select {
	case s.ch <- event:
	default:
	}
	s.lag.Add(1)
}

// Recv returns the next event for this subscriber. If the subscriber has
// lagged (dropped events) since the last Recv, the first call after the lag
// returns lagged > 0 with a zero-value event instead of consuming one —
// callers should emit a visible "lagged by N" marker and call Recv again to
// resume. ok is false once the subscription has been closed (via
// Unsubscribe) and its buffered events drained, or when ctx is done.
func (s *Subscription) Recv(ctx context.Context) (event model.JobEvent, lagged int64, ok bool) {
	if n := s.lag.Swap(0); n > 0 {
		return model.JobEvent{}, n, true
	}

	select {
	case ev, open := <-s.ch:
		if !open {
			return model.JobEvent{}, 0, false
		}
		return ev, 0, true
	case <-s.close:
		// Drain any events queued before close was observed.
		select {
		case ev, open := <-s.ch:
			if open {
				return ev, 0, true
			}
		default:
		}
		return model.JobEvent{}, 0, false
	case <-ctx.Done():
		return model.JobEvent{}, 0, false
	}
}

// Unsubscribe removes this subscription from its Bus. Idempotent and safe
// to call multiple times or on a nil Subscription.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.unsubOnce.Do(func() {
		s.bus.unsubscribe(s.id)
	})
}
