// Package eventbus provides a bounded, lagging broadcast channel for
// model.JobEvent, the single concrete event type the daemon publishes.
//
// # Semantics
//
// Every subscriber gets its own fixed-capacity ring buffer. Publish never
// blocks the producer: if a subscriber's buffer is full, the oldest
// unread event is overwritten and the subscriber's lag counter is
// incremented. On its next Recv, a lagging subscriber gets a distinguishable
// "lagged by N" signal instead of an event, then resumes delivery from the
// current head. No event is retried once dropped.
//
// If no subscribers exist, Publish is a no-op beyond bookkeeping — the bus
// is a fan-out for observability, not a durable queue of commitments.
//
// # Subscription Management
//
// Subscribe returns a [Subscription] handle. Unsubscribe is idempotent and
// safe to call multiple times. Delivery happens inside Publish; there is no
// per-subscription goroutine or callback, and each consumer pulls its events
// with Recv.
//
// # Usage
//
//	bus := eventbus.New(4096)
//	sub := bus.Subscribe()
//	defer sub.Unsubscribe()
//
//	for {
//	    ev, lag, ok := sub.Recv(ctx)
//	    if !ok {
//	        return
//	    }
//	    if lag > 0 {
//	        // emit a "lagged by N" marker and continue
//	    }
//	    handle(ev)
//	}
package eventbus
