package worker

import "context"

// Worker defines the interface for background workers with lifecycle management.
//
// Workers are long-running background tasks that are supervised by a
// [Manager]: started concurrently when the daemon comes up, stopped
// concurrently (in reverse dependency order is not guaranteed — workers
// must not depend on each other's shutdown order) when it goes down.
//
// # Contract
//
// Implementations must follow these rules:
//
//   - OnStart(ctx) must be non-blocking. The worker should spawn its own
//     goroutine internally for any long-running work and return promptly.
//
//   - OnStop(ctx) signals the worker to shut down. The worker should exit
//     gracefully, completing or aborting any in-progress work, before
//     OnStop returns. The context carries the shutdown deadline.
//
//   - Name() must return a non-empty, unique string identifier used for
//     logging, debugging, and pool worker naming (e.g. "dispatch-1").
//
// # Example
//
//	type Poller struct {
//	    interval time.Duration
//	    done     chan struct{}
//	    wg       sync.WaitGroup
//	}
//
//	func (p *Poller) Name() string { return "poller" }
//
//	func (p *Poller) OnStart(ctx context.Context) error {
//	    p.done = make(chan struct{})
//	    p.wg.Add(1)
//	    go func() {
//	        defer p.wg.Done()
//	        ticker := time.NewTicker(p.interval)
//	        defer ticker.Stop()
//	        for {
//	            select {
//	            case <-p.done:
//	                return
//	            case <-ticker.C:
//	                // Poll for work
//	            }
//	        }
//	    }()
//	    return nil
//	}
//
//	func (p *Poller) OnStop(ctx context.Context) error {
//	    close(p.done)
//	    p.wg.Wait()
//	    return nil
//	}
type Worker interface {
	// OnStart begins the worker's background processing.
	//
	// Must be non-blocking. The worker should spawn its own goroutine for
	// long-running work. May be called again if the worker is restarted
	// by the supervisor after a panic; implementations should tolerate this.
	OnStart(ctx context.Context) error

	// OnStop signals the worker to shut down.
	//
	// Blocks until shutdown is complete or ctx is done. Called during
	// daemon shutdown; a supervised restart after a failed or panicking
	// OnStart does not call it. Must be idempotent.
	OnStop(ctx context.Context) error

	// Name returns a unique identifier for this worker.
	//
	// Used for logging, debugging, and pool worker naming. For pool
	// workers, the manager appends an index suffix (e.g. "worker-1").
	Name() string
}
