// Package lifecycle owns everything about the daemon's life outside the
// scheduling domain itself: where its data lives, how its config is loaded,
// the single-instance PID-file guard, the discoverable port file, the
// startup orphan sweep, and the graceful shutdown sequence that tears down
// the HTTP server, the scheduler, and every in-flight run in order.
//
// Nothing in this package is specific to cron scheduling — it is the same
// shape of problem any long-lived daemon has — which is why it is kept
// separate from internal/scheduler and internal/executor.
package lifecycle
