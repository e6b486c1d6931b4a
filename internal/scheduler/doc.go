// Package scheduler runs the daemon's single firing loop: read the
// CatalogStore, plan the next occurrence for every enabled job, sleep
// until the earliest one (racing a wake-up on catalog changes), and
// dispatch every job whose time has come onto a bounded channel consumed
// by the Executor.
//
// Scheduler implements internal/worker.Worker so it is started, stopped,
// and restarted-on-panic by the daemon's worker.Manager like any other
// long-lived task. It uses only robfig/cron/v3's Parser/Schedule — never
// cron.Cron's own goroutine runner — since the dispatch and active-run
// bookkeeping here is bespoke to this domain.
package scheduler
