package metadata

import (
	"context"
	"log/slog"
	"sync"

	"github.com/brightloop/acsd/internal/catalog"
	"github.com/brightloop/acsd/internal/eventbus"
	"github.com/brightloop/acsd/internal/model"
)

// Updater is a worker.Worker that keeps CatalogStore.LastRunAt/
// LastExitCode current by watching the EventBus for terminal JobEvents.
type Updater struct {
	catalog *catalog.Store
	bus     *eventbus.Bus
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	sub     *eventbus.Subscription
	done    chan struct{}
}

// New constructs an Updater.
func New(cat *catalog.Store, bus *eventbus.Bus, logger *slog.Logger) *Updater {
	return &Updater{
		catalog: cat,
		bus:     bus,
		logger:  logger.With(slog.String("component", "metadata.Updater")),
	}
}

// Name implements worker.Worker.
func (u *Updater) Name() string { return "metadata.Updater" }

// OnStart implements worker.Worker.
func (u *Updater) OnStart(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.running {
		return nil
	}
	u.sub = u.bus.Subscribe()
	u.done = make(chan struct{})
	u.running = true
	go u.loop(u.sub, u.done)
	return nil
}

// OnStop implements worker.Worker.
func (u *Updater) OnStop(ctx context.Context) error {
	u.mu.Lock()
	if !u.running {
		u.mu.Unlock()
		return nil
	}
	u.running = false
	sub := u.sub
	done := u.done
	u.mu.Unlock()

	sub.Unsubscribe()
	select {
	case <-done:
	case <-ctx.Done():
	}
	return nil
}

func (u *Updater) loop(sub *eventbus.Subscription, done chan struct{}) {
	defer close(done)
	ctx := context.Background()
	for {
		ev, _, ok := sub.Recv(ctx)
		if !ok {
			return
		}
		u.handle(ev)
	}
}

func (u *Updater) handle(ev model.JobEvent) {
	var upd model.TelemetryUpdate
	switch ev.Kind {
	case model.EventCompleted:
		ts := ev.Timestamp
		upd.LastRunAt = &ts
		upd.LastExitCode = ev.ExitCode
	case model.EventFailed:
		ts := ev.Timestamp
		upd.LastRunAt = &ts
		// No exit code: spawn failures, timeouts, and kills never produced one.
	default:
		return
	}

	if err := u.catalog.ApplyTelemetry(ev.JobID, upd); err != nil {
		if model.KindOf(err) == model.KindNotFound {
			return // Job was deleted mid-run or after; nothing to update.
		}
		u.logger.Error("failed to apply run telemetry",
			slog.String("job_id", ev.JobID.String()), slog.String("error", err.Error()))
	}
}
