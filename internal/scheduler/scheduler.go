package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brightloop/acsd/internal/catalog"
	"github.com/brightloop/acsd/internal/clock"
	"github.com/brightloop/acsd/internal/eventbus"
	"github.com/brightloop/acsd/internal/executor"
	"github.com/brightloop/acsd/internal/model"
	"github.com/brightloop/acsd/internal/scheduler/cronexpr"
)

// dispatchCapacity is the bounded mpsc capacity from spec.md §4.7.
const dispatchCapacity = 64

// Scheduler is the daemon's single firing-loop task: a worker.Worker that
// plans, sleeps, and dispatches due jobs to an Executor.
type Scheduler struct {
	catalog  *catalog.Store
	executor *executor.Executor
	bus      *eventbus.Bus
	clk      clock.Clock
	logger   *slog.Logger

	mu             sync.Mutex
	running        bool
	stopCh         chan struct{}
	catalogChanged chan struct{}
	dispatchCh     chan dispatchMsg
	sub            *eventbus.Subscription
	wg             sync.WaitGroup

	activeMu   sync.Mutex
	activeRuns map[uuid.UUID]*executor.RunHandle
}

type dispatchMsg struct {
	job model.Job
}

// New constructs a Scheduler.
func New(cat *catalog.Store, exec *executor.Executor, bus *eventbus.Bus, clk clock.Clock, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		catalog:  cat,
		executor: exec,
		bus:      bus,
		clk:      clk,
		logger:   logger.With(slog.String("component", "scheduler.Scheduler")),
	}
}

// Name implements worker.Worker.
func (s *Scheduler) Name() string { return "scheduler.Scheduler" }

// OnStart implements worker.Worker. Non-blocking: the planning loop, the
// dispatch consumer, and the catalog-change watcher each run on their own
// goroutine.
func (s *Scheduler) OnStart(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	s.stopCh = make(chan struct{})
	s.catalogChanged = make(chan struct{}, 1)
	s.dispatchCh = make(chan dispatchMsg, dispatchCapacity)
	s.sub = s.bus.Subscribe()
	s.activeRuns = make(map[uuid.UUID]*executor.RunHandle)
	s.running = true

	s.wg.Add(3)
	go s.watchCatalogChanges()
	go s.dispatchConsumer()
	go s.planLoop()

	s.logger.Info("scheduler started")
	return nil
}

// OnStop implements worker.Worker. Signals every goroutine to exit and
// waits for them, bounded by ctx's deadline.
func (s *Scheduler) OnStop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	sub := s.sub
	s.mu.Unlock()

	sub.Unsubscribe()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("scheduler stop deadline exceeded, goroutines may still be winding down")
	}
	s.logger.Info("scheduler stopped")
	return nil
}

// ActiveRuns returns a snapshot of the job-id -> RunHandle map for
// in-flight runs, used by internal/lifecycle's shutdown sequence.
func (s *Scheduler) ActiveRuns() map[uuid.UUID]*executor.RunHandle {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	out := make(map[uuid.UUID]*executor.RunHandle, len(s.activeRuns))
	for k, v := range s.activeRuns {
		out[k] = v
	}
	return out
}

// Trigger spawns job immediately via the same Executor the planning loop
// uses, bypassing the dispatch channel since the caller already knows
// exactly which job to run. trigger may be nil.
func (s *Scheduler) Trigger(ctx context.Context, job model.Job, trigger *model.TriggerParams) (*executor.RunHandle, error) {
	handle, err := s.executor.Spawn(ctx, job, trigger)
	if err != nil {
		return nil, err
	}
	s.trackRun(job.ID, handle)
	return handle, nil
}

func (s *Scheduler) trackRun(jobID uuid.UUID, handle *executor.RunHandle) {
	s.activeMu.Lock()
	s.activeRuns[jobID] = handle
	s.activeMu.Unlock()

	go func() {
		<-handle.Done()
		s.activeMu.Lock()
		if s.activeRuns[jobID] == handle {
			delete(s.activeRuns, jobID)
		}
		s.activeMu.Unlock()
	}()
}

func (s *Scheduler) signalCatalogChanged() {
	select {
	case s.catalogChanged <- struct{}{}:
	default:
	}
}

// watchCatalogChanges forwards JobChanged events (and lag signals, which
// may have coalesced a JobChanged this subscriber never directly saw) into
// the single-slot catalogChanged channel the planning loop selects on.
func (s *Scheduler) watchCatalogChanges() {
	defer s.wg.Done()
	ctx := context.Background()
	for {
		ev, lag, ok := s.sub.Recv(ctx)
		if !ok {
			return
		}
		if lag > 0 || ev.Kind == model.EventJobChanged {
			s.signalCatalogChanged()
		}
	}
}

// dispatchConsumer is the single consumer task from spec.md §4.7: it reads
// every dispatched job message and spawns it via the Executor,
// tracking the resulting RunHandle in the active-runs map.
func (s *Scheduler) dispatchConsumer() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		case msg, ok := <-s.dispatchCh:
			if !ok {
				return
			}
			handle, err := s.executor.Spawn(context.Background(), msg.job, nil)
			if err != nil {
				s.logger.Error("failed to spawn scheduled run",
					slog.String("job_id", msg.job.ID.String()), slog.String("error", err.Error()))
				continue
			}
			s.trackRun(msg.job.ID, handle)
		}
	}
}

type plannedJob struct {
	job  model.Job
	next time.Time
}

// planLoop implements spec.md §4.7 steps 1-6.
func (s *Scheduler) planLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		due := s.plan()

		if len(due) == 0 {
			select {
			case <-s.stopCh:
				return
			case <-s.catalogChanged:
				continue
			}
		}

		earliest := due[0].next
		for _, p := range due[1:] {
			if p.next.Before(earliest) {
				earliest = p.next
			}
		}
		wait := earliest.Sub(s.clk.Now())
		if wait < 0 {
			wait = 0
		}

		select {
		case <-s.stopCh:
			return
		case <-s.catalogChanged:
			continue
		case <-s.clk.After(wait):
			s.dispatchDue(due)
		}
	}
}

// plan reads the catalog, keeps enabled jobs, and computes each one's next
// occurrence. Jobs with an unparseable schedule or timezone are logged and
// skipped for this tick but remain in the catalog.
func (s *Scheduler) plan() []plannedJob {
	now := s.clk.Now()
	jobs := s.catalog.List()
	due := make([]plannedJob, 0, len(jobs))
	for _, job := range jobs {
		if !job.Enabled {
			continue
		}
		tz := "UTC"
		if job.Timezone != nil {
			tz = *job.Timezone
		}
		sched, err := cronexpr.Parse(job.Schedule, tz)
		if err != nil {
			s.logger.Warn("skipping job with unparseable schedule",
				slog.String("job_id", job.ID.String()), slog.String("schedule", job.Schedule), slog.String("error", err.Error()))
			continue
		}
		due = append(due, plannedJob{job: job, next: sched.Next(now)})
	}
	return due
}

// dispatchDue re-reads now and sends every job whose planned next has
// arrived onto the dispatch channel.
func (s *Scheduler) dispatchDue(due []plannedJob) {
	now := s.clk.Now()
	for _, p := range due {
		if p.next.After(now) {
			continue
		}
		select {
		case s.dispatchCh <- dispatchMsg{job: p.job}:
		case <-s.stopCh:
			return
		}
	}
}
