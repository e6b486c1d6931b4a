package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/brightloop/acsd/internal/catalog"
	"github.com/brightloop/acsd/internal/clock"
	"github.com/brightloop/acsd/internal/eventbus"
	"github.com/brightloop/acsd/internal/executor"
	"github.com/brightloop/acsd/internal/health"
	checkdisk "github.com/brightloop/acsd/internal/health/checks/disk"
	checkruntime "github.com/brightloop/acsd/internal/health/checks/runtime"
	"github.com/brightloop/acsd/internal/logstore"
	"github.com/brightloop/acsd/internal/metadata"
	"github.com/brightloop/acsd/internal/model"
	"github.com/brightloop/acsd/internal/scheduler"
	apihttp "github.com/brightloop/acsd/internal/server/http"
	"github.com/brightloop/acsd/internal/spawner"
	"github.com/brightloop/acsd/internal/worker"
)

// diskHealthThresholdPercent is the disk-usage readiness threshold applied
// to the data directory's filesystem.
const diskHealthThresholdPercent = 90

// goroutineHealthThreshold is the liveness threshold for leaked goroutines.
const goroutineHealthThreshold = 5000

// runKillGrace bounds how long shutdown waits for a single active run to
// finish after being killed, per spec.md §4.8 step 3.
const runKillGrace = 30 * time.Second

// App wires every long-lived daemon component together and owns the
// top-level startup and shutdown sequences. It is the one place that knows
// about every package in this module; nothing downstream of it imports it
// back.
type App struct {
	cfg     model.DaemonConfig
	dataDir string
	logger  *slog.Logger

	pidFile  *PIDFile
	portFile *PortFile

	bus       *eventbus.Bus
	catalog   *catalog.Store
	logStore  *logstore.Store
	executor  *executor.Executor
	scheduler *scheduler.Scheduler
	metadata  *metadata.Updater
	http      *apihttp.Server

	healthMgr      *health.Manager
	healthShutdown *health.ShutdownCheck
	healthServer   *health.ManagementServer

	manager *worker.Manager
}

// NewApp resolves the data directory, claims the single-instance PID file,
// loads configuration, and constructs every component, in the order
// spec.md §4.8 describes for daemon startup. The caller is responsible for
// calling Start and, eventually, Shutdown.
//
// If logger is nil, NewApp builds one from the loaded DaemonConfig's
// LogFormat/LogLevel via BuildLogger, fanning output to both stdout and a
// rolling daemon.log capped at DaemonLogMaxBytes.
func NewApp(ctx context.Context, dataDirFlag, configPathFlag string, logger *slog.Logger) (*App, error) {
	dataDir, err := ResolveDataDir(dataDirFlag)
	if err != nil {
		return nil, err
	}

	pidFile, err := AcquirePIDFile(ctx, dataDir)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: acquire pid file: %w", err)
	}

	cfg, err := LoadConfig(dataDir, configPathFlag)
	if err != nil {
		pidFile.Release()
		return nil, err
	}

	if logger == nil {
		logger = BuildLogger(cfg, dataDir)
	}

	clk := clock.NewSystemClock()
	bus := eventbus.New(cfg.BroadcastCapacity)

	cat, err := catalog.New(dataDir, clk, bus, logger)
	if err != nil {
		pidFile.Release()
		return nil, fmt.Errorf("lifecycle: open catalog: %w", err)
	}

	logStore := logstore.New(dataDir, logger)

	// Reserved-for-PTY-opt-in is not exercised yet (no per-job opt-in field
	// exists), so every run spawns through the pipe variant.
	sp := spawner.NewPipeSpawner()
	scriptsDir := filepath.Join(dataDir, "scripts")
	exec := executor.New(sp, logStore, bus, clk, cfg, scriptsDir, logger)

	sched := scheduler.New(cat, exec, bus, clk, logger)
	metaUpdater := metadata.New(cat, bus, logger)

	httpCfg := apihttp.DefaultConfig()
	httpCfg.Port = cfg.Port
	httpServer := apihttp.NewServer(httpCfg, http.NotFoundHandler(), logger)

	if err := SweepOrphanLogs(logStore.Root(), cat, logger); err != nil {
		logger.Warn("orphan log sweep failed", slog.String("error", err.Error()))
	}

	healthMgr := health.NewManager()
	healthMgr.AddLivenessCheck("goroutines", checkruntime.GoroutineCount(goroutineHealthThreshold))
	healthMgr.AddReadinessCheck("data_dir_disk_space", checkdisk.New(checkdisk.Config{
		Path:             dataDir,
		ThresholdPercent: diskHealthThresholdPercent,
	}))
	healthShutdown := health.NewShutdownCheck()
	healthMgr.AddReadinessCheck("shutting_down", healthShutdown.Check)
	healthServer := health.NewManagementServer(health.DefaultConfig(), healthMgr, healthShutdown, logger)

	return &App{
		cfg:            cfg,
		dataDir:        dataDir,
		logger:         logger.With(slog.String("component", "lifecycle.App")),
		pidFile:        pidFile,
		bus:            bus,
		catalog:        cat,
		logStore:       logStore,
		executor:       exec,
		scheduler:      sched,
		metadata:       metaUpdater,
		http:           httpServer,
		healthMgr:      healthMgr,
		healthShutdown: healthShutdown,
		healthServer:   healthServer,
		manager:        worker.NewManager(logger),
	}, nil
}

// Start registers every long-lived component with the worker.Manager for
// ongoing panic-recovery supervision, starts them, and writes the port file
// once the HTTP listener has actually bound.
func (a *App) Start(ctx context.Context) error {
	if err := a.manager.Register(a.http); err != nil {
		return err
	}
	if err := a.manager.Register(a.scheduler, worker.WithCritical()); err != nil {
		return err
	}
	if err := a.manager.Register(a.metadata); err != nil {
		return err
	}

	if err := a.manager.Start(ctx); err != nil {
		return err
	}

	// ManagementServer has no Name() method, so it isn't a worker.Worker;
	// it is started/stopped directly rather than through worker.Manager.
	if err := a.healthServer.OnStart(ctx); err != nil {
		return fmt.Errorf("lifecycle: start health management server: %w", err)
	}

	portFile, err := WritePortFile(a.dataDir, a.http.BoundPort())
	if err != nil {
		return fmt.Errorf("lifecycle: write port file: %w", err)
	}
	a.portFile = portFile

	a.logger.Info("daemon started",
		slog.String("data_dir", a.dataDir),
		slog.Int("port", a.http.BoundPort()))
	return nil
}

// Shutdown implements spec.md §4.8's ordered graceful-shutdown sequence.
// Each step is best-effort: a failure partway through still proceeds to the
// next step rather than aborting, since an incomplete shutdown should
// release as much as it safely can.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("daemon shutting down")

	if err := a.healthServer.OnStop(ctx); err != nil {
		a.logger.Warn("health management server stop reported an error", slog.String("error", err.Error()))
	}

	if err := a.http.OnStop(ctx); err != nil {
		a.logger.Warn("http server stop reported an error", slog.String("error", err.Error()))
	}

	if err := a.scheduler.OnStop(ctx); err != nil {
		a.logger.Warn("scheduler stop reported an error", slog.String("error", err.Error()))
	}

	a.killActiveRuns(ctx)
	a.markStaleRunningAsKilled()

	if a.pidFile != nil {
		if err := a.pidFile.Release(); err != nil {
			a.logger.Warn("failed to release pid file", slog.String("error", err.Error()))
		}
	}
	if a.portFile != nil {
		if err := a.portFile.Release(); err != nil {
			a.logger.Warn("failed to release port file", slog.String("error", err.Error()))
		}
	}

	// Components have already been stopped explicitly above in the order
	// spec.md §4.8 mandates; this only joins the supervisor goroutines
	// (each OnStop is idempotent, so the redundant call is harmless).
	if err := a.manager.Stop(); err != nil {
		a.logger.Warn("worker manager stop reported an error", slog.String("error", err.Error()))
	}

	a.logger.Info("daemon shutdown complete")
	return nil
}

// killActiveRuns signals every in-flight run tracked by the scheduler and
// waits up to runKillGrace each for it to finish.
func (a *App) killActiveRuns(ctx context.Context) {
	for jobID, handle := range a.scheduler.ActiveRuns() {
		handle.Kill()

		grace, cancel := context.WithTimeout(ctx, runKillGrace)
		select {
		case <-handle.Done():
		case <-grace.Done():
			a.logger.Warn("run did not finish within shutdown grace period",
				slog.String("job_id", jobID.String()), slog.String("run_id", handle.RunID.String()))
		}
		cancel()
	}
}

// markStaleRunningAsKilled is the belt-and-braces sweep: any run still
// recorded as Running in the log store after the active-runs map has been
// drained was never reached by it (e.g. a prior crash left a stale
// record), so it is force-finalized here instead.
func (a *App) markStaleRunningAsKilled() {
	running, err := a.logStore.ListAllRunning()
	if err != nil {
		a.logger.Warn("failed to list running runs during shutdown", slog.String("error", err.Error()))
		return
	}

	now := time.Now()
	for _, run := range running {
		msg := "Daemon shutting down"
		run.Status = model.RunStatusKilled
		run.Error = &msg
		run.FinishedAt = &now
		if err := a.logStore.UpdateRun(run); err != nil {
			a.logger.Warn("failed to finalize stale running run",
				slog.String("job_id", run.JobID.String()), slog.String("run_id", run.RunID.String()),
				slog.String("error", err.Error()))
			continue
		}
		a.bus.Publish(model.NewFailedEvent(run.JobID, run.RunID, msg, now))
	}
}
