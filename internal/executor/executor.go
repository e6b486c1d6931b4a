package executor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/brightloop/acsd/internal/clock"
	"github.com/brightloop/acsd/internal/eventbus"
	"github.com/brightloop/acsd/internal/logstore"
	"github.com/brightloop/acsd/internal/model"
	"github.com/brightloop/acsd/internal/spawner"
)

const readBufferSize = 8192

// Executor spawns a Job's subprocess and drives it to completion.
type Executor struct {
	spawner    spawner.Spawner
	logStore   *logstore.Store
	bus        *eventbus.Bus
	clk        clock.Clock
	cfg        model.DaemonConfig
	scriptsDir string
	logger     *slog.Logger
}

// New constructs an Executor.
func New(sp spawner.Spawner, logStore *logstore.Store, bus *eventbus.Bus, clk clock.Clock, cfg model.DaemonConfig, scriptsDir string, logger *slog.Logger) *Executor {
	return &Executor{
		spawner:    sp,
		logStore:   logStore,
		bus:        bus,
		clk:        clk,
		cfg:        cfg,
		scriptsDir: scriptsDir,
		logger:     logger.With(slog.String("component", "executor.Executor")),
	}
}

// Spawn starts job running and returns immediately with a RunHandle; the
// run proceeds on its own goroutines. trigger may be nil for a
// scheduler-initiated fire.
func (e *Executor) Spawn(ctx context.Context, job model.Job, trigger *model.TriggerParams) (*RunHandle, error) {
	runID := uuid.Must(uuid.NewV7())
	now := e.clk.Now()

	run := model.JobRun{
		RunID:     runID,
		JobID:     job.ID,
		StartedAt: now,
		Status:    model.RunStatusRunning,
	}
	if trigger != nil {
		tp := trigger.Clone()
		run.TriggerParams = &tp
	}
	if err := e.logStore.CreateRun(run); err != nil {
		return nil, err
	}

	e.bus.Publish(model.NewStartedEvent(job.ID, runID, job.Name, now))

	handle := newRunHandle(job.ID, runID)
	go e.run(ctx, job, trigger, handle, run)
	return handle, nil
}

func (e *Executor) run(ctx context.Context, job model.Job, trigger *model.TriggerParams, handle *RunHandle, run model.JobRun) {
	defer close(handle.done)
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic in executor run goroutine",
				slog.String("job_id", job.ID.String()),
				slog.String("run_id", handle.RunID.String()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	cb := spawner.BuildCommand(job, e.scriptsDir)
	applyTrigger(&cb, trigger)

	proc, err := e.spawner.Spawn(ctx, cb, e.cfg.PTYRows, e.cfg.PTYCols)
	if err != nil {
		e.finalizeSpawnFailure(job, run, err)
		return
	}

	if job.LogEnvironment {
		e.writeEnvironmentDump(job, run.RunID, cb)
	}
	e.writeCommandHeader(job, run.RunID, cb)

	totalBytes, outcome := e.pump(job, run.RunID, proc, handle.killCh)
	e.finalize(job, run, totalBytes, outcome)
}

// applyTrigger layers a trigger's overrides onto a built command: extra
// args are appended, and the env overlay wins over the job's own env on key
// collision.
func applyTrigger(cb *spawner.CommandBuilder, trigger *model.TriggerParams) {
	if trigger == nil {
		return
	}
	if trigger.ExtraArgs != "" {
		cb.Args = append(cb.Args, strings.Fields(trigger.ExtraArgs)...)
	}
	if len(trigger.EnvOverlay) > 0 {
		if cb.Env == nil {
			cb.Env = make(map[string]string, len(trigger.EnvOverlay))
		}
		for k, v := range trigger.EnvOverlay {
			cb.Env[k] = v
		}
	}
}

func (e *Executor) finalizeSpawnFailure(job model.Job, run model.JobRun, spawnErr error) {
	errMsg := fmt.Sprintf("failed to spawn process: %v", spawnErr)
	e.logger.Error("spawn failed", slog.String("job_id", job.ID.String()), slog.String("run_id", run.RunID.String()), slog.String("error", errMsg))

	finishedAt := e.clk.Now()
	run.FinishedAt = &finishedAt
	run.Status = model.RunStatusFailed
	run.Error = &errMsg
	if err := e.logStore.UpdateRun(run); err != nil {
		e.logger.Error("failed to update run on spawn failure", slog.String("error", err.Error()))
	}
	e.bus.Publish(model.NewFailedEvent(job.ID, run.RunID, errMsg, finishedAt))
	e.cleanup(job.ID)
}

func (e *Executor) writeEnvironmentDump(job model.Job, runID uuid.UUID, cb spawner.CommandBuilder) {
	keys := make([]string, 0, len(cb.Env))
	for k := range cb.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("=== Environment ===\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, cb.Env[k])
	}
	b.WriteString("===================\n")
	e.writeAndBroadcastOutput(job.ID, runID, b.String())
}

func (e *Executor) writeCommandHeader(job model.Job, runID uuid.UUID, cb spawner.CommandBuilder) {
	var commandStr string
	switch job.Execution.Kind {
	case model.ExecutionScriptFile:
		commandStr = "[script] " + job.Execution.Value
	default:
		commandStr = job.Execution.Value
	}
	e.writeAndBroadcastOutput(job.ID, runID, "$ "+commandStr+"\n")
}

func (e *Executor) writeAndBroadcastOutput(jobID, runID uuid.UUID, text string) {
	if _, err := e.logStore.AppendLog(jobID, runID, []byte(text)); err != nil {
		e.logger.Error("failed to append log", slog.String("error", err.Error()))
	}
	e.bus.Publish(model.NewOutputEvent(jobID, runID, text, e.clk.Now()))
}

// pumpOutcome discriminates how a run's output loop ended.
type pumpOutcome struct {
	killed   bool
	timedOut bool
	exitCode int
	waitErr  error
}

// pump reads process output until EOF, kill, or timeout, forwarding each
// chunk to both the EventBus and the LogStore, and returns the total bytes
// written plus how the loop ended.
func (e *Executor) pump(job model.Job, runID uuid.UUID, proc spawner.ProcessHandle, killCh <-chan struct{}) (int64, pumpOutcome) {
	chunks := make(chan []byte, 256)

	go func() {
		defer close(chunks)
		buf := make([]byte, readBufferSize)
		for {
			n, err := proc.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				chunks <- data
			}
			if err != nil {
				return
			}
		}
	}()

	timeoutSecs := job.TimeoutSecs
	if timeoutSecs == 0 {
		timeoutSecs = e.cfg.DefaultTimeoutSecs
	}
	var timeoutCh <-chan time.Time
	if timeoutSecs > 0 {
		timeoutCh = e.clk.After(time.Duration(timeoutSecs) * time.Second)
	}

	var totalBytes int64
	outcome := pumpOutcome{}

loop:
	for {
		select {
		case data, ok := <-chunks:
			if !ok {
				break loop
			}
			totalBytes += int64(len(data))
			text := toUTF8Lossy(data)
			e.bus.Publish(model.NewOutputEvent(job.ID, runID, text, e.clk.Now()))
			if _, err := e.logStore.AppendLog(job.ID, runID, data); err != nil {
				e.logger.Error("failed to append log", slog.String("error", err.Error()))
			}
		case <-timeoutCh:
			outcome.timedOut = true
			break loop
		case <-killCh:
			outcome.killed = true
			break loop
		}
	}

	if outcome.timedOut || outcome.killed {
		_ = proc.Kill()
		// Drain remaining chunks so the reader goroutine can exit.
		for range chunks {
		}
	}

	status, waitErr := proc.Wait()
	outcome.exitCode = status.ExitCode
	outcome.waitErr = waitErr
	return totalBytes, outcome
}

func (e *Executor) finalize(job model.Job, run model.JobRun, totalBytes int64, outcome pumpOutcome) {
	finishedAt := e.clk.Now()
	run.FinishedAt = &finishedAt
	run.LogSizeBytes = totalBytes

	switch {
	case outcome.timedOut:
		errMsg := "execution timed out"
		run.Status = model.RunStatusFailed
		run.Error = &errMsg
		e.persistAndBroadcastFailure(job, run, errMsg)
	case outcome.killed:
		errMsg := "job was killed"
		run.Status = model.RunStatusKilled
		run.Error = &errMsg
		e.persistAndBroadcastFailure(job, run, errMsg)
	case outcome.waitErr != nil:
		errMsg := fmt.Sprintf("process wait failed: %v", outcome.waitErr)
		run.Status = model.RunStatusFailed
		run.Error = &errMsg
		e.persistAndBroadcastFailure(job, run, errMsg)
	default:
		code := outcome.exitCode
		run.Status = model.RunStatusCompleted
		run.ExitCode = &code
		if err := e.logStore.UpdateRun(run); err != nil {
			e.logger.Error("failed to update run on completion", slog.String("error", err.Error()))
		}
		e.bus.Publish(model.NewCompletedEvent(job.ID, run.RunID, code, finishedAt))
	}

	e.cleanup(job.ID)
}

func (e *Executor) persistAndBroadcastFailure(job model.Job, run model.JobRun, errMsg string) {
	if err := e.logStore.UpdateRun(run); err != nil {
		e.logger.Error("failed to update run", slog.String("error", err.Error()))
	}
	e.bus.Publish(model.NewFailedEvent(job.ID, run.RunID, errMsg, *run.FinishedAt))
}

func (e *Executor) cleanup(jobID uuid.UUID) {
	if err := e.logStore.Cleanup(jobID, e.cfg.MaxLogFilesPerJob); err != nil {
		e.logger.Error("failed to clean up old run logs", slog.String("job_id", jobID.String()), slog.String("error", err.Error()))
	}
}

func toUTF8Lossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "�")
}
