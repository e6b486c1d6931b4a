package executor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightloop/acsd/internal/clock"
	"github.com/brightloop/acsd/internal/eventbus"
	"github.com/brightloop/acsd/internal/logstore"
	"github.com/brightloop/acsd/internal/model"
	"github.com/brightloop/acsd/internal/spawner"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func testJob(timeoutSecs uint64) model.Job {
	return model.Job{
		ID:          uuid.New(),
		Name:        "demo",
		Schedule:    "* * * * *",
		Execution:   model.NewShellCommand("echo hi"),
		Enabled:     true,
		TimeoutSecs: timeoutSecs,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func newTestExecutor(t *testing.T, sp spawner.Spawner, clk clock.Clock) (*Executor, *eventbus.Bus, *logstore.Store) {
	t.Helper()
	store := logstore.New(t.TempDir(), testLogger())
	bus := eventbus.New(64)
	cfg := model.DefaultDaemonConfig()
	return New(sp, store, bus, clk, cfg, t.TempDir(), testLogger()), bus, store
}

func TestExecutor_SpawnSuccessEmitsStartedAndCompleted(t *testing.T) {
	clk := clock.NewVirtualClock(time.Now())
	sp := spawner.NewScriptedSpawner(spawner.ScriptedRun{
		Chunks:   []spawner.ScriptedChunk{{Data: []byte("hi\n")}},
		ExitCode: 0,
	})
	ex, bus, store := newTestExecutor(t, sp, clk)
	sub := bus.Subscribe()
	defer sub.Unsubscribe()

	job := testJob(0)
	handle, err := ex.Spawn(context.Background(), job, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	started, _, ok := sub.Recv(ctx)
	require.True(t, ok)
	assert.Equal(t, model.EventStarted, started.Kind)

	header, _, ok := sub.Recv(ctx)
	require.True(t, ok)
	assert.Equal(t, model.EventOutput, header.Kind)
	assert.Contains(t, header.Data, "$ echo hi")

	output, _, ok := sub.Recv(ctx)
	require.True(t, ok)
	assert.Equal(t, "hi\n", output.Data)

	completed, _, ok := sub.Recv(ctx)
	require.True(t, ok)
	assert.Equal(t, model.EventCompleted, completed.Kind)
	require.NotNil(t, completed.ExitCode)
	assert.Zero(t, *completed.ExitCode)

	<-handle.Done()

	runs, total, err := store.ListRuns(job.ID, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, model.RunStatusCompleted, runs[0].Status)

	logText, err := store.ReadLog(job.ID, handle.RunID, nil)
	require.NoError(t, err)
	assert.Contains(t, logText, "$ echo hi")
	assert.Contains(t, logText, "hi\n")
}

func TestExecutor_SpawnFailureEmitsFailedEvent(t *testing.T) {
	clk := clock.NewVirtualClock(time.Now())
	spawnErr := assertionError("boom")
	sp := spawner.NewScriptedSpawner(spawner.ScriptedRun{SpawnErr: spawnErr})
	ex, bus, store := newTestExecutor(t, sp, clk)
	sub := bus.Subscribe()
	defer sub.Unsubscribe()

	job := testJob(0)
	handle, err := ex.Spawn(context.Background(), job, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	started, _, ok := sub.Recv(ctx)
	require.True(t, ok)
	assert.Equal(t, model.EventStarted, started.Kind)

	failed, _, ok := sub.Recv(ctx)
	require.True(t, ok)
	assert.Equal(t, model.EventFailed, failed.Kind)
	assert.Contains(t, failed.Error, "boom")

	<-handle.Done()

	runs, _, err := store.ListRuns(job.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusFailed, runs[0].Status)
}

func TestExecutor_KillStopsRunAndMarksKilled(t *testing.T) {
	clk := clock.NewVirtualClock(time.Now())
	sp := spawner.NewScriptedSpawner(spawner.ScriptedRun{
		Chunks: []spawner.ScriptedChunk{
			{Data: []byte("a"), Delay: 50 * time.Millisecond},
			{Data: []byte("b"), Delay: 50 * time.Millisecond},
			{Data: []byte("c"), Delay: 50 * time.Millisecond},
		},
		ExitCode: 0,
	})
	ex, bus, store := newTestExecutor(t, sp, clk)
	sub := bus.Subscribe()
	defer sub.Unsubscribe()

	job := testJob(0)
	handle, err := ex.Spawn(context.Background(), job, nil)
	require.NoError(t, err)

	handle.Kill()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	<-handle.Done()

	drainUntilKind(t, ctx, sub, model.EventFailed)

	runs, _, err := store.ListRuns(job.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusKilled, runs[0].Status)
}

func TestExecutor_TimeoutMarksFailed(t *testing.T) {
	clk := clock.NewVirtualClock(time.Now())
	sp := spawner.NewScriptedSpawner(spawner.ScriptedRun{
		Chunks: []spawner.ScriptedChunk{
			{Data: []byte("slow"), Delay: time.Hour},
		},
		ExitCode: 0,
	})
	ex, bus, store := newTestExecutor(t, sp, clk)
	sub := bus.Subscribe()
	defer sub.Unsubscribe()

	job := testJob(5)
	handle, err := ex.Spawn(context.Background(), job, nil)
	require.NoError(t, err)

	// Give the run goroutine a moment to register its timer with the
	// virtual clock before advancing past it.
	time.Sleep(20 * time.Millisecond)
	clk.Advance(6 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	<-handle.Done()

	drainUntilKind(t, ctx, sub, model.EventFailed)

	runs, _, err := store.ListRuns(job.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusFailed, runs[0].Status)
	require.NotNil(t, runs[0].Error)
	assert.Equal(t, "execution timed out", *runs[0].Error)
}

func TestExecutor_TriggerExtraArgsAndEnvOverlayApplied(t *testing.T) {
	clk := clock.NewVirtualClock(time.Now())
	sp := spawner.NewScriptedSpawner(spawner.ScriptedRun{ExitCode: 0})
	ex, bus, _ := newTestExecutor(t, sp, clk)
	sub := bus.Subscribe()
	defer sub.Unsubscribe()

	job := testJob(0)
	trigger := &model.TriggerParams{
		ExtraArgs:  "--flag value",
		EnvOverlay: map[string]string{"FOO": "bar"},
	}
	handle, err := ex.Spawn(context.Background(), job, trigger)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	<-handle.Done()

	drainUntilKind(t, ctx, sub, model.EventCompleted)
}

func drainUntilKind(t *testing.T, ctx context.Context, sub *eventbus.Subscription, kind model.EventKind) {
	t.Helper()
	for i := 0; i < 20; i++ {
		ev, _, ok := sub.Recv(ctx)
		if !ok {
			t.Fatalf("subscription closed before observing %s event", kind)
		}
		if ev.Kind == kind {
			return
		}
	}
	t.Fatalf("did not observe %s event within bound", kind)
}

type assertionError string

func (e assertionError) Error() string { return string(e) }
