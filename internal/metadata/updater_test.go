package metadata

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightloop/acsd/internal/catalog"
	"github.com/brightloop/acsd/internal/clock"
	"github.com/brightloop/acsd/internal/eventbus"
	"github.com/brightloop/acsd/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func TestUpdater_CompletedEventUpdatesTelemetry(t *testing.T) {
	clk := clock.NewVirtualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	bus := eventbus.New(16)
	cat, err := catalog.New(t.TempDir(), clk, nil, testLogger())
	require.NoError(t, err)

	job, err := cat.Create(model.NewJob{Name: "a", Schedule: "@daily", Execution: model.NewShellCommand("x")})
	require.NoError(t, err)

	u := New(cat, bus, testLogger())
	require.NoError(t, u.OnStart(context.Background()))
	defer u.OnStop(context.Background())

	runID := job.ID // any uuid works here, handler keys off JobID only
	bus.Publish(model.NewCompletedEvent(job.ID, runID, 7, clk.Now()))

	assert.Eventually(t, func() bool {
		got, err := cat.Get(job.ID)
		return err == nil && got.LastExitCode != nil && *got.LastExitCode == 7
	}, time.Second, 5*time.Millisecond)
}

func TestUpdater_FailedEventSetsLastRunAtNoExitCode(t *testing.T) {
	clk := clock.NewVirtualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	bus := eventbus.New(16)
	cat, err := catalog.New(t.TempDir(), clk, nil, testLogger())
	require.NoError(t, err)

	job, err := cat.Create(model.NewJob{Name: "a", Schedule: "@daily", Execution: model.NewShellCommand("x")})
	require.NoError(t, err)

	u := New(cat, bus, testLogger())
	require.NoError(t, u.OnStart(context.Background()))
	defer u.OnStop(context.Background())

	bus.Publish(model.NewFailedEvent(job.ID, job.ID, "boom", clk.Now()))

	assert.Eventually(t, func() bool {
		got, err := cat.Get(job.ID)
		return err == nil && got.LastRunAt != nil
	}, time.Second, 5*time.Millisecond)

	got, err := cat.Get(job.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastExitCode)
}

func TestUpdater_IgnoresJobChangedAndOutputEvents(t *testing.T) {
	clk := clock.NewVirtualClock(time.Now())
	bus := eventbus.New(16)
	cat, err := catalog.New(t.TempDir(), clk, nil, testLogger())
	require.NoError(t, err)

	job, err := cat.Create(model.NewJob{Name: "a", Schedule: "@daily", Execution: model.NewShellCommand("x")})
	require.NoError(t, err)

	u := New(cat, bus, testLogger())
	require.NoError(t, u.OnStart(context.Background()))
	defer u.OnStop(context.Background())

	bus.Publish(model.NewOutputEvent(job.ID, job.ID, "hi", clk.Now()))
	bus.Publish(model.NewJobChangedEvent(job.ID, model.JobChangeUpdated, clk.Now()))

	time.Sleep(20 * time.Millisecond)
	got, err := cat.Get(job.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastRunAt)
	assert.Nil(t, got.LastExitCode)
}
