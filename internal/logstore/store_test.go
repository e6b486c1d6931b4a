package logstore

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightloop/acsd/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(t.TempDir(), logger)
}

func TestStore_CreateAppendReadLog(t *testing.T) {
	s := newTestStore(t)
	jobID, runID := uuid.New(), uuid.New()

	run := model.JobRun{JobID: jobID, RunID: runID, Status: model.RunStatusRunning, StartedAt: time.Now()}
	require.NoError(t, s.CreateRun(run))

	_, err := s.AppendLog(jobID, runID, []byte("line one\n"))
	require.NoError(t, err)
	_, err = s.AppendLog(jobID, runID, []byte("line two\n"))
	require.NoError(t, err)

	text, err := s.ReadLog(jobID, runID, nil)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", text)

	tail := 1
	text, err = s.ReadLog(jobID, runID, &tail)
	require.NoError(t, err)
	assert.Equal(t, "line two", text)
}

func TestStore_AppendLogToleratesMissingLogFile(t *testing.T) {
	s := newTestStore(t)
	jobID, runID := uuid.New(), uuid.New()
	run := model.JobRun{JobID: jobID, RunID: runID, Status: model.RunStatusRunning, StartedAt: time.Now()}
	require.NoError(t, s.CreateRun(run))

	n, err := s.AppendLog(jobID, runID, []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestStore_ListRunsSortedDescendingWithTotal(t *testing.T) {
	s := newTestStore(t)
	jobID := uuid.New()
	base := time.Now()

	for i := 0; i < 3; i++ {
		run := model.JobRun{
			JobID:     jobID,
			RunID:     uuid.New(),
			Status:    model.RunStatusCompleted,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.CreateRun(run))
	}

	page, total, err := s.ListRuns(jobID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.True(t, page[0].StartedAt.After(page[1].StartedAt))
}

func TestStore_CleanupRemovesOldestBeyondMax(t *testing.T) {
	s := newTestStore(t)
	jobID := uuid.New()
	base := time.Now()

	var runIDs []uuid.UUID
	for i := 0; i < 5; i++ {
		runID := uuid.New()
		runIDs = append(runIDs, runID)
		run := model.JobRun{
			JobID:     jobID,
			RunID:     runID,
			Status:    model.RunStatusCompleted,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.CreateRun(run))
	}

	require.NoError(t, s.Cleanup(jobID, 2))

	_, total, err := s.ListRuns(jobID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestStore_ReadLogMissingReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	text, err := s.ReadLog(uuid.New(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestStore_ListAllRunningFindsOnlyRunningAcrossJobs(t *testing.T) {
	s := newTestStore(t)

	jobA, jobB := uuid.New(), uuid.New()
	require.NoError(t, s.CreateRun(model.JobRun{JobID: jobA, RunID: uuid.New(), Status: model.RunStatusRunning, StartedAt: time.Now()}))
	require.NoError(t, s.CreateRun(model.JobRun{JobID: jobA, RunID: uuid.New(), Status: model.RunStatusCompleted, StartedAt: time.Now()}))
	require.NoError(t, s.CreateRun(model.JobRun{JobID: jobB, RunID: uuid.New(), Status: model.RunStatusRunning, StartedAt: time.Now()}))

	running, err := s.ListAllRunning()
	require.NoError(t, err)
	assert.Len(t, running, 2)
	for _, r := range running {
		assert.Equal(t, model.RunStatusRunning, r.Status)
	}
}

func TestStore_ListAllRunningEmptyWhenNoLogsDir(t *testing.T) {
	s := newTestStore(t)
	running, err := s.ListAllRunning()
	require.NoError(t, err)
	assert.Empty(t, running)
}
