package logstore

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/brightloop/acsd/internal/model"
)

// Store is the per-run log and metadata store.
type Store struct {
	root   string // {data_dir}/logs
	logger *slog.Logger
}

// New constructs a Store rooted at {dataDir}/logs.
func New(dataDir string, logger *slog.Logger) *Store {
	return &Store{
		root:   filepath.Join(dataDir, "logs"),
		logger: logger.With(slog.String("component", "logstore.Store")),
	}
}

// Root returns the logs root directory, used by the lifecycle orphan sweep.
func (s *Store) Root() string { return s.root }

func (s *Store) jobDir(jobID uuid.UUID) string {
	return filepath.Join(s.root, jobID.String())
}

func (s *Store) metaPath(jobID, runID uuid.UUID) string {
	return filepath.Join(s.jobDir(jobID), runID.String()+".meta.json")
}

func (s *Store) logPath(jobID, runID uuid.UUID) string {
	return filepath.Join(s.jobDir(jobID), runID.String()+".log")
}

// CreateRun writes the initial meta file for run. Idempotent overwrite.
func (s *Store) CreateRun(run model.JobRun) error {
	if err := os.MkdirAll(s.jobDir(run.JobID), 0o755); err != nil {
		return model.NewStorage(err, "create job log directory")
	}
	return s.writeMeta(run)
}

// UpdateRun rewrites the meta file for run.
func (s *Store) UpdateRun(run model.JobRun) error {
	return s.writeMeta(run)
}

func (s *Store) writeMeta(run model.JobRun) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return model.NewStorage(err, "marshal run metadata")
	}
	if err := os.WriteFile(s.metaPath(run.JobID, run.RunID), data, 0o644); err != nil {
		return model.NewStorage(err, "write run metadata")
	}
	return nil
}

// AppendLog opens the run's log file for append (creating it if missing),
// writes data, and flushes. Tolerates a missing log file but not a missing
// job directory — CreateRun must have run first.
func (s *Store) AppendLog(jobID, runID uuid.UUID, data []byte) (int64, error) {
	f, err := os.OpenFile(s.logPath(jobID, runID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, model.NewStorage(err, "open run log for append")
	}
	defer f.Close()

	n, err := f.Write(data)
	if err != nil {
		return int64(n), model.NewStorage(err, "append run log")
	}
	if err := f.Sync(); err != nil {
		return int64(n), model.NewStorage(err, "flush run log")
	}
	return int64(n), nil
}

// ReadLog reads the run's log as UTF-8-lossy text. If tail is non-nil, only
// the last *tail lines are returned (split on "\n", rejoined, no trailing
// newline).
func (s *Store) ReadLog(jobID, runID uuid.UUID, tail *int) (string, error) {
	data, err := os.ReadFile(s.logPath(jobID, runID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", model.NewStorage(err, "read run log")
	}

	text := toUTF8Lossy(data)
	if tail == nil {
		return text, nil
	}

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	n := *tail
	if n < 0 {
		n = 0
	}
	if n < len(lines) {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n"), nil
}

// ListRuns enumerates all meta files under jobID's directory, skipping
// unparseable ones with a warning, sorted by StartedAt descending. Returns
// the requested page plus the unpaginated total.
func (s *Store) ListRuns(jobID uuid.UUID, limit, offset int) ([]model.JobRun, int, error) {
	entries, err := os.ReadDir(s.jobDir(jobID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, model.NewStorage(err, "list run metadata")
	}

	var runs []model.JobRun
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".meta.json") {
			continue
		}
		path := filepath.Join(s.jobDir(jobID), e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("failed to read run metadata", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		var run model.JobRun
		if err := json.Unmarshal(data, &run); err != nil {
			s.logger.Warn("failed to parse run metadata", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	total := len(runs)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return runs[offset:end], total, nil
}

// ListAllRunning scans every job directory under the logs root and returns
// every run whose meta file still reports RunStatusRunning. Used by the
// lifecycle shutdown sequence's belt-and-braces sweep: any run that is
// still Running at that point in shutdown was not reached by the active-
// runs map (e.g. the process crashed and is restarting into a stale state).
func (s *Store) ListAllRunning() ([]model.JobRun, error) {
	jobDirs, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, model.NewStorage(err, "list job log directories")
	}

	var running []model.JobRun
	for _, jd := range jobDirs {
		if !jd.IsDir() {
			continue
		}
		jobID, err := uuid.Parse(jd.Name())
		if err != nil {
			continue
		}
		runs, _, err := s.ListRuns(jobID, 0, 0)
		if err != nil {
			s.logger.Warn("failed to list runs during running-sweep", slog.String("job_id", jobID.String()), slog.String("error", err.Error()))
			continue
		}
		for _, run := range runs {
			if run.Status == model.RunStatusRunning {
				running = append(running, run)
			}
		}
	}
	return running, nil
}

// Cleanup deletes the oldest runs (by StartedAt) beyond maxFiles, removing
// both meta and log files for each.
func (s *Store) Cleanup(jobID uuid.UUID, maxFiles int) error {
	runs, total, err := s.ListRuns(jobID, 0, 0)
	if err != nil {
		return err
	}
	if total <= maxFiles {
		return nil
	}

	// runs is sorted newest-first; the tail beyond maxFiles is oldest.
	toRemove := runs[maxFiles:]
	for _, run := range toRemove {
		if err := os.Remove(s.metaPath(jobID, run.RunID)); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove run metadata during cleanup", slog.String("run_id", run.RunID.String()), slog.String("error", err.Error()))
		}
		if err := os.Remove(s.logPath(jobID, run.RunID)); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove run log during cleanup", slog.String("run_id", run.RunID.String()), slog.String("error", err.Error()))
		}
	}
	return nil
}

func toUTF8Lossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "�")
}
