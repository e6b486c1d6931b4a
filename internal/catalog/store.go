package catalog

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/brightloop/acsd/internal/clock"
	"github.com/brightloop/acsd/internal/eventbus"
	"github.com/brightloop/acsd/internal/model"
	"github.com/brightloop/acsd/internal/scheduler/cronexpr"
)

// Store is the durable Job catalog. All exported methods are safe for
// concurrent use.
type Store struct {
	path   string
	clock  clock.Clock
	bus    *eventbus.Bus
	logger *slog.Logger

	mu   sync.RWMutex
	jobs map[uuid.UUID]model.Job
}

// New constructs a Store backed by {dataDir}/jobs.json and loads its
// current contents (recovering from corruption per the package doc). bus
// may be nil, in which case catalog mutations are not broadcast — tests
// that don't care about JobChanged notifications can omit it.
func New(dataDir string, clk clock.Clock, bus *eventbus.Bus, logger *slog.Logger) (*Store, error) {
	s := &Store{
		path:   filepath.Join(dataDir, "jobs.json"),
		clock:  clk,
		bus:    bus,
		logger: logger.With(slog.String("component", "catalog.Store")),
		jobs:   make(map[uuid.UUID]model.Job),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// publish broadcasts a JobChanged event if a Bus was configured. Called
// after a mutation has already been durably persisted.
func (s *Store) publish(id uuid.UUID, kind model.JobChangeKind) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(model.NewJobChangedEvent(id, kind, s.clock.Now()))
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return model.NewStorage(err, "read jobs.json")
	}

	var jobs []model.Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		s.logger.Warn("jobs.json failed to parse, recovering by backup and starting empty",
			slog.String("error", err.Error()))
		bakPath := s.path + ".bak"
		if werr := os.WriteFile(bakPath, data, 0o644); werr != nil {
			s.logger.Warn("failed to write jobs.json.bak", slog.String("error", werr.Error()))
		}
		return nil
	}

	for _, j := range jobs {
		s.jobs[j.ID] = j
	}
	return nil
}

// persistLocked writes the full catalog to {path}.tmp and renames it over
// {path}. Must be called with s.mu held for writing; it snapshots s.jobs
// itself.
func (s *Store) persistLocked() error {
	jobs := make([]model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	// Stable order keeps jobs.json diff-friendly across successive writes.
	sortByCreatedAt(jobs)

	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return model.NewStorage(err, "marshal jobs.json")
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return model.NewStorage(err, "write jobs.json.tmp")
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return model.NewStorage(err, "rename jobs.json.tmp to jobs.json")
	}
	return nil
}

func sortByCreatedAt(jobs []model.Job) {
	for i := 1; i < len(jobs); i++ {
		for j := i; j > 0 && jobs[j].CreatedAt.Before(jobs[j-1].CreatedAt); j-- {
			jobs[j], jobs[j-1] = jobs[j-1], jobs[j]
		}
	}
}

// List returns a cloned snapshot of every job in the catalog.
func (s *Store) List() []model.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.Clone())
	}
	return out
}

// Get returns a clone of the job with the given id, or ErrNotFound.
func (s *Store) Get(id uuid.UUID) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return model.Job{}, model.NewNotFound("job %s not found", id)
	}
	return j.Clone(), nil
}

// FindByName returns a clone of the job with the given name, or ErrNotFound.
func (s *Store) FindByName(name string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.jobs {
		if j.Name == name {
			return j.Clone(), nil
		}
	}
	return model.Job{}, model.NewNotFound("job named %q not found", name)
}

// Create validates, assigns a fresh id and timestamps, persists, and
// returns the stored Job.
func (s *Store) Create(nj model.NewJob) (model.Job, error) {
	if err := validateNewJob(nj); err != nil {
		return model.Job{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.jobs {
		if existing.Name == nj.Name {
			return model.Job{}, model.NewConflict("job named %q already exists", nj.Name)
		}
	}

	now := s.clock.Now()
	id, err := uuid.NewV7()
	if err != nil {
		return model.Job{}, model.NewInternal(err, "generate job id")
	}

	job := model.Job{
		ID:             id,
		Name:           nj.Name,
		Schedule:       nj.Schedule,
		Execution:      nj.Execution,
		Enabled:        nj.Enabled,
		Timezone:       nj.Timezone,
		WorkingDir:     nj.WorkingDir,
		EnvVars:        nj.EnvVars,
		TimeoutSecs:    nj.TimeoutSecs,
		LogEnvironment: nj.LogEnvironment,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	s.jobs[id] = job
	if err := s.persistLocked(); err != nil {
		delete(s.jobs, id)
		return model.Job{}, err
	}

	s.publish(id, model.JobChangeAdded)
	return job.Clone(), nil
}

// Update validates the provided fields, rejects a name collision against
// any other job, applies the update, bumps UpdatedAt, and persists.
func (s *Store) Update(id uuid.UUID, upd model.JobUpdate) (model.Job, error) {
	if err := validateJobUpdate(upd); err != nil {
		return model.Job{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return model.Job{}, model.NewNotFound("job %s not found", id)
	}
	prevEnabled := job.Enabled

	if upd.Name != nil {
		for otherID, existing := range s.jobs {
			if otherID != id && existing.Name == *upd.Name {
				return model.Job{}, model.NewConflict("job named %q already exists", *upd.Name)
			}
		}
		job.Name = *upd.Name
	}
	if upd.Schedule != nil {
		job.Schedule = *upd.Schedule
	}
	if upd.Execution != nil {
		job.Execution = *upd.Execution
	}
	if upd.Enabled != nil {
		job.Enabled = *upd.Enabled
	}
	if upd.Timezone != nil {
		job.Timezone = *upd.Timezone
	}
	if upd.WorkingDir != nil {
		job.WorkingDir = *upd.WorkingDir
	}
	if upd.EnvVars != nil {
		job.EnvVars = *upd.EnvVars
	}
	if upd.TimeoutSecs != nil {
		job.TimeoutSecs = *upd.TimeoutSecs
	}
	if upd.LogEnvironment != nil {
		job.LogEnvironment = *upd.LogEnvironment
	}

	job.UpdatedAt = s.clock.Now()

	prev := s.jobs[id]
	s.jobs[id] = job
	if err := s.persistLocked(); err != nil {
		s.jobs[id] = prev
		return model.Job{}, err
	}

	kind := model.JobChangeUpdated
	if upd.Enabled != nil && job.Enabled != prevEnabled {
		if job.Enabled {
			kind = model.JobChangeEnabled
		} else {
			kind = model.JobChangeDisabled
		}
	}
	s.publish(id, kind)
	return job.Clone(), nil
}

// ApplyTelemetry applies the internal last-run fields without touching
// UpdatedAt or re-validating user-editable fields. Used by the metadata
// updater subscriber, never by the HTTP layer.
func (s *Store) ApplyTelemetry(id uuid.UUID, t model.TelemetryUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return model.NewNotFound("job %s not found", id)
	}
	if t.LastRunAt != nil {
		job.LastRunAt = t.LastRunAt
	}
	if t.LastExitCode != nil {
		job.LastExitCode = t.LastExitCode
	}
	s.jobs[id] = job
	return s.persistLocked()
}

// Delete removes the job with the given id, or returns ErrNotFound.
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return model.NewNotFound("job %s not found", id)
	}

	prev := s.jobs[id]
	delete(s.jobs, id)
	if err := s.persistLocked(); err != nil {
		s.jobs[id] = prev
		return err
	}
	s.publish(id, model.JobChangeRemoved)
	return nil
}

func validateNewJob(nj model.NewJob) error {
	if err := model.ValidateName(nj.Name); err != nil {
		return err
	}
	if err := cronexpr.ValidateExpr(nj.Schedule); err != nil {
		return model.NewValidation("invalid cron expression %q: %v", nj.Schedule, err)
	}
	if nj.Timezone != nil {
		if err := cronexpr.ValidateTimezone(*nj.Timezone); err != nil {
			return model.NewValidation("invalid timezone %q: %v", *nj.Timezone, err)
		}
	}
	return nil
}

func validateJobUpdate(upd model.JobUpdate) error {
	if upd.Name != nil {
		if err := model.ValidateName(*upd.Name); err != nil {
			return err
		}
	}
	if upd.Schedule != nil {
		if err := cronexpr.ValidateExpr(*upd.Schedule); err != nil {
			return model.NewValidation("invalid cron expression %q: %v", *upd.Schedule, err)
		}
	}
	if upd.Timezone != nil && *upd.Timezone != nil {
		if err := cronexpr.ValidateTimezone(**upd.Timezone); err != nil {
			return model.NewValidation("invalid timezone %q: %v", **upd.Timezone, err)
		}
	}
	return nil
}
