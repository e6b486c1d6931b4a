package model

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a JobRun. Transitions are monotone:
// Running -> {Completed, Failed, Killed}. There is no transition back to
// Running.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusKilled    RunStatus = "killed"
)

// Terminal reports whether s is one of the three terminal statuses.
func (s RunStatus) Terminal() bool {
	return s != RunStatusRunning
}

// JobRun is one execution record, owned by the LogStore.
type JobRun struct {
	RunID      uuid.UUID  `json:"run_id"`
	JobID      uuid.UUID  `json:"job_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     RunStatus  `json:"status"`
	ExitCode   *int       `json:"exit_code,omitempty"`
	// LogSizeBytes is the total number of bytes appended to the run's log
	// file, updated as the executor's log-writer drains.
	LogSizeBytes int64 `json:"log_size_bytes"`
	Error        *string `json:"error,omitempty"`

	// TriggerParams is a snapshot of the parameters the run was started
	// with, when it was started via an explicit trigger rather than the
	// scheduler's own fire.
	TriggerParams *TriggerParams `json:"trigger_params,omitempty"`
}

// Clone returns a deep copy of r.
func (r JobRun) Clone() JobRun {
	clone := r
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		clone.FinishedAt = &t
	}
	if r.ExitCode != nil {
		c := *r.ExitCode
		clone.ExitCode = &c
	}
	if r.Error != nil {
		e := *r.Error
		clone.Error = &e
	}
	if r.TriggerParams != nil {
		tp := r.TriggerParams.Clone()
		clone.TriggerParams = &tp
	}
	return clone
}
