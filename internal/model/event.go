package model

import (
	"time"

	"github.com/google/uuid"
)

// EventKind discriminates the payload carried by a JobEvent.
type EventKind string

const (
	EventStarted     EventKind = "started"
	EventOutput      EventKind = "output"
	EventCompleted   EventKind = "completed"
	EventFailed      EventKind = "failed"
	EventJobChanged  EventKind = "job_changed"
)

// JobChangeKind discriminates the sub-kind of a JobChanged event.
type JobChangeKind string

const (
	JobChangeAdded    JobChangeKind = "added"
	JobChangeUpdated  JobChangeKind = "updated"
	JobChangeRemoved  JobChangeKind = "removed"
	JobChangeEnabled  JobChangeKind = "enabled"
	JobChangeDisabled JobChangeKind = "disabled"
)

// JobEvent is a tagged variant broadcast over the EventBus. Every kind
// except JobChanged carries a RunID; JobChanged is keyed by JobID alone.
//
// Output.Data is a plain string in this port. The Rust original models it as
// a reference-counted immutable string so cloning into many subscriber
// queues is cheap; in Go, string values are themselves immutable and their
// headers are cheap to copy, so no extra indirection is needed to get the
// same property.
type JobEvent struct {
	Kind      EventKind `json:"kind"`
	JobID     uuid.UUID `json:"job_id"`
	RunID     uuid.UUID `json:"run_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	// Started payload.
	JobName string `json:"job_name,omitempty"`
	// Output payload.
	Data string `json:"data,omitempty"`
	// Completed payload.
	ExitCode *int `json:"exit_code,omitempty"`
	// Failed payload.
	Error string `json:"error,omitempty"`
	// JobChanged payload.
	ChangeKind JobChangeKind `json:"change_kind,omitempty"`
}

// NewStartedEvent builds a Started event.
func NewStartedEvent(jobID, runID uuid.UUID, jobName string, ts time.Time) JobEvent {
	return JobEvent{Kind: EventStarted, JobID: jobID, RunID: runID, JobName: jobName, Timestamp: ts}
}

// NewOutputEvent builds an Output event.
func NewOutputEvent(jobID, runID uuid.UUID, data string, ts time.Time) JobEvent {
	return JobEvent{Kind: EventOutput, JobID: jobID, RunID: runID, Data: data, Timestamp: ts}
}

// NewCompletedEvent builds a Completed event.
func NewCompletedEvent(jobID, runID uuid.UUID, exitCode int, ts time.Time) JobEvent {
	code := exitCode
	return JobEvent{Kind: EventCompleted, JobID: jobID, RunID: runID, ExitCode: &code, Timestamp: ts}
}

// NewFailedEvent builds a Failed event.
func NewFailedEvent(jobID, runID uuid.UUID, errMsg string, ts time.Time) JobEvent {
	return JobEvent{Kind: EventFailed, JobID: jobID, RunID: runID, Error: errMsg, Timestamp: ts}
}

// NewJobChangedEvent builds a JobChanged event. RunID is left zero since
// catalog mutations are not tied to any run.
func NewJobChangedEvent(jobID uuid.UUID, kind JobChangeKind, ts time.Time) JobEvent {
	return JobEvent{Kind: EventJobChanged, JobID: jobID, ChangeKind: kind, Timestamp: ts}
}
