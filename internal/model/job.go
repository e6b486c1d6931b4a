package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExecutionKind discriminates the two ways a Job's command can be specified.
type ExecutionKind string

const (
	// ExecutionShellCommand is an inline shell command string.
	ExecutionShellCommand ExecutionKind = "shell_command"
	// ExecutionScriptFile is a script path resolved under {data_dir}/scripts/.
	ExecutionScriptFile ExecutionKind = "script_file"
)

// Execution is a tagged variant: either an inline shell command or a script
// file path. Exactly one of the two forms is meaningful, selected by Kind.
type Execution struct {
	Kind  ExecutionKind `json:"type"`
	Value string        `json:"value"`
}

// NewShellCommand builds an Execution carrying an inline shell command.
func NewShellCommand(command string) Execution {
	return Execution{Kind: ExecutionShellCommand, Value: command}
}

// NewScriptFile builds an Execution carrying a script path.
func NewScriptFile(path string) Execution {
	return Execution{Kind: ExecutionScriptFile, Value: path}
}

// Job is the scheduled unit, owned by the CatalogStore.
type Job struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	Schedule       string            `json:"schedule"`
	Execution      Execution         `json:"execution"`
	Enabled        bool              `json:"enabled"`
	Timezone       *string           `json:"timezone,omitempty"`
	WorkingDir     *string           `json:"working_dir,omitempty"`
	EnvVars        map[string]string `json:"env_vars,omitempty"`
	TimeoutSecs    uint64            `json:"timeout_secs"`
	LogEnvironment bool              `json:"log_environment"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	LastRunAt      *time.Time        `json:"last_run_at,omitempty"`
	LastExitCode   *int              `json:"last_exit_code,omitempty"`

	// NextRunAt is computed by the scheduler on each planning pass and never
	// persisted to jobs.json.
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
}

// Clone returns a deep copy of j, safe to hand to a caller outside the
// CatalogStore's lock.
func (j Job) Clone() Job {
	clone := j
	if j.Timezone != nil {
		tz := *j.Timezone
		clone.Timezone = &tz
	}
	if j.WorkingDir != nil {
		wd := *j.WorkingDir
		clone.WorkingDir = &wd
	}
	if j.EnvVars != nil {
		clone.EnvVars = make(map[string]string, len(j.EnvVars))
		for k, v := range j.EnvVars {
			clone.EnvVars[k] = v
		}
	}
	if j.LastRunAt != nil {
		t := *j.LastRunAt
		clone.LastRunAt = &t
	}
	if j.LastExitCode != nil {
		c := *j.LastExitCode
		clone.LastExitCode = &c
	}
	if j.NextRunAt != nil {
		t := *j.NextRunAt
		clone.NextRunAt = &t
	}
	return clone
}

// NewJob carries the user-supplied fields for CatalogStore.Create. ID,
// CreatedAt, and UpdatedAt are assigned by the store.
type NewJob struct {
	Name           string
	Schedule       string
	Execution      Execution
	Enabled        bool
	Timezone       *string
	WorkingDir     *string
	EnvVars        map[string]string
	TimeoutSecs    uint64
	LogEnvironment bool
}

// JobUpdate carries partial, user-editable field updates for
// CatalogStore.Update. Only non-nil fields are applied. LastRunAt and
// LastExitCode are internal telemetry fields set only by the metadata
// updater, never accepted from client JSON — they are deliberately separate
// from the user-editable fields above so an HTTP decoder bound to the
// editable subset cannot set them.
type JobUpdate struct {
	Name           *string
	Schedule       *string
	Execution      *Execution
	Enabled        *bool
	Timezone       **string
	WorkingDir     **string
	EnvVars        *map[string]string
	TimeoutSecs    *uint64
	LogEnvironment *bool
}

// TelemetryUpdate carries the internal last-run fields the metadata updater
// applies after a run finalizes. Never constructed from client input.
type TelemetryUpdate struct {
	LastRunAt    *time.Time
	LastExitCode *int
}

// looksLikeID reports whether s parses as a UUID, used to enforce the
// invariant that a Job's name must not be confusable with an id.
func looksLikeID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// ValidateName checks the name-uniqueness-independent rules: non-empty,
// not id-shaped. Uniqueness against the rest of the catalog is checked by
// the CatalogStore under its write lock.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidation("job name cannot be empty")
	}
	if looksLikeID(name) {
		return NewValidation("job name cannot be a valid id")
	}
	return nil
}
