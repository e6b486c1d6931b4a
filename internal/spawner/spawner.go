package spawner

import "context"

// ProcessHandle is the live control surface for a spawned child process.
type ProcessHandle interface {
	// Read blocks until at least one byte is available, returning n > 0,
	// or returns io.EOF once the output is exhausted, or another non-nil error.
	Read(buf []byte) (n int, err error)
	// Wait blocks until the process exits and returns its exit status.
	Wait() (ExitStatus, error)
	// Kill terminates the process. Safe to call more than once.
	Kill() error
}

// ExitStatus is the terminal state of a finished process.
type ExitStatus struct {
	// ExitCode is the process's exit code. Only meaningful if the process
	// ran to completion under its own steam (not killed by a signal the OS
	// reports out-of-band).
	ExitCode int
}

// Spawner spawns a child process from a CommandBuilder. rows/cols are only
// meaningful to the pty variant; pipe and test variants ignore them.
type Spawner interface {
	Spawn(ctx context.Context, cb CommandBuilder, rows, cols int) (ProcessHandle, error)
}
