// Package executor spawns a Job's subprocess, pumps its output to the
// LogStore and EventBus, and finalizes the JobRun exactly once.
//
// Spawn allocates a run id, persists a Running JobRun, broadcasts Started,
// builds the command and spawns it. Only after a successful spawn does it
// optionally dump the effective environment and emit a command header; a
// spawn failure goes straight to a Failed run and event. Output is pumped by
// a reader goroutine into a forwarding loop that broadcasts each chunk and
// appends it to the log, and the run is finalized with exactly one terminal
// event and one meta update. Retention cleanup runs on every finalization
// path, including spawn failure.
package executor
