// Package metadata runs the small EventBus subscriber that keeps each
// Job's last_run_at/last_exit_code fields current: it watches for a run's
// terminal event (Completed or Failed — Killed is reported as a Failed
// event with a kill-specific message) and writes the observed outcome back
// into the CatalogStore via ApplyTelemetry, without touching the fields a
// user edits through the API.
package metadata
