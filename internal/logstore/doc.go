// Package logstore persists, for each (job_id, run_id), one metadata JSON
// file and one appended byte log under
// {data_dir}/logs/{job_id}/{run_id}.meta.json and {run_id}.log.
//
// Unlike catalog.Store, LogStore does not hold the full data set in memory:
// metadata is read back from disk on demand (list_runs, read_log), since the
// number of historical runs across all jobs can grow large. Retention is
// enforced per job by count, not by individual log file size.
package logstore
