// Package catalog provides durable storage for the Job catalog: one
// pretty-printed JSON array at {data_dir}/jobs.json, mirrored in memory
// behind a read/write lock.
//
// Every mutation performs a read-modify-persist-write sequence under the
// store's write lock, so the file on disk always reflects a consistent
// snapshot of the in-memory state at the end of the call. Persistence uses
// a write-temp-then-rename protocol so a crash mid-write never leaves
// jobs.json truncated or half-written.
//
// On startup, a jobs.json that exists but fails to parse is copied aside to
// jobs.json.bak and the store starts empty — catalog corruption is logged,
// never fatal.
package catalog
