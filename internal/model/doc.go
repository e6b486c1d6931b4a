// Package model defines the data types shared across the daemon: Job, JobRun,
// JobEvent, TriggerParams, and DaemonConfig, plus the closed ErrorKind
// enumeration used to translate internal failures into HTTP status codes.
//
// Types in this package are plain data — no store, no I/O. CatalogStore and
// LogStore own persistence; EventBus owns delivery. model only defines the
// shapes they pass around and the validation rules a Job must satisfy before
// it is accepted into the catalog.
package model
