// Package health provides health check management for the daemon.
//
// Health checks determine if the process is ready to receive traffic
// (readiness), still alive (liveness), and has completed initialization
// (startup). internal/lifecycle constructs a [Manager], registers checks
// against it, and runs a [ManagementServer] that exposes them over HTTP on
// a port dedicated to operational tooling, separate from the job-management
// API server.
//
// # Health Check Types
//
// The package supports three types of probes, aligned with Kubernetes:
//
//   - Liveness: Is the process running? Failures may trigger restart.
//   - Readiness: Can the service handle traffic? Failures stop traffic routing.
//   - Startup: Has initialization completed? Failures hold off other probes.
//
// # Registering Checks
//
// Use the [Registrar] interface to add custom health checks:
//
//	manager.AddReadinessCheck("data_dir_disk_space", checkdisk.New(checkdisk.Config{
//	    Path:             dataDir,
//	    ThresholdPercent: 90,
//	}))
//
//	manager.AddLivenessCheck("goroutines", checkruntime.GoroutineCount(5000))
//
// # HTTP Endpoints
//
// [ManagementServer] exposes health endpoints on its own port (default 9090):
//
//   - /live - Liveness probe (always returns 200 OK)
//   - /ready - Readiness probe (503 when unhealthy)
//   - /startup - Startup probe (503 when not ready)
//
// # Graceful Shutdown
//
// [ShutdownCheck] fails readiness once MarkShuttingDown is called, letting a
// load balancer or service mesh drain connections before the process stops.
//
// # Testing
//
// The package provides test helpers for health check testing:
//
//   - [TestConfig] returns safe defaults (port 0 for random port)
//   - [MockRegistrar] is a testify/mock implementation of [Registrar]
//   - [TestManager] creates a manager suitable for testing
//   - [RequireHealthy] and [RequireUnhealthy] are assertion helpers
package health
