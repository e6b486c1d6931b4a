// Package checks provides reusable health check implementations for common
// infrastructure dependencies.
//
// Each subpackage provides a Config struct and New() factory function that
// returns a health check function compatible with health.CheckFunc:
//
//	func(context.Context) error
//
// Example usage with the health package:
//
//	import (
//	    "github.com/brightloop/acsd/internal/health"
//	    checkdisk "github.com/brightloop/acsd/internal/health/checks/disk"
//	)
//
//	registrar.AddReadinessCheck("data_dir_disk_space", checkdisk.New(checkdisk.Config{
//	    Path:             dataDir,
//	    ThresholdPercent: 90,
//	}))
//
// Available check packages:
//   - runtime: Go runtime metrics (goroutines, memory, GC)
//   - disk: Disk space monitoring (requires gopsutil/v4)
package checks
