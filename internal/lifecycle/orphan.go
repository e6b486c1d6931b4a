package lifecycle

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/brightloop/acsd/internal/catalog"
	"github.com/brightloop/acsd/internal/model"
)

// SweepOrphanLogs enumerates {logsRoot}/* and recursively deletes any
// sub-directory whose name parses as a job id but is no longer present in
// cat. Non-id-shaped directories are left untouched. Run once at startup,
// after the catalog has finished loading.
func SweepOrphanLogs(logsRoot string, cat *catalog.Store, logger *slog.Logger) error {
	entries, err := os.ReadDir(logsRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("lifecycle: read logs root %s: %w", logsRoot, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := uuid.Parse(entry.Name())
		if err != nil {
			continue
		}
		if _, err := cat.Get(id); err == nil || model.KindOf(err) != model.KindNotFound {
			continue
		}

		path := filepath.Join(logsRoot, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logger.Warn("failed to remove orphaned job log directory",
				slog.String("job_id", id.String()), slog.String("error", err.Error()))
			continue
		}
		logger.Info("removed orphaned job log directory", slog.String("job_id", id.String()))
	}
	return nil
}
