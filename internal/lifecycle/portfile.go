package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// PortFile records the daemon's bound HTTP port at {data_dir}/acs.port so
// the CLI and web UI can find it without hard-coding one, especially when
// the configured port is 0 (auto-assign).
type PortFile struct {
	path string
}

// WritePortFile writes port to {data_dir}/acs.port. Call after the HTTP
// listener has actually bound, so an auto-assigned port is discoverable.
func WritePortFile(dataDir string, port int) (*PortFile, error) {
	path := filepath.Join(dataDir, "acs.port")
	if err := os.WriteFile(path, []byte(strconv.Itoa(port)), 0o644); err != nil {
		return nil, fmt.Errorf("lifecycle: write port file: %w", err)
	}
	return &PortFile{path: path}, nil
}

// Release removes the port file. Safe to call even if it no longer exists.
func (pf *PortFile) Release() error {
	if err := os.Remove(pf.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("lifecycle: remove port file: %w", err)
	}
	return nil
}
