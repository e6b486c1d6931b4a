package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// pidAcquireRetry and pidAcquireInterval bound how long AcquirePIDFile
// tolerates a still-live previous instance before giving up, per spec.md
// §4.8's "retry for up to ~10s to tolerate rolling restarts".
const (
	pidAcquireRetry    = 10 * time.Second
	pidAcquireInterval = 250 * time.Millisecond
)

// ErrAlreadyRunning is returned by AcquirePIDFile when a live process still
// holds the PID file after the retry window elapses.
var ErrAlreadyRunning = fmt.Errorf("lifecycle: daemon already running")

// PIDFile guards {data_dir}/acs.pid for single-instance enforcement.
type PIDFile struct {
	path string
}

// AcquirePIDFile probes for a stale or live previous instance, removes a
// stale file, and exclusively creates a fresh one holding the current pid.
// Returns ErrAlreadyRunning if a live instance still holds the file after
// ~10s of retrying (tolerating a rolling restart that hasn't exited yet).
func AcquirePIDFile(ctx context.Context, dataDir string) (*PIDFile, error) {
	path := filepath.Join(dataDir, "acs.pid")
	pf := &PIDFile{path: path}

	deadline := time.Now().Add(pidAcquireRetry)
	for {
		if err := pf.tryClaim(); err == nil {
			return pf, nil
		} else if err != ErrAlreadyRunning {
			return nil, err
		}

		if time.Now().After(deadline) {
			return nil, ErrAlreadyRunning
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pidAcquireInterval):
		}
	}
}

// tryClaim makes one attempt: if the file exists and names a live pid,
// returns ErrAlreadyRunning; if it exists but is stale, removes it; then
// exclusively creates the file with the current pid.
func (pf *PIDFile) tryClaim() error {
	if data, err := os.ReadFile(pf.path); err == nil {
		if pid, perr := strconv.Atoi(strings.TrimSpace(string(data))); perr == nil {
			alive, lerr := process.PidExists(int32(pid))
			if lerr == nil && alive {
				return ErrAlreadyRunning
			}
		}
		// Stale (unparseable or dead): remove and proceed.
		if rerr := os.Remove(pf.path); rerr != nil && !os.IsNotExist(rerr) {
			return fmt.Errorf("lifecycle: remove stale pid file: %w", rerr)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("lifecycle: read pid file: %w", err)
	}

	f, err := os.OpenFile(pf.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			// Lost a race against another instance claiming it first.
			return ErrAlreadyRunning
		}
		return fmt.Errorf("lifecycle: create pid file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d", os.Getpid()); err != nil {
		return fmt.Errorf("lifecycle: write pid file: %w", err)
	}
	return nil
}

// Release unlinks the pid file. Safe to call even if it no longer exists.
func (pf *PIDFile) Release() error {
	if err := os.Remove(pf.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("lifecycle: remove pid file: %w", err)
	}
	return nil
}
