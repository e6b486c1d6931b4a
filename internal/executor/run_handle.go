package executor

import (
	"sync"

	"github.com/google/uuid"
)

// RunHandle is the live control surface for one in-flight run: a one-shot
// kill signal and a way to wait for the run to fully finalize.
type RunHandle struct {
	RunID uuid.UUID
	JobID uuid.UUID

	killOnce sync.Once
	killCh   chan struct{}
	done     chan struct{}
}

func newRunHandle(jobID, runID uuid.UUID) *RunHandle {
	return &RunHandle{
		RunID:  runID,
		JobID:  jobID,
		killCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Kill requests that the run be terminated. Safe to call more than once;
// only the first call has an effect. If the handle has already been
// replaced (dropped without an explicit Kill), the run is left to finish
// naturally — that is simply a matter of the caller never calling Kill.
func (h *RunHandle) Kill() {
	h.killOnce.Do(func() {
		close(h.killCh)
	})
}

// Done returns a channel that closes once the run is fully finalized (its
// terminal event broadcast and meta update written).
func (h *RunHandle) Done() <-chan struct{} {
	return h.done
}
