package idmapping

import (
	"fmt"
	"sync"
	"time"
)

// JobState is the lifecycle state of a submitted job.
type JobState int

const (
	// StatePending is the initial state: the job is still being processed.
	StatePending JobState = iota

	// StateReady means results are available at the result URL.
	StateReady

	// StateFailed means the service rejected the job or it was given up.
	StateFailed
)

// String returns the lowercase state name.
func (s JobState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s JobState) Terminal() bool {
	return s == StateReady || s == StateFailed
}

// JobHandle tracks one submitted job. It is read-only outside this package;
// only the StatusPoller changes its state.
type JobHandle struct {
	id           string
	statusURL    string
	batch        []string
	index        int
	from         string
	to           string
	pollInterval time.Duration
	submittedAt  time.Time
	reused       bool

	mu        sync.Mutex
	state     JobState
	resultURL string
	polls     int
	err       error
}

// ID returns the service-issued job identifier.
func (h *JobHandle) ID() string { return h.id }

// StatusURL returns the status endpoint of the job.
func (h *JobHandle) StatusURL() string { return h.statusURL }

// Batch returns a copy of the submitted identifiers.
func (h *JobHandle) Batch() []string {
	out := make([]string, len(h.batch))
	copy(out, h.batch)
	return out
}

// Index returns the 0-based position of the batch in its run.
func (h *JobHandle) Index() int { return h.index }

// Size returns the number of submitted identifiers.
func (h *JobHandle) Size() int { return len(h.batch) }

// PollInterval returns the wait between two status checks.
func (h *JobHandle) PollInterval() time.Duration { return h.pollInterval }

// SubmittedAt returns when the job was created.
func (h *JobHandle) SubmittedAt() time.Time { return h.submittedAt }

// Reused reports whether the job came from the job store.
func (h *JobHandle) Reused() bool { return h.reused }

// State returns the current state.
func (h *JobHandle) State() JobState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Completed reports whether the job is ready.
func (h *JobHandle) Completed() bool {
	return h.State() == StateReady
}

// ResultURL returns the result location, empty until ready.
func (h *JobHandle) ResultURL() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resultURL
}

// Polls returns the number of status checks that got a response.
func (h *JobHandle) Polls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.polls
}

// Err returns the failure cause, nil unless failed.
func (h *JobHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *JobHandle) recordPoll() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.polls++
	return h.polls
}

// markReady transitions Pending -> Ready. It reports false if the handle
// was already terminal.
func (h *JobHandle) markReady(resultURL string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StatePending {
		return false
	}
	h.state = StateReady
	h.resultURL = resultURL
	return true
}

// markFailed transitions Pending -> Failed. It reports false if the handle
// was already terminal.
func (h *JobHandle) markFailed(err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StatePending {
		return false
	}
	h.state = StateFailed
	h.err = err
	return true
}

// String implements fmt.Stringer.
func (h *JobHandle) String() string {
	return fmt.Sprintf("job %s (batch %d, %d ids, %s)", h.id, h.index, len(h.batch), h.State())
}
