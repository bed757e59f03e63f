package idmapping

import (
	"errors"
	"fmt"
)

// ReasonInvalidJob is the PollError reason for a 400 status response.
const ReasonInvalidJob = "invalid job or malformed request"

var (
	// ErrNotPending is returned when checking a job that is already
	// ready or failed.
	ErrNotPending = errors.New("job is not pending")

	// ErrMaxWaitExceeded is the cause of a PollError for a job that was
	// not ready within Options.MaxWait.
	ErrMaxWaitExceeded = errors.New("job exceeded maximum wait")

	// ErrMissingJobID is the cause of a SubmissionError whose response
	// carried no job identifier.
	ErrMissingJobID = errors.New("response has no job id")

	// ErrEmptyBatch is the cause of a SubmissionError for an empty batch.
	ErrEmptyBatch = errors.New("empty batch")
)

// SubmissionError reports a batch that could not be submitted.
// It always ends the run.
type SubmissionError struct {
	Batch      int
	Size       int
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	msg := fmt.Sprintf("submit batch %d (%d ids)", e.Batch, e.Size)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// PollError reports that the service considers a job failed or invalid.
type PollError struct {
	JobID      string
	StatusCode int
	Reason     string
	Err        error
}

// Error implements the error interface.
func (e *PollError) Error() string {
	msg := fmt.Sprintf("job %s: %s", e.JobID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *PollError) Unwrap() error {
	return e.Err
}

// JobError attributes a failure to one job of a run.
type JobError struct {
	JobID string
	Batch int
	Err   error
}

// Error implements the error interface.
func (e *JobError) Error() string {
	return fmt.Sprintf("batch %d (job %s): %v", e.Batch, e.JobID, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *JobError) Unwrap() error {
	return e.Err
}
