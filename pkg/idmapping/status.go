package idmapping

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Sternrassler/uniprot-idmapping/pkg/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxStatusBody bounds the pending status body that is inspected.
const maxStatusBody = 64 << 10

// StatusResult is the outcome of one status check.
type StatusResult struct {
	State      JobState
	StatusCode int
	ResultURL  string // set when State is StateReady
	JobStatus  string // service-reported status of a pending job, if any
}

type statusResponse struct {
	JobStatus string `json:"jobStatus"`
}

// StatusPoller checks whether jobs are ready. It is the only component
// that transitions JobHandle state.
type StatusPoller struct {
	client  *client.Client
	maxWait time.Duration
	logger  zerolog.Logger
}

// NewStatusPoller creates a poller. maxWait <= 0 means jobs may stay
// pending forever.
func NewStatusPoller(c *client.Client, maxWait time.Duration) *StatusPoller {
	return &StatusPoller{
		client:  c,
		maxWait: maxWait,
		logger:  log.With().Str("component", "status-poller").Logger(),
	}
}

// Check issues one status request for h without following redirects.
//
//   - 303 See Other: the job is ready at the Location header.
//   - 400 Bad Request: the job failed with a *PollError.
//   - anything else: the job is still pending.
//
// A transport failure is returned as is and leaves h pending. Checking a
// handle that is not pending returns ErrNotPending without a request.
func (p *StatusPoller) Check(ctx context.Context, h *JobHandle) (StatusResult, error) {
	if h.State() != StatePending {
		return StatusResult{State: h.State()}, ErrNotPending
	}

	if p.maxWait > 0 && time.Since(h.SubmittedAt()) > p.maxWait {
		return p.fail(h, StatusResult{}, &PollError{
			JobID:  h.ID(),
			Reason: "not ready within " + p.maxWait.String(),
			Err:    ErrMaxWaitExceeded,
		})
	}

	resp, err := p.client.GetNoRedirect(ctx, h.StatusURL())
	if err != nil {
		return StatusResult{State: StatePending}, err
	}
	defer resp.Body.Close()

	poll := h.recordPoll()
	result := StatusResult{State: StatePending, StatusCode: resp.StatusCode}

	switch resp.StatusCode {
	case http.StatusSeeOther:
		location := resp.Header.Get("Location")
		if location == "" {
			return p.fail(h, result, &PollError{
				JobID:      h.ID(),
				StatusCode: resp.StatusCode,
				Reason:     "ready response without result location",
			})
		}
		if resp.Request != nil {
			if u, err := resp.Request.URL.Parse(location); err == nil {
				location = u.String()
			}
		}

		if h.markReady(location) {
			result.State = StateReady
			result.ResultURL = location
			statusChecksTotal.WithLabelValues(StateReady.String()).Inc()
			jobWaitSeconds.Observe(time.Since(h.SubmittedAt()).Seconds())
			p.logger.Info().
				Str("job_id", h.ID()).
				Int("poll", poll).
				Str("url", location).
				Msg("Job ready")
		}
		return result, nil

	case http.StatusBadRequest:
		apiErr := client.NewAPIError(resp)
		return p.fail(h, result, &PollError{
			JobID:      h.ID(),
			StatusCode: resp.StatusCode,
			Reason:     ReasonInvalidJob,
			Err:        apiErr,
		})
	}

	if resp.StatusCode == http.StatusOK {
		var body statusResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxStatusBody)).Decode(&body); err == nil {
			result.JobStatus = body.JobStatus
		}
		switch strings.ToUpper(result.JobStatus) {
		case "ERROR", "FAILED":
			return p.fail(h, result, &PollError{
				JobID:      h.ID(),
				StatusCode: resp.StatusCode,
				Reason:     "service reported job status " + result.JobStatus,
			})
		}
	}

	statusChecksTotal.WithLabelValues(StatePending.String()).Inc()
	p.logger.Debug().
		Str("job_id", h.ID()).
		Int("poll", poll).
		Int("status", resp.StatusCode).
		Str("job_status", result.JobStatus).
		Msg("Job pending")
	return result, nil
}

func (p *StatusPoller) fail(h *JobHandle, result StatusResult, err *PollError) (StatusResult, error) {
	if !h.markFailed(err) {
		return StatusResult{State: h.State()}, ErrNotPending
	}
	result.State = StateFailed
	statusChecksTotal.WithLabelValues(StateFailed.String()).Inc()
	p.logger.Warn().
		Str("job_id", h.ID()).
		Int("status", err.StatusCode).
		Str("reason", err.Reason).
		Msg("Job failed")
	return result, err
}
