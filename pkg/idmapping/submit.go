package idmapping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/Sternrassler/uniprot-idmapping/pkg/client"
	"github.com/Sternrassler/uniprot-idmapping/pkg/jobstore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Endpoint paths relative to the base URL.
const (
	runPath    = "/idmapping/run"
	statusPath = "/idmapping/status/"
)

// maxSubmitBody bounds the submission response that is decoded.
const maxSubmitBody = 64 << 10

type runResponse struct {
	JobID string `json:"jobId"`
}

// Submitter creates one job per batch.
type Submitter struct {
	client       *client.Client
	store        *jobstore.Manager
	storeTTL     time.Duration
	pollInterval time.Duration
	logger       zerolog.Logger
}

// NewSubmitter creates a submitter. Only the poll interval and the job
// store settings of opts are used.
func NewSubmitter(c *client.Client, opts Options) *Submitter {
	ttl := opts.JobTTL
	if ttl <= 0 {
		ttl = jobstore.DefaultTTL
	}
	return &Submitter{
		client:       c,
		store:        opts.JobStore,
		storeTTL:     ttl,
		pollInterval: opts.PollInterval,
		logger:       log.With().Str("component", "submitter").Logger(),
	}
}

// Submit sends batch as one mapping job from one namespace to another.
func (s *Submitter) Submit(ctx context.Context, batch []string, from, to string) (*JobHandle, error) {
	return s.submit(ctx, 0, batch, from, to)
}

func (s *Submitter) submit(ctx context.Context, index int, batch []string, from, to string) (*JobHandle, error) {
	if len(batch) == 0 {
		jobsSubmittedTotal.WithLabelValues("error").Inc()
		return nil, &SubmissionError{Batch: index, Err: ErrEmptyBatch}
	}

	if h := s.reuse(ctx, index, batch, from, to); h != nil {
		return h, nil
	}

	form := url.Values{
		"ids":  {strings.Join(batch, ",")},
		"from": {from},
		"to":   {to},
	}

	start := time.Now()
	resp, err := s.client.PostForm(ctx, runPath, form)
	if err != nil {
		jobsSubmittedTotal.WithLabelValues("error").Inc()
		return nil, &SubmissionError{Batch: index, Size: len(batch), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		jobsSubmittedTotal.WithLabelValues("error").Inc()
		apiErr := client.NewAPIError(resp)
		return nil, &SubmissionError{
			Batch:      index,
			Size:       len(batch),
			StatusCode: resp.StatusCode,
			Message:    apiErr.Message,
			Err:        apiErr,
		}
	}

	var body runResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSubmitBody)).Decode(&body); err != nil {
		jobsSubmittedTotal.WithLabelValues("error").Inc()
		return nil, &SubmissionError{
			Batch:      index,
			Size:       len(batch),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	if body.JobID == "" {
		jobsSubmittedTotal.WithLabelValues("error").Inc()
		return nil, &SubmissionError{Batch: index, Size: len(batch), StatusCode: resp.StatusCode, Err: ErrMissingJobID}
	}

	h := s.newHandle(body.JobID, index, batch, from, to, time.Now())
	jobsSubmittedTotal.WithLabelValues("submitted").Inc()

	s.logger.Info().
		Str("job_id", h.id).
		Int("batch", index).
		Int("size", len(batch)).
		Dur("duration", time.Since(start)).
		Msg("Job submitted")

	s.remember(ctx, h)
	return h, nil
}

func (s *Submitter) newHandle(jobID string, index int, batch []string, from, to string, submittedAt time.Time) *JobHandle {
	ids := make([]string, len(batch))
	copy(ids, batch)
	return &JobHandle{
		id:           jobID,
		statusURL:    s.client.URL(statusPath + url.PathEscape(jobID)),
		batch:        ids,
		index:        index,
		from:         from,
		to:           to,
		pollInterval: s.pollInterval,
		submittedAt:  submittedAt,
	}
}

// reuse returns a handle for a stored job, or nil when the batch has to be
// submitted. Store failures never fail the submission.
func (s *Submitter) reuse(ctx context.Context, index int, batch []string, from, to string) *JobHandle {
	if s.store == nil {
		return nil
	}

	entry, err := s.store.Get(ctx, jobstore.Key{From: from, To: to, IDs: batch})
	if err != nil {
		if !errors.Is(err, jobstore.ErrMiss) {
			s.logger.Warn().Err(err).Int("batch", index).Msg("Job store lookup failed")
		}
		return nil
	}

	h := s.newHandle(entry.JobID, index, batch, from, to, entry.SubmittedAt)
	h.reused = true
	jobsSubmittedTotal.WithLabelValues("reused").Inc()

	s.logger.Info().
		Str("job_id", h.id).
		Int("batch", index).
		Time("submitted_at", entry.SubmittedAt).
		Msg("Reusing stored job")
	return h
}

func (s *Submitter) remember(ctx context.Context, h *JobHandle) {
	if s.store == nil {
		return
	}
	entry := &jobstore.Entry{
		JobID:       h.id,
		StatusURL:   h.statusURL,
		Size:        len(h.batch),
		SubmittedAt: h.submittedAt,
		Expires:     h.submittedAt.Add(s.storeTTL),
	}
	if err := s.store.Set(ctx, jobstore.Key{From: h.from, To: h.to, IDs: h.batch}, entry); err != nil {
		s.logger.Warn().Err(err).Str("job_id", h.id).Msg("Failed to store job")
	}
}

// forget evicts a stored job that turned out to be unusable.
func (s *Submitter) forget(ctx context.Context, h *JobHandle) {
	if s.store == nil || !h.reused {
		return
	}
	if err := s.store.Delete(ctx, jobstore.Key{From: h.from, To: h.to, IDs: h.batch}); err != nil {
		s.logger.Warn().Err(err).Str("job_id", h.id).Msg("Failed to evict stored job")
	}
}
