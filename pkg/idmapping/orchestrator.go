package idmapping

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/Sternrassler/uniprot-idmapping/pkg/batch"
	"github.com/Sternrassler/uniprot-idmapping/pkg/client"
	"github.com/Sternrassler/uniprot-idmapping/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// JobPage is one result page attributed to its job.
type JobPage struct {
	JobID string
	Batch int
	Page  pagination.Page
}

// Orchestrator runs the job lifecycle for identifier sets.
type Orchestrator struct {
	opts      Options
	submitter *Submitter
	poller    *StatusPoller
	paginator *pagination.Paginator
	logger    zerolog.Logger
}

// OrchestratorOption customizes an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger replaces the component logger.
func WithLogger(logger zerolog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an orchestrator that sends all requests through c.
func New(c *client.Client, opts Options, optFns ...OrchestratorOption) (*Orchestrator, error) {
	if c == nil {
		return nil, fmt.Errorf("client is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	o := &Orchestrator{
		opts:      opts,
		submitter: NewSubmitter(c, opts),
		poller:    NewStatusPoller(c, opts.MaxWait),
		paginator: pagination.NewPaginator(c),
		logger:    log.With().Str("component", "orchestrator").Logger(),
	}
	for _, fn := range optFns {
		fn(o)
	}
	return o, nil
}

// Options returns the run configuration.
func (o *Orchestrator) Options() Options {
	return o.opts
}

// Submit de-duplicates ids, splits them into batches and submits one job
// per batch in order. It stops at the first failed submission; jobs already
// submitted stay live on the service.
func (o *Orchestrator) Submit(ctx context.Context, ids []string) ([]*JobHandle, error) {
	batches, err := batch.Split(batch.Unique(ids), o.opts.SegmentSize)
	if err != nil {
		return nil, err
	}

	handles := make([]*JobHandle, 0, len(batches))
	for i, b := range batches {
		if err := ctx.Err(); err != nil {
			return handles, err
		}
		h, err := o.submitter.submit(ctx, i, b, o.opts.From, o.opts.To)
		if err != nil {
			return handles, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// Run maps ids and returns the result pages of all jobs as one lazy
// sequence. Nothing is sent until iteration starts.
//
// A non-nil error is always the last element. Pages yielded before it stay
// valid. Breaking out of the loop or cancelling ctx stops further
// submissions and status checks.
func (o *Orchestrator) Run(ctx context.Context, ids []string) iter.Seq2[JobPage, error] {
	return func(yield func(JobPage, error) bool) {
		activeRuns.Inc()
		defer activeRuns.Dec()

		start := time.Now()
		r := &run{o: o, yield: yield}

		handles, err := o.Submit(ctx, ids)
		if err != nil {
			r.abort(err)
			return
		}

		o.logger.Info().
			Int("jobs", len(handles)).
			Str("mode", o.opts.Mode.String()).
			Msg("All batches submitted")

		var ok bool
		switch o.opts.Mode {
		case ModeConcurrent:
			ok = r.concurrent(ctx, handles)
		default:
			ok = r.sequential(ctx, handles)
		}
		if !ok {
			return
		}

		o.logger.Info().
			Int("jobs", len(handles)).
			Int("pages", r.pages).
			Int("failed", len(r.failures)).
			Dur("duration", time.Since(start)).
			Msg("Mapping run finished")

		if len(r.failures) > 0 {
			r.abort(errors.Join(r.failures...))
		}
	}
}

// Payloads is Run reduced to the raw page bodies.
func (o *Orchestrator) Payloads(ctx context.Context, ids []string) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for page, err := range o.Run(ctx, ids) {
			if !yield(page.Page.Data, err) {
				return
			}
		}
	}
}

// run is the state of one iteration of Run.
type run struct {
	o        *Orchestrator
	yield    func(JobPage, error) bool
	failures []error
	pages    int
}

// abort yields err as the final element.
func (r *run) abort(err error) {
	r.yield(JobPage{}, err)
}

// sequential polls each handle to completion in submission order.
func (r *run) sequential(ctx context.Context, handles []*JobHandle) bool {
	for _, h := range handles {
		for h.State() == StatePending {
			res, err := r.o.poller.Check(ctx, h)
			if err != nil {
				if res.State == StateFailed {
					break
				}
				r.abort(err)
				return false
			}
			if res.State == StatePending {
				if err := sleep(ctx, h.PollInterval()); err != nil {
					r.abort(err)
					return false
				}
			}
		}

		if !r.settle(ctx, h) {
			return false
		}
	}
	return true
}

// concurrent polls all pending handles round-robin. Within a round each
// handle is checked in handle order, and a handle that became ready is
// paginated before the next one is checked. One sleep follows every round
// that leaves a handle pending.
func (r *run) concurrent(ctx context.Context, handles []*JobHandle) bool {
	pending := handles
	for round := 1; len(pending) > 0; round++ {
		pollRoundsTotal.Inc()

		var still []*JobHandle
		var ok bool
		if r.o.opts.MaxConcurrency > 1 {
			still, ok = r.parallelRound(ctx, pending)
		} else {
			still, ok = r.serialRound(ctx, pending)
		}
		if !ok {
			return false
		}

		r.o.logger.Debug().
			Int("round", round).
			Int("pending", len(still)).
			Msg("Poll round complete")

		pending = still
		if len(pending) > 0 {
			if err := sleep(ctx, r.o.opts.PollInterval); err != nil {
				r.abort(err)
				return false
			}
		}
	}
	return true
}

// serialRound checks and settles one handle at a time. It returns the
// handles that are still pending.
func (r *run) serialRound(ctx context.Context, pending []*JobHandle) ([]*JobHandle, bool) {
	var still []*JobHandle
	for _, h := range pending {
		res, err := r.o.poller.Check(ctx, h)
		if !r.apply(ctx, h, res, err) {
			return nil, false
		}
		if res.State == StatePending {
			still = append(still, h)
		}
	}
	return still, true
}

type checkOutcome struct {
	res StatusResult
	err error
}

// parallelRound issues the status checks of a round up to MaxConcurrency at
// a time, then settles the handles in handle order.
func (r *run) parallelRound(ctx context.Context, pending []*JobHandle) ([]*JobHandle, bool) {
	outcomes := make([]checkOutcome, len(pending))

	var g errgroup.Group
	g.SetLimit(r.o.opts.MaxConcurrency)
	for i, h := range pending {
		g.Go(func() error {
			res, err := r.o.poller.Check(ctx, h)
			outcomes[i] = checkOutcome{res: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var still []*JobHandle
	for i, h := range pending {
		if !r.apply(ctx, h, outcomes[i].res, outcomes[i].err) {
			return nil, false
		}
		if outcomes[i].res.State == StatePending {
			still = append(still, h)
		}
	}
	return still, true
}

// apply acts on one status check: errors that leave the job pending end
// the run, terminal handles are settled.
func (r *run) apply(ctx context.Context, h *JobHandle, res StatusResult, err error) bool {
	if err != nil && res.State != StateFailed {
		r.abort(err)
		return false
	}
	if res.State == StatePending {
		return true
	}
	return r.settle(ctx, h)
}

// settle handles a terminal handle: a ready job is paginated, a failed job
// goes through the failure policy. It reports whether the run continues.
func (r *run) settle(ctx context.Context, h *JobHandle) bool {
	switch h.State() {
	case StateReady:
		return r.drain(ctx, h)
	case StateFailed:
		jobsFailedTotal.WithLabelValues("poll").Inc()
		return r.fail(ctx, h, h.Err())
	default:
		return true
	}
}

// drain yields every page of a ready job in link order.
func (r *run) drain(ctx context.Context, h *JobHandle) bool {
	for page, err := range r.o.paginator.Paginate(ctx, h.ResultURL(), r.o.opts.ResultParams()) {
		if err != nil {
			if ctx.Err() != nil {
				r.abort(err)
				return false
			}
			jobsFailedTotal.WithLabelValues("pagination").Inc()
			return r.fail(ctx, h, err)
		}

		r.pages++
		if !r.yield(JobPage{JobID: h.ID(), Batch: h.Index(), Page: page}, nil) {
			return false
		}
	}
	return true
}

// fail applies the failure policy to a job error.
func (r *run) fail(ctx context.Context, h *JobHandle, err error) bool {
	r.o.submitter.forget(ctx, h)

	jobErr := &JobError{JobID: h.ID(), Batch: h.Index(), Err: err}
	if r.o.opts.OnJobFailure == ContinueRun {
		r.o.logger.Warn().
			Err(err).
			Str("job_id", h.ID()).
			Int("batch", h.Index()).
			Msg("Job failed, continuing with remaining jobs")
		r.failures = append(r.failures, jobErr)
		return true
	}

	r.abort(jobErr)
	return false
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
