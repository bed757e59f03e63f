// Package idmapping drives ID-mapping jobs through their lifecycle:
// batching, submission, status polling and result pagination.
//
// A run splits the identifiers into batches, submits one job per batch and
// then waits for every job to become ready. Ready jobs are paginated and
// their pages yielded as one lazy sequence:
//
//	o, err := idmapping.New(apiClient, idmapping.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	for page, err := range o.Run(ctx, ids) {
//		if err != nil {
//			return err
//		}
//		out.Write(page.Page.Data)
//	}
//
// Two scheduling modes share one state machine:
//
//   - ModeSequential polls jobs one at a time in submission order and
//     paginates each as soon as it is ready.
//   - ModeConcurrent polls every pending job once per round, paginates the
//     jobs that became ready in that round in submission order, then sleeps
//     once before the next round.
//
// Pages of one job are always yielded in link order and never interleaved
// with another job's pages.
//
// Job state moves from Pending to Ready or Failed exactly once. Only the
// StatusPoller performs that transition; everything else reads it.
//
// Failures surface as typed errors: *SubmissionError, *PollError (wrapped
// in *JobError), *pagination.PageFetchError (wrapped in *JobError) and
// *client.TransportError. Nothing is retried automatically except the
// normal wait for a pending job.
package idmapping
