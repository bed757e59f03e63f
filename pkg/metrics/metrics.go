// Package metrics exposes the Prometheus metrics of the ID-mapping client.
// Collectors are defined in their own packages (client, ratelimit,
// pagination, idmapping, jobstore) and registered via promauto; this package
// serves them and documents the catalogue.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all collectors use.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer Handler serves from.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - uniprot_requests_total{endpoint, status} (Counter): Requests by endpoint (run, status, results, configure) and HTTP status
//   - uniprot_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - uniprot_errors_total{class} (Counter): Error responses by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client, only when retries are enabled):
//   - uniprot_retries_total{error_class} (Counter): Retry attempts
//   - uniprot_retry_backoff_seconds{error_class} (Histogram): Backoff durations
//   - uniprot_retry_exhausted_total{error_class} (Counter): Requests that used every attempt
//
// Pacing Metrics (pkg/ratelimit):
//   - uniprot_rate_limit_cooldowns_total{status} (Counter): Retry-After cool-downs by status
//   - uniprot_rate_limit_wait_seconds (Histogram): Time spent waiting before requests
//
// Job Metrics (pkg/idmapping):
//   - uniprot_jobs_submitted_total{result} (Counter): Submissions (submitted, reused, error)
//   - uniprot_status_checks_total{state} (Counter): Status checks by observed state
//   - uniprot_jobs_failed_total{stage} (Counter): Failed jobs (poll, pagination)
//   - uniprot_job_wait_seconds (Histogram): Submission to ready
//   - uniprot_poll_rounds_total (Counter): Concurrent polling rounds
//   - uniprot_active_runs (Gauge): Runs in progress
//
// Pagination Metrics (pkg/pagination):
//   - uniprot_result_pages_fetched_total (Counter): Result pages fetched
//   - uniprot_result_page_bytes (Histogram): Page sizes
//   - uniprot_result_page_errors_total (Counter): Failed page fetches
//
// Job Store Metrics (pkg/jobstore):
//   - uniprot_job_store_hits_total (Counter): Reused jobs
//   - uniprot_job_store_misses_total (Counter): Lookups without a stored job
//   - uniprot_job_store_evictions_total (Counter): Removed entries
//   - uniprot_job_store_errors_total{operation} (Counter): Redis failures
//
// Example Prometheus Queries:
//
//   # Job reuse rate
//   sum(rate(uniprot_job_store_hits_total[1h])) /
//   sum(rate(uniprot_jobs_submitted_total[1h]))
//
//   # P95 time until a job is ready
//   histogram_quantile(0.95, rate(uniprot_job_wait_seconds_bucket[1h]))
//
//   # Status checks per ready job
//   sum(rate(uniprot_status_checks_total[1h])) /
//   sum(rate(uniprot_status_checks_total{state="ready"}[1h]))
