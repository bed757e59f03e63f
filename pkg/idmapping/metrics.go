package idmapping

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uniprot_jobs_submitted_total",
		Help: "Total ID-mapping job submissions by result",
	}, []string{"result"}) // "submitted", "reused", "error"

	statusChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uniprot_status_checks_total",
		Help: "Total job status checks by observed state",
	}, []string{"state"})

	jobsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uniprot_jobs_failed_total",
		Help: "Total failed jobs by stage",
	}, []string{"stage"}) // "poll", "pagination"

	jobWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "uniprot_job_wait_seconds",
		Help:    "Time from submission until a job is ready",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
	})

	pollRoundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uniprot_poll_rounds_total",
		Help: "Total polling rounds in concurrent mode",
	})

	activeRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "uniprot_active_runs",
		Help: "Number of mapping runs in progress",
	})
)
