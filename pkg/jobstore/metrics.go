package jobstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreHits tracks reused jobs
	StoreHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uniprot_job_store_hits_total",
			Help: "Total number of reused ID-mapping jobs",
		},
	)

	// StoreMisses tracks lookups without a reusable job
	StoreMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uniprot_job_store_misses_total",
			Help: "Total number of job store misses",
		},
	)

	// StoreEvictions tracks jobs removed after they turned out unusable
	StoreEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uniprot_job_store_evictions_total",
			Help: "Total number of evicted job store entries",
		},
	)

	// StoreErrors tracks store operation errors
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uniprot_job_store_errors_total",
			Help: "Total number of job store operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
