package idmapping

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/uniprot-idmapping/pkg/batch"
	"github.com/Sternrassler/uniprot-idmapping/pkg/jobstore"
)

// Defaults for a mapping run.
const (
	DefaultFrom           = "UniProtKB_AC-ID"
	DefaultTo             = "UniProtKB"
	DefaultFormat         = "tsv"
	DefaultPageSize       = 500
	DefaultPollInterval   = 5 * time.Second
	DefaultMaxConcurrency = 1

	// DefaultFields is the column list requested when none is configured.
	DefaultFields = "accession,id,gene_names,protein_name,organism_name,organism_id,length,xref_refseq," +
		"go_id,go_p,go_c,go_f,cc_subcellular_location," +
		"ft_topo_dom,ft_carbohyd,mass,cc_mass_spectrometry," +
		"sequence,ft_var_seq,cc_alternative_products"
)

// Mode selects how pending jobs are scheduled.
type Mode int

const (
	// ModeSequential polls one job at a time to completion.
	ModeSequential Mode = iota

	// ModeConcurrent polls all pending jobs in rounds.
	ModeConcurrent
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeSequential:
		return "sequential"
	case ModeConcurrent:
		return "concurrent"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses "sequential" or "concurrent".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sequential", "sync":
		return ModeSequential, nil
	case "concurrent", "async":
		return ModeConcurrent, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want sequential or concurrent)", s)
	}
}

// FailurePolicy decides what a failed job does to the rest of the run.
type FailurePolicy int

const (
	// AbortRun yields the job error and ends the run.
	AbortRun FailurePolicy = iota

	// ContinueRun keeps processing the other jobs and yields all job
	// errors joined at the end.
	ContinueRun
)

// String returns the configuration name of the policy.
func (p FailurePolicy) String() string {
	switch p {
	case AbortRun:
		return "abort"
	case ContinueRun:
		return "continue"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseFailurePolicy parses "abort" or "continue".
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "abort":
		return AbortRun, nil
	case "continue":
		return ContinueRun, nil
	default:
		return 0, fmt.Errorf("unknown failure policy %q (want abort or continue)", s)
	}
}

// Options configures a mapping run. They are copied when the orchestrator
// is created and cannot change during a run.
type Options struct {
	// Namespaces
	From string
	To   string

	// Result query
	Format         string
	Fields         string
	IncludeIsoform bool
	PageSize       int

	// Scheduling
	SegmentSize    int
	PollInterval   time.Duration
	Mode           Mode
	MaxConcurrency int           // status checks in flight per concurrent round; above 1 every job is checked before any is settled
	MaxWait        time.Duration // per-job ceiling since submission, 0 = none
	OnJobFailure   FailurePolicy

	// JobStore enables reuse of earlier submissions. Optional.
	JobStore *jobstore.Manager
	JobTTL   time.Duration
}

// DefaultOptions returns the default run configuration.
func DefaultOptions() Options {
	return Options{
		From:           DefaultFrom,
		To:             DefaultTo,
		Format:         DefaultFormat,
		Fields:         DefaultFields,
		IncludeIsoform: true,
		PageSize:       DefaultPageSize,
		SegmentSize:    batch.DefaultSegmentSize,
		PollInterval:   DefaultPollInterval,
		Mode:           ModeSequential,
		MaxConcurrency: DefaultMaxConcurrency,
		JobTTL:         jobstore.DefaultTTL,
	}
}

// Validate checks the options for values a run cannot work with.
func (o Options) Validate() error {
	if o.From == "" || o.To == "" {
		return fmt.Errorf("from and to namespaces are required")
	}
	if o.SegmentSize <= 0 {
		return fmt.Errorf("segment_size must be > 0 (got %d)", o.SegmentSize)
	}
	if o.PageSize <= 0 {
		return fmt.Errorf("page_size must be > 0 (got %d)", o.PageSize)
	}
	if o.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be > 0 (got %v)", o.PollInterval)
	}
	if o.MaxWait < 0 {
		return fmt.Errorf("max_wait must be >= 0 (got %v)", o.MaxWait)
	}
	if o.Mode != ModeSequential && o.Mode != ModeConcurrent {
		return fmt.Errorf("invalid mode %v", o.Mode)
	}
	if o.Mode == ModeConcurrent && o.MaxConcurrency <= 0 {
		return fmt.Errorf("max_concurrency must be > 0 (got %d)", o.MaxConcurrency)
	}
	if o.OnJobFailure != AbortRun && o.OnJobFailure != ContinueRun {
		return fmt.Errorf("invalid failure policy %v", o.OnJobFailure)
	}
	return nil
}

// ResultParams returns the query parameters of the first result request.
func (o Options) ResultParams() url.Values {
	params := url.Values{
		"size":           {strconv.Itoa(o.PageSize)},
		"includeIsoform": {strconv.FormatBool(o.IncludeIsoform)},
	}
	if o.Format != "" {
		params.Set("format", o.Format)
	}
	if o.Fields != "" {
		params.Set("fields", o.Fields)
	}
	return params
}
