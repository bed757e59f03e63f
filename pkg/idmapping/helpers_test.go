package idmapping

import (
	"context"
	"testing"
	"time"

	"github.com/Sternrassler/uniprot-idmapping/internal/testutil"
	"github.com/Sternrassler/uniprot-idmapping/pkg/client"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) *testutil.MockUniProt {
	t.Helper()
	mock := testutil.NewMockUniProt()
	t.Cleanup(mock.Close)
	return mock
}

func testClientConfig(baseURL string) client.Config {
	cfg := client.DefaultConfig("idmapping-test/1.0")
	cfg.BaseURL = baseURL
	cfg.RateLimit = 0
	cfg.Timeout = 5 * time.Second
	return cfg
}

func newTestClient(t *testing.T, baseURL string) *client.Client {
	t.Helper()
	c, err := client.New(testClientConfig(baseURL))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.PollInterval = 5 * time.Millisecond
	opts.IncludeIsoform = false
	opts.Fields = "accession,gene_names"
	opts.SegmentSize = 10
	return opts
}

func newTestOrchestrator(t *testing.T, mock *testutil.MockUniProt, opts Options) *Orchestrator {
	t.Helper()
	o, err := New(newTestClient(t, mock.URL()), opts)
	require.NoError(t, err)
	return o
}

type runResult struct {
	pages []JobPage
	errs  []error
}

func (r runResult) payloads() []string {
	out := make([]string, len(r.pages))
	for i, p := range r.pages {
		out[i] = string(p.Page.Data)
	}
	return out
}

func (r runResult) lastErr() error {
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs[len(r.errs)-1]
}

func collectRun(ctx context.Context, o *Orchestrator, ids []string) runResult {
	var r runResult
	for page, err := range o.Run(ctx, ids) {
		if err != nil {
			r.errs = append(r.errs, err)
			continue
		}
		r.pages = append(r.pages, page)
	}
	return r
}
