package pagination

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uniprot_result_pages_fetched_total",
		Help: "Total number of result pages fetched",
	})

	pageBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "uniprot_result_page_bytes",
		Help:    "Size of fetched result pages in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})

	pageFetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uniprot_result_page_errors_total",
		Help: "Total number of failed result page fetches",
	})
)

// nextLinkPattern matches a URL enclosed in angle brackets directly
// followed by the relation delimiter.
var nextLinkPattern = regexp.MustCompile(`<([^<>]+)>;`)

// Fetcher issues a GET for an absolute URL. *client.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (*http.Response, error)
}

// Page is one fetched payload of a job result.
type Page struct {
	// Number is the 1-based position in the link chain.
	Number int

	// URL is the address the page was fetched from.
	URL string

	// Next is the advertised next page, empty on the last page.
	Next string

	// Data is the raw response body.
	Data []byte
}

// IsLast reports whether no further page is advertised.
func (p Page) IsLast() bool {
	return p.Next == ""
}

// Paginator walks link-chained result pages.
type Paginator struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

// NewPaginator creates a new paginator.
func NewPaginator(fetcher Fetcher) *Paginator {
	return &Paginator{
		fetcher: fetcher,
		logger:  log.With().Str("component", "paginator").Logger(),
	}
}

// NextLink extracts the next page URL from the Link header.
func NextLink(h http.Header) (string, bool) {
	for _, v := range h.Values("Link") {
		if m := nextLinkPattern.FindStringSubmatch(v); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// WithParams returns rawURL with params merged into its query string.
// Values in params replace existing keys.
func WithParams(rawURL string, params url.Values) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse result url: %w", err)
	}
	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Paginate returns a lazy sequence of the pages behind resultURL.
// The first request carries params; every following request uses the
// advertised next URL unchanged. A failure is yielded once as
// *PageFetchError and ends the sequence. A next link naming a page that was
// already fetched ends the sequence with ErrLinkLoop.
func (p *Paginator) Paginate(ctx context.Context, resultURL string, params url.Values) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		start := time.Now()

		current, err := WithParams(resultURL, params)
		if err != nil {
			yield(Page{}, &PageFetchError{Page: 1, URL: resultURL, Err: err})
			return
		}

		seen := make(map[string]struct{})
		for number := 1; current != ""; number++ {
			if _, ok := seen[current]; ok {
				pageFetchErrorsTotal.Inc()
				p.logger.Warn().Int("page", number).Str("url", current).Msg("Link chain loops")
				yield(Page{}, &PageFetchError{Page: number, URL: current, Err: ErrLinkLoop})
				return
			}
			seen[current] = struct{}{}

			page, err := p.fetch(ctx, number, current)
			if err != nil {
				pageFetchErrorsTotal.Inc()
				p.logger.Warn().
					Err(err).
					Int("page", number).
					Str("url", current).
					Msg("Page fetch failed")
				yield(Page{}, err)
				return
			}

			pagesFetchedTotal.Inc()
			pageBytes.Observe(float64(len(page.Data)))

			if !yield(page, nil) {
				p.logger.Debug().Int("page", number).Msg("Consumer stopped pagination")
				return
			}

			if page.IsLast() {
				p.logger.Debug().
					Int("pages", number).
					Dur("duration", time.Since(start)).
					Msg("Pagination complete")
			}
			current = page.Next
		}
	}
}

func (p *Paginator) fetch(ctx context.Context, number int, pageURL string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, &PageFetchError{Page: number, URL: pageURL, Err: err}
	}

	resp, err := p.fetcher.Get(ctx, pageURL)
	if err != nil {
		return Page{}, &PageFetchError{Page: number, URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Page{}, &PageFetchError{
			Page:       number,
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s: %s", resp.Status, body),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, &PageFetchError{Page: number, URL: pageURL, Err: fmt.Errorf("read body: %w", err)}
	}

	next, _ := NextLink(resp.Header)
	p.logger.Debug().
		Int("page", number).
		Int("bytes", len(data)).
		Bool("has_next", next != "").
		Msg("Fetched result page")

	return Page{Number: number, URL: pageURL, Next: next, Data: data}, nil
}

// Collect drains seq. Pages fetched before a failure are returned with the
// error.
func Collect(seq iter.Seq2[Page, error]) ([]Page, error) {
	var pages []Page
	for page, err := range seq {
		if err != nil {
			return pages, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}
