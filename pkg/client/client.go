// Package client provides the HTTP transport for the UniProt REST API with
// request pacing, opt-in retries, metrics, and structured logging.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/uniprot-idmapping/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public UniProt REST endpoint.
const DefaultBaseURL = "https://rest.uniprot.org"

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uniprot_requests_total",
		Help: "Total UniProt requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "uniprot_request_duration_seconds",
		Help:    "UniProt request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uniprot_errors_total",
		Help: "Total UniProt errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Client is the shared transport for one or more mapping runs.
type Client struct {
	httpClient       *http.Client
	noRedirectClient *http.Client
	baseURL          *url.URL
	rateLimiter      *ratelimit.Tracker
	config           Config
	logger           zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the REST API, without trailing slash.
	BaseURL string

	// User-Agent header sent with every request.
	UserAgent string

	// Timeout per HTTP request. Zero means no client-side timeout.
	Timeout time.Duration

	// Request pacing
	RateLimit float64 // Requests per second, <= 0 disables pacing
	Burst     int

	// Redis shares Retry-After cool-downs between processes. Optional.
	Redis *redis.Client

	// Retry for idempotent requests; 0 disables retries.
	MaxRetries     int
	InitialBackoff time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		UserAgent:      userAgent,
		Timeout:        60 * time.Second,
		RateLimit:      ratelimit.DefaultRequestsPerSecond,
		Burst:          ratelimit.DefaultBurst,
		MaxRetries:     0,
		InitialBackoff: 1 * time.Second,
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}

	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}

	logger := log.With().Str("component", "uniprot-client").Logger()

	rateLimiter := ratelimit.NewTracker(ratelimit.Config{
		RequestsPerSecond: cfg.RateLimit,
		Burst:             cfg.Burst,
		Redis:             cfg.Redis,
	}, logger)

	c := &Client{
		baseURL:     base,
		rateLimiter: rateLimiter,
		config:      cfg,
		logger:      logger,
	}
	c.SetHTTPClient(&http.Client{Timeout: cfg.Timeout})
	return c, nil
}

// URL joins path onto the base URL.
func (c *Client) URL(path string) string {
	return c.baseURL.String() + "/" + strings.TrimLeft(path, "/")
}

// Do performs an HTTP request following redirects.
// Any HTTP status is returned to the caller; only transport failures are
// reported as errors.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.do(req, c.httpClient)
}

// DoNoRedirect performs an HTTP request and returns redirect responses
// (e.g. 303 See Other) as-is instead of following them.
func (c *Client) DoNoRedirect(req *http.Request) (*http.Response, error) {
	return c.do(req, c.noRedirectClient)
}

func (c *Client) do(req *http.Request, hc *http.Client) (*http.Response, error) {
	ctx := req.Context()
	endpoint := endpointLabel(req.URL.Path)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "*/*")
	}

	retryCfg := RetryConfig{MaxAttempts: 1, InitialBackoff: c.config.InitialBackoff}
	if isIdempotent(req.Method) {
		retryCfg.MaxAttempts = 1 + c.config.MaxRetries
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("Executing request")

	var resp *http.Response
	retryErr := retryWithBackoff(ctx, retryCfg, func(attempt int) (ErrorClass, error) {
		if attempt > 1 {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("rate limit wait: %w", err)
			}
		}

		var reqErr error
		resp, reqErr = hc.Do(req)
		if reqErr != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			c.logger.Warn().Err(reqErr).Str("endpoint", endpoint).Int("attempt", attempt).Msg("HTTP request failed")
			if errors.Is(reqErr, context.Canceled) || errors.Is(reqErr, context.DeadlineExceeded) {
				return "", &TransportError{Method: req.Method, URL: req.URL.String(), Err: reqErr}
			}
			return ErrorClassNetwork, &TransportError{Method: req.Method, URL: req.URL.String(), Err: reqErr}
		}

		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

		if err := c.rateLimiter.UpdateFromResponse(ctx, resp.StatusCode, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to record cool-down")
		}

		errClass := classifyStatus(resp.StatusCode)
		if errClass == "" {
			return "", nil
		}
		errorsTotal.WithLabelValues(string(errClass)).Inc()

		// On the final attempt the response goes back to the caller, who
		// decides what the status means.
		if !shouldRetry(errClass) || attempt >= retryCfg.MaxAttempts {
			return "", nil
		}

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Retriable response")
		apiErr := NewAPIError(resp)
		resp.Body.Close()
		return errClass, apiErr
	})

	if retryErr != nil {
		return nil, retryErr
	}
	return resp, nil
}

// Get performs a GET request. rawURL may be absolute or a path relative to
// the base URL.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(rawURL), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.Do(req)
}

// GetNoRedirect performs a GET request without following redirects.
func (c *Client) GetNoRedirect(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(rawURL), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.DoNoRedirect(req)
}

// PostForm sends form as an application/x-www-form-urlencoded body.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(req)
}

func (c *Client) resolve(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	return c.URL(rawURL)
}

// Close releases idle connections held by the transport.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
// A copy with redirects disabled is derived for status checks.
func (c *Client) SetHTTPClient(hc *http.Client) {
	noRedirect := *hc
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	c.httpClient = hc
	c.noRedirectClient = &noRedirect
}

// RateLimiter returns the request pacing tracker.
func (c *Client) RateLimiter() *ratelimit.Tracker {
	return c.rateLimiter
}

func isIdempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// endpointLabel keeps metric cardinality bounded: job ids and cursors never
// become label values.
func endpointLabel(path string) string {
	switch {
	case strings.Contains(path, "/idmapping/run"):
		return "run"
	case strings.Contains(path, "/idmapping/status/"):
		return "status"
	case strings.Contains(path, "/results/"), strings.Contains(path, "/stream/"):
		return "results"
	case strings.Contains(path, "/configure/"):
		return "configure"
	default:
		return "other"
	}
}
