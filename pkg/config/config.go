// Package config loads settings from the environment and an optional .env
// file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Sternrassler/uniprot-idmapping/pkg/client"
	"github.com/Sternrassler/uniprot-idmapping/pkg/idmapping"
	"github.com/Sternrassler/uniprot-idmapping/pkg/jobstore"
	"github.com/Sternrassler/uniprot-idmapping/pkg/logging"
	"github.com/Sternrassler/uniprot-idmapping/pkg/ratelimit"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// DefaultUserAgent identifies the tool when UNIPROT_USER_AGENT is unset.
const DefaultUserAgent = "uniprot-map/1.0 (+https://github.com/Sternrassler/uniprot-idmapping)"

// Config holds all settings of the tool.
type Config struct {
	// HTTP transport
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	RateLimit      float64
	Burst          int
	MaxRetries     int
	InitialBackoff time.Duration

	// Mapping run
	Run RunConfig

	// Redis enables job reuse and shared cool-downs. Empty disables both.
	RedisURL string
	JobTTL   time.Duration

	// Logging
	LogLevel  string
	LogPretty bool
}

// RunConfig holds the mapping run settings.
type RunConfig struct {
	From           string
	To             string
	Format         string
	Fields         string
	IncludeIsoform bool
	PageSize       int
	SegmentSize    int
	PollInterval   time.Duration
	MaxWait        time.Duration
	Mode           string
	MaxConcurrency int
	OnJobFailure   string
}

// Load reads the configuration from environment variables. If envFilePath
// is set and exists, it is loaded first; variables already present in the
// environment take precedence.
func Load(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	p := &parser{}
	opts := idmapping.DefaultOptions()

	cfg := &Config{
		BaseURL:        getEnv("UNIPROT_BASE_URL", client.DefaultBaseURL),
		UserAgent:      getEnv("UNIPROT_USER_AGENT", DefaultUserAgent),
		Timeout:        p.duration("UNIPROT_TIMEOUT", 60*time.Second),
		RateLimit:      p.float("UNIPROT_RATE_LIMIT", ratelimit.DefaultRequestsPerSecond),
		Burst:          p.int("UNIPROT_BURST", ratelimit.DefaultBurst),
		MaxRetries:     p.int("UNIPROT_MAX_RETRIES", 0),
		InitialBackoff: p.duration("UNIPROT_INITIAL_BACKOFF", time.Second),
		Run: RunConfig{
			From:           getEnv("UNIPROT_FROM", opts.From),
			To:             getEnv("UNIPROT_TO", opts.To),
			Format:         getEnv("UNIPROT_FORMAT", opts.Format),
			Fields:         getEnv("UNIPROT_FIELDS", opts.Fields),
			IncludeIsoform: p.bool("UNIPROT_INCLUDE_ISOFORM", opts.IncludeIsoform),
			PageSize:       p.int("UNIPROT_PAGE_SIZE", opts.PageSize),
			SegmentSize:    p.int("UNIPROT_SEGMENT_SIZE", opts.SegmentSize),
			PollInterval:   p.duration("UNIPROT_POLL_INTERVAL", opts.PollInterval),
			MaxWait:        p.duration("UNIPROT_MAX_WAIT", opts.MaxWait),
			Mode:           getEnv("UNIPROT_MODE", opts.Mode.String()),
			MaxConcurrency: p.int("UNIPROT_MAX_CONCURRENCY", opts.MaxConcurrency),
			OnJobFailure:   getEnv("UNIPROT_ON_JOB_FAILURE", opts.OnJobFailure.String()),
		},
		RedisURL:  getEnv("REDIS_URL", ""),
		JobTTL:    p.duration("UNIPROT_JOB_TTL", jobstore.DefaultTTL),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: p.bool("LOG_PRETTY", false),
	}

	if err := p.err(); err != nil {
		return nil, err
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

// ClientConfig returns the transport configuration. rdb may be nil.
func (c *Config) ClientConfig(rdb *redis.Client) client.Config {
	return client.Config{
		BaseURL:        c.BaseURL,
		UserAgent:      c.UserAgent,
		Timeout:        c.Timeout,
		RateLimit:      c.RateLimit,
		Burst:          c.Burst,
		Redis:          rdb,
		MaxRetries:     c.MaxRetries,
		InitialBackoff: c.InitialBackoff,
	}
}

// Options returns the validated run options. store may be nil.
func (c *Config) Options(store *jobstore.Manager) (idmapping.Options, error) {
	mode, err := idmapping.ParseMode(c.Run.Mode)
	if err != nil {
		return idmapping.Options{}, err
	}
	policy, err := idmapping.ParseFailurePolicy(c.Run.OnJobFailure)
	if err != nil {
		return idmapping.Options{}, err
	}

	opts := idmapping.Options{
		From:           c.Run.From,
		To:             c.Run.To,
		Format:         c.Run.Format,
		Fields:         c.Run.Fields,
		IncludeIsoform: c.Run.IncludeIsoform,
		PageSize:       c.Run.PageSize,
		SegmentSize:    c.Run.SegmentSize,
		PollInterval:   c.Run.PollInterval,
		Mode:           mode,
		MaxConcurrency: c.Run.MaxConcurrency,
		MaxWait:        c.Run.MaxWait,
		OnJobFailure:   policy,
		JobStore:       store,
		JobTTL:         c.JobTTL,
	}
	if err := opts.Validate(); err != nil {
		return idmapping.Options{}, err
	}
	return opts, nil
}

// NewRedisClient connects to RedisURL. It returns nil without error when
// Redis is not configured.
func (c *Config) NewRedisClient() (*redis.Client, error) {
	if c.RedisURL == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opt), nil
}

// getEnv returns the variable or defaultValue when unset or empty.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parser collects conversion errors so all bad variables are reported at once.
type parser struct {
	errs []error
}

func (p *parser) err() error {
	return errors.Join(p.errs...)
}

func (p *parser) fail(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (p *parser) int(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		p.fail(key, valueStr, err)
		return defaultValue
	}
	return value
}

func (p *parser) float(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		p.fail(key, valueStr, err)
		return defaultValue
	}
	return value
}

func (p *parser) bool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		p.fail(key, valueStr, err)
		return defaultValue
	}
	return value
}

// duration accepts Go durations ("5s") and bare seconds ("5").
func (p *parser) duration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if secs, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		p.fail(key, valueStr, err)
		return defaultValue
	}
	return value
}
