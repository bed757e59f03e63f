package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for request pacing.
var (
	cooldownsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uniprot_rate_limit_cooldowns_total",
		Help: "Total number of Retry-After cool-downs by response status",
	}, []string{"status"})

	waitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "uniprot_rate_limit_wait_seconds",
		Help:    "Time spent waiting for the rate limiter before a request",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 30, 120},
	})
)

// extendCooldown stores a shared cool-down unless a later one is already
// recorded. KEYS: blocked_until, reason. ARGV: until (unix nanos), ttl (ms),
// reason.
var extendCooldown = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]))
if current and current >= tonumber(ARGV[1]) then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
redis.call("SET", KEYS[2], ARGV[3], "PX", ARGV[2])
return 1
`)

// Config holds tracker configuration.
type Config struct {
	// RequestsPerSecond is the sustained request rate. Zero or less disables pacing.
	RequestsPerSecond float64

	// Burst is the token bucket size.
	Burst int

	// Redis shares cool-downs between processes. Optional.
	Redis *redis.Client
}

// DefaultConfig returns the pacing used against the public service.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: DefaultRequestsPerSecond,
		Burst:             DefaultBurst,
	}
}

// Tracker gates outgoing requests.
type Tracker struct {
	limiter *rate.Limiter
	redis   *redis.Client
	logger  zerolog.Logger

	mu    sync.Mutex
	local CooldownState
}

// NewTracker creates a new tracker.
func NewTracker(cfg Config, logger zerolog.Logger) *Tracker {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Tracker{
		limiter: rate.NewLimiter(limit, burst),
		redis:   cfg.Redis,
		logger:  logger,
	}
}

// GetState returns the effective cool-down, merging local and shared state.
// The later of the two BlockedUntil values wins.
func (t *Tracker) GetState(ctx context.Context) (*CooldownState, error) {
	t.mu.Lock()
	state := t.local
	t.mu.Unlock()

	if t.redis == nil {
		return &state, nil
	}

	vals, err := t.redis.MGet(ctx, RedisKeyBlockedUntil, RedisKeyReason).Result()
	if err != nil {
		return nil, fmt.Errorf("get cool-down state: %w", err)
	}

	raw, ok := vals[0].(string)
	if !ok {
		return &state, nil
	}
	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse blocked until: %w", err)
	}

	shared := time.Unix(0, nanos)
	if shared.After(state.BlockedUntil) {
		state.BlockedUntil = shared
		if reason, ok := vals[1].(string); ok {
			state.Reason = reason
		}
	}
	return &state, nil
}

// UpdateFromResponse records a cool-down when the response carries a
// Retry-After instruction on a 429 or 503 status.
func (t *Tracker) UpdateFromResponse(ctx context.Context, status int, headers http.Header) error {
	if !shouldCoolDown(status) {
		return nil
	}

	now := time.Now()
	wait, ok := parseRetryAfter(headers.Get("Retry-After"), now)
	if !ok || wait == 0 {
		return nil
	}

	reason := strconv.Itoa(status)
	until := now.Add(wait)

	t.mu.Lock()
	if until.After(t.local.BlockedUntil) {
		t.local = CooldownState{BlockedUntil: until, Reason: reason, LastUpdate: now}
	}
	t.mu.Unlock()

	cooldownsTotal.WithLabelValues(reason).Inc()
	t.logger.Warn().
		Int("status", status).
		Dur("cooldown", wait).
		Time("blocked_until", until).
		Msg("Service asked us to back off")

	if t.redis == nil {
		return nil
	}

	ttl := wait.Milliseconds()
	if ttl < 1 {
		ttl = 1
	}
	keys := []string{RedisKeyBlockedUntil, RedisKeyReason}
	if err := extendCooldown.Run(ctx, t.redis, keys, until.UnixNano(), ttl, reason).Err(); err != nil {
		return fmt.Errorf("store cool-down state in redis: %w", err)
	}
	return nil
}

// Wait blocks until a request may be sent or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	start := time.Now()
	defer func() {
		waitSeconds.Observe(time.Since(start).Seconds())
	}()

	state, err := t.GetState(ctx)
	if err != nil {
		// Shared state is advisory; local pacing still applies.
		t.logger.Warn().Err(err).Msg("Cool-down state unavailable")
	} else if state.IsBlocked() {
		d := state.TimeUntilReset()
		t.logger.Debug().
			Dur("wait", d).
			Str("reason", state.Reason).
			Msg("Waiting for cool-down to expire")

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return t.limiter.Wait(ctx)
}
