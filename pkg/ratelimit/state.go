// Package ratelimit paces requests to the ID-mapping service and honours
// Retry-After cool-downs announced with 429 and 503 responses.
package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Redis keys for shared cool-down state.
const (
	RedisKeyBlockedUntil = "uniprot:rate_limit:blocked_until"
	RedisKeyReason       = "uniprot:rate_limit:reason"
)

// Defaults for the client-side token bucket.
const (
	DefaultRequestsPerSecond = 10
	DefaultBurst             = 5

	// MaxCooldown caps a single Retry-After instruction.
	MaxCooldown = 10 * time.Minute
)

// CooldownState describes whether requests are currently held back.
type CooldownState struct {
	// BlockedUntil is the earliest time the next request may be sent.
	BlockedUntil time.Time `json:"blocked_until"`

	// Reason records the response status that caused the cool-down.
	Reason string `json:"reason"`

	// LastUpdate is when this state was recorded.
	LastUpdate time.Time `json:"last_update"`
}

// IsBlocked reports whether the cool-down is still active.
func (s *CooldownState) IsBlocked() bool {
	return time.Now().Before(s.BlockedUntil)
}

// TimeUntilReset returns the remaining cool-down, or 0 when none is active.
func (s *CooldownState) TimeUntilReset() time.Duration {
	d := time.Until(s.BlockedUntil)
	if d < 0 {
		return 0
	}
	return d
}

// IsStale returns true if the state is older than maxAge.
func (s *CooldownState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// shouldCoolDown reports whether a status code may carry a Retry-After
// instruction we honour.
func shouldCoolDown(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// parseRetryAfter understands both delta-seconds and HTTP-date values.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return min(time.Duration(secs)*time.Second, MaxCooldown), true
	}

	at, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}
	d := at.Sub(now)
	if d < 0 {
		d = 0
	}
	return min(d, MaxCooldown), true
}
