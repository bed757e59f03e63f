package ratelimit

import (
	"net/http"
	"testing"
	"time"
)

func TestCooldownState_IsStale(t *testing.T) {
	tests := []struct {
		name     string
		state    *CooldownState
		maxAge   time.Duration
		expected bool
	}{
		{
			name:     "fresh state",
			state:    &CooldownState{LastUpdate: time.Now()},
			maxAge:   5 * time.Minute,
			expected: false,
		},
		{
			name:     "stale state",
			state:    &CooldownState{LastUpdate: time.Now().Add(-10 * time.Minute)},
			maxAge:   5 * time.Minute,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsStale(tt.maxAge); got != tt.expected {
				t.Errorf("IsStale() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCooldownState_IsBlocked(t *testing.T) {
	tests := []struct {
		name         string
		blockedUntil time.Time
		wantBlocked  bool
	}{
		{name: "zero value", blockedUntil: time.Time{}, wantBlocked: false},
		{name: "in the past", blockedUntil: time.Now().Add(-time.Second), wantBlocked: false},
		{name: "in the future", blockedUntil: time.Now().Add(time.Minute), wantBlocked: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &CooldownState{BlockedUntil: tt.blockedUntil}
			if got := s.IsBlocked(); got != tt.wantBlocked {
				t.Errorf("IsBlocked() = %v, want %v", got, tt.wantBlocked)
			}
			if !tt.wantBlocked && s.TimeUntilReset() != 0 {
				t.Errorf("TimeUntilReset() = %v, want 0", s.TimeUntilReset())
			}
		})
	}
}

func TestShouldCoolDown(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusOK, false},
		{http.StatusSeeOther, false},
		{http.StatusBadRequest, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, false},
		{http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		if got := shouldCoolDown(tt.status); got != tt.want {
			t.Errorf("shouldCoolDown(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		value  string
		want   time.Duration
		wantOK bool
	}{
		{name: "empty", value: "", wantOK: false},
		{name: "seconds", value: "30", want: 30 * time.Second, wantOK: true},
		{name: "zero seconds", value: "0", want: 0, wantOK: true},
		{name: "negative seconds", value: "-5", wantOK: false},
		{name: "capped", value: "86400", want: MaxCooldown, wantOK: true},
		{name: "http date", value: "Wed, 01 May 2024 12:00:45 GMT", want: 45 * time.Second, wantOK: true},
		{name: "http date in the past", value: "Wed, 01 May 2024 11:00:00 GMT", want: 0, wantOK: true},
		{name: "garbage", value: "soon", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseRetryAfter(tt.value, now)
			if ok != tt.wantOK {
				t.Fatalf("parseRetryAfter(%q) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
