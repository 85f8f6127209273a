// Package ratelimit tracks the card API's request quota and gates requests.
// It reads the X-RateLimit-Remaining and X-RateLimit-Reset response headers
// and shares the resulting state between client instances through Redis.
package ratelimit

import (
	"time"
)

// Response headers carrying the quota.
const (
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// Redis keys for rate limit state storage.
const (
	RedisKeyRequestsRemaining = "tcg:rate_limit:requests_remaining"
	RedisKeyResetTimestamp    = "tcg:rate_limit:reset_timestamp"
	RedisKeyLastUpdate        = "tcg:rate_limit:last_update"
)

// Thresholds for rate limit decisions.
const (
	// ThresholdCritical blocks all requests when the remaining quota falls below this value.
	ThresholdCritical = 5

	// ThresholdWarning applies throttling when the remaining quota falls below this value.
	ThresholdWarning = 20

	// ThresholdHealthy indicates normal operation.
	ThresholdHealthy = 50

	// DefaultRemaining is assumed until the API has reported a quota.
	DefaultRemaining = 1000
)

// RateLimitState is the last known request quota of the card API.
type RateLimitState struct {
	// RequestsRemaining is the number of requests left in the current window.
	RequestsRemaining int `json:"requests_remaining"`

	// ResetAt is when the quota window resets.
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was last updated.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when RequestsRemaining >= ThresholdHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *RateLimitState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests should be blocked until reset.
func (s *RateLimitState) NeedsCriticalBlock() bool {
	return s.RequestsRemaining < ThresholdCritical && s.TimeUntilReset() > 0
}

// NeedsThrottling returns true if requests should be slowed down.
func (s *RateLimitState) NeedsThrottling() bool {
	return s.RequestsRemaining < ThresholdWarning && !s.NeedsCriticalBlock() && s.TimeUntilReset() > 0
}

// TimeUntilReset returns the duration until the quota resets.
// Returns 0 if the reset time has already passed.
func (s *RateLimitState) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates the IsHealthy field based on RequestsRemaining.
func (s *RateLimitState) UpdateHealth() {
	s.IsHealthy = s.RequestsRemaining >= ThresholdHealthy
}
