package cache

import "time"

// TTL bands for cached responses. Callers pick one per resource type.
const (
	// TTLNone always refetches; the entry is only kept as a stale fallback.
	TTLNone = 0

	// TTLShort suits search results that should feel live.
	TTLShort = 5 * time.Minute

	// TTLMedium suits card lists that change with price updates.
	TTLMedium = 30 * time.Minute

	// TTLLong suits individual cards and full set card lists.
	TTLLong = 1 * time.Hour

	// TTLVeryLong suits set metadata, which rarely changes.
	TTLVeryLong = 24 * time.Hour
)

// Entry is a cached response.
type Entry struct {
	// Key is the resource locator the value was fetched for
	Key string `json:"key"`

	// Value is the raw response payload
	Value []byte `json:"value"`

	// StoredAt is when the value was fetched successfully
	StoredAt time.Time `json:"stored_at"`
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// IsFresh reports whether the entry may be served without refetching.
// A zero or negative ttl is never fresh.
func (e *Entry) IsFresh(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && e.Age(now) < ttl
}
