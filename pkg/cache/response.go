package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// FetchFunc produces a fresh value for a cache key. It is only called when
// the cached value is absent, stale or a refresh is forced.
type FetchFunc func(ctx context.Context) ([]byte, error)

// ResponseCache serves API responses from a Store, refetching them once they
// are older than the caller's TTL and falling back to the last good value
// when a refetch fails.
//
// Concurrent callers racing on the same expired key each call their fetch
// function and the last successful write wins, unless WithSingleFlight is set.
type ResponseCache struct {
	store  Store
	now    func() time.Time
	logger zerolog.Logger
	group  *singleflight.Group
}

// Option configures a ResponseCache.
type Option func(*ResponseCache)

// WithStore sets the backing store (default: a new MemoryStore).
func WithStore(store Store) Option {
	return func(c *ResponseCache) {
		if store != nil {
			c.store = store
		}
	}
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(c *ResponseCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *ResponseCache) {
		c.logger = logger
	}
}

// WithSingleFlight makes concurrent fetches for the same key share one
// in-flight call. The shared call runs with the first caller's context.
func WithSingleFlight() Option {
	return func(c *ResponseCache) {
		c.group = &singleflight.Group{}
	}
}

// NewResponseCache creates a response cache.
func NewResponseCache(opts ...Option) *ResponseCache {
	c := &ResponseCache{
		store:  NewMemoryStore(),
		now:    time.Now,
		logger: log.With().Str("component", "response-cache").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the backing store.
func (c *ResponseCache) Store() Store {
	return c.store
}

// GetOrFetch returns the cached value for key while it is younger than ttl.
// Otherwise, or when forceRefresh is set, it calls fetch and stores the
// result. If fetch fails and a value (fresh or stale) is cached, that value
// is returned instead of the error; with nothing cached the fetch error is
// returned unchanged.
func (c *ResponseCache) GetOrFetch(ctx context.Context, key string, fetch FetchFunc, ttl time.Duration, forceRefresh bool) ([]byte, error) {
	entry := c.load(ctx, key)

	switch {
	case forceRefresh:
		CacheMisses.WithLabelValues("forced").Inc()
	case entry == nil:
		CacheMisses.WithLabelValues("absent").Inc()
	case entry.IsFresh(c.now(), ttl):
		CacheHits.WithLabelValues(c.store.Name()).Inc()
		c.logger.Debug().
			Str("key", key).
			Dur("age", entry.Age(c.now())).
			Msg("Cache hit")
		return entry.Value, nil
	default:
		CacheMisses.WithLabelValues("stale").Inc()
	}

	value, err := c.fetch(ctx, key, fetch)
	if err == nil {
		return value, nil
	}

	FetchErrors.Inc()

	// Re-read so the fallback is the newest value any caller stored.
	if fallback := c.load(ctx, key); fallback != nil {
		StaleFallbacks.Inc()
		c.logger.Warn().
			Err(err).
			Str("key", key).
			Dur("age", fallback.Age(c.now())).
			Msg("Fetch failed, serving stale value")
		return fallback.Value, nil
	}

	return nil, err
}

// Clear removes the given keys, or every entry when no keys are given.
// Clearing absent keys is a no-op.
func (c *ResponseCache) Clear(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		if err := c.store.Flush(ctx); err != nil {
			CacheErrors.WithLabelValues("flush").Inc()
			c.logger.Warn().Err(err).Msg("Cache flush failed")
			return
		}
		c.logger.Info().Msg("Cache cleared")
		return
	}

	if err := c.store.Delete(ctx, keys...); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("Cache delete failed")
		return
	}
	c.logger.Debug().Strs("keys", keys).Msg("Cache keys cleared")
}

// fetch runs fn and stores its result, sharing the call across goroutines
// when single-flight is enabled.
func (c *ResponseCache) fetch(ctx context.Context, key string, fn FetchFunc) ([]byte, error) {
	run := func() ([]byte, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.save(ctx, &Entry{Key: key, Value: value, StoredAt: c.now()})
		return value, nil
	}

	if c.group == nil {
		return run()
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		return run()
	})
	if shared {
		c.logger.Debug().Str("key", key).Msg("Shared in-flight fetch")
	}
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// load returns the stored entry or nil. Store failures count as a miss.
func (c *ResponseCache) load(ctx context.Context, key string) *Entry {
	entry, err := c.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			CacheErrors.WithLabelValues("load").Inc()
			c.logger.Warn().Err(err).Str("key", key).Msg("Cache load failed")
		}
		return nil
	}
	return entry
}

func (c *ResponseCache) save(ctx context.Context, entry *Entry) {
	if err := c.store.Save(ctx, entry); err != nil {
		CacheErrors.WithLabelValues("save").Inc()
		c.logger.Warn().Err(err).Str("key", entry.Key).Msg("Cache save failed")
		return
	}
	c.logger.Debug().Str("key", entry.Key).Int("bytes", len(entry.Value)).Msg("Cached response")
}
