// Package cache provides the response cache used by the card API client.
//
// The response cache keeps the last successful payload per key together with
// the time it was stored:
//
// - Freshness is checked lazily on read against a caller-chosen TTL
// - A failed refresh serves the last good value instead of the error
// - Entries live in a pluggable Store (process memory or Redis)
// - Optional single-flight de-duplication of concurrent refreshes
// - Prometheus metrics for hits, misses and stale fallbacks
// - Deterministic cache key generation
//
// # Basic Usage
//
//	rc := cache.NewResponseCache()
//
//	key := cache.CacheKey{
//		Endpoint:    "/cards",
//		QueryParams: url.Values{"q": []string{"set.id:base1"}},
//	}
//
//	data, err := rc.GetOrFetch(ctx, key.String(), func(ctx context.Context) ([]byte, error) {
//		return fetchFromAPI(ctx)
//	}, cache.TTLLong, false)
//
// # Shared Cache
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	rc := cache.NewResponseCache(
//		cache.WithStore(cache.NewRedisStore(redisClient, 7*24*time.Hour)),
//		cache.WithSingleFlight(),
//	)
//
// # TTL Bands
//
//	TTLShort    (5m)  search results
//	TTLMedium   (30m) frequently repriced lists
//	TTLLong     (1h)  cards and set card lists
//	TTLVeryLong (24h) set metadata
//
// # Clearing
//
//	rc.Clear(ctx, key.String()) // one key
//	rc.Clear(ctx)               // everything
package cache
