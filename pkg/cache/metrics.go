package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks fresh cache hits by store (memory, redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_cache_hits_total",
			Help: "Total number of fresh response cache hits",
		},
		[]string{"store"},
	)

	// CacheMisses tracks reads that had to fetch (absent, stale or forced)
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_cache_misses_total",
			Help: "Total number of response cache misses by reason",
		},
		[]string{"reason"}, // "absent", "stale", "forced"
	)

	// StaleFallbacks tracks stale values served after a failed fetch
	StaleFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tcg_cache_stale_fallbacks_total",
			Help: "Total number of stale values served because a refresh failed",
		},
	)

	// FetchErrors tracks fetch failures seen by the cache
	FetchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tcg_cache_fetch_errors_total",
			Help: "Total number of failed fetches behind the response cache",
		},
	)

	// CacheErrors tracks store operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_cache_errors_total",
			Help: "Total number of cache store operation errors",
		},
		[]string{"operation"}, // "load", "save", "delete", "flush"
	)
)
