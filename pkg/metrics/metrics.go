// Package metrics exposes the Prometheus metrics of the card API client.
// All metrics are defined in their respective packages (client, cache,
// ratelimit, pagination) and registered via promauto on the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back everything registered on Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registered metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - tcg_cache_hits_total{store} (Counter): Fresh cache hits by store (memory, redis)
//   - tcg_cache_misses_total{reason} (Counter): Misses by reason (absent, stale, forced)
//   - tcg_cache_stale_fallbacks_total (Counter): Stale values served after a failed fetch
//   - tcg_cache_fetch_errors_total (Counter): Failed fetches behind the cache
//   - tcg_cache_errors_total{operation} (Counter): Store errors (load, save, delete, flush)
//
// Rate Limit Metrics (pkg/ratelimit):
//   - tcg_rate_limit_remaining (Gauge): Requests remaining in the quota window
//   - tcg_rate_limit_blocks_total (Counter): Requests blocked at the critical threshold
//   - tcg_rate_limit_throttles_total (Counter): Requests delayed at the warning threshold
//
// Request Metrics (pkg/client):
//   - tcg_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - tcg_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - tcg_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//   - tcg_snapshot_fallbacks_total{resource} (Counter): Reads served from the local snapshot
//
// Retry Metrics (pkg/client):
//   - tcg_retries_total{error_class} (Counter): Retry attempts by error class
//   - tcg_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - tcg_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Pagination Metrics (pkg/pagination):
//   - tcg_pages_fetched_total{status} (Counter): List pages fetched (success, error)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(tcg_cache_hits_total[5m])) /
//   (sum(rate(tcg_cache_hits_total[5m])) + sum(rate(tcg_cache_misses_total[5m])))
//
//   # Degraded reads (stale cache or snapshot)
//   rate(tcg_cache_stale_fallbacks_total[5m]) + sum(rate(tcg_snapshot_fallbacks_total[5m]))
//
//   # Quota Status
//   tcg_rate_limit_remaining < 20
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(tcg_request_duration_seconds_bucket[5m]))
