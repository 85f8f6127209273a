// Package client provides the card API HTTP client with rate limiting,
// response caching, snapshot fallback and error handling.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/tcg-client/pkg/cache"
	"github.com/Sternrassler/tcg-client/pkg/card"
	"github.com/Sternrassler/tcg-client/pkg/pagination"
	"github.com/Sternrassler/tcg-client/pkg/ratelimit"
	"github.com/Sternrassler/tcg-client/pkg/snapshot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Prometheus metrics for card API client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tcg_requests_total",
		Help: "Total card API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tcg_request_duration_seconds",
		Help:    "Card API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tcg_errors_total",
		Help: "Total card API errors by class",
	}, []string{"class"})

	snapshotFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tcg_snapshot_fallbacks_total",
		Help: "Total reads served from the local snapshot by resource",
	}, []string{"resource"})
)

const (
	// DefaultBaseURL is the public card API.
	DefaultBaseURL = "https://api.pokemontcg.io/v2"

	// DefaultPageSize is the largest page the card API serves.
	DefaultPageSize = 250

	// HeaderAPIKey carries the optional API key.
	HeaderAPIKey = "X-Api-Key"

	// maxErrorBody bounds how much of an error response is kept as message.
	maxErrorBody = 512
)

// Client is the main card API client.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	tracker    *ratelimit.Tracker
	cache      *cache.ResponseCache
	snapshot   *snapshot.Source
	pages      *pagination.BatchFetcher
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the card API (default DefaultBaseURL).
	BaseURL string

	// APIKey is sent as X-Api-Key when set. The API works without one at a lower quota.
	APIKey string

	// User-Agent header (REQUIRED)
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// RequestsPerSecond paces outgoing requests. 0 disables pacing.
	RequestsPerSecond float64

	// Timeout per HTTP request.
	Timeout time.Duration

	// Retry is the base retry configuration; it is scaled per error class.
	Retry RetryConfig

	// Redis, when set, backs the response cache and shares rate limit state.
	Redis *redis.Client

	// CacheRetention bounds how long Redis keeps cache entries. 0 keeps them.
	CacheRetention time.Duration

	// Cache overrides the response cache built from Redis / memory.
	Cache *cache.ResponseCache

	// SingleFlight collapses concurrent misses for the same key into one fetch.
	SingleFlight bool

	// Snapshot is the optional local fallback when the API is unreachable.
	Snapshot *snapshot.Source

	// PageSize requested for list endpoints (max 250).
	PageSize int

	// MaxConcurrency bounds parallel page fetches.
	MaxConcurrency int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		UserAgent:         userAgent,
		RequestsPerSecond: 5,
		Timeout:           30 * time.Second,
		Retry:             DefaultRetryConfig(),
		PageSize:          DefaultPageSize,
		MaxConcurrency:    4,
	}
}

// New creates a new card API client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.PageSize < 0 || cfg.PageSize > DefaultPageSize {
		return nil, fmt.Errorf("page_size must be between 1 and %d (got %d)", DefaultPageSize, cfg.PageSize)
	}

	defaults := DefaultConfig(cfg.UserAgent)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = defaults.Retry
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = defaults.PageSize
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaults.MaxConcurrency
	}

	logger := log.With().Str("component", "tcg-client").Logger()

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		burst := int(math.Ceil(cfg.RequestsPerSecond))
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	responseCache := cfg.Cache
	if responseCache == nil {
		opts := []cache.Option{cache.WithLogger(logger.With().Str("component", "cache").Logger())}
		if cfg.Redis != nil {
			opts = append(opts, cache.WithStore(cache.NewRedisStore(cfg.Redis, cfg.CacheRetention)))
		}
		if cfg.SingleFlight {
			opts = append(opts, cache.WithSingleFlight())
		}
		responseCache = cache.NewResponseCache(opts...)
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:  limiter,
		cache:    responseCache,
		snapshot: cfg.Snapshot,
		config:   cfg,
		logger:   logger,
	}

	if cfg.Redis != nil {
		c.tracker = ratelimit.NewTracker(cfg.Redis, logger)
	}

	c.pages = pagination.NewBatchFetcher(c, pagination.Config{
		MaxConcurrency: cfg.MaxConcurrency,
		Timeout:        cfg.Timeout,
	}).WithLogger(logger)

	return c, nil
}

// Do performs an HTTP request with pacing, quota gating and retries.
// Responses with status >= 400 are returned as *APIError; on success the
// caller owns the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := endpointLabel(req.URL.Path)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Pace
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	// Step 2: Shared quota gate
	if c.tracker != nil {
		allowed, err := c.tracker.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("Rate limit check failed")
			return nil, fmt.Errorf("rate limit check: %w", err)
		}
		if !allowed {
			c.logger.Warn().
				Str("endpoint", endpoint).
				Msg("Request blocked by rate limiter")
			requestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
			return nil, ErrRateLimitCritical
		}
	}

	// Step 3: Headers
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set(HeaderAPIKey, c.config.APIKey)
	}

	c.logger.Debug().
		Str("endpoint", req.URL.Path).
		Str("method", req.Method).
		Msg("Executing card API request")

	// Step 4: Execute with retry
	var resp *http.Response
	retryErr := retryWithBackoff(ctx, c.config.Retry, c.logger, func() (ErrorClass, error) {
		r, err := c.httpClient.Do(req.Clone(ctx))
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
			return ErrorClassNetwork, err
		}

		if c.tracker != nil {
			if err := c.tracker.UpdateFromHeaders(ctx, r.Header); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
			}
		}

		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(r.StatusCode)).Inc()

		if r.StatusCode >= 400 {
			apiErr := newAPIError(r, req.URL.Path)
			errorsTotal.WithLabelValues(string(apiErr.ErrorClass)).Inc()
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", r.StatusCode).
				Str("error_class", string(apiErr.ErrorClass)).
				Msg("Card API request error")
			return apiErr.ErrorClass, apiErr
		}

		resp = r
		return "", nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return resp, nil
}

// newAPIError builds an APIError from an error response and closes its body.
func newAPIError(resp *http.Response, path string) *APIError {
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := strings.TrimSpace(string(body))
	if message == "" {
		message = resp.Status
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		ErrorClass: ClassifyStatus(resp.StatusCode),
		Message:    message,
		Endpoint:   path,
	}
	if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds > 0 {
		apiErr.RetryAfter = time.Duration(seconds) * time.Second
	}
	return apiErr
}

// endpointLabel reduces a request path to a low-cardinality metric label,
// e.g. "/v2/cards/sv1-1" becomes "/cards/{id}".
func endpointLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		if s == "cards" || s == "sets" {
			if i+1 < len(segments) {
				return "/" + s + "/{id}"
			}
			return "/" + s
		}
	}
	return path
}

// Get performs a GET request to a card API endpoint and returns the body.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	target := c.config.BaseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// FetchPage fetches one page of a list endpoint and reports the total page count.
// It implements pagination.PageFetcher.
func (c *Client) FetchPage(ctx context.Context, endpoint string, query url.Values, page int) ([]byte, int, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(c.config.PageSize))

	body, err := c.Get(ctx, endpoint, q)
	if err != nil {
		return nil, 0, err
	}

	var envelope card.ListResponse[json.RawMessage]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, 0, fmt.Errorf("decode %s page %d: %w", endpoint, page, err)
	}

	pageSize := envelope.PageSize
	if pageSize <= 0 {
		pageSize = c.config.PageSize
	}
	totalPages := (envelope.TotalCount + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return body, totalPages, nil
}

// fetchAll fetches every page of a list endpoint and returns the items as
// one JSON array.
func (c *Client) fetchAll(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	results, err := c.pages.FetchAllPages(ctx, endpoint, query)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}

	items := []json.RawMessage{}
	for _, page := range pagination.Ordered(results) {
		var envelope card.ListResponse[json.RawMessage]
		if err := json.Unmarshal(page, &envelope); err != nil {
			return nil, fmt.Errorf("decode %s page: %w", endpoint, err)
		}
		items = append(items, envelope.Data...)
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode %s items: %w", endpoint, err)
	}
	return data, nil
}

// fetchItem fetches a single-item endpoint and returns the unwrapped item.
func (c *Client) fetchItem(ctx context.Context, endpoint string) ([]byte, error) {
	body, err := c.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var envelope card.ItemResponse[json.RawMessage]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	if len(envelope.Data) == 0 {
		return nil, fmt.Errorf("decode %s: missing data", endpoint)
	}
	return envelope.Data, nil
}

// ClearCache removes the given cache keys, or every entry when none are given.
func (c *Client) ClearCache(ctx context.Context, keys ...string) {
	c.cache.Clear(ctx, keys...)
}

// Cache returns the response cache.
func (c *Client) Cache() *cache.ResponseCache {
	return c.cache
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
