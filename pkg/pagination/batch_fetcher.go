package pagination

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var pagesFetchedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tcg_pages_fetched_total",
		Help: "Total number of list pages fetched from the card API",
	},
	[]string{"status"},
)

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel requests.
	// The client's own limiter still paces the requests.
	MaxConcurrency int
	// Timeout per page fetch
	Timeout time.Duration
}

// DefaultConfig returns safe default configuration for the card API
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        30 * time.Second,
	}
}

// PageFetcher is the interface the API client implements for single-page fetching
type PageFetcher interface {
	// FetchPage fetches a single page and returns data + total page count
	FetchPage(ctx context.Context, endpoint string, query url.Values, page int) (data []byte, totalPages int, err error)
}

// BatchFetcher handles parallel fetching of multiple pages
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
	logger  zerolog.Logger
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	defaults := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
		logger:  log.With().Str("component", "pagination").Logger(),
	}
}

// WithLogger returns a copy of the fetcher that logs to logger.
func (bf *BatchFetcher) WithLogger(logger zerolog.Logger) *BatchFetcher {
	cp := *bf
	cp.logger = logger
	return &cp
}

// FetchAllPages fetches all pages of an endpoint in parallel.
// Returns a map of pageNumber -> data. When a page fails, the pages fetched
// so far are returned together with the error.
func (bf *BatchFetcher) FetchAllPages(ctx context.Context, endpoint string, query url.Values) (map[int][]byte, error) {
	start := time.Now()

	firstPageData, totalPages, err := bf.fetchPage(ctx, endpoint, query, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	results := map[int][]byte{1: firstPageData}
	if totalPages <= 1 {
		bf.logger.Debug().
			Str("endpoint", endpoint).
			Dur("duration", time.Since(start)).
			Msg("Fetch complete (single page)")
		return results, nil
	}

	bf.logger.Info().
		Str("endpoint", endpoint).
		Int("total_pages", totalPages).
		Int("concurrency", bf.config.MaxConcurrency).
		Msg("Starting parallel page fetch")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bf.config.MaxConcurrency)

	for page := 2; page <= totalPages; page++ {
		page := page
		g.Go(func() error {
			data, _, err := bf.fetchPage(gctx, endpoint, query, page)
			if err != nil {
				bf.logger.Warn().
					Err(err).
					Str("endpoint", endpoint).
					Int("page", page).
					Msg("Page fetch failed")
				return fmt.Errorf("page %d: %w", page, err)
			}

			mu.Lock()
			results[page] = data
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		bf.logger.Warn().
			Err(err).
			Int("fetched_pages", len(results)).
			Int("total_pages", totalPages).
			Msg("Returning partial results")
		return results, fmt.Errorf("partial data (%d/%d pages): %w", len(results), totalPages, err)
	}

	bf.logger.Info().
		Str("endpoint", endpoint).
		Int("pages", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return results, nil
}

func (bf *BatchFetcher) fetchPage(ctx context.Context, endpoint string, query url.Values, page int) ([]byte, int, error) {
	pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()

	data, totalPages, err := bf.fetcher.FetchPage(pageCtx, endpoint, query, page)
	if err != nil {
		pagesFetchedTotal.WithLabelValues("error").Inc()
		return nil, 0, err
	}
	pagesFetchedTotal.WithLabelValues("success").Inc()
	return data, totalPages, nil
}

// Ordered returns the fetched pages sorted by page number.
func Ordered(results map[int][]byte) [][]byte {
	pages := make([]int, 0, len(results))
	for page := range results {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	ordered := make([][]byte, 0, len(pages))
	for _, page := range pages {
		ordered = append(ordered, results[page])
	}
	return ordered
}
