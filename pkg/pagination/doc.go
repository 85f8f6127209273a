// Package pagination provides parallel batch fetching for paginated card API endpoints.
//
// List endpoints return a page of results together with the total result count,
// from which the number of pages follows. This package fetches the first page to
// learn that count, then fetches the remaining pages concurrently with a bounded
// number of in-flight requests.
//
// Example usage:
//
//	config := pagination.DefaultConfig()
//	fetcher := pagination.NewBatchFetcher(apiClient, config)
//	query := url.Values{"q": {"set.id:sv1"}}
//	results, err := fetcher.FetchAllPages(ctx, "/cards", query)
//	for _, page := range pagination.Ordered(results) {
//		// decode page
//	}
//
// The batch fetcher:
//   - Fetches page 1 to determine total pages
//   - Fetches pages 2..n with at most MaxConcurrency requests in flight
//   - Applies a per-page timeout
//   - Returns the pages it got together with an error when a page fails
package pagination
