package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// CacheKey identifies a cached card API response.
type CacheKey struct {
	// Endpoint is the API path (e.g., "/cards" or "/sets/{id}")
	Endpoint string

	// PathParams are the path parameters (e.g., {"id": "base1"})
	PathParams map[string]string

	// QueryParams are the query parameters (e.g., {"q": "set.id:base1"})
	QueryParams url.Values
}

// String generates a deterministic cache key string.
// Format: tcg:endpoint:param1=val1:query1=val1
//
// Example:
//
//	tcg:cards:page=1:q=set.id:base1
func (k CacheKey) String() string {
	parts := []string{"tcg"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.PathParams) > 0 {
		pathKeys := make([]string, 0, len(k.PathParams))
		for key := range k.PathParams {
			pathKeys = append(pathKeys, key)
		}
		sort.Strings(pathKeys)

		for _, key := range pathKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.PathParams[key]))
		}
	}

	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, strings.Join(k.QueryParams[key], ",")))
		}
	}

	return strings.Join(parts, ":")
}
