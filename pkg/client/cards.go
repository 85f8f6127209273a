package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Sternrassler/tcg-client/pkg/cache"
	"github.com/Sternrassler/tcg-client/pkg/card"
	"github.com/Sternrassler/tcg-client/pkg/query"
)

// Sets returns every set, newest data first from cache, then the API, then
// the local snapshot.
func (c *Client) Sets(ctx context.Context, forceRefresh bool) ([]card.Set, error) {
	params := url.Values{"orderBy": {"releaseDate"}}
	key := cache.CacheKey{Endpoint: "/sets", QueryParams: params}.String()

	return readThrough(ctx, c, "sets", key, cache.TTLVeryLong, forceRefresh,
		func(ctx context.Context) ([]byte, error) {
			return c.fetchAll(ctx, "/sets", params)
		},
		func() ([]card.Set, error) {
			return c.snapshot.Sets()
		})
}

// Set returns a single set by ID.
func (c *Client) Set(ctx context.Context, id string, forceRefresh bool) (*card.Set, error) {
	endpoint := "/sets/" + url.PathEscape(id)
	key := cache.CacheKey{Endpoint: "/sets", PathParams: map[string]string{"id": id}}.String()

	return readThrough(ctx, c, "set", key, cache.TTLVeryLong, forceRefresh,
		func(ctx context.Context) ([]byte, error) {
			return c.fetchItem(ctx, endpoint)
		},
		func() (*card.Set, error) {
			return c.snapshot.Set(id)
		})
}

// SetCards returns every card of a set.
func (c *Client) SetCards(ctx context.Context, setID string, forceRefresh bool) ([]card.Card, error) {
	params := url.Values{"q": {SetCardsQuery(setID)}}
	key := cache.CacheKey{Endpoint: "/cards", QueryParams: params}.String()

	return readThrough(ctx, c, "set_cards", key, cache.TTLLong, forceRefresh,
		func(ctx context.Context) ([]byte, error) {
			return c.fetchAll(ctx, "/cards", params)
		},
		func() ([]card.Card, error) {
			return c.snapshot.Cards(setID)
		})
}

// SearchCards returns every card matching term. Without the API, the
// snapshot's cards are filtered locally with the same rules.
func (c *Client) SearchCards(ctx context.Context, term string, forceRefresh bool) ([]card.Card, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptySearchTerm
	}

	params := url.Values{"q": {BuildSearchQuery(term)}}
	key := cache.CacheKey{Endpoint: "/cards", QueryParams: params}.String()

	return readThrough(ctx, c, "search", key, cache.TTLShort, forceRefresh,
		func(ctx context.Context) ([]byte, error) {
			return c.fetchAll(ctx, "/cards", params)
		},
		func() ([]card.Card, error) {
			cards, err := c.snapshot.AllCards()
			if err != nil {
				return nil, err
			}
			return query.FilterByTerm(cards, term), nil
		})
}

// Card returns a single card by ID.
func (c *Client) Card(ctx context.Context, id string, forceRefresh bool) (*card.Card, error) {
	endpoint := "/cards/" + url.PathEscape(id)
	key := cache.CacheKey{Endpoint: "/cards", PathParams: map[string]string{"id": id}}.String()

	return readThrough(ctx, c, "card", key, cache.TTLLong, forceRefresh,
		func(ctx context.Context) ([]byte, error) {
			return c.fetchItem(ctx, endpoint)
		},
		func() (*card.Card, error) {
			return c.snapshot.Card(id)
		})
}

// QuerySetCards runs a card query over the cards of a set.
func (c *Client) QuerySetCards(ctx context.Context, setID string, params query.Params, forceRefresh bool) (query.Result, error) {
	cards, err := c.SetCards(ctx, setID, forceRefresh)
	if err != nil {
		return query.Result{}, err
	}
	return query.Query(cards, params), nil
}

// QuerySearch runs a card query over the results of a search for params.SearchTerm.
func (c *Client) QuerySearch(ctx context.Context, params query.Params, forceRefresh bool) (query.Result, error) {
	cards, err := c.SearchCards(ctx, params.SearchTerm, forceRefresh)
	if err != nil {
		return query.Result{}, err
	}
	return query.Query(cards, params), nil
}

// readThrough resolves a read as fresh cache, live API, stale cache, then
// snapshot. When every source fails the API error is returned.
func readThrough[T any](ctx context.Context, c *Client, resource, key string, ttl time.Duration, forceRefresh bool, fetch cache.FetchFunc, fallback func() (T, error)) (T, error) {
	var zero T

	data, err := c.cache.GetOrFetch(ctx, key, fetch, ttl, forceRefresh)
	if err == nil {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return zero, fmt.Errorf("decode cached %s: %w", resource, err)
		}
		return v, nil
	}

	if c.snapshot == nil || ctx.Err() != nil {
		return zero, err
	}

	v, snapErr := fallback()
	if snapErr != nil {
		c.logger.Warn().
			Err(err).
			AnErr("snapshot_error", snapErr).
			Str("resource", resource).
			Msg("Card API unavailable and snapshot has no data")
		return zero, err
	}

	snapshotFallbacksTotal.WithLabelValues(resource).Inc()
	c.logger.Warn().
		Err(err).
		Str("resource", resource).
		Msg("Card API unavailable, serving local snapshot")
	return v, nil
}
