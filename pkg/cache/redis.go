package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces cache entries in Redis.
const DefaultKeyPrefix = "tcg:cache:"

// flushBatchSize is the SCAN count used by Flush.
const flushBatchSize = 200

// RedisStore keeps entries in Redis so several processes share one cache.
// Entries are stored as JSON. Staleness is still decided by the response
// cache on read; Redis expiry only bounds how long stale fallbacks survive.
type RedisStore struct {
	redis     *redis.Client
	prefix    string
	retention time.Duration
}

// NewRedisStore creates a Redis-backed store. A retention of 0 keeps entries
// until they are cleared.
func NewRedisStore(redisClient *redis.Client, retention time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:     redisClient,
		prefix:    DefaultKeyPrefix,
		retention: retention,
	}
}

// Name implements Store.
func (s *RedisStore) Name() string {
	return "redis"
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, key string) (*Entry, error) {
	data, err := s.redis.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	return &entry, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.redis.Set(ctx, s.prefix+entry.Key, data, s.retention).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	redisKeys := make([]string, len(keys))
	for i, key := range keys {
		redisKeys[i] = s.prefix + key
	}

	if err := s.redis.Del(ctx, redisKeys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// Flush implements Store. Only keys under the store prefix are removed.
func (s *RedisStore) Flush(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, s.prefix+"*", flushBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}

		if len(keys) > 0 {
			if err := s.redis.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}
