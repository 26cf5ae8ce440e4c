package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcdev12/recruit/go/internal/models"
)

// Cache stores recent discovery results. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]models.Candidate, bool, error)
	Set(ctx context.Context, key string, candidates []models.Candidate, ttl time.Duration) error
}

// RedisCache keeps results as JSON strings with a TTL.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]models.Candidate, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var candidates []models.Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return nil, false, fmt.Errorf("decode cached candidates: %w", err)
	}
	return candidates, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, candidates []models.Candidate, ttl time.Duration) error {
	raw, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("encode candidates: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// cacheKey normalizes a query. Coordinates are rounded to about 10m so nearby
// origins share an entry; search is case-insensitive like the filter.
func cacheKey(q Query, limit int, searchWidens bool) string {
	return fmt.Sprintf("candidates:%.4f:%.4f:%s:%s:%d:%t",
		q.Origin.Latitude,
		q.Origin.Longitude,
		q.Sport,
		strings.ToLower(q.Search),
		limit,
		searchWidens,
	)
}
