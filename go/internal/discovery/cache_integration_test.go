//go:build integration

package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/mcdev12/recruit/go/internal/models"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisCacheRoundTrip(t *testing.T) {
	client := newRedisClient(t)
	cache := NewRedisCache(client, "test:")
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	want := []models.Candidate{
		{Athlete: models.Athlete{ID: uuid.New(), Username: "close", PrimarySport: "basketball"}, DistanceKm: 0.63},
	}
	require.NoError(t, cache.Set(ctx, "k", want, time.Minute))

	got, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, want[0].Athlete.ID, got[0].Athlete.ID)
	assert.InDelta(t, 0.63, got[0].DistanceKm, 1e-9)

	ttl, err := client.TTL(ctx, "test:k").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisCacheDecodeError(t *testing.T) {
	client := newRedisClient(t)
	cache := NewRedisCache(client, "test:")
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "test:bad", "not json", time.Minute).Err())
	_, ok, err := cache.Get(ctx, "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}
