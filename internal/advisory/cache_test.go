package advisory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Hour), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "e1", "looks reasonable"))

	text, err := cache.Text(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, "looks reasonable", text)
}

func TestCacheMissIsPending(t *testing.T) {
	cache, _ := newTestCache(t)

	text, err := cache.Text(context.Background(), "never-analyzed")
	require.NoError(t, err)
	require.Equal(t, FallbackPending, text)
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "e1", "looks reasonable"))
	mr.FastForward(2 * time.Hour)

	text, err := cache.Text(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, FallbackPending, text)
}

func TestCacheDegradedReadKeepsFallback(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	text, err := cache.Text(context.Background(), "e1")
	require.Error(t, err)
	require.Equal(t, FallbackPending, text)
}

func TestDisabledOracleFallsBack(t *testing.T) {
	oracle := NewOpenAIOracle("", "gpt-4o-mini", time.Second, nil)
	require.Equal(t, FallbackDisabled, oracle.Analyze(context.Background(), Request{}))
}
