package fulfillment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *PlanCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPlanCache(client, time.Minute)
}

func TestPlanKeyIgnoresQuoteOrder(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	a, err := cache.PlanKey(ctx, []int64{3, 1, 2})
	require.NoError(t, err)
	b, err := cache.PlanKey(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestFetchPlanPopulatesAndHits(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key, err := cache.PlanKey(ctx, []int64{42})
	require.NoError(t, err)

	loads := 0
	loader := func(ctx context.Context) (Result, error) {
		loads++
		return Result{Furnishes: []Furnish{{Ref: SupplierRef(1, 9), ArticleID: 1, SupplierID: 9, Quantity: 6}}}, nil
	}

	first, err := cache.FetchPlan(ctx, key, loader)
	require.NoError(t, err)
	second, err := cache.FetchPlan(ctx, key, loader)
	require.NoError(t, err)

	require.Equal(t, 1, loads)
	require.Equal(t, first, second)
}

func TestFetchPlanPropagatesLoaderError(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	boom := errors.New("snapshot failed")
	_, err := cache.FetchPlan(ctx, "fulfillment:plan:test", func(ctx context.Context) (Result, error) {
		return Result{}, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestBumpOrphansCachedPlans(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	before, err := cache.PlanKey(ctx, []int64{42})
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))
	after, err := cache.PlanKey(ctx, []int64{42})
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

func TestNilCachePassesThrough(t *testing.T) {
	var cache *PlanCache
	ctx := context.Background()

	key, err := cache.PlanKey(ctx, []int64{42})
	require.NoError(t, err)
	require.NotEmpty(t, key)

	result, err := cache.FetchPlan(ctx, key, func(ctx context.Context) (Result, error) {
		return Result{Articles: []ArticleSummary{{ArticleID: 1}}}, nil
	})
	require.NoError(t, err)
	require.Len(t, result.Articles, 1)
	require.NoError(t, cache.Bump(ctx))
}
