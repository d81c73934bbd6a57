package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const planCacheVersionKey = "fulfillment:version"

// PlanCache caches compiled plans in Redis behind a global version number.
// Applying a plan bumps the version, which orphans every cached entry at
// once. A nil cache or nil client degrades to loader passthrough.
type PlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPlanCache instantiates the cache helper.
func NewPlanCache(client *redis.Client, ttl time.Duration) *PlanCache {
	return &PlanCache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *PlanCache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, planCacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, planCacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, planCacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// PlanKey composes the versioned cache key for a quote set. Quote order does
// not matter; the ids are sorted before joining.
func (c *PlanCache) PlanKey(ctx context.Context, quoteIDs []int64) (string, error) {
	sorted := make([]int64, len(quoteIDs))
	copy(sorted, quoteIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	tokens := make([]string, 0, len(sorted)+2)
	tokens = append(tokens, "fulfillment", "plan")
	for _, id := range sorted {
		tokens = append(tokens, strconv.FormatInt(id, 10))
	}
	joined := strings.Join(tokens, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchPlan loads a cached plan or populates it using the loader.
func (c *PlanCache) FetchPlan(ctx context.Context, key string, loader func(context.Context) (Result, error)) (Result, error) {
	if loader == nil {
		return Result{}, errors.New("fulfillment: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached Result
		if err := json.Unmarshal(payload, &cached); err != nil {
			return Result{}, err
		}
		return cached, nil
	}
	if err != redis.Nil {
		return Result{}, err
	}
	result, err := loader(ctx)
	if err != nil {
		return Result{}, err
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return Result{}, err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return Result{}, err
	}
	return result, nil
}

// Bump invalidates every cached plan by incrementing the global version.
func (c *PlanCache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, planCacheVersionKey).Err()
}
