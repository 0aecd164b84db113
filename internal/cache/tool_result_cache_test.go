package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/config"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	c, err := NewToolResultCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	key := ForecastKey{Version: "v1", ProductID: "P1", StartDate: "2025-06-01", Periods: 14}
	require.NoError(t, c.SetForecast(ctx, key, &domain.ForecastResult{ProductID: "P1"}))

	got, ok, err := c.GetForecast(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestForecastKeyDependsOnEveryField(t *testing.T) {
	base := ForecastKey{Version: "v1", ProductID: "P1", StartDate: "2025-06-01", Periods: 14}
	k := buildForecastKey(base)
	assert.True(t, strings.HasPrefix(k, toolResultKeyPrefix+":predict_demand:"))
	assert.Equal(t, k, buildForecastKey(base))

	variants := []ForecastKey{
		{Version: "v2", ProductID: "P1", StartDate: "2025-06-01", Periods: 14},
		{Version: "v1", ProductID: "P2", StartDate: "2025-06-01", Periods: 14},
		{Version: "v1", ProductID: "P1", StartDate: "2025-06-02", Periods: 14},
		{Version: "v1", ProductID: "P1", StartDate: "2025-06-01", Periods: 7},
	}
	for _, v := range variants {
		assert.NotEqual(t, k, buildForecastKey(v), "%+v", v)
	}
}

func TestRecommendationKeyNormalizesSeason(t *testing.T) {
	a := buildRecommendationKey(RecommendationKey{Version: "v1", ProductID: "P1", Season: "Summer", SafetyRatio: 0.2})
	b := buildRecommendationKey(RecommendationKey{Version: "v1", ProductID: "P1", Season: " summer", SafetyRatio: 0.2})
	c := buildRecommendationKey(RecommendationKey{Version: "v1", ProductID: "P1", Season: "summer", SafetyRatio: 0.25})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisHost: "redis", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "redis:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@cache:6379/1"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}

func TestCacheTTL(t *testing.T) {
	assert.Equal(t, defaultCacheTTL, cacheTTL(config.CacheConfig{}))
	assert.Equal(t, 30*time.Second, cacheTTL(config.CacheConfig{TTLSeconds: 30}))
}
