package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/config"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
)

const (
	toolResultKeyPrefix = "merchant:tool"
	scanBatchSize       = 100
)

// ForecastKey identifies a predict_demand result. Version is the loaded model's
// artifact version, so a retrained model never serves stale entries.
type ForecastKey struct {
	Version   string
	ProductID string
	StartDate string
	Periods   int
}

type RecommendationKey struct {
	Version     string
	ProductID   string
	Season      string
	SafetyRatio float64
}

type ToolResultCache interface {
	GetForecast(ctx context.Context, key ForecastKey) (*domain.ForecastResult, bool, error)
	SetForecast(ctx context.Context, key ForecastKey, result *domain.ForecastResult) error
	GetRecommendation(ctx context.Context, key RecommendationKey) (*domain.RecommendationResult, bool, error)
	SetRecommendation(ctx context.Context, key RecommendationKey, result *domain.RecommendationResult) error
	InvalidateAll(ctx context.Context) error
}

type redisToolResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopToolResultCache struct{}

func NewToolResultCache(cfg config.CacheConfig) (ToolResultCache, error) {
	if !cfg.Enabled {
		return &noopToolResultCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisToolResultCache{client: client, ttl: ttl}, nil
}

func NewNoopToolResultCache() ToolResultCache {
	return &noopToolResultCache{}
}

func (c *redisToolResultCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode cached tool result: %w", err)
	}
	return true, nil
}

func (c *redisToolResultCache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode tool result: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisToolResultCache) GetForecast(ctx context.Context, key ForecastKey) (*domain.ForecastResult, bool, error) {
	var result domain.ForecastResult
	ok, err := c.get(ctx, buildForecastKey(key), &result)
	if !ok || err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

func (c *redisToolResultCache) SetForecast(ctx context.Context, key ForecastKey, result *domain.ForecastResult) error {
	return c.set(ctx, buildForecastKey(key), result)
}

func (c *redisToolResultCache) GetRecommendation(ctx context.Context, key RecommendationKey) (*domain.RecommendationResult, bool, error) {
	var result domain.RecommendationResult
	ok, err := c.get(ctx, buildRecommendationKey(key), &result)
	if !ok || err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

func (c *redisToolResultCache) SetRecommendation(ctx context.Context, key RecommendationKey, result *domain.RecommendationResult) error {
	return c.set(ctx, buildRecommendationKey(key), result)
}

func (c *redisToolResultCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, toolResultKeyPrefix, scanBatchSize)
}

func (n *noopToolResultCache) GetForecast(ctx context.Context, key ForecastKey) (*domain.ForecastResult, bool, error) {
	return nil, false, nil
}

func (n *noopToolResultCache) SetForecast(ctx context.Context, key ForecastKey, result *domain.ForecastResult) error {
	return nil
}

func (n *noopToolResultCache) GetRecommendation(ctx context.Context, key RecommendationKey) (*domain.RecommendationResult, bool, error) {
	return nil, false, nil
}

func (n *noopToolResultCache) SetRecommendation(ctx context.Context, key RecommendationKey, result *domain.RecommendationResult) error {
	return nil
}

func (n *noopToolResultCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildForecastKey(key ForecastKey) string {
	return fmt.Sprintf("%s:predict_demand:%s", toolResultKeyPrefix, hashParts(
		"version="+key.Version,
		"product_id="+strings.TrimSpace(key.ProductID),
		"start_date="+strings.TrimSpace(key.StartDate),
		"periods="+strconv.Itoa(key.Periods),
	))
}

func buildRecommendationKey(key RecommendationKey) string {
	return fmt.Sprintf("%s:recommend_purchase:%s", toolResultKeyPrefix, hashParts(
		"version="+key.Version,
		"product_id="+strings.TrimSpace(key.ProductID),
		"season="+strings.ToLower(strings.TrimSpace(key.Season)),
		"safety_ratio="+strconv.FormatFloat(key.SafetyRatio, 'g', -1, 64),
	))
}

func hashParts(parts ...string) string {
	sorted := append([]string(nil), parts...)
	sort.Strings(sorted)
	sum := sha1.Sum([]byte(strings.Join(sorted, "|")))
	return hex.EncodeToString(sum[:])
}
