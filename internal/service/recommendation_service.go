package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/cache"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/observability"
)

const recommendPurchaseTool = "recommend_purchase"

type Recommender interface {
	Recommend(ctx context.Context, productID, season string, safetyRatio float64) (*domain.RecommendationResult, error)
	DefaultSafetyRatio() float64
}

type RecommendationService struct {
	engine  Recommender
	cache   cache.ToolResultCache
	version string
	metrics *observability.Metrics
}

func NewRecommendationService(engine Recommender, cacheImpl cache.ToolResultCache, version string, metrics *observability.Metrics) *RecommendationService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopToolResultCache()
	}
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}
	return &RecommendationService{engine: engine, cache: cacheImpl, version: version, metrics: metrics}
}

func (s *RecommendationService) DefaultSafetyRatio() float64 { return s.engine.DefaultSafetyRatio() }

func (s *RecommendationService) Recommend(ctx context.Context, productID, season string, safetyRatio float64) (*domain.RecommendationResult, error) {
	key := cache.RecommendationKey{
		Version:     s.version,
		ProductID:   productID,
		Season:      season,
		SafetyRatio: safetyRatio,
	}

	if result, ok, err := s.cache.GetRecommendation(ctx, key); err == nil && ok {
		s.metrics.RecordCache(recommendPurchaseTool, "hit")
		return result, nil
	} else if err != nil {
		s.metrics.RecordCache(recommendPurchaseTool, "error")
		log.Warn().Err(err).Msg("recommendation: cache get failed")
	} else {
		s.metrics.RecordCache(recommendPurchaseTool, "miss")
	}

	result, err := s.engine.Recommend(ctx, productID, season, safetyRatio)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetRecommendation(ctx, key, result); err != nil {
		log.Warn().Err(err).Msg("recommendation: cache set failed")
	}

	return result, nil
}
