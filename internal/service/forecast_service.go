package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/cache"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/observability"
)

const predictDemandTool = "predict_demand"

// Forecaster is the forecast engine.
type Forecaster interface {
	Predict(ctx context.Context, productID string, start time.Time, periods int) (*domain.ForecastResult, error)
	MaxPeriods() int
}

type ForecastService struct {
	engine  Forecaster
	cache   cache.ToolResultCache
	version string
	metrics *observability.Metrics
}

// NewForecastService wraps engine with the result cache. version scopes cache entries
// to the loaded model.
func NewForecastService(engine Forecaster, cacheImpl cache.ToolResultCache, version string, metrics *observability.Metrics) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopToolResultCache()
	}
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}
	return &ForecastService{engine: engine, cache: cacheImpl, version: version, metrics: metrics}
}

func (s *ForecastService) MaxPeriods() int { return s.engine.MaxPeriods() }

func (s *ForecastService) Predict(ctx context.Context, productID string, start time.Time, periods int) (*domain.ForecastResult, error) {
	key := cache.ForecastKey{
		Version:   s.version,
		ProductID: productID,
		StartDate: start.Format(domain.DateLayout),
		Periods:   periods,
	}

	if result, ok, err := s.cache.GetForecast(ctx, key); err == nil && ok {
		s.metrics.RecordCache(predictDemandTool, "hit")
		return result, nil
	} else if err != nil {
		s.metrics.RecordCache(predictDemandTool, "error")
		log.Warn().Err(err).Msg("forecast: cache get failed")
	} else {
		s.metrics.RecordCache(predictDemandTool, "miss")
	}

	result, err := s.engine.Predict(ctx, productID, start, periods)
	if err != nil {
		return nil, err
	}
	s.metrics.ForecastPeriods.Observe(float64(periods))

	if err := s.cache.SetForecast(ctx, key, result); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set failed")
	}

	return result, nil
}
