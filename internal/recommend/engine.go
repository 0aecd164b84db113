// Package recommend turns seasonal sales history into purchase quantities.
package recommend

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
)

const (
	DefaultPlanningDays   = 30
	DefaultSafetyRatio    = 0.2
	DefaultMaxSafetyRatio = 10.0
)

type HistorySource interface {
	UnitsInMonths(productID string, months []time.Month) []float64
}

type Config struct {
	PlanningDays       int
	DefaultSafetyRatio float64
	MaxSafetyRatio     float64
}

type Engine struct {
	history    HistorySource
	calculator *PurchaseCalculator
	cfg        Config
}

func DefaultConfig() Config {
	return Config{
		PlanningDays:       DefaultPlanningDays,
		DefaultSafetyRatio: DefaultSafetyRatio,
		MaxSafetyRatio:     DefaultMaxSafetyRatio,
	}
}

// NewEngine fills unset limits from DefaultConfig. A zero DefaultSafetyRatio is kept;
// only a negative one is replaced.
func NewEngine(history HistorySource, cfg Config) *Engine {
	if cfg.PlanningDays <= 0 {
		cfg.PlanningDays = DefaultPlanningDays
	}
	if cfg.DefaultSafetyRatio < 0 {
		cfg.DefaultSafetyRatio = DefaultSafetyRatio
	}
	if cfg.MaxSafetyRatio <= 0 {
		cfg.MaxSafetyRatio = DefaultMaxSafetyRatio
	}
	return &Engine{
		history:    history,
		calculator: NewPurchaseCalculator(cfg.PlanningDays),
		cfg:        cfg,
	}
}

// DefaultSafetyRatio is the ratio applied when the caller omits one.
func (e *Engine) DefaultSafetyRatio() float64 { return e.cfg.DefaultSafetyRatio }

// Recommend computes the purchase quantity for productID over season. Unknown season
// names are treated as "all" and the result reports the resolved season.
func (e *Engine) Recommend(ctx context.Context, productID, season string, safetyRatio float64) (*domain.RecommendationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if math.IsNaN(safetyRatio) || math.IsInf(safetyRatio, 0) || safetyRatio < 0 || safetyRatio > e.cfg.MaxSafetyRatio {
		return nil, fmt.Errorf("%w: safety_stock_ratio must be between 0 and %g, got %v", domain.ErrInvalidArgument, e.cfg.MaxSafetyRatio, safetyRatio)
	}

	resolved, ok := domain.ParseSeason(season)
	if !ok {
		log.Debug().Str("season", season).Msg("recommend: unknown season, using all months")
	}

	units := e.history.UnitsInMonths(productID, resolved.Months())
	if len(units) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", domain.ErrNoHistoryForSeason, productID, resolved)
	}

	metrics := e.calculator.Calculate(units, safetyRatio)

	return &domain.RecommendationResult{
		ProductID:      productID,
		Season:         string(resolved),
		AvgDaily:       metrics.AvgDaily,
		RecommendedQty: metrics.RecommendedQty,
	}, nil
}
