// Package forecast produces multi-day demand forecasts by feeding the model its own
// predictions as lag and rolling inputs.
package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/features"
)

const (
	DefaultMaxPeriods = 365
	DefaultSeedUnits  = 10.0
)

// Predictor is the demand model as seen by the engine.
type Predictor interface {
	Predict(v features.Vector) (float64, error)
}

type ProductResolver interface {
	Code(productID string) (int, error)
}

type HistorySource interface {
	Trailing(productID string, n int) []float64
}

type Config struct {
	MaxPeriods int
	// SeedUnits fills the seed window of a product without history.
	SeedUnits float64
}

type Engine struct {
	model    Predictor
	products ProductResolver
	history  HistorySource
	cfg      Config
}

func DefaultConfig() Config {
	return Config{MaxPeriods: DefaultMaxPeriods, SeedUnits: DefaultSeedUnits}
}

// NewEngine replaces a non-positive MaxPeriods and a negative SeedUnits with their
// defaults. A zero SeedUnits seeds products without history with zeros.
func NewEngine(model Predictor, products ProductResolver, history HistorySource, cfg Config) *Engine {
	if cfg.MaxPeriods <= 0 {
		cfg.MaxPeriods = DefaultMaxPeriods
	}
	if cfg.SeedUnits < 0 {
		cfg.SeedUnits = DefaultSeedUnits
	}
	return &Engine{model: model, products: products, history: history, cfg: cfg}
}

func (e *Engine) MaxPeriods() int { return e.cfg.MaxPeriods }

// Predict forecasts periods consecutive days starting at start. Promotion is assumed
// to be 1.0 on every forecast day.
func (e *Engine) Predict(ctx context.Context, productID string, start time.Time, periods int) (*domain.ForecastResult, error) {
	if periods < 1 || periods > e.cfg.MaxPeriods {
		return nil, fmt.Errorf("%w: periods must be between 1 and %d, got %d", domain.ErrInvalidArgument, e.cfg.MaxPeriods, periods)
	}

	code, err := e.products.Code(productID)
	if err != nil {
		return nil, err
	}

	state := features.StateFrom(e.seed(productID))
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	result := &domain.ForecastResult{
		ProductID: productID,
		Dates:     make([]string, 0, periods),
		Pred:      make([]int, 0, periods),
	}

	for i := 0; i < periods; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		date := start.AddDate(0, 0, i)
		raw, err := e.model.Predict(state.Vector(code, date, features.NoPromotion))
		if err != nil {
			return nil, fmt.Errorf("forecast %s on %s: %w", productID, date.Format(domain.DateLayout), err)
		}
		if math.IsNaN(raw) || math.IsInf(raw, 0) {
			return nil, fmt.Errorf("forecast %s on %s: model returned %v", productID, date.Format(domain.DateLayout), raw)
		}

		pred := math.Max(0, raw)
		result.Dates = append(result.Dates, date.Format(domain.DateLayout))
		result.Pred = append(result.Pred, int(math.RoundToEven(pred)))

		state = advance(state, pred)
	}

	return result, nil
}

// seed is the trailing window of real history, or a flat baseline when there is none.
func (e *Engine) seed(productID string) []float64 {
	seed := e.history.Trailing(productID, features.RollingWindow)
	if len(seed) > 0 {
		return seed
	}

	seed = make([]float64, features.RollingWindow)
	for i := range seed {
		seed[i] = e.cfg.SeedUnits
	}
	return seed
}

// advance rolls the state forward by one predicted day. Lag7 is only refreshed while
// it is zero; the engine keeps no trailing buffer to compute it exactly.
func advance(s features.State, pred float64) features.State {
	if s.Lag7 == 0 {
		s.Lag7 = s.Lag1
	}
	s.Lag1 = pred
	s.Rolling30 = (s.Rolling30*(features.RollingWindow-1) + pred) / features.RollingWindow
	return s
}
