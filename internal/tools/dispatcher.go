// Package tools exposes the forecast and recommendation engines as a closed set of
// named operations with validated arguments.
package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/observability"
)

const (
	PredictDemand     = "predict_demand"
	RecommendPurchase = "recommend_purchase"

	DefaultPeriods = 14
)

type Forecaster interface {
	Predict(ctx context.Context, productID string, start time.Time, periods int) (*domain.ForecastResult, error)
	MaxPeriods() int
}

type Recommender interface {
	Recommend(ctx context.Context, productID, season string, safetyRatio float64) (*domain.RecommendationResult, error)
	DefaultSafetyRatio() float64
}

// ErrorResult is the body returned in place of a tool result on failure.
type ErrorResult struct {
	Error string `json:"error"`
}

type Dispatcher struct {
	forecaster     Forecaster
	recommender    Recommender
	defaultPeriods int
	metrics        *observability.Metrics
}

func NewDispatcher(forecaster Forecaster, recommender Recommender, defaultPeriods int, metrics *observability.Metrics) *Dispatcher {
	if defaultPeriods <= 0 {
		defaultPeriods = DefaultPeriods
	}
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}
	return &Dispatcher{
		forecaster:     forecaster,
		recommender:    recommender,
		defaultPeriods: defaultPeriods,
		metrics:        metrics,
	}
}

// Names lists the registered tools.
func (d *Dispatcher) Names() []string {
	return []string{PredictDemand, RecommendPurchase}
}

func (d *Dispatcher) Descriptors() []Descriptor {
	seasons := make([]string, 0, 4)
	for _, s := range domain.Seasons() {
		seasons = append(seasons, string(s))
	}

	return []Descriptor{
		{
			Name:        PredictDemand,
			Description: "Forecast daily units sold for a product over consecutive days starting at start_date.",
			InputSchema: Schema{
				Type: "object",
				Properties: map[string]Property{
					"product_id": {Type: "string", Description: "Product identifier, e.g. P1"},
					"start_date": {Type: "string", Format: "date", Description: "First forecast day, YYYY-MM-DD"},
					"periods": {
						Type:        "integer",
						Description: "Number of days to forecast",
						Default:     d.defaultPeriods,
						Minimum:     bound(1),
						Maximum:     bound(float64(d.forecaster.MaxPeriods())),
					},
				},
				Required: []string{"product_id", "start_date"},
			},
		},
		{
			Name:        RecommendPurchase,
			Description: "Recommend a purchase quantity covering 30 days of seasonal demand plus safety stock.",
			InputSchema: Schema{
				Type: "object",
				Properties: map[string]Property{
					"product_id": {Type: "string", Description: "Product identifier, e.g. P1"},
					"season": {
						Type:        "string",
						Description: "Season whose months are averaged; unknown names use all months",
						Enum:        seasons,
					},
					"safety_stock_ratio": {
						Type:        "number",
						Description: "Fractional buffer over required stock",
						Default:     d.recommender.DefaultSafetyRatio(),
						Minimum:     bound(0),
					},
				},
				Required: []string{"product_id", "season"},
			},
		},
	}
}

// Dispatch validates args for the named tool and invokes it.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) (any, error) {
	started := time.Now()
	result, err := d.dispatch(ctx, name, args)

	status := Status(err)
	d.metrics.RecordToolCall(metricName(name), status, time.Since(started).Seconds())

	event := log.Debug()
	if status == "error" {
		event = log.Error()
	}
	event.Err(err).
		Str("tool", name).
		Str("status", status).
		Dur("latency", time.Since(started)).
		Msg("tool call")

	return result, err
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}

	switch name {
	case PredictDemand:
		a, err := parsePredictDemandArgs(args, d.defaultPeriods)
		if err != nil {
			return nil, err
		}
		result, err := d.forecaster.Predict(ctx, a.ProductID, a.StartDate, a.Periods)
		if err != nil {
			return nil, err
		}
		return result, nil

	case RecommendPurchase:
		a, err := parseRecommendPurchaseArgs(args, d.recommender.DefaultSafetyRatio())
		if err != nil {
			return nil, err
		}
		result, err := d.recommender.Recommend(ctx, a.ProductID, a.Season, a.SafetyRatio)
		if err != nil {
			return nil, err
		}
		return result, nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTool, name)
	}
}

// Status classifies a tool error for metrics and logs.
func Status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, domain.ErrUnknownProduct):
		return "unknown_product"
	case errors.Is(err, domain.ErrNoHistoryForSeason):
		return "no_history"
	case errors.Is(err, domain.ErrUnknownTool):
		return "unknown_tool"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

// metricName keeps arbitrary caller-supplied names out of metric labels.
func metricName(name string) string {
	switch name {
	case PredictDemand, RecommendPurchase:
		return name
	default:
		return "unknown"
	}
}
