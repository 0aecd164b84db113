package tools

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
)

// PredictDemandArgs are the validated arguments of predict_demand.
type PredictDemandArgs struct {
	ProductID string
	StartDate time.Time
	Periods   int
}

// RecommendPurchaseArgs are the validated arguments of recommend_purchase.
type RecommendPurchaseArgs struct {
	ProductID   string
	Season      string
	SafetyRatio float64
}

func parsePredictDemandArgs(args map[string]any, defaultPeriods int) (PredictDemandArgs, error) {
	productID, err := requiredString(args, "product_id")
	if err != nil {
		return PredictDemandArgs{}, err
	}
	rawDate, err := requiredString(args, "start_date")
	if err != nil {
		return PredictDemandArgs{}, err
	}
	start, err := domain.ParseDate(rawDate)
	if err != nil {
		return PredictDemandArgs{}, err
	}
	periods, err := optionalInt(args, "periods", defaultPeriods)
	if err != nil {
		return PredictDemandArgs{}, err
	}
	return PredictDemandArgs{ProductID: productID, StartDate: start, Periods: periods}, nil
}

func parseRecommendPurchaseArgs(args map[string]any, defaultRatio float64) (RecommendPurchaseArgs, error) {
	productID, err := requiredString(args, "product_id")
	if err != nil {
		return RecommendPurchaseArgs{}, err
	}
	season, err := requiredString(args, "season")
	if err != nil {
		return RecommendPurchaseArgs{}, err
	}
	ratio, err := optionalFloat(args, "safety_stock_ratio", defaultRatio)
	if err != nil {
		return RecommendPurchaseArgs{}, err
	}
	return RecommendPurchaseArgs{ProductID: productID, Season: season, SafetyRatio: ratio}, nil
}

func invalid(key, format string, a ...any) error {
	return fmt.Errorf("%w: %s %s", domain.ErrInvalidArgument, key, fmt.Sprintf(format, a...))
}

func requiredString(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", invalid(key, "is required")
	}
	switch raw.(type) {
	case bool, map[string]any, []any:
		return "", invalid(key, "must be a string, got %T", raw)
	}

	s, err := cast.ToStringE(raw)
	if err != nil {
		return "", invalid(key, "must be a string, got %T", raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid(key, "is required")
	}
	return s, nil
}

// optionalInt accepts ints, integral floats and numeric strings.
func optionalInt(args map[string]any, key string, def int) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return def, nil
	}

	f, err := toNumber(raw)
	if err != nil {
		return 0, invalid(key, "must be an integer, got %v", raw)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, invalid(key, "must be an integer, got %v", raw)
	}
	return int(f), nil
}

func optionalFloat(args map[string]any, key string, def float64) (float64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return def, nil
	}

	f, err := toNumber(raw)
	if err != nil {
		return 0, invalid(key, "must be a number, got %v", raw)
	}
	return f, nil
}

func toNumber(raw any) (float64, error) {
	switch v := raw.(type) {
	case bool:
		return 0, fmt.Errorf("boolean is not a number")
	case string:
		raw = strings.TrimSpace(v)
		if raw == "" {
			return 0, fmt.Errorf("empty string")
		}
	}

	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not finite")
	}
	return f, nil
}
