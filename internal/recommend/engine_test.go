package recommend

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/history"
)

func dailyHistory(t *testing.T, product string, from, to string, units func(d time.Time) int) *history.Store {
	t.Helper()
	start, _ := time.Parse(domain.DateLayout, from)
	end, _ := time.Parse(domain.DateLayout, to)

	var records []domain.SalesRecord
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		records = append(records, domain.SalesRecord{Date: d, ProductID: product, UnitsSold: units(d), Promotion: 1})
	}
	s, err := history.NewStore(records)
	require.NoError(t, err)
	return s
}

func TestRecommendSummerExample(t *testing.T) {
	// 20 units/day from May to August, 5 otherwise
	s := dailyHistory(t, "P1", "2024-01-01", "2024-12-31", func(d time.Time) int {
		if domain.SeasonSummer.Contains(d.Month()) {
			return 20
		}
		return 5
	})
	e := NewEngine(s, DefaultConfig())

	res, err := e.Recommend(context.Background(), "P1", "summer", 0.25)
	require.NoError(t, err)

	assert.Equal(t, &domain.RecommendationResult{
		ProductID:      "P1",
		Season:         "summer",
		AvgDaily:       20.0,
		RecommendedQty: 750,
	}, res)
}

func TestRecommendZeroRatioIsRoundedRequirement(t *testing.T) {
	s := dailyHistory(t, "P1", "2024-01-01", "2024-01-03", func(d time.Time) int { return []int{3, 4, 4}[d.Day()-1] })
	e := NewEngine(s, DefaultConfig())

	res, err := e.Recommend(context.Background(), "P1", "all", 0)
	require.NoError(t, err)

	assert.InDelta(t, 11.0/3, res.AvgDaily, 1e-12)
	assert.Equal(t, int(math.RoundToEven(res.AvgDaily*30)), res.RecommendedQty)
}

func TestRecommendMonotonicInRatio(t *testing.T) {
	s := dailyHistory(t, "P1", "2023-01-01", "2024-12-31", func(d time.Time) int { return d.Day() % 9 })
	e := NewEngine(s, DefaultConfig())

	prev := -1
	for _, r := range []float64{0, 0.05, 0.1, 0.2, 0.25, 0.5, 1, 2.5, 10} {
		res, err := e.Recommend(context.Background(), "P1", "monsoon", r)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.RecommendedQty, prev, "ratio %v", r)
		prev = res.RecommendedQty
	}
}

func TestRecommendUnknownSeasonMatchesAll(t *testing.T) {
	s := dailyHistory(t, "P1", "2024-01-01", "2024-12-31", func(d time.Time) int { return int(d.Month()) })
	e := NewEngine(s, DefaultConfig())

	all, err := e.Recommend(context.Background(), "P1", "all", 0.2)
	require.NoError(t, err)
	unknown, err := e.Recommend(context.Background(), "P1", "Spring", 0.2)
	require.NoError(t, err)

	assert.Equal(t, all, unknown)
}

func TestRecommendSeasonIsCaseInsensitive(t *testing.T) {
	s := dailyHistory(t, "P1", "2024-01-01", "2024-12-31", func(d time.Time) int { return 1 })
	e := NewEngine(s, DefaultConfig())

	res, err := e.Recommend(context.Background(), "P1", "WINTER", 0.2)
	require.NoError(t, err)
	assert.Equal(t, "winter", res.Season)
}

func TestRecommendNoHistory(t *testing.T) {
	s := dailyHistory(t, "P1", "2024-06-01", "2024-06-30", func(d time.Time) int { return 1 })
	e := NewEngine(s, DefaultConfig())

	_, err := e.Recommend(context.Background(), "P1", "winter", 0.2)
	assert.ErrorIs(t, err, domain.ErrNoHistoryForSeason)

	_, err = e.Recommend(context.Background(), "P9", "all", 0.2)
	assert.ErrorIs(t, err, domain.ErrNoHistoryForSeason)
}

func TestRecommendRejectsRatio(t *testing.T) {
	s := dailyHistory(t, "P1", "2024-06-01", "2024-06-30", func(d time.Time) int { return 1 })
	e := NewEngine(s, DefaultConfig())

	for _, r := range []float64{-0.1, 10.5, math.NaN(), math.Inf(1)} {
		_, err := e.Recommend(context.Background(), "P1", "all", r)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, "ratio %v", r)
	}
}

func TestRecommendIsIdempotent(t *testing.T) {
	s := dailyHistory(t, "P1", "2024-01-01", "2024-12-31", func(d time.Time) int { return d.YearDay() % 13 })
	e := NewEngine(s, DefaultConfig())

	a, err := e.Recommend(context.Background(), "P1", "summer", 0.3)
	require.NoError(t, err)
	b, err := e.Recommend(context.Background(), "P1", "summer", 0.3)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDefaults(t *testing.T) {
	e := NewEngine(nil, DefaultConfig())
	assert.Equal(t, DefaultSafetyRatio, e.DefaultSafetyRatio())

	e = NewEngine(nil, Config{DefaultSafetyRatio: -1})
	assert.Equal(t, DefaultSafetyRatio, e.DefaultSafetyRatio())
}

func TestConfiguredZeroDefaultRatioIsKept(t *testing.T) {
	s := dailyHistory(t, "P1", "2024-01-01", "2024-12-31", func(time.Time) int { return 20 })
	cfg := DefaultConfig()
	cfg.DefaultSafetyRatio = 0
	e := NewEngine(s, cfg)

	assert.Zero(t, e.DefaultSafetyRatio())
	res, err := e.Recommend(context.Background(), "P1", "all", e.DefaultSafetyRatio())
	require.NoError(t, err)
	assert.Equal(t, 600, res.RecommendedQty)
}

func TestPurchaseCalculator(t *testing.T) {
	pc := NewPurchaseCalculator(30)

	m := pc.Calculate([]float64{10, 20}, 0.5)
	assert.Equal(t, 15.0, m.AvgDaily)
	assert.Equal(t, 450.0, m.Required)
	assert.Equal(t, 225.0, m.SafetyStock)
	assert.Equal(t, 675, m.RecommendedQty)
}
