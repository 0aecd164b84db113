package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/artifacts"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/cache"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/history"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/model"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/observability"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/recommend"
)

type countingForecaster struct {
	calls int
	err   error
}

func (f *countingForecaster) Predict(_ context.Context, productID string, start time.Time, periods int) (*domain.ForecastResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	res := &domain.ForecastResult{ProductID: productID}
	for i := 0; i < periods; i++ {
		res.Dates = append(res.Dates, start.AddDate(0, 0, i).Format(domain.DateLayout))
		res.Pred = append(res.Pred, 10)
	}
	return res, nil
}

func (f *countingForecaster) MaxPeriods() int { return 365 }

type countingRecommender struct {
	calls int
}

func (r *countingRecommender) Recommend(_ context.Context, productID, season string, ratio float64) (*domain.RecommendationResult, error) {
	r.calls++
	return &domain.RecommendationResult{ProductID: productID, Season: season, AvgDaily: 20, RecommendedQty: 600}, nil
}

func (r *countingRecommender) DefaultSafetyRatio() float64 { return 0.2 }

// memoryCache is a map-backed ToolResultCache.
type memoryCache struct {
	forecasts map[cache.ForecastKey]*domain.ForecastResult
	recs      map[cache.RecommendationKey]*domain.RecommendationResult
	getErr    error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		forecasts: map[cache.ForecastKey]*domain.ForecastResult{},
		recs:      map[cache.RecommendationKey]*domain.RecommendationResult{},
	}
}

func (m *memoryCache) GetForecast(_ context.Context, key cache.ForecastKey) (*domain.ForecastResult, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	r, ok := m.forecasts[key]
	return r, ok, nil
}

func (m *memoryCache) SetForecast(_ context.Context, key cache.ForecastKey, r *domain.ForecastResult) error {
	m.forecasts[key] = r
	return nil
}

func (m *memoryCache) GetRecommendation(_ context.Context, key cache.RecommendationKey) (*domain.RecommendationResult, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	r, ok := m.recs[key]
	return r, ok, nil
}

func (m *memoryCache) SetRecommendation(_ context.Context, key cache.RecommendationKey, r *domain.RecommendationResult) error {
	m.recs[key] = r
	return nil
}

func (m *memoryCache) InvalidateAll(context.Context) error {
	m.forecasts = map[cache.ForecastKey]*domain.ForecastResult{}
	m.recs = map[cache.RecommendationKey]*domain.RecommendationResult{}
	return nil
}

func testMetrics() *observability.Metrics {
	return observability.NewMetricsWith(prometheus.NewRegistry(), "test")
}

func TestForecastService_CachesByVersion(t *testing.T) {
	ctx := context.Background()
	engine := &countingForecaster{}
	c := newMemoryCache()
	metrics := testMetrics()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	svc := NewForecastService(engine, c, "v1", metrics)
	first, err := svc.Predict(ctx, "P1", start, 3)
	require.NoError(t, err)
	second, err := svc.Predict(ctx, "P1", start, 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, engine.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheEvents.WithLabelValues(predictDemandTool, "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheEvents.WithLabelValues(predictDemandTool, "miss")))

	retrained := NewForecastService(engine, c, "v2", metrics)
	_, err = retrained.Predict(ctx, "P1", start, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, engine.calls)
}

func TestForecastService_CacheErrorFallsThrough(t *testing.T) {
	engine := &countingForecaster{}
	c := newMemoryCache()
	c.getErr = errors.New("redis down")

	svc := NewForecastService(engine, c, "v1", testMetrics())
	res, err := svc.Predict(context.Background(), "P1", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)
	assert.Len(t, res.Pred, 2)
	assert.Equal(t, 1, engine.calls)
}

func TestForecastService_ErrorsAreNotCached(t *testing.T) {
	engine := &countingForecaster{err: domain.ErrUnknownProduct}
	c := newMemoryCache()

	svc := NewForecastService(engine, c, "v1", testMetrics())
	_, err := svc.Predict(context.Background(), "P9", time.Now(), 2)
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
	assert.Empty(t, c.forecasts)
}

func TestRecommendationService_Idempotent(t *testing.T) {
	engine := &countingRecommender{}
	svc := NewRecommendationService(engine, newMemoryCache(), "v1", testMetrics())

	a, err := svc.Recommend(context.Background(), "P1", "summer", 0.25)
	require.NoError(t, err)
	b, err := svc.Recommend(context.Background(), "P1", "summer", 0.25)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 1, engine.calls)
	assert.InDelta(t, 0.2, svc.DefaultSafetyRatio(), 1e-9)
}

func TestRecommendationService_NilCacheUsesNoop(t *testing.T) {
	engine := &countingRecommender{}
	svc := NewRecommendationService(engine, nil, "v1", testMetrics())

	for i := 0; i < 2; i++ {
		_, err := svc.Recommend(context.Background(), "P1", "winter", 0)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, engine.calls)
}

func flatStore(t *testing.T, units int) *history.Store {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var records []domain.SalesRecord
	for d := start; d.Year() == 2024; d = d.AddDate(0, 0, 1) {
		records = append(records, domain.SalesRecord{Date: d, ProductID: "P1", UnitsSold: units, Promotion: 1})
	}
	store, err := history.NewStore(records)
	require.NoError(t, err)
	return store
}

func TestRecommendationService_RefreshedHistoryMissesCache(t *testing.T) {
	ctx := context.Background()
	shared := newMemoryCache()
	metrics := testMetrics()

	before := flatStore(t, 20)
	after := flatStore(t, 40)
	oldVersion := artifacts.Fingerprint("model-sha", "map-sha", before)
	newVersion := artifacts.Fingerprint("model-sha", "map-sha", after)
	require.NotEqual(t, oldVersion, newVersion)

	first := NewRecommendationService(recommend.NewEngine(before, recommend.DefaultConfig()), shared, oldVersion, metrics)
	res, err := first.Recommend(ctx, "P1", "summer", 0)
	require.NoError(t, err)
	assert.Equal(t, 600, res.RecommendedQty)

	second := NewRecommendationService(recommend.NewEngine(after, recommend.DefaultConfig()), shared, newVersion, metrics)
	res, err = second.Recommend(ctx, "P1", "summer", 0)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, res.AvgDaily, 1e-9)
	assert.Equal(t, 1200, res.RecommendedQty)
}

func testBundle(t *testing.T) *artifacts.Bundle {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var records []domain.SalesRecord
	for i := 0; i < 10; i++ {
		records = append(records, domain.SalesRecord{
			Date: start.AddDate(0, 0, i), ProductID: "P1", ProductName: "T-Shirt", UnitsSold: i, Promotion: 1,
		})
	}
	store, err := history.NewStore(records)
	require.NoError(t, err)
	return &artifacts.Bundle{
		Products:     model.NewProductMap([]string{"P1", "P2"}),
		History:      store,
		ModelVersion: "abc",
		Version:      "abc-history",
	}
}

func TestCatalogService_History(t *testing.T) {
	svc := NewCatalogService(testBundle(t))

	h, err := svc.History("P1", 3)
	require.NoError(t, err)
	assert.Equal(t, "T-Shirt", h.ProductName)
	require.Len(t, h.Points, 3)
	assert.Equal(t, "2024-01-08", h.Points[0].Date)
	assert.Equal(t, 9, h.Points[2].UnitsSold)

	h, err = svc.History("P2", 0)
	require.NoError(t, err)
	assert.Empty(t, h.Points)

	_, err = svc.History("P9", 10)
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)

	_, err = svc.History("P1", maxHistoryDays+1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCatalogService_ProductsAndSeasons(t *testing.T) {
	svc := NewCatalogService(testBundle(t))

	products := svc.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "P1", products[0].ID)
	assert.Equal(t, "T-Shirt", products[0].Name)
	assert.Equal(t, 1, products[1].Code)
	assert.Len(t, svc.Seasons(), 4)
	assert.Equal(t, "abc", svc.Version())
}
