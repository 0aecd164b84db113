package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/config"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/history"
)

func TestSimulateAndTrain(t *testing.T) {
	dir := t.TempDir()

	err := newApp().Run([]string{
		"seed", "all",
		"--dir", dir,
		"--start", "2023-01-01",
		"--end", "2023-08-31",
		"--seed", "7",
		"--holdout-days", "30",
	})
	require.NoError(t, err)

	for _, name := range []string{"sales_history.csv", "demand_model.json", "product_map.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	store, err := history.LoadCSV(filepath.Join(dir, "sales_history.csv"))
	require.NoError(t, err)
	assert.Equal(t, 3*243, store.Len())
}

func TestSimulateCustomCatalog(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte(`
start: "2024-01-01"
end: "2024-01-10"
products:
  - id: SKU-1
    name: Scarf
    seasonality: [0.5, 0.5, 0, 0, 0, 0, 0, 0, 0, 0, 0.2, 0.4]
`), 0644))

	out := filepath.Join(dir, "out", "history.csv")
	err := newApp().Run([]string{"seed", "simulate", "--catalog", catalog, "--history", out})
	require.NoError(t, err)

	store, err := history.LoadCSV(out)
	require.NoError(t, err)
	assert.Equal(t, 10, store.Len())
	assert.Equal(t, []string{"SKU-1"}, store.ProductIDs())
}

func TestFlushToolResultsToleratesMissingRedis(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		flushToolResults(ctx, config.CacheConfig{Enabled: false})
		flushToolResults(ctx, config.CacheConfig{Enabled: true, RedisURL: "redis://127.0.0.1:1/0"})
	})
}
