package training

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/artifacts"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/history"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/simulate"
)

func simulatedStore(t *testing.T, start, end string) *history.Store {
	t.Helper()
	c := simulate.DefaultCatalog()
	c.Start, c.End = start, end

	records, err := simulate.Run(c)
	require.NoError(t, err)
	store, err := history.NewStore(records)
	require.NoError(t, err)
	return store
}

func TestFitHoldsOutTrailingDays(t *testing.T) {
	store := simulatedStore(t, "2023-01-01", "2023-12-31")
	trainer := NewTrainer(DefaultConfig(t.TempDir()))

	m, pm, report, err := trainer.Fit(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, 3, pm.Len())
	assert.Equal(t, 3, m.Products)
	assert.Equal(t, "2023-10-02", report.Cutoff)
	assert.Equal(t, 3*90, report.HoldoutRows)
	assert.Equal(t, 3*275, report.TrainRows)
	assert.Greater(t, report.MAE, 0.0)
	assert.GreaterOrEqual(t, report.RMSE, report.MAE)
	// noise alone has sigma 3, the fit should not be wildly worse
	assert.Less(t, report.MAE, 15.0)
}

func TestFitShortHistoryUsesAllRows(t *testing.T) {
	store := simulatedStore(t, "2024-01-01", "2024-01-31")
	trainer := NewTrainer(DefaultConfig(t.TempDir()))

	_, _, report, err := trainer.Fit(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 3*31, report.TrainRows)
	assert.Zero(t, report.HoldoutRows)
}

func TestFitEmptyHistory(t *testing.T) {
	store, err := history.NewStore(nil)
	require.NoError(t, err)

	_, _, _, err = NewTrainer(DefaultConfig(t.TempDir())).Fit(context.Background(), store)
	assert.Error(t, err)
}

func TestBuildRowsMatchesFeatureBuilder(t *testing.T) {
	store := simulatedStore(t, "2024-01-01", "2024-02-29")
	trainer := NewTrainer(DefaultConfig(t.TempDir()))
	_, pm, _, err := trainer.Fit(context.Background(), store)
	require.NoError(t, err)

	rows, err := buildRows(context.Background(), store, pm, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3*60)

	// first row of each product has no history
	assert.Zero(t, rows[0].x.Lag1)
	assert.Zero(t, rows[0].x.Rolling30)

	// tenth row of P1: lag_1 is day 9, lag_7 is day 3
	p1 := store.Records("P1")
	r := rows[9]
	assert.Equal(t, float64(p1[8].UnitsSold), r.x.Lag1)
	assert.Equal(t, float64(p1[2].UnitsSold), r.x.Lag7)
	assert.Equal(t, float64(p1[9].UnitsSold), r.target)
	assert.Equal(t, 0, r.x.ProductCode)
	assert.Equal(t, 1, rows[60].x.ProductCode)
}

func TestRunWritesLoadableArtifacts(t *testing.T) {
	dir := t.TempDir()
	store := simulatedStore(t, "2024-01-01", "2024-06-30")

	_, err := NewTrainer(DefaultConfig(dir)).Run(context.Background(), store)
	require.NoError(t, err)

	// the loader also needs the history next to the model
	require.NoError(t, writeHistory(dir, store))

	bundle, err := (&artifacts.Loader{Dir: dir}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2", "P3"}, bundle.Products.IDs())
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	err := Schedule(context.Background(), "not a cron", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestScheduleRunsJobUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- Schedule(ctx, "* * * * * *", func(context.Context) error {
			if runs.Add(1) == 1 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(1))
}

func writeHistory(dir string, store *history.Store) error {
	return history.SaveCSV(filepath.Join(dir, artifacts.DefaultFiles().SalesHistory), store.All())
}
