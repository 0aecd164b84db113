// Package training fits the demand model from the sales history and writes the
// model artifacts.
package training

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/artifacts"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/features"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/history"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/model"
)

type Trainer struct {
	config Config
}

func NewTrainer(config Config) *Trainer {
	return &Trainer{config: config}
}

// Fit trains one global model on every row up to the holdout cutoff and scores the
// rows after it. Histories shorter than the holdout are fitted in full and not scored.
func (t *Trainer) Fit(ctx context.Context, store *history.Store) (*model.Model, *model.ProductMap, Report, error) {
	started := time.Now()
	report := Report{}

	_, last, ok := store.Range()
	if !ok {
		return nil, nil, report, errors.New("training: sales history is empty")
	}

	pm := model.NewProductMap(store.ProductIDs())
	report.Products = pm.Len()

	rows, err := buildRows(ctx, store, pm, t.config.WorkerCount)
	if err != nil {
		return nil, nil, report, err
	}

	cutoff := last.AddDate(0, 0, -t.config.HoldoutDays)
	report.Cutoff = cutoff.Format(domain.DateLayout)

	var (
		trainX, holdX []features.Vector
		trainY, holdY []float64
	)
	for _, r := range rows {
		if r.date.After(cutoff) {
			holdX = append(holdX, r.x)
			holdY = append(holdY, r.target)
			continue
		}
		trainX = append(trainX, r.x)
		trainY = append(trainY, r.target)
	}

	if len(trainX) == 0 {
		log.Warn().Int("holdout_days", t.config.HoldoutDays).Msg("training: history shorter than holdout, fitting on all rows")
		trainX, trainY = append(trainX, holdX...), append(trainY, holdY...)
		holdX, holdY = nil, nil
	}

	m, err := model.Fit(trainX, trainY, pm.Len(), t.config.Lambda)
	if err != nil {
		return nil, nil, report, fmt.Errorf("training: %w", err)
	}

	report.TrainRows = len(trainX)
	report.HoldoutRows = len(holdX)
	if len(holdX) > 0 {
		report.MAE, report.RMSE, err = score(m, holdX, holdY)
		if err != nil {
			return nil, nil, report, err
		}
	}
	report.Duration = time.Since(started)

	return m, pm, report, nil
}

// Run fits the model and writes it with its product map to the output directory.
func (t *Trainer) Run(ctx context.Context, store *history.Store) (Report, error) {
	if t.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Timeout)
		defer cancel()
	}

	m, pm, report, err := t.Fit(ctx, store)
	if err != nil {
		return report, err
	}

	if err := artifacts.Save(t.config.OutputDir, t.config.Files, m, pm); err != nil {
		return report, err
	}

	log.Info().
		Int("products", report.Products).
		Int("train_rows", report.TrainRows).
		Int("holdout_rows", report.HoldoutRows).
		Str("cutoff", report.Cutoff).
		Float64("holdout_mae", report.MAE).
		Float64("holdout_rmse", report.RMSE).
		Dur("took", report.Duration).
		Str("dir", t.config.OutputDir).
		Msg("training: model trained and saved")

	return report, nil
}

func score(m *model.Model, x []features.Vector, y []float64) (mae, rmse float64, err error) {
	var absSum, sqSum float64
	for i, v := range x {
		pred, err := m.Predict(v)
		if err != nil {
			return 0, 0, err
		}
		diff := math.Max(0, pred) - y[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
	}
	n := float64(len(x))
	return absSum / n, math.Sqrt(sqSum / n), nil
}
