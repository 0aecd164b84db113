package training

import (
	"time"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/artifacts"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/features"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/model"
)

// Config holds configuration for a training run
type Config struct {
	WorkerCount int     // Number of concurrent feature builders
	HoldoutDays int     // Trailing days kept out of the fit and scored
	Lambda      float64 // Ridge penalty
	OutputDir   string  // Directory the artifacts are written to
	Files       artifacts.Files
	Timeout     time.Duration // Upper bound on one run
}

// DefaultConfig returns sensible defaults
func DefaultConfig(outputDir string) Config {
	return Config{
		WorkerCount: 4,
		HoldoutDays: 90,
		Lambda:      model.DefaultLambda,
		OutputDir:   outputDir,
		Files:       artifacts.DefaultFiles(),
		Timeout:     10 * time.Minute,
	}
}

// row is one training example.
type row struct {
	date   time.Time
	x      features.Vector
	target float64
}

// Report summarises a training run.
type Report struct {
	Products    int           `json:"products"`
	TrainRows   int           `json:"train_rows"`
	HoldoutRows int           `json:"holdout_rows"`
	Cutoff      string        `json:"cutoff"`
	MAE         float64       `json:"holdout_mae"`
	RMSE        float64       `json:"holdout_rmse"`
	Duration    time.Duration `json:"duration"`
}
