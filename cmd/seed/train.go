package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/app"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/config"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/history"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/model"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/training"
)

func trainFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "holdout-days", Usage: "Trailing days scored but not fitted", Value: 90},
		&cli.Float64Flag{Name: "lambda", Usage: "Ridge penalty", Value: model.DefaultLambda},
		&cli.IntFlag{Name: "workers", Usage: "Concurrent feature builders", Value: 4},
		&cli.StringFlag{
			Name:    "schedule",
			Usage:   "Cron spec with a seconds field; when set, retrain on that schedule until interrupted",
			EnvVars: []string{"TRAIN_SCHEDULE"},
		},
	}
}

func trainCommand() *cli.Command {
	return &cli.Command{
		Name:   "train",
		Usage:  "Fit the demand model on the sales history and write its artifacts",
		Flags:  append([]cli.Flag{newDirFlag(), newHistoryFlag()}, trainFlags()...),
		Action: runTrain,
	}
}

func runTrain(c *cli.Context) error {
	cfg := training.DefaultConfig(artifactDir(c))
	cfg.Files = app.Files(config.Load())
	cfg.HoldoutDays = c.Int("holdout-days")
	cfg.Lambda = c.Float64("lambda")
	cfg.WorkerCount = c.Int("workers")
	trainer := training.NewTrainer(cfg)

	path := historyPath(c)
	job := func(ctx context.Context) error {
		store, err := history.LoadCSV(path)
		if err != nil {
			return err
		}
		if _, err := trainer.Run(ctx, store); err != nil {
			return err
		}
		flushToolResults(ctx, config.Load().Cache)
		return nil
	}

	spec := c.String("schedule")
	if spec == "" {
		return job(c.Context)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return training.Schedule(ctx, spec, job)
}
