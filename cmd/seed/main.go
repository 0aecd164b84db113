package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/cache"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/config"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/merchant-agent/backend-go/pkg/logger"
)

type contextKey string

const importerKey contextKey = "importer"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string (defaults to the DB_* settings)",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func newHistoryFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "history",
		Usage:   "Sales history CSV (defaults to <artifact dir>/<history file>)",
		EnvVars: []string{"SALES_HISTORY_PATH"},
	}
}

func newDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "dir",
		Usage:   "Artifact directory (defaults to ARTIFACT_DIR)",
		EnvVars: []string{"ARTIFACT_DIR"},
	}
}

// artifactDir resolves --dir against the loaded configuration.
func artifactDir(c *cli.Context) string {
	if dir := c.String("dir"); dir != "" {
		return dir
	}
	return config.Load().Artifacts.Dir
}

func historyPath(c *cli.Context) string {
	if path := c.String("history"); path != "" {
		return path
	}
	return filepath.Join(artifactDir(c), config.Load().Artifacts.SalesHistoryCSV)
}

func initImporter(c *cli.Context) error {
	dsn := c.String("db-url")
	if dsn == "" {
		dsn = postgres.DSN(&config.Load().Database)
	}

	importer, err := postgres.NewImporter(c.Context, dsn)
	if err != nil {
		return err
	}

	// Store the importer in the context
	c.Context = context.WithValue(c.Context, importerKey, importer)
	return nil
}

func closeImporter(c *cli.Context) error {
	if importer, ok := c.Context.Value(importerKey).(*postgres.Importer); ok && importer != nil {
		importer.Close()
	}
	return nil
}

// flushToolResults drops cached tool results after the history or model changed.
// Failures are logged; the servers also key results on the artifact version.
func flushToolResults(ctx context.Context, cfg config.CacheConfig) {
	if !cfg.Enabled {
		return
	}

	toolCache, err := cache.NewToolResultCache(cfg)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Tool result cache unavailable, skipping flush")
		return
	}
	if err := toolCache.InvalidateAll(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to flush tool result cache")
		return
	}
	logger.Log.Info().Msg("Tool result cache flushed")
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "seed",
		Usage: "Simulate sales history, train the demand model and distribute artifacts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			simulateCommand(),
			trainCommand(),
			importCommand(),
			publishCommand(),
			{
				Name:  "all",
				Usage: "Simulate sales history and train the model on it",
				Flags: append(simulateFlags(), trainFlags()...),
				Action: func(c *cli.Context) error {
					if err := runSimulate(c); err != nil {
						return fmt.Errorf("simulate: %w", err)
					}
					return runTrain(c)
				},
			},
		},
	}
}

func main() {
	_ = godotenv.Load(".env")

	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("seed failed")
	}
}
