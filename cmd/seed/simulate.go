package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/history"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/simulate"
	"github.com/andresuchdata/merchant-agent/backend-go/pkg/logger"
)

func simulateFlags() []cli.Flag {
	return []cli.Flag{
		newDirFlag(),
		newHistoryFlag(),
		&cli.StringFlag{
			Name:    "catalog",
			Usage:   "YAML product catalog; the built-in catalog is used when empty",
			EnvVars: []string{"SIM_CATALOG"},
		},
		&cli.StringFlag{Name: "start", Usage: "First simulated day (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "end", Usage: "Last simulated day (YYYY-MM-DD)"},
		&cli.Uint64Flag{Name: "seed", Usage: "Random seed"},
	}
}

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:   "simulate",
		Usage:  "Generate synthetic daily sales history as CSV",
		Flags:  simulateFlags(),
		Action: runSimulate,
	}
}

func runSimulate(c *cli.Context) error {
	catalog := simulate.DefaultCatalog()
	if path := c.String("catalog"); path != "" {
		loaded, err := simulate.LoadCatalog(path)
		if err != nil {
			return err
		}
		catalog = loaded
	}
	if v := c.String("start"); v != "" {
		catalog.Start = v
	}
	if v := c.String("end"); v != "" {
		catalog.End = v
	}
	if c.IsSet("seed") {
		catalog.Seed = c.Uint64("seed")
	}

	records, err := simulate.Run(catalog)
	if err != nil {
		return err
	}

	out := historyPath(c)
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}
	if err := history.SaveCSV(out, records); err != nil {
		return err
	}

	logger.Log.Info().
		Int("rows", len(records)).
		Int("products", len(catalog.Products)).
		Str("path", out).
		Msg("Simulated sales history written")
	return nil
}
