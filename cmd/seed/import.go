package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/config"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/history"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/merchant-agent/backend-go/pkg/logger"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Load the sales history CSV into Postgres",
		Flags: []cli.Flag{
			newDBURLFlag(),
			newDirFlag(),
			newHistoryFlag(),
			&cli.BoolFlag{
				Name:  "replace",
				Usage: "Truncate sales_history before loading",
				Value: false,
			},
		},
		Before: initImporter,
		After:  closeImporter,
		Action: runImport,
	}
}

func runImport(c *cli.Context) error {
	importer, ok := c.Context.Value(importerKey).(*postgres.Importer)
	if !ok || importer == nil {
		return fmt.Errorf("database is not initialised")
	}

	path := historyPath(c)
	store, err := history.LoadCSV(path)
	if err != nil {
		return err
	}

	if err := importer.Migrate(c.Context); err != nil {
		return err
	}

	n, err := importer.Import(c.Context, store.All(), c.Bool("replace"))
	if err != nil {
		return err
	}

	logger.Log.Info().Int64("rows", n).Str("path", path).Msg("Sales history imported")
	flushToolResults(c.Context, config.Load().Cache)
	return nil
}
