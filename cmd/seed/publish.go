package main

import (
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/app"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/artifacts"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/config"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/storage"
	"github.com/andresuchdata/merchant-agent/backend-go/pkg/logger"
)

func publishCommand() *cli.Command {
	return &cli.Command{
		Name:  "publish",
		Usage: "Upload the model, product map and sales history to S3-compatible storage",
		Flags: []cli.Flag{
			newDirFlag(),
			&cli.StringFlag{
				Name:    "prefix",
				Usage:   "Object key prefix (defaults to S3_PREFIX)",
				EnvVars: []string{"S3_PREFIX"},
			},
			&cli.BoolFlag{
				Name:  "create-bucket",
				Usage: "Create the bucket when it does not exist",
				Value: true,
			},
		},
		Action: runPublish,
	}
}

func runPublish(c *cli.Context) error {
	cfg := config.Load()

	client, err := storage.NewMinioClient(app.S3Config(cfg))
	if err != nil {
		return err
	}
	if c.Bool("create-bucket") {
		if err := client.EnsureBucket(c.Context); err != nil {
			return err
		}
	}

	prefix := c.String("prefix")
	if prefix == "" {
		prefix = cfg.Storage.Prefix
	}

	dir := artifactDir(c)
	if err := artifacts.Publish(c.Context, client, prefix, dir, app.Files(cfg)); err != nil {
		return err
	}

	logger.Log.Info().Str("bucket", cfg.Storage.Bucket).Str("prefix", prefix).Msg("Artifacts published")
	return nil
}
