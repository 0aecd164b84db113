package training

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Schedule runs job on the given cron spec (with a seconds field) until ctx is done.
// Overlapping runs are skipped.
func Schedule(ctx context.Context, spec string, job func(ctx context.Context) error) error {
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc(spec, func() {
		if err := job(ctx); err != nil {
			log.Error().Err(err).Msg("training: scheduled run failed")
		}
	}); err != nil {
		return fmt.Errorf("register training schedule %q: %w", spec, err)
	}

	c.Start()
	log.Info().Str("schedule", spec).Msg("training: scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info().Msg("training: scheduler stopped")
	return nil
}
