package jobs

import (
	"context"
	"log/slog"

	"forecast/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// FeatureCollectionJob manages the scheduled collection of feature snapshots.
// Runs at the top of every hour to refresh events, build snapshots for the
// next day and backfill actuals for past hours.
type FeatureCollectionJob struct {
	handler *commands.CollectFeaturesCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewFeatureCollectionJob creates a new job for collecting features.
// Uses CollectFeaturesCommandHandler to process all restaurants every hour.
func NewFeatureCollectionJob(handler *commands.CollectFeaturesCommandHandler, logger *slog.Logger) *FeatureCollectionJob {
	return &FeatureCollectionJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "feature_collection_job"),
	}
}

// Start begins the feature collection job to run hourly.
func (j *FeatureCollectionJob) Start() error {
	_, err := j.cron.AddFunc("0 0 * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewCollectFeaturesCommand()

		result, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Feature collection job failed", "error", err)
			return
		}

		if result.Failed > 0 {
			j.logger.WarnContext(ctx, "Feature collection finished with failures",
				"processed", result.Processed,
				"failed", result.Failed,
			)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Feature collection job started (running hourly)")
	return nil
}

// Stop stops the feature collection job.
func (j *FeatureCollectionJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Feature collection job stopped")
}
