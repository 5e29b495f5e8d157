package jobs

import (
	"context"
	"log/slog"

	"forecast/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// CleanupJob manages the scheduled removal of expired snapshots, ended
// events and superseded model versions. Runs nightly after the training
// sweep so freshly pruned histories include the night's new version.
type CleanupJob struct {
	handler *commands.CleanupExpiredDataCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewCleanupJob creates a new job for cleaning up expired data.
func NewCleanupJob(handler *commands.CleanupExpiredDataCommandHandler, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "cleanup_job"),
	}
}

// Start begins the cleanup job to run nightly at 04:00.
func (j *CleanupJob) Start() error {
	_, err := j.cron.AddFunc("0 0 4 * * *", func() {
		ctx := context.Background()
		cmd := commands.NewCleanupExpiredDataCommand()

		result, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Cleanup job failed", "error", err)
			return
		}

		j.logger.InfoContext(ctx, "Cleanup finished",
			"snapshotsRemoved", result.SnapshotsRemoved,
			"eventsRemoved", result.EventsRemoved,
			"versionsPruned", result.VersionsPruned,
		)
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Cleanup job started (running nightly at 04:00)")
	return nil
}

// Stop stops the cleanup job.
func (j *CleanupJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Cleanup job stopped")
}
