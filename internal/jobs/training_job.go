package jobs

import (
	"context"
	"log/slog"

	"forecast/internal/core/application/usecases/commands"
	"forecast/internal/core/domain/model/mlmodel"

	"github.com/robfig/cron/v3"
)

// TrainingJob manages the scheduled retraining of forecasting models.
// Runs nightly and retrains only the restaurants whose models need it.
type TrainingJob struct {
	handler *commands.TrainAllCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewTrainingJob creates a new job for retraining models.
// Uses TrainAllCommandHandler to sweep all restaurants once a night.
func NewTrainingJob(handler *commands.TrainAllCommandHandler, logger *slog.Logger) *TrainingJob {
	return &TrainingJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "training_job"),
	}
}

// Start begins the training job to run nightly at 02:00.
func (j *TrainingJob) Start() error {
	_, err := j.cron.AddFunc("0 0 2 * * *", func() {
		ctx := context.Background()

		cmd, err := commands.NewTrainAllCommand(mlmodel.Ensemble, mlmodel.DefaultModelParameters())
		if err != nil {
			j.logger.ErrorContext(ctx, "Training job could not build command", "error", err)
			return
		}

		result, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Training job failed", "error", err)
			return
		}

		j.logger.InfoContext(ctx, "Training sweep finished",
			"processed", result.Processed,
			"succeeded", result.Succeeded,
			"failed", result.Failed,
		)
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Training job started (running nightly at 02:00)")
	return nil
}

// Stop stops the training job.
func (j *TrainingJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Training job stopped")
}
