package jobs

import (
	"context"
	"log/slog"

	"forecast/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// EvaluationJob manages the scheduled evaluation of active models against
// recent actuals. Runs every six hours so degradation is caught well before
// the nightly training sweep.
type EvaluationJob struct {
	handler *commands.EvaluateModelsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewEvaluationJob creates a new job for evaluating model accuracy.
func NewEvaluationJob(handler *commands.EvaluateModelsCommandHandler, logger *slog.Logger) *EvaluationJob {
	return &EvaluationJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "evaluation_job"),
	}
}

// Start begins the evaluation job to run every six hours.
func (j *EvaluationJob) Start() error {
	_, err := j.cron.AddFunc("0 30 */6 * * *", func() {
		ctx := context.Background()
		cmd := commands.NewEvaluateModelsCommand()

		result, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Evaluation job failed", "error", err)
			return
		}

		if result.Failed > 0 {
			j.logger.WarnContext(ctx, "Evaluation finished with failures",
				"processed", result.Processed,
				"failed", result.Failed,
			)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Evaluation job started (running every six hours)")
	return nil
}

// Stop stops the evaluation job.
func (j *EvaluationJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Evaluation job stopped")
}
